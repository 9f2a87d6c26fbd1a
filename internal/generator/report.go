package generator

// Status is the outcome of one input header.
type Status string

const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusDrift     Status = "drift"
	StatusFailed    Status = "failed"
)

// Result describes what happened to one input header.
type Result struct {
	Header  string
	Output  string
	Status  Status
	Classes int
	Reason  string // why a header was skipped
	Diff    string // unified diff for StatusDrift
	Err     error  // set for StatusFailed
}

// Report collects per-header results in input order.
type Report struct {
	Results []Result
	Pruned  []string // manifest entries dropped because their header is gone
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failed reports whether any header failed.
func (r *Report) Failed() bool { return r.Count(StatusFailed) > 0 }

// HasDrift reports whether a check run found stale outputs.
func (r *Report) HasDrift() bool { return r.Count(StatusDrift) > 0 }
