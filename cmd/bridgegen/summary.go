package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calumari/cppbridge/internal/generator"
)

var (
	labelStyle = lipgloss.NewStyle().Width(10)

	statusStyles = map[generator.Status]lipgloss.Style{
		generator.StatusWritten:   labelStyle.Foreground(lipgloss.Color("#90EE90")),
		generator.StatusUnchanged: labelStyle.Foreground(lipgloss.Color("#666666")),
		generator.StatusSkipped:   labelStyle.Foreground(lipgloss.Color("#FFD866")),
		generator.StatusDrift:     labelStyle.Foreground(lipgloss.Color("#87CEEB")),
		generator.StatusFailed:    labelStyle.Foreground(lipgloss.Color("#FF6B6B")),
	}

	totalsStyle = lipgloss.NewStyle().Bold(true)
)

var statusOrder = []generator.Status{
	generator.StatusWritten,
	generator.StatusUnchanged,
	generator.StatusSkipped,
	generator.StatusDrift,
	generator.StatusFailed,
}

// printReport writes one line per header followed by the totals. Drift diffs
// are printed under their header.
func printReport(w io.Writer, r *generator.Report) {
	for _, res := range r.Results {
		fmt.Fprintln(w, statusStyles[res.Status].Render(string(res.Status))+describe(res))
		if res.Status == generator.StatusDrift && res.Diff != "" {
			fmt.Fprint(w, res.Diff)
			if !strings.HasSuffix(res.Diff, "\n") {
				fmt.Fprintln(w)
			}
		}
	}
	totals := make([]string, len(statusOrder))
	for i, s := range statusOrder {
		totals[i] = fmt.Sprintf("%d %s", r.Count(s), s)
	}
	fmt.Fprintln(w, totalsStyle.Render(strings.Join(totals, ", ")))
}

func describe(res generator.Result) string {
	switch res.Status {
	case generator.StatusWritten:
		return fmt.Sprintf("%s -> %s (%d class(es))", res.Header, res.Output, res.Classes)
	case generator.StatusSkipped:
		return fmt.Sprintf("%s: %s", res.Header, res.Reason)
	case generator.StatusFailed:
		return fmt.Sprintf("%s: %v", res.Header, res.Err)
	default:
		return fmt.Sprintf("%s -> %s", res.Header, res.Output)
	}
}
