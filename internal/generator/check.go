package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// headerLines is the informational region at the top of every generated file.
// It changes on every run and is ignored when comparing outputs.
const headerLines = 3

// stripHeader drops the informational header region.
func stripHeader(content []byte) []byte {
	for range headerLines {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			return nil
		}
		content = content[i+1:]
	}
	return content
}

// equivalentOutput reports whether a and b differ only in the header region.
func equivalentOutput(a, b []byte) bool {
	return bytes.Equal(stripHeader(a), stripHeader(b))
}

// checkDrift compares rendered with the file at path. A missing file counts as
// drift. The returned diff is empty when the outputs are equivalent.
func checkDrift(path string, rendered []byte) (string, error) {
	existing, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		existing = nil
	} else if err != nil {
		return "", fmt.Errorf("read existing output: %w", err)
	}
	if existing != nil && equivalentOutput(existing, rendered) {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(stripHeader(existing))),
		B:        difflib.SplitLines(string(stripHeader(rendered))),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff output: %w", err)
	}
	if diff == "" {
		// both sides empty below the header
		diff = "missing " + path + "\n"
	}
	return diff, nil
}
