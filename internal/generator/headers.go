package generator

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandHeaders resolves header arguments into a de-duplicated list in
// argument order. Plain paths are kept even when they do not exist so the
// orchestrator can report them as skipped; patterns ("**" supported) are
// expanded against the file system.
func ExpandHeaders(args []string) ([]string, error) {
	seen := make(map[string]bool, len(args))
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		if arg == "" {
			continue
		}
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, newError(KindConfig, arg, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}
