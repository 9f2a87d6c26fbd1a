package generator

import (
	"embed"
	"fmt"
	"sync"
	"text/template"
)

const (
	tmplFile   = "file"
	tmplClass  = "class"
	tmplMethod = "method"
)

const templatePattern = "templates/*.gtpl"

//go:embed templates/*.gtpl
var templatesFS embed.FS

var (
	fileTmpl     *template.Template
	tmplInitOnce sync.Once
	tmplInitErr  error
)

// validateTemplates ensures all required templates are defined
func validateTemplates() error {
	for _, name := range []string{tmplFile, tmplClass, tmplMethod} {
		if fileTmpl.Lookup(name) == nil {
			return fmt.Errorf("required template %q not found", name)
		}
	}
	return nil
}

// ensureTemplates parses and validates templates exactly once.
func ensureTemplates() error {
	tmplInitOnce.Do(func() {
		var t *template.Template
		t, tmplInitErr = template.New(tmplFile).Option("missingkey=error").ParseFS(templatesFS, templatePattern)
		if tmplInitErr != nil {
			return
		}
		fileTmpl = t
		tmplInitErr = validateTemplates()
	})
	return tmplInitErr
}
