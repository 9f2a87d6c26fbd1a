package generator

import (
	"bytes"
	"fmt"
)

// renderUnit emits the wrapper source for one unit. Output is a pure function
// of the model.
func renderUnit(m unitModel) ([]byte, error) {
	return execute(tmplFile, m)
}

func execute(name string, data any) ([]byte, error) {
	if err := ensureTemplates(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	var out bytes.Buffer
	if err := fileTmpl.ExecuteTemplate(&out, name, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", name, err)
	}
	return out.Bytes(), nil
}
