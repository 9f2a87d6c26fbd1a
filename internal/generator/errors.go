package generator

import (
	"errors"
	"strings"
)

// Kind categorizes generation errors.
type Kind string

const (
	KindSetup  Kind = "setup"  // output root unusable; aborts the run
	KindConfig Kind = "config" // invalid configuration or header pattern
	KindParse  Kind = "parse"  // front end failed to read a header
	KindRender Kind = "render" // template execution failed
	KindWrite  Kind = "write"  // output could not be written
)

// Error is the structured error returned by the generator.
type Error struct {
	Kind  Kind
	Path  string
	Cause error
}

func newError(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')
	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(e.Path)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same kind, so errors.Is(err,
// &Error{Kind: KindSetup}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}

// IsKind reports whether err carries a generator error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}
