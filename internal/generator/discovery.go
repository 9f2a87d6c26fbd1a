package generator

import (
	"strings"

	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/decl"
)

// exportedClass is a class selected by the class marker together with its
// selected methods, both in declaration order.
type exportedClass struct {
	Class   *decl.Class
	Methods []*decl.Function
}

// discoverClasses walks the unit in pre-order and returns every class carrying
// the class marker. Unmarked classes and methods are dropped silently; marked
// declarations that cannot be bridged are dropped with a warning.
func discoverClasses(root []decl.Decl, classMarker, methodMarker string, log *zap.Logger) []exportedClass {
	var out []exportedClass
	var visit func(children []decl.Decl, inClass bool)
	visit = func(children []decl.Decl, inClass bool) {
		for _, child := range children {
			switch d := child.(type) {
			case *decl.Namespace:
				visit(d.Children, inClass)
			case *decl.Class:
				if decl.HasAnnotation(d.Attributes, classMarker) {
					if ec, ok := selectClass(d, inClass, methodMarker, log); ok {
						out = append(out, ec)
					}
				}
				visit(d.Children, true)
			}
		}
	}
	visit(root, false)
	return out
}

func selectClass(c *decl.Class, nested bool, methodMarker string, log *zap.Logger) (exportedClass, bool) {
	clog := log.With(zap.String("class", c.Name))
	switch {
	case c.FromInclude:
		clog.Debug("skipping class declared in included header")
		return exportedClass{}, false
	case c.Template:
		clog.Warn("skipping class template")
		return exportedClass{}, false
	case nested:
		clog.Warn("skipping class nested in another class")
		return exportedClass{}, false
	case c.Name == "":
		clog.Warn("skipping anonymous class")
		return exportedClass{}, false
	}
	ec := exportedClass{Class: c}
	for _, m := range c.Methods {
		if !decl.HasAnnotation(m.Attributes, methodMarker) {
			continue
		}
		mlog := clog.With(zap.String("method", m.Name))
		switch {
		case m.Kind == decl.FuncConstructor || m.Kind == decl.FuncDestructor:
			mlog.Warn("skipping annotated " + m.Kind.String())
		case m.Template:
			mlog.Warn("skipping member function template")
		case m.Access != decl.AccessPublic:
			mlog.Warn("skipping non-public method", zap.Stringer("access", m.Access))
		default:
			ec.Methods = append(ec.Methods, m)
		}
	}
	return ec, true
}

var operatorWords = map[rune]string{
	'+': "plus",
	'-': "minus",
	'*': "star",
	'/': "slash",
	'%': "percent",
	'^': "caret",
	'&': "amp",
	'|': "pipe",
	'~': "tilde",
	'!': "not",
	'=': "eq",
	'<': "lt",
	'>': "gt",
	',': "comma",
	'(': "lparen",
	')': "rparen",
	'[': "lbracket",
	']': "rbracket",
}

// sanitizeIdent turns a method name into something usable inside a C++
// identifier: operator+= becomes operator_plus_eq.
func sanitizeIdent(name string) string {
	var b strings.Builder
	prevWord := false
	for _, r := range name {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			if prevWord {
				b.WriteByte('_')
				prevWord = false
			}
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			prevWord = b.Len() > 0
		default:
			w, ok := operatorWords[r]
			if !ok {
				w = "x"
			}
			b.WriteByte('_')
			b.WriteString(w)
			prevWord = true
		}
	}
	return b.String()
}
