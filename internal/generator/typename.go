package generator

import (
	"strings"

	"github.com/calumari/cppbridge/internal/decl"
)

// typeQualifier renders type references as fully qualified C++ spellings.
type typeQualifier struct {
	ns *namespaceResolver
}

// qualify renders t bottom-up. It never fails: anything it does not model
// falls back to the type's native spelling.
func (q *typeQualifier) qualify(t decl.Type) string {
	switch tt := t.(type) {
	case nil:
		return ""
	case *decl.Pointer:
		return q.qualify(tt.Elem) + "*"
	case *decl.Reference:
		if tt.RValue {
			return q.qualify(tt.Elem) + "&&"
		}
		return q.qualify(tt.Elem) + "&"
	case *decl.Qualified:
		quals := decl.Qualifiers(tt.Const, tt.Volatile)
		inner := q.qualify(tt.Elem)
		if quals == "" {
			return inner
		}
		// cv on a pointer binds to the pointer itself
		if _, ok := tt.Elem.(*decl.Pointer); ok {
			return inner + " " + quals
		}
		return quals + " " + inner
	case *decl.Named:
		return q.qualifyNamed(tt)
	case *decl.Primitive:
		return tt.Kind.String()
	default:
		return t.String()
	}
}

// qualifyNamed prefixes a named type with its enclosing namespaces and
// classes. A written qualifier is kept unless the resolved declaration
// matches it.
func (q *typeQualifier) qualifyNamed(n *decl.Named) string {
	scope, ok := q.ns.resolveScope(n.Name)
	if !ok || len(scope) == 0 {
		return n.String()
	}
	full := strings.Join(scope, "::") + "::" + n.Name
	written := strings.TrimPrefix(n.Spelling, "::")
	if strings.Contains(written, "::") && full != written && !strings.HasSuffix(full, "::"+written) {
		return n.Spelling
	}
	return full
}

// namespacesOf returns the namespace chain of t's underlying user type, or
// nil when t does not name one.
func (q *typeQualifier) namespacesOf(t decl.Type) []string {
	if !namesUserType(t) {
		return nil
	}
	path, ok := q.ns.resolveName(baseName(t))
	if !ok {
		return nil
	}
	if path == nil {
		return []string{}
	}
	return path
}

func namesUserType(t decl.Type) bool {
	switch tt := t.(type) {
	case *decl.Pointer:
		return namesUserType(tt.Elem)
	case *decl.Reference:
		return namesUserType(tt.Elem)
	case *decl.Qualified:
		return namesUserType(tt.Elem)
	case *decl.Named:
		return true
	default:
		return false
	}
}
