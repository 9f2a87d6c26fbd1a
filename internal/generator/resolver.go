package generator

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/decl"
)

// nsLookup is a memoized name resolution.
type nsLookup struct {
	path  []string
	scope []string
	found bool
}

// namespaceResolver reconstructs enclosing namespace chains by walking a
// unit's declaration tree. Name lookups are memoized per unit; the tree is
// never mutated, so memoization cannot change a result.
type namespaceResolver struct {
	root  []decl.Decl
	log   *zap.Logger
	names map[string]nsLookup
}

func newNamespaceResolver(root []decl.Decl, log *zap.Logger) *namespaceResolver {
	return &namespaceResolver{root: root, log: log, names: make(map[string]nsLookup)}
}

// resolveDecl returns the namespaces enclosing the declaration with the given
// ID, outer to inner. A miss yields an empty path and false.
func (r *namespaceResolver) resolveDecl(id decl.ID) ([]string, bool) {
	w := nsWalker{match: func(d decl.Decl) bool { return d.DeclID() == id }}
	if id != 0 && w.walk(r.root) {
		return w.path, true
	}
	r.log.Warn("declaration not found in unit", zap.Uint32("id", uint32(id)))
	return nil, false
}

// resolveName returns the namespaces enclosing the first class, alias or enum
// declared as name in depth-first order. Identically named types in sibling
// namespaces are not disambiguated: the first match wins.
func (r *namespaceResolver) resolveName(name string) ([]string, bool) {
	hit := r.lookup(name)
	return hit.path, hit.found
}

// resolveScope is resolveName with the enclosing classes kept in the chain,
// so a type nested in a class resolves to the prefix it must be spelled with.
func (r *namespaceResolver) resolveScope(name string) ([]string, bool) {
	hit := r.lookup(name)
	return hit.scope, hit.found
}

func (r *namespaceResolver) lookup(name string) nsLookup {
	if hit, ok := r.names[name]; ok {
		return hit
	}
	w := nsWalker{match: func(d decl.Decl) bool { return declaresType(d, name) }}
	found := name != "" && w.walk(r.root)
	hit := nsLookup{path: w.path, scope: w.scopePath, found: found}
	r.names[name] = hit
	if !found {
		r.log.Warn("type not found in unit", zap.String("type", name))
		return hit
	}
	r.log.Debug("resolved type namespace", zap.String("type", name), zap.String("scope", strings.Join(w.scopePath, "::")))
	return hit
}

func declaresType(d decl.Decl, name string) bool {
	switch d := d.(type) {
	case *decl.Class:
		return d.Name == name
	case *decl.Alias:
		return d.Name == name
	case *decl.Enum:
		return d.Name == name
	default:
		return false
	}
}

// nsWalker is a depth-first walk with an explicit namespace stack. Entering a
// named namespace pushes it, leaving pops it; a match records the stack as it
// is at that moment. scope tracks the same chain with class names included.
type nsWalker struct {
	match     func(decl.Decl) bool
	stack     []string
	scope     []string
	path      []string
	scopePath []string
}

func (w *nsWalker) walk(children []decl.Decl) bool {
	for _, child := range children {
		switch d := child.(type) {
		case *decl.Namespace:
			named := d.Name != ""
			if named {
				w.stack = append(w.stack, d.Name)
				w.scope = append(w.scope, d.Name)
			}
			found := w.walk(d.Children)
			if named {
				w.stack = w.stack[:len(w.stack)-1]
				w.scope = w.scope[:len(w.scope)-1]
			}
			if found {
				return true
			}
		case *decl.Class:
			if w.match(d) {
				w.record()
				return true
			}
			// classes are searched as containers but do not contribute to the
			// namespace chain
			w.scope = append(w.scope, d.Name)
			found := w.walk(d.Children)
			w.scope = w.scope[:len(w.scope)-1]
			if found {
				return true
			}
			for _, m := range d.Methods {
				if w.match(m) {
					w.record()
					return true
				}
			}
		default:
			if w.match(child) {
				w.record()
				return true
			}
		}
	}
	return false
}

func (w *nsWalker) record() {
	w.path = slices.Clone(w.stack)
	w.scopePath = slices.Clone(w.scope)
}

// baseName strips pointer, reference and qualifier wrappers and returns the
// name a type is looked up by.
func baseName(t decl.Type) string {
	switch tt := t.(type) {
	case *decl.Pointer:
		return baseName(tt.Elem)
	case *decl.Reference:
		return baseName(tt.Elem)
	case *decl.Qualified:
		return baseName(tt.Elem)
	case *decl.Named:
		return tt.Name
	default:
		return decl.Spelling(t)
	}
}
