package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/decl"
)

func TestResolveDecl(t *testing.T) {
	var b treeBuilder
	nested := b.class("Nested", true)
	global := b.class("Global", true)
	sibling := b.class("Sibling", true)
	hidden := b.class("Hidden", true)
	method := b.method("Run", true)
	owner := b.class("Owner", true, method)
	root := []decl.Decl{
		b.ns("A", b.ns("B", nested), b.ns("C")),
		global,
		b.ns("D", sibling),
		b.ns("", b.ns("E", hidden)),
		b.ns("F", owner),
	}

	tests := []struct {
		name   string
		target decl.ID
		want   []string
	}{
		{"class nested in two namespaces", nested.ID, []string{"A", "B"}},
		{"class at global scope", global.ID, []string{}},
		{"sibling namespaces are popped before the next one", sibling.ID, []string{"D"}},
		{"anonymous namespaces contribute nothing", hidden.ID, []string{"E"}},
		{"methods are found through their class", method.ID, []string{"F"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newNamespaceResolver(root, zap.NewNop())
			got, ok := r.resolveDecl(tt.target)
			require.True(t, ok)
			assert.Equal(t, len(tt.want), len(got))
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	t.Run("missing declaration warns and yields an empty path", func(t *testing.T) {
		log, logs := observedLogger(t)
		r := newNamespaceResolver(root, log)
		got, ok := r.resolveDecl(9999)
		assert.False(t, ok)
		assert.Empty(t, got)
		assert.Equal(t, 1, logs.FilterMessage("declaration not found in unit").Len())
	})

	t.Run("returned paths do not alias the walk stack", func(t *testing.T) {
		r := newNamespaceResolver(root, zap.NewNop())
		first, _ := r.resolveDecl(nested.ID)
		first[0] = "mutated"
		again, _ := r.resolveDecl(nested.ID)
		assert.Equal(t, []string{"A", "B"}, again)
	})
}

func TestResolveName(t *testing.T) {
	var b treeBuilder
	root := []decl.Decl{
		b.ns("first", b.class("Foo", false)),
		b.ns("second", b.class("Foo", false), &decl.Alias{ID: b.id(), Name: "Handle", Target: prim(decl.PrimInt)}),
		b.ns("outer", &decl.Class{ID: b.id(), Name: "Holder", Children: []decl.Decl{&decl.Enum{ID: b.id(), Name: "Mode"}}}),
		b.class("Top", false),
	}

	t.Run("first depth-first match wins for ambiguous names", func(t *testing.T) {
		r := newNamespaceResolver(root, zap.NewNop())
		got, ok := r.resolveName("Foo")
		require.True(t, ok)
		assert.Equal(t, []string{"first"}, got)
	})

	t.Run("aliases resolve like classes", func(t *testing.T) {
		r := newNamespaceResolver(root, zap.NewNop())
		got, ok := r.resolveName("Handle")
		require.True(t, ok)
		assert.Equal(t, []string{"second"}, got)
	})

	t.Run("types nested in classes report only namespaces", func(t *testing.T) {
		r := newNamespaceResolver(root, zap.NewNop())
		got, ok := r.resolveName("Mode")
		require.True(t, ok)
		assert.Equal(t, []string{"outer"}, got)

		scope, ok := r.resolveScope("Mode")
		require.True(t, ok)
		assert.Equal(t, []string{"outer", "Holder"}, scope)
	})

	t.Run("global type resolves to an empty path", func(t *testing.T) {
		r := newNamespaceResolver(root, zap.NewNop())
		got, ok := r.resolveName("Top")
		require.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("unknown type warns once per unit", func(t *testing.T) {
		log, logs := observedLogger(t)
		r := newNamespaceResolver(root, log)
		for range 3 {
			got, ok := r.resolveName("Missing")
			assert.False(t, ok)
			assert.Empty(t, got)
		}
		warnings := logs.FilterMessage("type not found in unit")
		require.Equal(t, 1, warnings.Len())
		assert.Equal(t, "Missing", warnings.All()[0].ContextMap()["type"])
	})

	t.Run("lookups are memoized", func(t *testing.T) {
		r := newNamespaceResolver(root, zap.NewNop())
		_, _ = r.resolveName("Foo")
		require.Contains(t, r.names, "Foo")
		r.root = nil
		got, ok := r.resolveName("Foo")
		require.True(t, ok)
		assert.Equal(t, []string{"first"}, got)
	})
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		typ  decl.Type
		want string
	}{
		{"named", named("Foo"), "Foo"},
		{"qualified spelling uses the lookup name", &decl.Named{Name: "Foo", Spelling: "a::Foo"}, "Foo"},
		{"wrappers are stripped", &decl.Pointer{Elem: constRef(named("Bar"))}, "Bar"},
		{"primitive", prim(decl.PrimDouble), "double"},
		{"unexposed", &decl.Unexposed{Spelling: "std::vector<int>"}, "std::vector<int>"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, baseName(tt.typ))
		})
	}
}
