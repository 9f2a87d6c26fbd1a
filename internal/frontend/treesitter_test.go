package frontend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/calumari/cppbridge/internal/decl"
)

const canvasHeader = `#pragma once
#include <cstdint>

namespace engine::render {

struct [[clang::annotate("bridge_class")]] Size {
    int w;
    int h;
};

class [[clang::annotate("bridge_class")]] Canvas {
public:
    Canvas();
    [[clang::annotate("bridge_func")]] void Clear();
    [[clang::annotate("bridge_func")]] void Resize(const Size& size, unsigned int scale);
    [[clang::annotate("bridge_func")]] void Blit(Size* target, float alpha);
    [[clang::annotate("bridge_func")]] void Rename(const char* const name, Size&& moved);
    [[clang::annotate("bridge_func")]] void Flush(void);
    void Hidden(int x);
private:
    [[clang::annotate("bridge_func")]] void Secret();
};

} // namespace engine::render
`

func parseSource(t *testing.T, src string) *decl.Unit {
	t.Helper()
	ts := NewTreeSitter(zaptest.NewLogger(t))
	unit, err := ts.ParseSource(context.Background(), "include/impact/canvas.h", []byte(src))
	require.NoError(t, err)
	return unit
}

func findClass(t *testing.T, decls []decl.Decl, name string) *decl.Class {
	t.Helper()
	var found *decl.Class
	var walk func([]decl.Decl)
	walk = func(ds []decl.Decl) {
		for _, d := range ds {
			if found != nil {
				return
			}
			switch d := d.(type) {
			case *decl.Namespace:
				walk(d.Children)
			case *decl.Class:
				if d.Name == name {
					found = d
					return
				}
				walk(d.Children)
			}
		}
	}
	walk(decls)
	require.NotNil(t, found, "class %s not found", name)
	return found
}

func findMethod(t *testing.T, c *decl.Class, name string) *decl.Function {
	t.Helper()
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	require.FailNow(t, "method not found", name)
	return nil
}

func paramTypes(fn *decl.Function) []string {
	out := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = decl.Spelling(p.Type)
	}
	return out
}

func TestParseSource(t *testing.T) {
	unit := parseSource(t, canvasHeader)
	require.False(t, unit.HasErrors(), "%v", unit.Diagnostics)

	t.Run("nested namespace specifier opens one scope per segment", func(t *testing.T) {
		var outer *decl.Namespace
		for _, d := range unit.Root {
			if ns, ok := d.(*decl.Namespace); ok {
				outer = ns
			}
		}
		require.NotNil(t, outer)
		assert.Equal(t, "engine", outer.Name)
		require.Len(t, outer.Children, 1)
		inner, ok := outer.Children[0].(*decl.Namespace)
		require.True(t, ok)
		assert.Equal(t, "render", inner.Name)
	})

	t.Run("class attributes carry annotate markers", func(t *testing.T) {
		size := findClass(t, unit.Root, "Size")
		assert.True(t, size.Struct)
		assert.True(t, decl.HasAnnotation(size.Attributes, "bridge_class"))

		canvas := findClass(t, unit.Root, "Canvas")
		assert.False(t, canvas.Struct)
		assert.True(t, decl.HasAnnotation(canvas.Attributes, "bridge_class"))
		assert.False(t, canvas.FromInclude)
	})

	t.Run("methods keep declaration order and access", func(t *testing.T) {
		canvas := findClass(t, unit.Root, "Canvas")
		var names []string
		for _, m := range canvas.Methods {
			names = append(names, m.Name)
		}
		assert.Equal(t, []string{"Canvas", "Clear", "Resize", "Blit", "Rename", "Flush", "Hidden", "Secret"}, names)

		assert.Equal(t, decl.FuncConstructor, findMethod(t, canvas, "Canvas").Kind)
		assert.Equal(t, decl.AccessPublic, findMethod(t, canvas, "Clear").Access)
		assert.Equal(t, decl.AccessPrivate, findMethod(t, canvas, "Secret").Access)
		assert.True(t, decl.HasAnnotation(findMethod(t, canvas, "Resize").Attributes, "bridge_func"))
		assert.False(t, decl.HasAnnotation(findMethod(t, canvas, "Hidden").Attributes, "bridge_func"))
	})

	t.Run("parameter types are modelled structurally", func(t *testing.T) {
		canvas := findClass(t, unit.Root, "Canvas")

		resize := findMethod(t, canvas, "Resize")
		assert.Equal(t, []string{"const Size&", "unsigned int"}, paramTypes(resize))
		assert.Equal(t, "size", resize.Params[0].Name)
		ref, ok := resize.Params[0].Type.(*decl.Reference)
		require.True(t, ok)
		q, ok := ref.Elem.(*decl.Qualified)
		require.True(t, ok)
		assert.True(t, q.Const)
		assert.Equal(t, &decl.Named{Name: "Size"}, q.Elem)

		assert.Equal(t, []string{"Size*", "float"}, paramTypes(findMethod(t, canvas, "Blit")))
		assert.Equal(t, []string{"const char* const", "Size&&"}, paramTypes(findMethod(t, canvas, "Rename")))
		assert.Empty(t, findMethod(t, canvas, "Flush").Params)
	})

	t.Run("declaration IDs are unique and non-zero", func(t *testing.T) {
		seen := map[decl.ID]bool{}
		var walk func([]decl.Decl)
		walk = func(ds []decl.Decl) {
			for _, d := range ds {
				require.NotZero(t, d.DeclID())
				require.False(t, seen[d.DeclID()], "duplicate id %d", d.DeclID())
				seen[d.DeclID()] = true
				switch d := d.(type) {
				case *decl.Namespace:
					walk(d.Children)
				case *decl.Class:
					walk(d.Children)
					for _, m := range d.Methods {
						walk([]decl.Decl{m})
					}
				}
			}
		}
		walk(unit.Root)
		assert.NotEmpty(t, seen)
	})
}

func TestParseSourceAliases(t *testing.T) {
	unit := parseSource(t, `
typedef unsigned int Handle;
using Id = long long;
enum class Mode { Fast, Slow };
`)
	require.False(t, unit.HasErrors(), "%v", unit.Diagnostics)

	aliases := map[string]string{}
	var enums []string
	for _, d := range unit.Root {
		switch d := d.(type) {
		case *decl.Alias:
			aliases[d.Name] = decl.Spelling(d.Target)
		case *decl.Enum:
			enums = append(enums, d.Name)
		}
	}
	assert.Equal(t, map[string]string{"Handle": "unsigned int", "Id": "long long"}, aliases)
	assert.Equal(t, []string{"Mode"}, enums)
}

func TestParseSourceDiagnostics(t *testing.T) {
	t.Run("syntax errors become diagnostics", func(t *testing.T) {
		unit := parseSource(t, "class Broken {\n    void f( ;\n};\n")
		require.True(t, unit.HasErrors())
		for _, d := range unit.Diagnostics {
			assert.Equal(t, "include/impact/canvas.h", d.Path)
			assert.GreaterOrEqual(t, d.Line, 1)
			assert.NotEmpty(t, d.Message)
		}
	})

	t.Run("clean source has none", func(t *testing.T) {
		unit := parseSource(t, "class Fine { public: void f(int a); };\n")
		assert.False(t, unit.HasErrors())
	})
}

func TestParseMarkerMacros(t *testing.T) {
	unit := parseSource(t, `#pragma once
#define BRIDGE_CLASS [[clang::annotate("bridge_class")]]
#define BRIDGE_FUNC [[clang::annotate("bridge_func")]]

class BRIDGE_CLASS Widget {
public:
    BRIDGE_FUNC void Run(int times);
};
`)
	require.False(t, unit.HasErrors(), "%v", unit.Diagnostics)
	widget := findClass(t, unit.Root, "Widget")
	assert.True(t, decl.HasAnnotation(widget.Attributes, "bridge_class"))
	assert.True(t, decl.HasAnnotation(findMethod(t, widget, "Run").Attributes, "bridge_func"))
}

func TestParseIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.h"), []byte(`#pragma once
namespace geo {
struct Point { int x; int y; };
}
`), 0o644))
	mainPath := filepath.Join(dir, "shapes.h")
	require.NoError(t, os.WriteFile(mainPath, []byte(`#pragma once
#include "types.h"
#include "types.h"
#include "missing.h"

class [[clang::annotate("bridge_class")]] Shape {
public:
    [[clang::annotate("bridge_func")]] void Move(const geo::Point& to);
};
`), 0o644))

	unit, err := NewTreeSitter(zaptest.NewLogger(t)).Parse(context.Background(), mainPath)
	require.NoError(t, err)
	require.False(t, unit.HasErrors(), "%v", unit.Diagnostics)

	point := findClass(t, unit.Root, "Point")
	assert.True(t, point.FromInclude)
	shape := findClass(t, unit.Root, "Shape")
	assert.False(t, shape.FromInclude)

	var points int
	for _, d := range unit.Root {
		if ns, ok := d.(*decl.Namespace); ok && ns.Name == "geo" {
			points++
		}
	}
	assert.Equal(t, 1, points, "an include is expanded once per unit")

	move := findMethod(t, shape, "Move")
	require.Len(t, move.Params, 1)
	assert.Equal(t, "const geo::Point&", decl.Spelling(move.Params[0].Type))
	named := move.Params[0].Type.(*decl.Reference).Elem.(*decl.Qualified).Elem.(*decl.Named)
	assert.Equal(t, "Point", named.Name)
}

func TestParseMissingFile(t *testing.T) {
	_, err := NewTreeSitter(nil).Parse(context.Background(), filepath.Join(t.TempDir(), "nope.h"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseStaticMembers(t *testing.T) {
	unit := parseSource(t, `namespace app {
class [[clang::annotate("bridge_class")]] Registry : public Base {
public:
    [[clang::annotate("bridge_func")]] static int Count();
    [[clang::annotate("bridge_func")]] void Add(int id);
};
}
`)
	registry := findClass(t, unit.Root, "Registry")
	assert.True(t, findMethod(t, registry, "Count").Static)
	assert.False(t, findMethod(t, registry, "Add").Static)
}
