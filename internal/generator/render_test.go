package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderClass(t *testing.T) {
	t.Run("class without methods dispatches to the default branch only", func(t *testing.T) {
		out, err := execute(tmplClass, classModel{Name: "Idle"})
		require.NoError(t, err)
		want := `typedef void* IdleHandle;
inline IdleHandle Idle_Create() { return reinterpret_cast<IdleHandle>(new Idle()); }
inline void Idle_Destroy(IdleHandle handle) { delete reinterpret_cast<Idle*>(handle); }
inline void Idle_Call(IdleHandle handle, uint32_t methodID, void* param) {
    auto* instance = reinterpret_cast<Idle*>(handle);
    (void)instance;
    (void)param;
    switch (methodID) {
        default:
            break;
    }
}
`
		assert.Equal(t, want, string(out))
	})

	t.Run("namespaces open outer to inner and close inner to outer", func(t *testing.T) {
		out, err := execute(tmplClass, classModel{Name: "Node", Namespaces: []string{"scene", "graph"}})
		require.NoError(t, err)
		text := string(out)
		assert.True(t, strings.HasPrefix(text, "namespace scene {\nnamespace graph {\ntypedef void* NodeHandle;\n"))
		assert.True(t, strings.HasSuffix(text, "}\n} // namespace graph\n} // namespace scene\n"))
	})

	t.Run("methods without parameters ignore the parameter block", func(t *testing.T) {
		out, err := execute(tmplClass, classModel{Name: "Lamp", Methods: []methodModel{
			{ID: 0, Name: "On", Ident: "On"},
			{ID: 1, Name: "Off", Ident: "Off"},
		}})
		require.NoError(t, err)
		want := `typedef void* LampHandle;
inline LampHandle Lamp_Create() { return reinterpret_cast<LampHandle>(new Lamp()); }
inline void Lamp_Destroy(LampHandle handle) { delete reinterpret_cast<Lamp*>(handle); }
inline void Lamp_Call(LampHandle handle, uint32_t methodID, void* param) {
    auto* instance = reinterpret_cast<Lamp*>(handle);
    (void)param;
    switch (methodID) {
        case 0:
            instance->On();
            break;
        case 1:
            instance->Off();
            break;
        default:
            break;
    }
}
`
		assert.Equal(t, want, string(out))
	})

	t.Run("parameters are unpacked from a tuple in declared order", func(t *testing.T) {
		out, err := execute(tmplClass, classModel{Name: "Body", Methods: []methodModel{{
			ID:    3,
			Name:  "Push",
			Ident: "Push",
			Params: []paramModel{
				{Name: "force", Type: "const phys::Vec3&"},
				{Name: "dt", Type: "double"},
			},
		}}})
		require.NoError(t, err)
		want := `        case 3: {
            using ArgsType_Push_3 = std::tuple<const phys::Vec3&, double>;
            auto* args_Push_3 = reinterpret_cast<ArgsType_Push_3*>(param);
            std::apply([&](auto&&... args) { instance->Push(std::forward<decltype(args)>(args)...); }, std::move(*args_Push_3));
            break;
        }
        default:
            break;
`
		assert.Contains(t, string(out), want)
		assert.NotContains(t, string(out), "(void)param;")
	})

	t.Run("rvalue reference parameters bind to the moved block", func(t *testing.T) {
		out, err := execute(tmplClass, classModel{Name: "Queue", Methods: []methodModel{{
			ID:     0,
			Name:   "Take",
			Ident:  "Take",
			Params: []paramModel{{Name: "item", Type: "job::Item&&"}},
		}}})
		require.NoError(t, err)
		assert.Contains(t, string(out), "using ArgsType_Take_0 = std::tuple<job::Item&&>;")
		assert.Contains(t, string(out), "}, std::move(*args_Take_0));")
	})

	t.Run("static methods are called through the class", func(t *testing.T) {
		out, err := execute(tmplClass, classModel{Name: "Clock", Methods: []methodModel{
			{ID: 0, Class: "Clock", Name: "Now", Ident: "Now", Static: true},
			{ID: 1, Class: "Clock", Name: "Sleep", Ident: "Sleep", Static: true, Params: []paramModel{{Name: "ms", Type: "int"}}},
		}})
		require.NoError(t, err)
		text := string(out)
		assert.Contains(t, text, "        case 0:\n            Clock::Now();\n")
		assert.Contains(t, text, "{ Clock::Sleep(std::forward<decltype(args)>(args)...); }")
		assert.NotContains(t, text, "instance->")
		assert.Contains(t, text, "    (void)instance;\n", "no branch reads the instance")
		assert.NotContains(t, text, "(void)param;")
	})
}

func TestRenderUnit(t *testing.T) {
	m := unitModel{
		Source:      "impact/a.h",
		Include:     "impact/a.h",
		GeneratedAt: "2024-01-02 03:04",
		Classes:     []classModel{{Name: "A"}, {Name: "B"}},
	}
	out, err := renderUnit(m)
	require.NoError(t, err)
	text := string(out)

	lines := strings.Split(text, "\n")
	assert.Equal(t, []string{
		"// THIS IS GENERATED CODE DO NOT EDIT DIRECTLY",
		"// FILE USED FOR GENERATION: impact/a.h",
		"// GENERATION DATE: 2024-01-02 03:04",
		"// clang-format off",
		"// NOLINTBEGIN",
		"#pragma once",
		"",
		`#include "impact/a.h"`,
	}, lines[:8])
	assert.Less(t, strings.Index(text, "typedef void* AHandle;"), strings.Index(text, "typedef void* BHandle;"))
	assert.True(t, strings.HasSuffix(text, "}\n\n} // extern \"C\"\n// NOLINTEND\n// clang-format on\n"))

	t.Run("output is deterministic", func(t *testing.T) {
		again, err := renderUnit(m)
		require.NoError(t, err)
		assert.Equal(t, out, again)
	})
}

func TestEnsureTemplates(t *testing.T) {
	require.NoError(t, ensureTemplates())
	for _, name := range []string{tmplFile, tmplClass, tmplMethod} {
		assert.NotNil(t, fileTmpl.Lookup(name), name)
	}
}
