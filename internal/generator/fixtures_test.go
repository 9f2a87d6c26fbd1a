package generator

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/calumari/cppbridge/internal/decl"
)

// treeBuilder hands out pre-order IDs the way a front end would.
type treeBuilder struct{ next decl.ID }

func (b *treeBuilder) id() decl.ID {
	b.next++
	return b.next
}

func (b *treeBuilder) ns(name string, children ...decl.Decl) *decl.Namespace {
	return &decl.Namespace{ID: b.id(), Name: name, Children: children}
}

func (b *treeBuilder) class(name string, annotated bool, methods ...*decl.Function) *decl.Class {
	c := &decl.Class{ID: b.id(), Name: name, Methods: methods}
	if annotated {
		c.Attributes = []decl.Attribute{{Name: "clang::annotate", Args: []string{DefaultClassMarker}}}
	}
	return c
}

func (b *treeBuilder) method(name string, annotated bool, params ...decl.Parameter) *decl.Function {
	fn := &decl.Function{ID: b.id(), Name: name, Params: params}
	if annotated {
		fn.Attributes = []decl.Attribute{{Name: "annotate", Args: []string{DefaultMethodMarker}}}
	}
	return fn
}

func param(name string, t decl.Type) decl.Parameter { return decl.Parameter{Name: name, Type: t} }

func named(name string) *decl.Named { return &decl.Named{Name: name} }

func prim(k decl.PrimitiveKind) *decl.Primitive { return &decl.Primitive{Kind: k} }

func constRef(t decl.Type) *decl.Reference {
	return &decl.Reference{Elem: &decl.Qualified{Elem: t, Const: true}}
}

func observedLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}
