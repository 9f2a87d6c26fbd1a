package generator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/decl"
)

// modelBuilder holds per-unit state while building export models. It is
// created for one unit and discarded with it.
type modelBuilder struct {
	ns   *namespaceResolver
	qual *typeQualifier
	log  *zap.Logger
}

func newModelBuilder(unit *decl.Unit, log *zap.Logger) *modelBuilder {
	ns := newNamespaceResolver(unit.Root, log)
	return &modelBuilder{ns: ns, qual: &typeQualifier{ns: ns}, log: log}
}

// buildUnitModel assembles the complete model for one translation unit. A
// unit with no exported classes yields a model with an empty class list.
func buildUnitModel(unit *decl.Unit, info headerInfo, cfg Config) unitModel {
	b := newModelBuilder(unit, cfg.Logger.With(zap.String("header", info.Path)))
	selected := discoverClasses(unit.Root, cfg.ClassMarker, cfg.MethodMarker, b.log)
	classes := make([]classModel, 0, len(selected))
	for _, ec := range selected {
		classes = append(classes, b.buildClassModel(ec))
	}
	return unitModel{
		Source:      info.Include,
		Include:     info.Include,
		GeneratedAt: cfg.Now().Format(generationDateLayout),
		Classes:     classes,
	}
}

// buildClassModel resolves the class namespace chain and numbers its methods
// in declaration order. Resolution failures degrade to the global scope.
func (b *modelBuilder) buildClassModel(ec exportedClass) classModel {
	log := b.log.With(zap.String("class", ec.Class.Name))
	namespaces, _ := b.ns.resolveDecl(ec.Class.ID)
	methods := make([]methodModel, len(ec.Methods))
	for i, m := range ec.Methods {
		methods[i] = b.buildMethodModel(i, ec.Class.Name, m, log)
	}
	log.Debug("built class model", zap.Int("methods", len(methods)))
	return classModel{Name: ec.Class.Name, Namespaces: namespaces, Methods: methods}
}

func (b *modelBuilder) buildMethodModel(id int, class string, fn *decl.Function, log *zap.Logger) methodModel {
	if fn.Variadic {
		log.Warn("variadic arguments are not forwarded", zap.String("method", fn.Name))
	}
	params := make([]paramModel, len(fn.Params))
	for i, p := range fn.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("p%d", i)
		}
		params[i] = paramModel{
			Name:       name,
			Type:       b.qual.qualify(p.Type),
			Namespaces: b.qual.namespacesOf(p.Type),
		}
	}
	return methodModel{
		ID:     id,
		Class:  class,
		Name:   fn.Name,
		Ident:  sanitizeIdent(fn.Name),
		Static: fn.Static,
		Params: params,
	}
}
