package generator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/decl"
	"github.com/calumari/cppbridge/internal/manifest"
)

// This file houses the export model handed from the model builder to the
// templates, plus the configuration and collaborator interfaces.

const (
	DefaultSourceRoot   = "include/impact"
	DefaultSuffix       = "_bridge"
	DefaultClassMarker  = "bridge_class"
	DefaultMethodMarker = "bridge_func"

	generationDateLayout = "2006-01-02 15:04"
)

// Parser turns a header into a declaration tree.
type Parser interface {
	Parse(ctx context.Context, path string) (*decl.Unit, error)
}

// Manifest remembers which header content produced which output.
type Manifest interface {
	Get(header string) (manifest.Entry, bool, error)
	Put(header string, e manifest.Entry) error
	Delete(header string) error
	Headers() ([]string, error)
}

// Config holds generation settings for the bridge generator.
type Config struct {
	OutputDir    string   // root of the generated tree (required)
	IncludeDirs  []string // passed to the default front end for #include lookup
	Headers      []string // header paths or doublestar patterns
	SourceRoot   string   // known include root stripped from output paths
	Suffix       string   // appended to the output file stem
	ClassMarker  string   // annotate argument selecting classes
	MethodMarker string   // annotate argument selecting methods
	Workers      int      // parallel units; <= 0 means runtime.NumCPU()
	Check        bool     // compare against existing outputs instead of writing
	Force        bool     // ignore the manifest
	Version      string   // bridgegen build version, part of the manifest fingerprint

	Parser   Parser           // nil selects the tree-sitter front end
	Manifest Manifest         // optional
	Logger   *zap.Logger      // nil means no logging
	Now      func() time.Time // clock for the header timestamp
}

func (c Config) withDefaults() Config {
	if c.SourceRoot == "" {
		c.SourceRoot = DefaultSourceRoot
	}
	if c.Suffix == "" {
		c.Suffix = DefaultSuffix
	}
	if c.ClassMarker == "" {
		c.ClassMarker = DefaultClassMarker
	}
	if c.MethodMarker == "" {
		c.MethodMarker = DefaultMethodMarker
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// fingerprint covers every setting that changes emitted bytes besides the
// header itself.
func (c Config) fingerprint() string {
	return strings.Join([]string{c.Version, c.SourceRoot, c.Suffix, c.ClassMarker, c.MethodMarker}, "\x00")
}

// unitModel is the root template model for a generated file.
type unitModel struct {
	Source      string // project-relative header label for the comment block
	Include     string // include path of the original header
	GeneratedAt string
	Classes     []classModel
}

// classModel describes one exported class.
type classModel struct {
	Name       string
	Namespaces []string // outer to inner
	Methods    []methodModel
}

// ReverseNamespaces returns the namespaces inner to outer, the order their
// scopes are closed in.
func (c classModel) ReverseNamespaces() []string {
	r := slices.Clone(c.Namespaces)
	slices.Reverse(r)
	return r
}

// UsesInstance reports whether any dispatch branch calls through the handle.
func (c classModel) UsesInstance() bool {
	return slices.ContainsFunc(c.Methods, func(m methodModel) bool { return !m.Static })
}

// UsesParam reports whether any dispatch branch reads the parameter block.
func (c classModel) UsesParam() bool {
	for _, m := range c.Methods {
		if len(m.Params) > 0 {
			return true
		}
	}
	return false
}

// methodModel captures a single exported method.
type methodModel struct {
	ID     int
	Class  string
	Name   string
	Ident  string // Name made safe for use inside identifiers
	Static bool
	Params []paramModel
}

// Callee is the expression a dispatch branch calls. Static members are
// reached through the class, everything else through the instance.
func (m methodModel) Callee() string {
	if m.Static {
		return m.Class + "::" + m.Name
	}
	return "instance->" + m.Name
}

func (m methodModel) ArgsType() string { return fmt.Sprintf("ArgsType_%s_%d", m.Ident, m.ID) }
func (m methodModel) ArgsVar() string  { return fmt.Sprintf("args_%s_%d", m.Ident, m.ID) }

// TupleTypes lists the qualified parameter types in declared order.
func (m methodModel) TupleTypes() string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return strings.Join(types, ", ")
}

// paramModel is one method parameter.
type paramModel struct {
	Name       string
	Type       string   // qualified spelling
	Namespaces []string // namespace chain of the underlying user type; nil otherwise
}

// headerInfo carries the path facts of one input.
type headerInfo struct {
	Path    string
	Include string
	Output  string
}
