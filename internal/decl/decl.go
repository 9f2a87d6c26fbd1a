// Package decl is the declaration tree produced by a C++ front end and
// consumed by the bridge generator.
//
// Declarations and types are closed sets of variants. Consumers switch over
// the concrete pointer types and must keep a default case for anything they
// do not model.
package decl

import (
	"fmt"
	"slices"
)

// ID identifies a declaration within one unit. Front ends assign IDs in
// pre-order starting at 1; zero means "no identity".
type ID uint32

// Decl is a node of the declaration tree.
type Decl interface {
	DeclID() ID
	isDecl()
}

// Access is the C++ member access level.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "public"
	}
}

// FunctionKind separates ordinary methods from special members.
type FunctionKind int

const (
	FuncMethod FunctionKind = iota
	FuncConstructor
	FuncDestructor
	FuncOperator
	FuncConversion
)

func (k FunctionKind) String() string {
	switch k {
	case FuncConstructor:
		return "constructor"
	case FuncDestructor:
		return "destructor"
	case FuncOperator:
		return "operator"
	case FuncConversion:
		return "conversion"
	default:
		return "method"
	}
}

// Attribute is a declaration attribute such as [[clang::annotate("x")]].
type Attribute struct {
	Name string   // as written, e.g. "clang::annotate"
	Args []string // string literal arguments without quotes
}

// Annotates reports whether the attribute is an annotate attribute carrying
// marker among its arguments.
func (a Attribute) Annotates(marker string) bool {
	switch a.Name {
	case "annotate", "clang::annotate", "gnu::annotate":
	default:
		return false
	}
	return slices.Contains(a.Args, marker)
}

// HasAnnotation reports whether any attribute annotates marker.
func HasAnnotation(attrs []Attribute, marker string) bool {
	for _, a := range attrs {
		if a.Annotates(marker) {
			return true
		}
	}
	return false
}

// Namespace is a namespace scope. Name is empty for anonymous namespaces.
type Namespace struct {
	ID       ID
	Name     string
	Children []Decl
}

// Class is a class or struct definition.
type Class struct {
	ID          ID
	Name        string
	Struct      bool
	Attributes  []Attribute
	Methods     []*Function // member functions in declaration order
	Children    []Decl      // nested classes, aliases and enums
	Template    bool
	FromInclude bool // declared in a header pulled in by #include
}

// Function is a free function or member function declaration.
type Function struct {
	ID         ID
	Name       string
	Kind       FunctionKind
	Access     Access
	Params     []Parameter
	Return     Type
	Attributes []Attribute
	Static     bool
	Variadic   bool
	Template   bool
}

// Parameter is a single function parameter. Name may be empty.
type Parameter struct {
	Name string
	Type Type
}

// Alias is a typedef or using-alias.
type Alias struct {
	ID     ID
	Name   string
	Target Type
}

// Enum is an enumeration; it takes part in type name lookup.
type Enum struct {
	ID   ID
	Name string
}

func (n *Namespace) DeclID() ID { return n.ID }
func (c *Class) DeclID() ID     { return c.ID }
func (f *Function) DeclID() ID  { return f.ID }
func (a *Alias) DeclID() ID     { return a.ID }
func (e *Enum) DeclID() ID      { return e.ID }

func (*Namespace) isDecl() {}
func (*Class) isDecl()     {}
func (*Function) isDecl()  {}
func (*Alias) isDecl()     {}
func (*Enum) isDecl()      {}

// Diagnostic is a front-end parse error.
type Diagnostic struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Column, d.Message)
}

// Unit is one parsed translation unit.
type Unit struct {
	Path        string
	Root        []Decl
	Diagnostics []Diagnostic
}

// HasErrors reports whether the front end produced any diagnostics.
func (u *Unit) HasErrors() bool { return len(u.Diagnostics) > 0 }
