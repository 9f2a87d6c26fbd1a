package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/calumari/cppbridge/internal/decl"
)

// baseType reads the type specifier and the cv-qualifiers of a declaration,
// before any declarator is applied. Declarations without a type (constructors)
// yield nil.
func (b *builder) baseType(n *sitter.Node) decl.Type {
	spec := n.ChildByFieldName("type")
	if spec == nil {
		return nil
	}
	return b.qualified(n, b.typeSpecifier(spec))
}

// qualified wraps t in the const/volatile qualifiers found among n's direct
// children.
func (b *builder) qualified(n *sitter.Node, t decl.Type) decl.Type {
	var isConst, isVolatile bool
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "type_qualifier" {
			continue
		}
		switch b.text(c) {
		case "const":
			isConst = true
		case "volatile":
			isVolatile = true
		}
	}
	if !isConst && !isVolatile {
		return t
	}
	return &decl.Qualified{Elem: t, Const: isConst, Volatile: isVolatile}
}

func (b *builder) typeSpecifier(n *sitter.Node) decl.Type {
	text := collapse(b.text(n))
	switch n.Type() {
	case "primitive_type", "sized_type_specifier":
		if k, ok := decl.LookupPrimitive(text); ok {
			return &decl.Primitive{Kind: k}
		}
	case "type_identifier":
		return &decl.Named{Name: text}
	case "qualified_identifier", "nested_type_identifier":
		if !strings.ContainsAny(text, "<>") {
			if text == "std::nullptr_t" {
				return &decl.Primitive{Kind: decl.PrimNullptr}
			}
			return &decl.Named{Name: lastSegment(text), Spelling: text}
		}
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if name := n.ChildByFieldName("name"); name != nil {
			spelled := collapse(b.text(name))
			return &decl.Named{Name: lastSegment(spelled), Spelling: spelled}
		}
	}
	return &decl.Unexposed{Spelling: text}
}

// declarator applies a declarator chain to base, outermost first, and returns
// the resulting type and the node the chain ends in: a name, a function
// declarator, or nil for abstract declarators.
func (b *builder) declarator(base decl.Type, d *sitter.Node) (decl.Type, *sitter.Node) {
	t := base
	for d != nil {
		switch d.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			t = b.qualified(d, &decl.Pointer{Elem: t})
			d = d.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			rvalue := d.ChildCount() > 0 && d.Child(0).Type() == "&&"
			t = &decl.Reference{Elem: t, RValue: rvalue}
			d = firstNamed(d)
		case "array_declarator", "abstract_array_declarator":
			t = &decl.Pointer{Elem: t}
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			d = firstNamed(d)
		case "init_declarator":
			d = d.ChildByFieldName("declarator")
		case "attributed_declarator":
			d = firstNamed(d)
		default:
			return t, d
		}
	}
	return t, nil
}

// typeDescriptor converts the type of a using-alias.
func (b *builder) typeDescriptor(n *sitter.Node) decl.Type {
	t := b.baseType(n)
	if d := n.ChildByFieldName("declarator"); d != nil {
		t, _ = b.declarator(t, d)
	}
	return t
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
