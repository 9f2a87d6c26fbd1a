package frontend

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/calumari/cppbridge/internal/decl"
)

// builder converts the syntax tree of one header into declarations.
type builder struct {
	p           *parse
	path        string
	src         []byte
	fromInclude bool
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

// items converts the declarations directly inside a translation unit,
// namespace body or linkage block.
func (b *builder) items(n *sitter.Node) []decl.Decl {
	var out []decl.Decl
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, b.item(n.NamedChild(i), false)...)
	}
	return out
}

func (b *builder) item(n *sitter.Node, template bool) []decl.Decl {
	switch n.Type() {
	case "namespace_definition":
		return []decl.Decl{b.namespace(n)}
	case "class_specifier", "struct_specifier":
		if c := b.class(n, template); c != nil {
			return []decl.Decl{c}
		}
	case "enum_specifier":
		if e := b.enum(n); e != nil {
			return []decl.Decl{e}
		}
	case "declaration", "function_definition":
		return b.declaration(n, template)
	case "template_declaration":
		var out []decl.Decl
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "template_parameter_list" {
				continue
			}
			out = append(out, b.item(c, true)...)
		}
		return out
	case "type_definition":
		return b.typedef(n)
	case "alias_declaration":
		return []decl.Decl{b.alias(n)}
	case "linkage_specification":
		if body := n.ChildByFieldName("body"); body != nil {
			if body.Type() == "declaration_list" {
				return b.items(body)
			}
			return b.item(body, template)
		}
	case "declaration_list", "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		return b.items(n)
	case "preproc_include":
		return b.includeDirective(n)
	}
	return nil
}

func (b *builder) includeDirective(n *sitter.Node) []decl.Decl {
	path := n.ChildByFieldName("path")
	if path == nil || path.Type() != "string_literal" {
		return nil
	}
	return b.p.include(b.path, unquote(b.text(path)))
}

func (b *builder) namespace(n *sitter.Node) decl.Decl {
	var names []string
	if name := n.ChildByFieldName("name"); name != nil {
		for _, part := range strings.Split(b.text(name), "::") {
			if part = strings.TrimSpace(part); part != "" && part != "inline" {
				names = append(names, strings.TrimPrefix(part, "inline "))
			}
		}
	}
	if len(names) == 0 {
		ns := &decl.Namespace{ID: b.p.id()}
		ns.Children = b.namespaceBody(n)
		return ns
	}
	// namespace A::B { } opens one scope per segment
	outer := &decl.Namespace{ID: b.p.id(), Name: names[0]}
	inner := outer
	for _, name := range names[1:] {
		next := &decl.Namespace{ID: b.p.id(), Name: name}
		inner.Children = []decl.Decl{next}
		inner = next
	}
	inner.Children = b.namespaceBody(n)
	return outer
}

func (b *builder) namespaceBody(n *sitter.Node) []decl.Decl {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	return b.items(body)
}

// class converts a class or struct specifier. Forward declarations and
// elaborated type uses have no body and produce nothing.
func (b *builder) class(n *sitter.Node, template bool) *decl.Class {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	c := &decl.Class{
		ID:          b.p.id(),
		Name:        lastSegment(b.text(n.ChildByFieldName("name"))),
		Struct:      n.Type() == "struct_specifier",
		Attributes:  b.attributes(n),
		Template:    template,
		FromInclude: b.fromInclude,
	}
	access := decl.AccessPrivate
	if c.Struct {
		access = decl.AccessPublic
	}
	b.members(c, body, &access, false)
	return c
}

// members fills c from a field declaration list. access carries across
// preprocessor blocks.
func (b *builder) members(c *decl.Class, list *sitter.Node, access *decl.Access, template bool) {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		b.member(c, list.NamedChild(i), access, template)
	}
}

func (b *builder) member(c *decl.Class, n *sitter.Node, access *decl.Access, template bool) {
	switch n.Type() {
	case "access_specifier":
		*access = parseAccess(b.text(n))
	case "field_declaration", "declaration", "function_definition":
		if t := n.ChildByFieldName("type"); t != nil {
			c.Children = append(c.Children, b.item(t, template)...)
		}
		if fn := b.function(n, c.Name, *access, template); fn != nil {
			c.Methods = append(c.Methods, fn)
		}
	case "template_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if inner := n.NamedChild(i); inner.Type() != "template_parameter_list" {
				b.member(c, inner, access, true)
			}
		}
	case "operator_cast_definition", "operator_cast_declaration":
		if fn := b.conversion(n, *access, template); fn != nil {
			c.Methods = append(c.Methods, fn)
		}
	case "type_definition":
		c.Children = append(c.Children, b.typedef(n)...)
	case "alias_declaration":
		c.Children = append(c.Children, b.alias(n))
	case "enum_specifier", "class_specifier", "struct_specifier":
		c.Children = append(c.Children, b.item(n, template)...)
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
		b.members(c, n, access, template)
	}
}

func parseAccess(s string) decl.Access {
	switch strings.TrimSuffix(strings.TrimSpace(s), ":") {
	case "protected":
		return decl.AccessProtected
	case "private":
		return decl.AccessPrivate
	default:
		return decl.AccessPublic
	}
}

func (b *builder) enum(n *sitter.Node) decl.Decl {
	name := n.ChildByFieldName("name")
	if name == nil || n.ChildByFieldName("body") == nil {
		return nil
	}
	return &decl.Enum{ID: b.p.id(), Name: lastSegment(b.text(name))}
}

// declaration handles namespace scope declarations: embedded class
// definitions and free functions.
func (b *builder) declaration(n *sitter.Node, template bool) []decl.Decl {
	var out []decl.Decl
	if t := n.ChildByFieldName("type"); t != nil {
		out = append(out, b.item(t, template)...)
	}
	if fn := b.function(n, "", decl.AccessPublic, template); fn != nil {
		out = append(out, fn)
	}
	return out
}

// function converts a declaration whose declarator chain ends in a function
// declarator. className selects constructor detection.
func (b *builder) function(n *sitter.Node, className string, access decl.Access, template bool) *decl.Function {
	d := n.ChildByFieldName("declarator")
	if d == nil {
		return nil
	}
	ret, fd := b.declarator(b.baseType(n), d)
	if fd == nil || fd.Type() != "function_declarator" {
		return nil
	}
	inner := fd.ChildByFieldName("declarator")
	if inner == nil || inner.Type() == "parenthesized_declarator" {
		// function pointer variable
		return nil
	}
	id := b.p.id()
	name, kind := b.functionName(inner, className)
	fn := &decl.Function{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Access:     access,
		Return:     ret,
		Attributes: append(b.attributes(n), b.attributes(fd)...),
		Static:     b.hasStorage(n, "static"),
		Template:   template,
	}
	if kind == decl.FuncConstructor || kind == decl.FuncDestructor {
		fn.Return = nil
	}
	fn.Params, fn.Variadic = b.parameters(fd.ChildByFieldName("parameters"))
	return fn
}

func (b *builder) conversion(n *sitter.Node, access decl.Access, template bool) *decl.Function {
	d := n.ChildByFieldName("declarator")
	if d == nil {
		return nil
	}
	name := "operator " + strings.TrimSpace(b.text(d.ChildByFieldName("type")))
	return &decl.Function{
		ID:         b.p.id(),
		Name:       name,
		Kind:       decl.FuncConversion,
		Access:     access,
		Attributes: b.attributes(n),
		Template:   template,
	}
}

func (b *builder) functionName(n *sitter.Node, className string) (string, decl.FunctionKind) {
	if n == nil {
		return "", decl.FuncMethod
	}
	switch n.Type() {
	case "destructor_name":
		return strings.Join(strings.Fields(b.text(n)), ""), decl.FuncDestructor
	case "operator_name":
		return strings.Join(strings.Fields(b.text(n)), ""), decl.FuncOperator
	case "qualified_identifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return b.functionName(name, className)
		}
	case "template_function":
		if name := n.ChildByFieldName("name"); name != nil {
			return b.functionName(name, className)
		}
	}
	name := b.text(n)
	if className != "" && name == className {
		return name, decl.FuncConstructor
	}
	return name, decl.FuncMethod
}

func (b *builder) hasStorage(n *sitter.Node, keyword string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "storage_class_specifier" && b.text(c) == keyword {
			return true
		}
	}
	return false
}

func (b *builder) parameters(list *sitter.Node) ([]decl.Parameter, bool) {
	if list == nil {
		return nil, false
	}
	var params []decl.Parameter
	variadic := false
	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		switch c.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
			t := b.baseType(c)
			name := ""
			if d := c.ChildByFieldName("declarator"); d != nil {
				var terminal *sitter.Node
				t, terminal = b.declarator(t, d)
				switch {
				case terminal == nil:
				case terminal.Type() == "identifier":
					name = b.text(terminal)
				case terminal.Type() == "function_declarator":
					// function pointers are passed through as written
					t = &decl.Unexposed{Spelling: collapse(b.text(c))}
				}
			}
			params = append(params, decl.Parameter{Name: name, Type: t})
		case "variadic_parameter", "...":
			variadic = true
		}
	}
	// f(void) declares no parameters
	if len(params) == 1 && params[0].Name == "" {
		if prim, ok := params[0].Type.(*decl.Primitive); ok && prim.Kind == decl.PrimVoid {
			params = nil
		}
	}
	return params, variadic
}

func (b *builder) typedef(n *sitter.Node) []decl.Decl {
	var out []decl.Decl
	t := n.ChildByFieldName("type")
	if t != nil {
		out = append(out, b.item(t, false)...)
	}
	if d := n.ChildByFieldName("declarator"); d != nil {
		target, terminal := b.declarator(b.baseType(n), d)
		if terminal != nil && terminal.Type() == "type_identifier" {
			out = append(out, &decl.Alias{ID: b.p.id(), Name: b.text(terminal), Target: target})
		}
	}
	return out
}

func (b *builder) alias(n *sitter.Node) decl.Decl {
	a := &decl.Alias{ID: b.p.id(), Name: b.text(n.ChildByFieldName("name"))}
	if td := n.ChildByFieldName("type"); td != nil {
		a.Target = b.typeDescriptor(td)
	}
	return a
}

// attributes collects [[...]] and __attribute__((...)) attributes attached
// directly to n.
func (b *builder) attributes(n *sitter.Node) []decl.Attribute {
	var out []decl.Attribute
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "attribute_declaration":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if a := c.NamedChild(j); a.Type() == "attribute" {
					out = append(out, b.attribute(a))
				}
			}
		case "attribute_specifier":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if args := c.NamedChild(j); args.Type() == "argument_list" {
					out = append(out, b.gnuAttributes(args)...)
				}
			}
		}
	}
	return out
}

func (b *builder) attribute(n *sitter.Node) decl.Attribute {
	name := b.text(n.ChildByFieldName("name"))
	if prefix := n.ChildByFieldName("prefix"); prefix != nil {
		name = b.text(prefix) + "::" + name
	}
	a := decl.Attribute{Name: name}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if args := n.NamedChild(i); args.Type() == "argument_list" {
			a.Args = b.stringArgs(args)
		}
	}
	return a
}

func (b *builder) gnuAttributes(list *sitter.Node) []decl.Attribute {
	var out []decl.Attribute
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		switch c.Type() {
		case "call_expression":
			a := decl.Attribute{Name: b.text(c.ChildByFieldName("function"))}
			if args := c.ChildByFieldName("arguments"); args != nil {
				a.Args = b.stringArgs(args)
			}
			out = append(out, a)
		case "identifier":
			out = append(out, decl.Attribute{Name: b.text(c)})
		case "parenthesized_expression", "argument_list":
			out = append(out, b.gnuAttributes(c)...)
		}
	}
	return out
}

func (b *builder) stringArgs(list *sitter.Node) []string {
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		if c := list.NamedChild(i); c.Type() == "string_literal" {
			out = append(out, unquote(b.text(c)))
		}
	}
	return out
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}

// lastSegment returns the final component of a possibly qualified name.
func lastSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}
