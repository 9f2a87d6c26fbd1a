package decl

import "strings"

// Type is a type reference as written in a declaration.
type Type interface {
	// String returns the type's native spelling without namespace
	// resolution.
	String() string
	isType()
}

// Pointer is T*.
type Pointer struct{ Elem Type }

// Reference is T& or, when RValue is set, T&&.
type Reference struct {
	Elem   Type
	RValue bool
}

// Qualified is a const and/or volatile T.
type Qualified struct {
	Elem     Type
	Const    bool
	Volatile bool
}

// Primitive is a builtin type.
type Primitive struct{ Kind PrimitiveKind }

// Named is a user-defined type: class, struct, enum or alias. Name is the
// unqualified identifier used for lookup, Spelling the text as written.
type Named struct {
	Name     string
	Spelling string
}

// Unexposed is a type the front end does not model (template
// specializations, auto, function pointers).
type Unexposed struct{ Spelling string }

func (*Pointer) isType()   {}
func (*Reference) isType() {}
func (*Qualified) isType() {}
func (*Primitive) isType() {}
func (*Named) isType()     {}
func (*Unexposed) isType() {}

func (t *Pointer) String() string { return Spelling(t.Elem) + "*" }

func (t *Reference) String() string {
	if t.RValue {
		return Spelling(t.Elem) + "&&"
	}
	return Spelling(t.Elem) + "&"
}

func (t *Qualified) String() string {
	q := Qualifiers(t.Const, t.Volatile)
	if q == "" {
		return Spelling(t.Elem)
	}
	if _, ok := t.Elem.(*Pointer); ok {
		return Spelling(t.Elem) + " " + q
	}
	return q + " " + Spelling(t.Elem)
}

func (t *Primitive) String() string { return t.Kind.String() }

func (t *Named) String() string {
	if t.Spelling != "" {
		return t.Spelling
	}
	return t.Name
}

func (t *Unexposed) String() string { return t.Spelling }

// Spelling returns t.String(), or "" for a nil type.
func Spelling(t Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// Qualifiers renders cv-qualifier keywords in canonical order.
func Qualifiers(isConst, isVolatile bool) string {
	switch {
	case isConst && isVolatile:
		return "const volatile"
	case isConst:
		return "const"
	case isVolatile:
		return "volatile"
	}
	return ""
}

// PrimitiveKind enumerates builtin types.
type PrimitiveKind int

const (
	PrimVoid PrimitiveKind = iota
	PrimBool
	PrimChar
	PrimSignedChar
	PrimUnsignedChar
	PrimWChar
	PrimChar8
	PrimChar16
	PrimChar32
	PrimShort
	PrimUnsignedShort
	PrimInt
	PrimUnsignedInt
	PrimLong
	PrimUnsignedLong
	PrimLongLong
	PrimUnsignedLongLong
	PrimFloat
	PrimDouble
	PrimLongDouble
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimSize
	PrimSSize
	PrimPtrDiff
	PrimIntPtr
	PrimUintPtr
	PrimNullptr
)

var primitiveSpellings = [...]string{
	PrimVoid:             "void",
	PrimBool:             "bool",
	PrimChar:             "char",
	PrimSignedChar:       "signed char",
	PrimUnsignedChar:     "unsigned char",
	PrimWChar:            "wchar_t",
	PrimChar8:            "char8_t",
	PrimChar16:           "char16_t",
	PrimChar32:           "char32_t",
	PrimShort:            "short",
	PrimUnsignedShort:    "unsigned short",
	PrimInt:              "int",
	PrimUnsignedInt:      "unsigned int",
	PrimLong:             "long",
	PrimUnsignedLong:     "unsigned long",
	PrimLongLong:         "long long",
	PrimUnsignedLongLong: "unsigned long long",
	PrimFloat:            "float",
	PrimDouble:           "double",
	PrimLongDouble:       "long double",
	PrimInt8:             "int8_t",
	PrimInt16:            "int16_t",
	PrimInt32:            "int32_t",
	PrimInt64:            "int64_t",
	PrimUint8:            "uint8_t",
	PrimUint16:           "uint16_t",
	PrimUint32:           "uint32_t",
	PrimUint64:           "uint64_t",
	PrimSize:             "size_t",
	PrimSSize:            "ssize_t",
	PrimPtrDiff:          "ptrdiff_t",
	PrimIntPtr:           "intptr_t",
	PrimUintPtr:          "uintptr_t",
	PrimNullptr:          "std::nullptr_t",
}

// String returns the canonical lowercase spelling.
func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveSpellings) {
		return "int"
	}
	return primitiveSpellings[k]
}

var singleWordPrimitives = map[string]PrimitiveKind{
	"void":           PrimVoid,
	"bool":           PrimBool,
	"float":          PrimFloat,
	"wchar_t":        PrimWChar,
	"char8_t":        PrimChar8,
	"char16_t":       PrimChar16,
	"char32_t":       PrimChar32,
	"int8_t":         PrimInt8,
	"int16_t":        PrimInt16,
	"int32_t":        PrimInt32,
	"int64_t":        PrimInt64,
	"uint8_t":        PrimUint8,
	"uint16_t":       PrimUint16,
	"uint32_t":       PrimUint32,
	"uint64_t":       PrimUint64,
	"size_t":         PrimSize,
	"ssize_t":        PrimSSize,
	"ptrdiff_t":      PrimPtrDiff,
	"intptr_t":       PrimIntPtr,
	"uintptr_t":      PrimUintPtr,
	"nullptr_t":      PrimNullptr,
	"std::nullptr_t": PrimNullptr,
}

// LookupPrimitive maps a builtin type spelling such as "unsigned long int"
// or "long unsigned" to its kind. Word order and the optional "int" are
// ignored the way the language ignores them.
func LookupPrimitive(spelling string) (PrimitiveKind, bool) {
	words := strings.Fields(spelling)
	if len(words) == 1 {
		if k, ok := singleWordPrimitives[words[0]]; ok {
			return k, true
		}
	}
	var unsigned, signed, short bool
	longs := 0
	base := ""
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "short":
			short = true
		case "long":
			longs++
		case "int", "char", "double":
			if base != "" {
				return 0, false
			}
			base = w
		default:
			return 0, false
		}
	}
	switch base {
	case "char":
		switch {
		case unsigned:
			return PrimUnsignedChar, true
		case signed:
			return PrimSignedChar, true
		}
		return PrimChar, true
	case "double":
		if unsigned || signed || short {
			return 0, false
		}
		if longs > 0 {
			return PrimLongDouble, true
		}
		return PrimDouble, true
	}
	if !unsigned && !signed && !short && longs == 0 && base == "" {
		return 0, false
	}
	switch {
	case short:
		if unsigned {
			return PrimUnsignedShort, true
		}
		return PrimShort, true
	case longs == 1:
		if unsigned {
			return PrimUnsignedLong, true
		}
		return PrimLong, true
	case longs >= 2:
		if unsigned {
			return PrimUnsignedLongLong, true
		}
		return PrimLongLong, true
	case unsigned:
		return PrimUnsignedInt, true
	}
	return PrimInt, true
}
