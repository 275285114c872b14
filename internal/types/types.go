package types

import "fmt"

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindBool
	KindVoid
	KindString
	KindStruct    // a value of a named struct type
	KindFunction  // tag carried by every function symbol
	KindStructDef // tag carried by the declaration of a struct type
	KindError     // produced after a reported type error
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindStructDef:
		return "struct-def"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact, comparable descriptor. Two types are the same type iff
// their descriptors are equal, so == is structural equality.
type Type struct {
	Kind Kind
	Name string // struct name for KindStruct, empty otherwise
}

// Builtin descriptors.
var (
	Int       = Type{Kind: KindInt}
	Bool      = Type{Kind: KindBool}
	Void      = Type{Kind: KindVoid}
	String    = Type{Kind: KindString}
	Function  = Type{Kind: KindFunction}
	StructDef = Type{Kind: KindStructDef}
	Error     = Type{Kind: KindError}
)

// MakeStruct describes a value of the struct type called name.
func MakeStruct(name string) Type {
	return Type{Kind: KindStruct, Name: name}
}

// Equal reports structural equality.
func (t Type) Equal(other Type) bool { return t == other }

// IsValid reports whether t is anything but the zero descriptor.
func (t Type) IsValid() bool { return t.Kind != KindInvalid }

// IsStruct reports whether t is a struct value type.
func (t Type) IsStruct() bool { return t.Kind == KindStruct }

// IsVoid reports whether t is void.
func (t Type) IsVoid() bool { return t.Kind == KindVoid }

// HasStorage reports whether values of t occupy memory in a frame or a struct.
func (t Type) HasStorage() bool {
	switch t.Kind {
	case KindInt, KindBool, KindString, KindStruct:
		return true
	default:
		return false
	}
}

// String returns the diagnostic text of the type.
func (t Type) String() string {
	switch t.Kind {
	case KindStruct:
		if t.Name == "" {
			return "struct ?"
		}
		return t.Name
	case KindStructDef:
		return "struct"
	case KindInvalid:
		return "?"
	default:
		return t.Kind.String()
	}
}
