package symbols

import (
	"fmt"

	"minic/internal/types"
)

// Kind identifies the variant of a symbol.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVariable
	KindFunction
	KindStructInstance
	KindStructDefinition
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindStructInstance:
		return "struct-instance"
	case KindStructDefinition:
		return "struct-definition"
	default:
		return "invalid"
	}
}

// Symbol is the record kept for one declared name. The set of implementations
// is closed: *Variable, *Function, *StructInstance and *StructDefinition.
type Symbol interface {
	// Kind reports which variant the symbol is.
	Kind() Kind
	// Type returns the declared type; never the zero descriptor.
	Type() types.Type
	// IsLocal reports whether the name lives in a function's stack frame.
	IsLocal() bool
	// FrameOffset returns the byte offset within the frame. ok is false for
	// anything that is not local; the offset is then meaningless.
	FrameOffset() (offset int, ok bool)
	// String renders the symbol for diagnostics.
	String() string

	sealed()
}

// Storage tells where a declared name lives at run time.
type Storage struct {
	local  bool
	offset int
}

// Global is the storage of file-level names.
func Global() Storage { return Storage{} }

// Local is the storage of a name at offset bytes into its function's frame.
func Local(offset int) Storage { return Storage{local: true, offset: offset} }

// IsLocal reports whether the storage is a frame slot.
func (s Storage) IsLocal() bool { return s.local }

// Offset returns the frame offset; ok is false for global storage.
func (s Storage) Offset() (int, bool) {
	if !s.local {
		return 0, false
	}
	return s.offset, true
}

// base holds what every variant shares.
type base struct {
	typ     types.Type
	storage Storage
}

func newBase(t types.Type, st Storage) base {
	if !t.IsValid() {
		panic("symbols: symbol without a type")
	}
	return base{typ: t, storage: st}
}

func (b *base) Type() types.Type         { return b.typ }
func (b *base) IsLocal() bool            { return b.storage.local }
func (b *base) FrameOffset() (int, bool) { return b.storage.Offset() }
func (b *base) Storage() Storage         { return b.storage }
func (b *base) String() string           { return b.typ.String() }
func (b *base) sealed()                  {}

// Variable is a plain named value of a non-struct type.
type Variable struct {
	base
}

// NewVariable creates a variable symbol of type t stored at st. Struct types
// and the function and struct-definition tags belong to the other variants
// and panic.
func NewVariable(t types.Type, st Storage) *Variable {
	switch t.Kind {
	case types.KindStruct, types.KindFunction, types.KindStructDef:
		panic(fmt.Sprintf("symbols: variable of type %s", t))
	}
	return &Variable{base: newBase(t, st)}
}

func (*Variable) Kind() Kind { return KindVariable }
