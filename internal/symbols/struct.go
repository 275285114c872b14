package symbols

import (
	"fmt"

	"minic/internal/ast"
	"minic/internal/types"
)

// StructInstance is a variable whose declared type is a struct. It remembers
// the node naming the struct type; the definition is found by name through a
// Lookuper when it is needed, never stored.
type StructInstance struct {
	base
	structType *ast.Ident
}

// NewStructInstance creates a struct-typed variable of the struct named by id.
func NewStructInstance(id *ast.Ident, st Storage) *StructInstance {
	if id == nil {
		panic("symbols: struct instance without a type name")
	}
	return &StructInstance{
		base:       newBase(types.MakeStruct(id.Name), st),
		structType: id,
	}
}

func (*StructInstance) Kind() Kind { return KindStructInstance }

// StructType returns the declaration node naming the struct type.
func (s *StructInstance) StructType() *ast.Ident { return s.structType }

// StructDefinition is the symbol of a struct type declaration. It owns the
// scope holding the fields.
type StructDefinition struct {
	base
	fields *Scope
}

// NewStructDefinition takes ownership of a fully populated field scope.
// The scope is sealed: nothing can be declared into it afterwards.
func NewStructDefinition(fields *Scope) *StructDefinition {
	if fields == nil {
		panic("symbols: struct definition without a field scope")
	}
	fields.Seal()
	return &StructDefinition{
		base:   newBase(types.StructDef, Global()),
		fields: fields,
	}
}

func (*StructDefinition) Kind() Kind { return KindStructDefinition }

// Fields returns the field scope given to NewStructDefinition.
func (s *StructDefinition) Fields() *Scope { return s.fields }

// Field looks up a single field by name.
func (s *StructDefinition) Field(name string) (Symbol, bool) {
	return s.fields.Lookup(name)
}

// ResolveStruct finds the definition of the struct an instance refers to.
func ResolveStruct(l Lookuper, inst *StructInstance) (*StructDefinition, error) {
	return LookupStruct(l, inst.StructType().Name)
}

// LookupStruct finds the struct definition called name.
func LookupStruct(l Lookuper, name string) (*StructDefinition, error) {
	sym, ok := l.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStructNotDefined, name)
	}
	def, ok := sym.(*StructDefinition)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotAStruct, name, sym.Kind())
	}
	return def, nil
}
