package layout

import (
	"errors"
	"fmt"

	"minic/internal/symbols"
	"minic/internal/types"
)

// TypeLayout is the size and alignment of a type on a Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only: field names in declaration order and their byte offsets.
	FieldNames   []string
	FieldOffsets []int
}

// Engine computes type layouts. Struct definitions are found by name through
// Structs, which is normally the global scope of the compilation unit.
type Engine struct {
	Target  Target
	Structs symbols.Lookuper

	cache *cache
}

// New creates an engine for target resolving struct names through structs.
func New(target Target, structs symbols.Lookuper) *Engine {
	return &Engine{
		Target:  target,
		Structs: structs,
		cache:   newCache(),
	}
}

// LayoutOf computes the layout of t.
func (e *Engine) LayoutOf(t types.Type) (TypeLayout, error) {
	l, err := e.layoutOf(t, nil)
	if err != nil {
		return l, err
	}
	return l, nil
}

// SizeOf returns the size of t in bytes.
func (e *Engine) SizeOf(t types.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// FieldOffset returns the byte offset of field inside the struct called structName.
func (e *Engine) FieldOffset(structName, field string) (int, error) {
	l, err := e.LayoutOf(types.MakeStruct(structName))
	if err != nil {
		return 0, err
	}
	for i, name := range l.FieldNames {
		if name == field {
			return l.FieldOffsets[i], nil
		}
	}
	return 0, fmt.Errorf("struct %s has no field %s", structName, field)
}

func (e *Engine) layoutOf(t types.Type, stack []string) (TypeLayout, *LayoutError) {
	word := e.Target.word()
	switch t.Kind {
	case types.KindInt, types.KindBool, types.KindString:
		return TypeLayout{Size: word, Align: word}, nil
	case types.KindStruct:
		return e.structLayout(t, stack)
	default:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrNoStorage, Type: t}
	}
}

func (e *Engine) structLayout(t types.Type, stack []string) (TypeLayout, *LayoutError) {
	for i, name := range stack {
		if name == t.Name {
			cycle := append(append([]string(nil), stack[i:]...), t.Name)
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrRecursive, Type: t, Cycle: cycle}
		}
	}
	if cached, ok := e.cache.get(t.Name); ok {
		return cached.Layout, cached.Err
	}

	l, err := e.computeStruct(t, append(stack, t.Name))
	// recursive failures depend on the entry point, keep them out of the cache
	if err == nil || err.Kind != LayoutErrRecursive {
		e.cache.put(t.Name, &cacheEntry{Layout: l, Err: err})
	}
	return l, err
}

func (e *Engine) computeStruct(t types.Type, stack []string) (TypeLayout, *LayoutError) {
	if e.Structs == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownStruct, Type: t}
	}
	def, err := symbols.LookupStruct(e.Structs, t.Name)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownStruct, Type: t, Err: err}
	}

	fields := def.Fields()
	names := fields.Names()
	out := TypeLayout{
		Align:        e.Target.word(),
		FieldNames:   names,
		FieldOffsets: make([]int, len(names)),
	}
	for i, name := range names {
		sym, _ := fields.Lookup(name)
		fl, ferr := e.layoutOf(sym.Type(), stack)
		if ferr != nil {
			return TypeLayout{Size: 0, Align: 1}, ferr
		}
		out.FieldOffsets[i] = out.Size
		out.Size += fl.Size
	}
	return out, nil
}

// IsLayoutError reports whether err carries a *LayoutError of the given kind.
func IsLayoutError(err error, kind LayoutErrorKind) bool {
	var lerr *LayoutError
	return errors.As(err, &lerr) && lerr.Kind == kind
}
