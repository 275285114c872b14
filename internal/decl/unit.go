package decl

import (
	"minic/internal/layout"
	"minic/internal/source"
	"minic/internal/symbols"
)

// Unit is the outcome of processing one manifest.
type Unit struct {
	Name string
	File source.FileID

	// Globals holds structs, global variables and functions.
	Globals *symbols.Scope
	// Functions lists every successfully declared function in declaration order.
	Functions []*FunctionFrame
	// Order is the declaration order of the global names.
	Order []string

	// Layout resolves struct sizes against Globals.
	Layout *layout.Engine
}

// FunctionFrame is a function together with its parameters and locals.
type FunctionFrame struct {
	Name   string
	Span   source.Span
	Symbol *symbols.Function
	Locals *symbols.Scope
}

// Function finds the frame of the function called name.
func (u *Unit) Function(name string) (*FunctionFrame, bool) {
	if u == nil {
		return nil, false
	}
	for _, fn := range u.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}
