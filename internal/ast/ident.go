package ast

import "minic/internal/source"

// Ident is the declaration node for a name as it appeared in the source.
// Semantic analysis keeps pointers to these nodes; two Idents with the same
// text are still distinct nodes.
type Ident struct {
	Name string
	Span source.Span
}

// NewIdent allocates an identifier node.
func NewIdent(name string, span source.Span) *Ident {
	return &Ident{Name: name, Span: span}
}

func (id *Ident) String() string {
	if id == nil {
		return "<nil>"
	}
	return id.Name
}
