package symbols

import (
	"fmt"
	"slices"
)

// ScopeKind enumerates what a scope belongs to.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // file-level declarations
	ScopeFunction           // parameters and locals of one function
	ScopeStruct             // fields of one struct definition
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// Lookuper resolves a name to its symbol.
type Lookuper interface {
	Lookup(name string) (Symbol, bool)
}

// Scope is a single name-to-symbol table. It has no parent: resolving a name
// through enclosing blocks is the caller's business.
type Scope struct {
	Kind   ScopeKind
	index  map[string]Symbol
	order  []string
	sealed bool
}

// NewScope allocates an empty scope.
func NewScope(kind ScopeKind) *Scope {
	return &Scope{
		Kind:  kind,
		index: make(map[string]Symbol),
	}
}

// Declare enters sym under name. The first declaration of a name wins; a
// second one fails with ErrDuplicateSymbol. A nil symbol, typed or not, panics.
func (s *Scope) Declare(name string, sym Symbol) error {
	if isNilSymbol(sym) {
		panic("symbols: Declare with nil symbol")
	}
	if s.sealed {
		return fmt.Errorf("%w: cannot declare %s", ErrScopeSealed, name)
	}
	if _, exists := s.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, name)
	}
	s.index[name] = sym
	s.order = append(s.order, name)
	return nil
}

// Lookup returns the symbol declared under name.
func (s *Scope) Lookup(name string) (Symbol, bool) {
	if s == nil {
		return nil, false
	}
	sym, ok := s.index[name]
	return sym, ok
}

// Names lists declared names in declaration order.
func (s *Scope) Names() []string { return slices.Clone(s.order) }

// Len reports the number of declared names.
func (s *Scope) Len() int { return len(s.order) }

// Seal forbids further declarations.
func (s *Scope) Seal() { s.sealed = true }

// Sealed reports whether Seal was called.
func (s *Scope) Sealed() bool { return s.sealed }

func isNilSymbol(sym Symbol) bool {
	switch v := sym.(type) {
	case nil:
		return true
	case *Variable:
		return v == nil
	case *Function:
		return v == nil
	case *StructInstance:
		return v == nil
	case *StructDefinition:
		return v == nil
	}
	return false
}
