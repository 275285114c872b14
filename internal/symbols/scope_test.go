package symbols

import (
	"errors"
	"slices"
	"testing"

	"minic/internal/types"
)

func TestScopeDeclareLookup(t *testing.T) {
	s := NewScope(ScopeFunction)
	a := NewVariable(types.Int, Local(0))
	b := NewVariable(types.Bool, Local(-4))

	if err := s.Declare("a", a); err != nil {
		t.Fatalf("declare a: %v", err)
	}
	if err := s.Declare("b", b); err != nil {
		t.Fatalf("declare b: %v", err)
	}

	if got, ok := s.Lookup("b"); !ok || got != Symbol(b) {
		t.Fatalf("Lookup(b) = %v, %v", got, ok)
	}
	if _, ok := s.Lookup("c"); ok {
		t.Fatalf("Lookup(c) should fail")
	}
	if !slices.Equal(s.Names(), []string{"a", "b"}) {
		t.Fatalf("Names = %v", s.Names())
	}
}

func TestScopeFirstDeclarationWins(t *testing.T) {
	s := NewScope(ScopeGlobal)
	first := NewVariable(types.Int, Global())
	if err := s.Declare("x", first); err != nil {
		t.Fatalf("declare: %v", err)
	}
	err := s.Declare("x", NewVariable(types.Bool, Global()))
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("duplicate: got %v", err)
	}
	if got, _ := s.Lookup("x"); got != Symbol(first) {
		t.Fatalf("duplicate replaced the first declaration")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestNilScopeLookup(t *testing.T) {
	var s *Scope
	if _, ok := s.Lookup("x"); ok {
		t.Fatalf("nil scope found a symbol")
	}
}

func TestScopeKindString(t *testing.T) {
	if ScopeStruct.String() != "struct" || ScopeInvalid.String() != "invalid" {
		t.Fatalf("unexpected labels")
	}
}

func TestScopeDeclareTypedNilPanics(t *testing.T) {
	tests := []struct {
		name string
		sym  Symbol
	}{
		{name: "untyped", sym: nil},
		{name: "variable", sym: (*Variable)(nil)},
		{name: "function", sym: (*Function)(nil)},
		{name: "struct instance", sym: (*StructInstance)(nil)},
		{name: "struct definition", sym: (*StructDefinition)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScope(ScopeGlobal)
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
				if _, ok := s.Lookup("x"); ok || s.Len() != 0 {
					t.Fatalf("nil symbol was stored")
				}
			}()
			_ = s.Declare("x", tt.sym)
		})
	}
}
