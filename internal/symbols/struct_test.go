package symbols

import (
	"errors"
	"testing"

	"minic/internal/ast"
	"minic/internal/source"
	"minic/internal/types"
)

func sourceSpan() source.Span { return source.Span{File: 0, Start: 1, End: 2} }

func TestStructInstanceKeepsNode(t *testing.T) {
	id := ast.NewIdent("Point", sourceSpan())
	inst := NewStructInstance(id, Local(-4))

	if inst.StructType() != id {
		t.Fatalf("StructType returned a different node")
	}
	if inst.Type() != types.MakeStruct("Point") {
		t.Fatalf("type = %v", inst.Type())
	}
	if inst.String() != "Point" {
		t.Fatalf("String = %q", inst.String())
	}
	if off, ok := inst.FrameOffset(); !ok || off != -4 {
		t.Fatalf("FrameOffset = %d, %v", off, ok)
	}
}

func TestStructDefinitionOwnsFields(t *testing.T) {
	fields := NewScope(ScopeStruct)
	x := NewVariable(types.Int, Global())
	if err := fields.Declare("x", x); err != nil {
		t.Fatalf("declare x: %v", err)
	}

	def := NewStructDefinition(fields)
	if def.Fields() != fields {
		t.Fatalf("Fields must be the scope passed at construction")
	}
	if def.Type() != types.StructDef || def.String() != "struct" {
		t.Fatalf("unexpected definition type %v", def.Type())
	}
	if got, ok := def.Field("x"); !ok || got != Symbol(x) {
		t.Fatalf("Field(x) = %v, %v", got, ok)
	}
	if err := fields.Declare("y", NewVariable(types.Int, Global())); !errors.Is(err, ErrScopeSealed) {
		t.Fatalf("declare after definition: got %v, want ErrScopeSealed", err)
	}
	if fields.Len() != 1 {
		t.Fatalf("field count changed to %d", fields.Len())
	}
}

func TestResolveStruct(t *testing.T) {
	globals := NewScope(ScopeGlobal)
	def := NewStructDefinition(NewScope(ScopeStruct))
	if err := globals.Declare("Point", def); err != nil {
		t.Fatalf("declare Point: %v", err)
	}
	if err := globals.Declare("count", NewVariable(types.Int, Global())); err != nil {
		t.Fatalf("declare count: %v", err)
	}

	p := NewStructInstance(ast.NewIdent("Point", sourceSpan()), Global())
	got, err := ResolveStruct(globals, p)
	if err != nil || got != def {
		t.Fatalf("ResolveStruct = %v, %v", got, err)
	}

	missing := NewStructInstance(ast.NewIdent("Line", sourceSpan()), Global())
	if _, err := ResolveStruct(globals, missing); !errors.Is(err, ErrStructNotDefined) {
		t.Fatalf("missing struct: got %v", err)
	}

	wrong := NewStructInstance(ast.NewIdent("count", sourceSpan()), Global())
	if _, err := ResolveStruct(globals, wrong); !errors.Is(err, ErrNotAStruct) {
		t.Fatalf("non-struct name: got %v", err)
	}
}
