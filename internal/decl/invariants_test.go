package decl_test

import (
	"context"
	"strings"
	"testing"

	"minic/internal/decl"
	"minic/internal/diag"
	"minic/internal/source"
	"minic/internal/testkit"
)

const shapesManifest = `[[decl]]
kind = "struct"
name = "Point"
fields = [{ name = "x", type = "int" }, { name = "y", type = "int" }]

[[decl]]
kind = "struct"
name = "Rect"
fields = [{ name = "min", type = "struct Point" }, { name = "max", type = "struct Point" }]

[[decl]]
kind = "var"
name = "unit_rect"
type = "struct Rect"

[[decl]]
kind = "fn"
name = "area"
returns = "int"
params = [{ name = "r", type = "struct Rect" }]
locals = [{ name = "w", type = "int" }, { name = "corner", type = "struct Point" }]

[[decl]]
kind = "fn"
name = "café"
params = [{ name = "p", type = "struct Point" }]
`

func TestLoadedSpansHoldInvariants(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("shapes.toml", []byte(shapesManifest))
	unit, bag, err := decl.Load(context.Background(), fs, id, decl.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGoldenDiagnostics(bag.Items(), fs, false))
	}
	if len(unit.Functions) != 2 {
		t.Fatalf("functions = %d", len(unit.Functions))
	}
	if err := testkit.CheckUnitSpans(unit, fs.Get(id)); err != nil {
		t.Fatalf("span invariants: %v", err)
	}
}

func TestSpanInvariantsCatchBrokenSpan(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("shapes.toml", []byte(shapesManifest))
	unit, _, err := decl.Load(context.Background(), fs, id, decl.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	unit.Functions[0].Span.End = unit.Functions[0].Span.Start
	err = testkit.CheckUnitSpans(unit, fs.Get(id))
	if err == nil || !strings.Contains(err.Error(), "empty span") {
		t.Fatalf("expected empty span error, got %v", err)
	}

	unit.Functions[0].Span = source.Span{File: id, Start: 0, End: 3}
	if err := testkit.CheckUnitSpans(unit, fs.Get(id)); err == nil {
		t.Fatalf("expected misspelled span to be rejected")
	}
	if err := testkit.CheckUnitSpans(nil, fs.Get(id)); err == nil {
		t.Fatalf("expected nil unit to be rejected")
	}
}
