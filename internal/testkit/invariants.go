package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"minic/internal/decl"
	"minic/internal/source"
	"minic/internal/symbols"
	"minic/internal/types"
)

// CheckUnitSpans runs a minimal set of span invariants on a loaded unit:
// 1) every function frame span is non-empty, inside the file and spells the function name
// 2) every struct instance points at type text naming the same struct
// 3) struct instances are checked in globals, struct fields and function locals
func CheckUnitSpans(u *decl.Unit, sf *source.File) error {
	if u == nil || sf == nil {
		return fmt.Errorf("nil unit or file")
	}
	if u.File != sf.ID {
		return fmt.Errorf("unit points to different file id: got=%d want=%d", u.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	for _, fn := range u.Functions {
		text, err := spanText(fn.Span, sf, lenContent)
		if err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
		if source.NormalizeIdent(text) != fn.Name {
			return fmt.Errorf("function %s: span spells %q", fn.Name, text)
		}
		if err := checkScope(fn.Locals, sf, lenContent); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	if err := checkScope(u.Globals, sf, lenContent); err != nil {
		return err
	}
	for _, name := range u.Globals.Names() {
		sym, _ := u.Globals.Lookup(name)
		if def, ok := sym.(*symbols.StructDefinition); ok {
			if err := checkScope(def.Fields(), sf, lenContent); err != nil {
				return fmt.Errorf("struct %s: %w", name, err)
			}
		}
	}
	return nil
}

func checkScope(scope *symbols.Scope, sf *source.File, lenContent uint32) error {
	if scope == nil {
		return nil
	}
	for _, name := range scope.Names() {
		sym, _ := scope.Lookup(name)
		inst, ok := sym.(*symbols.StructInstance)
		if !ok {
			continue
		}
		id := inst.StructType()
		text, err := spanText(id.Span, sf, lenContent)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		t, err := types.Parse(text)
		if err != nil || !t.IsStruct() {
			return fmt.Errorf("%s: span %v spells %q, not a struct type", name, id.Span, text)
		}
		if source.NormalizeIdent(t.Name) != id.Name {
			return fmt.Errorf("%s: span names struct %q, ident says %q", name, t.Name, id.Name)
		}
	}
	return nil
}

func spanText(sp source.Span, sf *source.File, lenContent uint32) (string, error) {
	if sp.End <= sp.Start {
		return "", fmt.Errorf("empty span: %v", sp)
	}
	if sp.File != sf.ID {
		return "", fmt.Errorf("span file mismatch: got=%d want=%d", sp.File, sf.ID)
	}
	if sp.End > lenContent {
		return "", fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return string(sf.Content[sp.Start:sp.End]), nil
}
