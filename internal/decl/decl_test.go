package decl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minic/internal/diag"
	"minic/internal/source"
	"minic/internal/symbols"
	"minic/internal/trace"
	"minic/internal/types"
)

const demoManifest = `[unit]
name = "demo"

[[decl]]
kind = "struct"
name = "Point"
fields = [{ name = "x", type = "int" }, { name = "y", type = "int" }]

[[decl]]
kind = "var"
name = "origin"
type = "struct Point"

[[decl]]
kind = "fn"
name = "add"
returns = "int"
params = [{ name = "a", type = "int" }, { name = "b", type = "struct Point" }]
locals = [{ name = "tmp", type = "bool" }, { name = "p", type = "struct Point" }]
`

func load(t *testing.T, name, content string) (*Unit, *diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(content))
	unit, bag, err := Load(context.Background(), fs, id, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return unit, bag, fs
}

func TestLoadDemo(t *testing.T) {
	unit, bag, fs := load(t, "demo.toml", demoManifest)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGoldenDiagnostics(bag.Items(), fs, true))
	}
	if unit.Name != "demo" {
		t.Fatalf("unit name = %q", unit.Name)
	}
	if got := strings.Join(unit.Order, ","); got != "Point,origin,add" {
		t.Fatalf("order = %s", got)
	}

	sym, _ := unit.Globals.Lookup("Point")
	def, ok := sym.(*symbols.StructDefinition)
	if !ok {
		t.Fatalf("Point is %T", sym)
	}
	if !def.Fields().Sealed() || def.Fields().Len() != 2 {
		t.Fatalf("field scope: sealed=%v len=%d", def.Fields().Sealed(), def.Fields().Len())
	}
	if x, ok := def.Field("x"); !ok || x.Type() != types.Int || x.IsLocal() {
		t.Fatalf("field x = %v", x)
	}

	sym, _ = unit.Globals.Lookup("origin")
	origin, ok := sym.(*symbols.StructInstance)
	if !ok {
		t.Fatalf("origin is %T", sym)
	}
	if _, ok := origin.FrameOffset(); ok {
		t.Fatalf("global variable must not have a frame offset")
	}
	if resolved, err := symbols.ResolveStruct(unit.Globals, origin); err != nil || resolved != def {
		t.Fatalf("ResolveStruct = %v, %v", resolved, err)
	}
	if size, err := unit.Layout.SizeOf(origin.Type()); err != nil || size != 8 {
		t.Fatalf("size of Point = %d, %v", size, err)
	}
}

func TestLoadFunctionFrame(t *testing.T) {
	unit, _, _ := load(t, "demo.toml", demoManifest)
	frame, ok := unit.Function("add")
	if !ok {
		t.Fatalf("add not found")
	}
	fn := frame.Symbol
	if fn.String() != "int,Point->int" {
		t.Fatalf("signature = %s", fn)
	}
	if fn.ParamSpace() != 12 || fn.LocalSpace() != 12 {
		t.Fatalf("spaces = %d/%d", fn.ParamSpace(), fn.LocalSpace())
	}
	if sym, _ := unit.Globals.Lookup("add"); sym != symbols.Symbol(fn) {
		t.Fatalf("global add is not the frame symbol")
	}

	want := []struct {
		name   string
		offset int
		kind   symbols.Kind
	}{
		{"a", 0, symbols.KindVariable},
		{"b", -4, symbols.KindStructInstance},
		{"tmp", -20, symbols.KindVariable},
		{"p", -24, symbols.KindStructInstance},
	}
	if got := strings.Join(frame.Locals.Names(), ","); got != "a,b,tmp,p" {
		t.Fatalf("locals = %s", got)
	}
	for _, w := range want {
		sym, ok := frame.Locals.Lookup(w.name)
		if !ok {
			t.Fatalf("%s missing", w.name)
		}
		off, ok := sym.FrameOffset()
		if !ok || off != w.offset || !sym.IsLocal() || sym.Kind() != w.kind {
			t.Fatalf("%s: offset=%d ok=%v local=%v kind=%s", w.name, off, ok, sym.IsLocal(), sym.Kind())
		}
	}
}

func TestLoadDiagnostics(t *testing.T) {
	const src = `[unit]
name = "bad"

[[decl]]
kind = "var"
name = "x"
type = "int"

[[decl]]
kind = "var"
name = "x"
type = "bool"

[[decl]]
kind = "var"
name = "y"
type = "float"

[[decl]]
kind = "var"
name = "p"
type = "struct Missing"

[[decl]]
kind = "var"
name = "q"
type = "struct x"

[[decl]]
kind = "var"
name = "v"
type = "void"

[[decl]]
kind = "class"
name = "C"

[[decl]]
kind = "fn"
returns = "int"
`
	unit, bag, fs := load(t, "bad.toml", src)
	want := strings.Join([]string{
		`note SEM3002 bad.toml:6:9 first declared here`,
		`error SEM3002 bad.toml:11:9 x is already declared in global scope`,
		`error SEM3003 bad.toml:17:9 unknown type "float"`,
		`error SEM3004 bad.toml:22:9 struct type is not defined: Missing`,
		`error SEM3005 bad.toml:27:9 name is not a struct type: x is a variable`,
		`error SEM3006 bad.toml:32:9 variable v cannot have type void`,
		`error DCL1002 bad.toml:35:9 unknown declaration kind "class" (want struct, var or fn)`,
		`error DCL1003 bad.toml:39:9 fn declaration without a name`,
	}, "\n")
	if got := diag.FormatGoldenDiagnostics(bag.Items(), fs, true); got != want {
		t.Fatalf("diagnostics mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
	if got := strings.Join(unit.Order, ","); got != "x" {
		t.Fatalf("order = %s", got)
	}
	// first declaration wins
	if sym, _ := unit.Globals.Lookup("x"); sym.Type() != types.Int {
		t.Fatalf("x has type %v", sym.Type())
	}
}

func TestLoadFunctionScopeDiagnostics(t *testing.T) {
	const src = `[[decl]]
kind = "fn"
name = "f"
params = [{ name = "a", type = "int" }, { name = "n", type = "void" }]
locals = [{ name = "a", type = "bool" }, { name = "c", type = "int" }]
`
	unit, bag, fs := load(t, "fn.toml", src)
	got := diag.FormatGoldenDiagnostics(bag.Items(), fs, false)
	want := "error SEM3006 fn.toml:4:63 parameter n cannot have type void\n" +
		"error SEM3002 fn.toml:5:21 a is already declared in function scope"
	if got != want {
		t.Fatalf("diagnostics mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
	if unit.Name != "fn" {
		t.Fatalf("unit name should default to the file name, got %q", unit.Name)
	}
	frame, ok := unit.Function("f")
	if !ok {
		t.Fatalf("f not declared")
	}
	fn := frame.Symbol
	if fn.ParamCount() != 2 || fn.ReturnType() != types.Void {
		t.Fatalf("f = %s", fn)
	}
	if fn.ParamSpace() != 4 || fn.LocalSpace() != 4 {
		t.Fatalf("spaces = %d/%d", fn.ParamSpace(), fn.LocalSpace())
	}
	if c, _ := frame.Locals.Lookup("c"); c == nil {
		t.Fatalf("local c missing")
	} else if off, _ := c.FrameOffset(); off != -12 {
		t.Fatalf("c offset = %d", off)
	}
}

func TestLoadEmptyStructAndUnknownKey(t *testing.T) {
	const src = `[unit]
name = "misc"
color = "blue"

[[decl]]
kind = "struct"
name = "Empty"
`
	unit, bag, _ := load(t, "misc.toml", src)
	var codes []diag.Code
	for _, d := range bag.Items() {
		codes = append(codes, d.Code)
	}
	if len(codes) != 2 || codes[0] != diag.DeclUnexpectedKey || codes[1] != diag.SemaEmptyStruct {
		t.Fatalf("codes = %v", codes)
	}
	if bag.HasErrors() {
		t.Fatalf("warnings only expected")
	}
	if _, err := symbols.LookupStruct(unit.Globals, "Empty"); err != nil {
		t.Fatalf("Empty not declared: %v", err)
	}
}

func TestLoadParseError(t *testing.T) {
	unit, bag, _ := load(t, "broken.toml", "[[decl]\nkind = \"var\"\n")
	if unit != nil {
		t.Fatalf("expected nil unit for invalid TOML")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.DeclParseError {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestLoadNormalizesNames(t *testing.T) {
	src := "[[decl]]\nkind = \"var\"\nname = \"caf\u00e9\"\ntype = \"int\"\n\n" +
		"[[decl]]\nkind = \"var\"\nname = \"cafe\u0301\"\ntype = \"int\"\n"
	_, bag, _ := load(t, "nfc.toml", src)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaDuplicateSymbol {
		t.Fatalf("expected the decomposed name to collide, got %v", bag.Items())
	}
}

func TestLoadCanceled(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.toml", []byte(demoManifest))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Load(ctx, fs, id, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if _, _, err := Load(context.Background(), fs, id+1, Options{}); !errors.Is(err, ErrUnknownFile) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFileAndTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	if err := os.WriteFile(path, []byte(demoManifest), 0o600); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)

	unit, bag, err := LoadFile(ctx, source.NewFileSet(), path, Options{})
	if err != nil || bag.Len() != 0 {
		t.Fatalf("LoadFile: %v, %d diagnostics", err, bag.Len())
	}
	if len(unit.Functions) != 1 {
		t.Fatalf("functions = %d", len(unit.Functions))
	}
	out := buf.String()
	for _, want := range []string{"unit:demo.toml", "fn (add)", "symbols=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output missing %q:\n%s", want, out)
		}
	}
}
