package decl

import (
	"errors"
	"fmt"

	"minic/internal/ast"
	"minic/internal/diag"
	"minic/internal/layout"
	"minic/internal/source"
	"minic/internal/symbols"
	"minic/internal/trace"
	"minic/internal/types"
)

type declarer struct {
	unit   *Unit
	rep    diag.Reporter
	loc    *source.Locator
	engine *layout.Engine
	tracer trace.Tracer
	parent uint64

	// where each name was first declared, per scope
	spans map[*symbols.Scope]map[string]source.Span
}

// binding is a name resolved to a type, ready to become a symbol.
type binding struct {
	name     string
	span     source.Span
	typ      types.Type
	typeSpan source.Span
	ok       bool
}

func (d *declarer) declareEntry(e *Entry) {
	kindSpan := d.loc.Find(e.Kind)
	name := source.NormalizeIdent(e.Name)
	if name == "" {
		diag.ReportError(d.rep, diag.DeclMissingName, kindSpan,
			fmt.Sprintf("%s declaration without a name", kindLabel(e.Kind))).Emit()
		return
	}
	span := d.loc.Find(e.Name)
	trace.Point(d.tracer, trace.ScopeDecl, e.Kind, name, d.parent)

	switch e.Kind {
	case KindStruct:
		d.declareStruct(e, name, span)
	case KindVar:
		d.declareVar(e, name, span)
	case KindFn:
		d.declareFunction(e, name, span)
	default:
		diag.ReportError(d.rep, diag.DeclUnknownKind, kindSpan,
			fmt.Sprintf("unknown declaration kind %q (want struct, var or fn)", e.Kind)).Emit()
	}
}

func kindLabel(kind string) string {
	if kind == "" {
		return "untyped"
	}
	return kind
}

func (d *declarer) declareStruct(e *Entry, name string, span source.Span) {
	fields := symbols.NewScope(symbols.ScopeStruct)
	for _, f := range e.Fields {
		b := d.storageBinding(f, "field")
		if !b.ok {
			continue
		}
		d.declare(fields, b.name, d.value(b, symbols.Global()), b.span)
	}
	if len(e.Fields) == 0 {
		diag.ReportWarning(d.rep, diag.SemaEmptyStruct, span,
			fmt.Sprintf("struct %s has no fields", name)).Emit()
	}
	d.declare(d.unit.Globals, name, symbols.NewStructDefinition(fields), span)
}

func (d *declarer) declareVar(e *Entry, name string, span source.Span) {
	b := d.typed(name, span, e.Type, "variable")
	if !b.ok {
		return
	}
	d.declare(d.unit.Globals, name, d.value(b, symbols.Global()), span)
}

// declareFunction builds the function in two steps: the return type and the
// parameter count first, then the formals once their types are known. The
// function is entered into the global scope before its frame is laid out.
func (d *declarer) declareFunction(e *Entry, name string, span source.Span) {
	ret := types.Void
	if e.Returns != "" {
		rt, ok := d.resolveType(e.Returns, d.loc.Find(e.Returns))
		if ok {
			ret = rt
		} else {
			ret = types.Error
		}
	}
	pending := symbols.DeclareFunction(ret, len(e.Params))

	params := make([]binding, 0, len(e.Params))
	formals := make([]types.Type, 0, len(e.Params))
	for _, p := range e.Params {
		b := d.storageBinding(p, "parameter")
		params = append(params, b)
		if b.ok {
			formals = append(formals, b.typ)
		} else {
			// keep the arity; the slot is simply not laid out
			formals = append(formals, types.Error)
		}
	}

	fn, err := pending.AddFormals(formals)
	if err != nil {
		diag.ReportError(d.rep, diag.SemaFormalsMismatch, span,
			fmt.Sprintf("function %s: %v", name, err)).Emit()
		return
	}
	if !d.declare(d.unit.Globals, name, fn, span) {
		return
	}

	locals := symbols.NewScope(symbols.ScopeFunction)
	frame := layout.NewFrame(d.engine)
	for _, b := range params {
		if !b.ok || d.duplicate(locals, b.name, b.span) {
			continue
		}
		st, err := frame.AddParam(b.typ)
		if err != nil {
			d.frameError(name, b, err)
			continue
		}
		d.declare(locals, b.name, d.value(b, st), b.span)
	}
	for _, l := range e.Locals {
		b := d.storageBinding(l, "local")
		if !b.ok || d.duplicate(locals, b.name, b.span) {
			continue
		}
		st, err := frame.AddLocal(b.typ)
		if err != nil {
			d.frameError(name, b, err)
			continue
		}
		d.declare(locals, b.name, d.value(b, st), b.span)
	}
	frame.Apply(fn)

	d.unit.Functions = append(d.unit.Functions, &FunctionFrame{
		Name:   name,
		Span:   span,
		Symbol: fn,
		Locals: locals,
	})
}

func (d *declarer) frameError(fn string, b binding, err error) {
	diag.ReportError(d.rep, diag.SemaFrameLayout, b.span,
		fmt.Sprintf("function %s: cannot place %s: %v", fn, b.name, err)).Emit()
}

// storageBinding resolves a field, parameter or variable binding. The type
// must exist and occupy memory.
func (d *declarer) storageBinding(src Binding, what string) binding {
	name := source.NormalizeIdent(src.Name)
	if name == "" {
		diag.ReportError(d.rep, diag.DeclMissingName, d.loc.Find(src.Type),
			fmt.Sprintf("%s without a name", what)).Emit()
		return binding{}
	}
	return d.typed(name, d.loc.Find(src.Name), src.Type, what)
}

func (d *declarer) typed(name string, span source.Span, typeText, what string) binding {
	b := binding{name: name, span: span, typeSpan: d.loc.Find(typeText)}
	t, ok := d.resolveType(typeText, b.typeSpan)
	if !ok {
		return b
	}
	if !t.HasStorage() {
		diag.ReportError(d.rep, diag.SemaVoidStorage, b.typeSpan,
			fmt.Sprintf("%s %s cannot have type %s", what, b.name, t)).Emit()
		return b
	}
	b.typ = t
	b.ok = true
	return b
}

// resolveType parses type text; struct names must already be declared as
// struct definitions.
func (d *declarer) resolveType(text string, sp source.Span) (types.Type, bool) {
	t, err := types.Parse(text)
	if err != nil {
		diag.ReportError(d.rep, diag.SemaUnknownType, sp,
			fmt.Sprintf("unknown type %q", text)).Emit()
		return types.Error, false
	}
	if !t.IsStruct() {
		return t, true
	}
	t = types.MakeStruct(source.NormalizeIdent(t.Name))
	if _, err := symbols.LookupStruct(d.unit.Globals, t.Name); err != nil {
		code := diag.SemaUndefinedStruct
		if errors.Is(err, symbols.ErrNotAStruct) {
			code = diag.SemaNotAStruct
		}
		diag.ReportError(d.rep, code, sp, err.Error()).Emit()
		return types.Error, false
	}
	return t, true
}

func (d *declarer) value(b binding, st symbols.Storage) symbols.Symbol {
	if b.typ.IsStruct() {
		return symbols.NewStructInstance(ast.NewIdent(b.typ.Name, b.typeSpan), st)
	}
	return symbols.NewVariable(b.typ, st)
}

// declare enters sym into scope, reporting a duplicate with a note pointing
// at the first declaration.
func (d *declarer) declare(scope *symbols.Scope, name string, sym symbols.Symbol, sp source.Span) bool {
	if d.duplicate(scope, name, sp) {
		return false
	}
	if err := scope.Declare(name, sym); err != nil {
		diag.ReportError(d.rep, diag.SemaError, sp, err.Error()).Emit()
		return false
	}
	seen := d.spans[scope]
	if seen == nil {
		seen = make(map[string]source.Span)
		d.spans[scope] = seen
	}
	seen[name] = sp
	return true
}

// duplicate reports name when scope already holds it. Frame slots are only
// reserved for names that pass this check.
func (d *declarer) duplicate(scope *symbols.Scope, name string, sp source.Span) bool {
	if _, exists := scope.Lookup(name); !exists {
		return false
	}
	b := diag.ReportError(d.rep, diag.SemaDuplicateSymbol, sp,
		fmt.Sprintf("%s is already declared in %s scope", name, scope.Kind))
	if first, ok := d.spans[scope][name]; ok {
		b.WithNote(first, "first declared here")
	}
	b.Emit()
	return true
}
