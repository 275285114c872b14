package symbols

import (
	"fmt"
	"slices"
	"strings"

	"minic/internal/types"
)

// FunctionDecl is a function whose parameter types are not resolved yet.
// It only turns into a usable *Function through AddFormals, so a symbol with
// missing formals can never be observed.
type FunctionDecl struct {
	ret        types.Type
	paramCount int
	paramSpace int
	localSpace int
	fn         *Function
}

// DeclareFunction starts the two-phase construction of a function returning
// ret and taking paramCount parameters.
func DeclareFunction(ret types.Type, paramCount int) *FunctionDecl {
	if paramCount < 0 {
		panic(fmt.Sprintf("symbols: negative parameter count %d", paramCount))
	}
	return &FunctionDecl{ret: ret, paramCount: paramCount}
}

// WithSpace records initial frame sizes that the finished function starts with.
// Negative sizes panic here rather than in AddFormals.
func (d *FunctionDecl) WithSpace(paramSpace, localSpace int) *FunctionDecl {
	checkSpace("param", paramSpace)
	checkSpace("local", localSpace)
	d.paramSpace = paramSpace
	d.localSpace = localSpace
	return d
}

// ReturnType returns the declared return type.
func (d *FunctionDecl) ReturnType() types.Type { return d.ret }

// ParamCount returns the number of parameters fixed at declaration.
func (d *FunctionDecl) ParamCount() int { return d.paramCount }

// Resolved returns the finished function once AddFormals succeeded.
func (d *FunctionDecl) Resolved() (*Function, bool) {
	return d.fn, d.fn != nil
}

// AddFormals attaches the resolved parameter types and returns the complete
// function. It may succeed only once and only with exactly ParamCount types.
func (d *FunctionDecl) AddFormals(params []types.Type) (*Function, error) {
	if d.fn != nil {
		return nil, ErrFormalsAlreadyAdded
	}
	if len(params) != d.paramCount {
		return nil, fmt.Errorf("%w: declared %d, got %d", ErrParamCountMismatch, d.paramCount, len(params))
	}
	d.fn = NewFunctionWithSpace(d.ret, params, d.paramSpace, d.localSpace)
	return d.fn, nil
}

// Function is the symbol of a callable name. Its Type is always the
// types.Function tag; the declared result lives in ReturnType.
type Function struct {
	base
	ret        types.Type
	params     []types.Type
	paramSpace int
	localSpace int
}

// NewFunction creates a function whose formals are known up front.
func NewFunction(ret types.Type, params []types.Type) *Function {
	return NewFunctionWithSpace(ret, params, 0, 0)
}

// NewFunctionWithSpace is NewFunction with precomputed frame sizes.
func NewFunctionWithSpace(ret types.Type, params []types.Type, paramSpace, localSpace int) *Function {
	if !ret.IsValid() {
		panic("symbols: function without a return type")
	}
	fn := &Function{
		base:   newBase(types.Function, Global()),
		ret:    ret,
		params: slices.Clone(params),
	}
	fn.SetParamSpace(paramSpace)
	fn.SetLocalSpace(localSpace)
	return fn
}

func (*Function) Kind() Kind { return KindFunction }

// ReturnType returns the declared return type.
func (f *Function) ReturnType() types.Type { return f.ret }

// ParamCount returns the number of formals.
func (f *Function) ParamCount() int { return len(f.params) }

// ParamTypes returns the formals in declaration order. The slice is a copy.
func (f *Function) ParamTypes() []types.Type { return slices.Clone(f.params) }

// ParamSpace is the size in bytes of the parameter block of the frame.
func (f *Function) ParamSpace() int { return f.paramSpace }

// LocalSpace is the size in bytes of the local-variable block of the frame.
func (f *Function) LocalSpace() int { return f.localSpace }

// SetParamSpace updates the parameter block size after frame layout.
func (f *Function) SetParamSpace(n int) {
	checkSpace("param", n)
	f.paramSpace = n
}

// SetLocalSpace updates the local block size after frame layout.
func (f *Function) SetLocalSpace(n int) {
	checkSpace("local", n)
	f.localSpace = n
}

func checkSpace(block string, n int) {
	if n < 0 {
		panic(fmt.Sprintf("symbols: negative %s space %d", block, n))
	}
}

// String renders the signature as "p1,p2->ret"; with no parameters "->ret".
func (f *Function) String() string {
	var b strings.Builder
	for i, p := range f.params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteString("->")
	b.WriteString(f.ret.String())
	return b.String()
}
