package layout

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"minic/internal/symbols"
	"minic/internal/types"
)

// ErrParamAfterLocal is returned when a parameter is added after the first local.
var ErrParamAfterLocal = errors.New("parameter added after locals")

// Frame assigns frame offsets to the parameters and locals of one function.
//
// Offsets grow downward from the frame pointer. Parameters come first, at
// 0, -size(p0), ...; the control link follows; locals start right below it.
type Frame struct {
	engine     *Engine
	paramSpace int
	localSpace int
	hasLocals  bool
}

// NewFrame starts an empty frame.
func NewFrame(e *Engine) *Frame {
	return &Frame{engine: e}
}

// AddParam reserves a slot for the next parameter of type t.
func (f *Frame) AddParam(t types.Type) (symbols.Storage, error) {
	if f.hasLocals {
		return symbols.Storage{}, ErrParamAfterLocal
	}
	size, err := f.engine.SizeOf(t)
	if err != nil {
		return symbols.Storage{}, err
	}
	off, err := offset(-f.paramSpace)
	if err != nil {
		return symbols.Storage{}, err
	}
	f.paramSpace += size
	return symbols.Local(off), nil
}

// AddLocal reserves a slot for a local variable of type t.
func (f *Frame) AddLocal(t types.Type) (symbols.Storage, error) {
	size, err := f.engine.SizeOf(t)
	if err != nil {
		return symbols.Storage{}, err
	}
	f.hasLocals = true
	off, err := offset(-(f.paramSpace + f.engine.Target.ControlLinkSize + f.localSpace))
	if err != nil {
		return symbols.Storage{}, err
	}
	f.localSpace += size
	return symbols.Local(off), nil
}

// ParamSpace returns the bytes reserved for parameters so far.
func (f *Frame) ParamSpace() int { return f.paramSpace }

// LocalSpace returns the bytes reserved for locals so far.
func (f *Frame) LocalSpace() int { return f.localSpace }

// Apply records the computed sizes on fn.
func (f *Frame) Apply(fn *symbols.Function) {
	fn.SetParamSpace(f.paramSpace)
	fn.SetLocalSpace(f.localSpace)
}

// offset checks that a frame offset fits a 32-bit displacement.
func offset(n int) (int, error) {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		return 0, &LayoutError{Kind: LayoutErrFrameTooLarge, Err: fmt.Errorf("offset %d: %w", n, err)}
	}
	return int(v), nil
}
