package symdump

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"minic/internal/decl"
	"minic/internal/layout"
	"minic/internal/symbols"
	"minic/internal/types"
)

// SchemaVersion is bumped whenever Snapshot or Entry change shape.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by DecodeSnapshot for snapshots written by
// another schema version.
var ErrSchemaMismatch = errors.New("snapshot schema mismatch")

// Snapshot is a unit flattened to plain data.
type Snapshot struct {
	Schema  uint16  `msgpack:"schema" json:"schema"`
	Unit    string  `msgpack:"unit" json:"unit"`
	Globals []Entry `msgpack:"globals" json:"globals"`
}

// Entry describes one symbol.
type Entry struct {
	Name  string `msgpack:"name" json:"name"`
	Kind  string `msgpack:"kind" json:"kind"`
	Type  string `msgpack:"type" json:"type"`
	Local bool   `msgpack:"local" json:"local"`
	// Offset is the frame offset of a parameter or local, or the byte
	// offset of a struct field. Nil for globals.
	Offset *int `msgpack:"offset,omitempty" json:"offset,omitempty"`
	Size   int  `msgpack:"size,omitempty" json:"size,omitempty"`

	// struct instances
	Struct string `msgpack:"struct,omitempty" json:"struct,omitempty"`

	// functions
	Signature  string  `msgpack:"signature,omitempty" json:"signature,omitempty"`
	ParamSpace int     `msgpack:"param_space,omitempty" json:"param_space,omitempty"`
	LocalSpace int     `msgpack:"local_space,omitempty" json:"local_space,omitempty"`
	Locals     []Entry `msgpack:"locals,omitempty" json:"locals,omitempty"`

	// struct definitions
	Fields []Entry `msgpack:"fields,omitempty" json:"fields,omitempty"`
}

// Capture flattens unit. Globals keep their declaration order, as do the
// fields and locals nested under them.
func Capture(unit *decl.Unit) *Snapshot {
	snap := &Snapshot{Schema: SchemaVersion}
	if unit == nil {
		return snap
	}
	snap.Unit = unit.Name
	snap.Globals = make([]Entry, 0, len(unit.Order))
	for _, name := range unit.Order {
		sym, ok := unit.Globals.Lookup(name)
		if !ok {
			continue
		}
		e := capture(name, sym, unit.Layout)
		switch s := sym.(type) {
		case *symbols.Function:
			if frame, ok := unit.Function(name); ok && frame.Symbol == s {
				e.Locals = captureScope(frame.Locals, unit.Layout)
			}
		case *symbols.StructDefinition:
			e.Fields = captureScope(s.Fields(), unit.Layout)
			if l, err := unit.Layout.LayoutOf(types.MakeStruct(name)); err == nil {
				e.Size = l.Size
				for i := range e.Fields {
					off := l.FieldOffsets[i]
					e.Fields[i].Offset = &off
				}
			}
		}
		snap.Globals = append(snap.Globals, e)
	}
	return snap
}

func captureScope(scope *symbols.Scope, engine *layout.Engine) []Entry {
	names := scope.Names()
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		sym, _ := scope.Lookup(name)
		out = append(out, capture(name, sym, engine))
	}
	return out
}

func capture(name string, sym symbols.Symbol, engine *layout.Engine) Entry {
	e := Entry{
		Name:  name,
		Kind:  sym.Kind().String(),
		Type:  sym.Type().String(),
		Local: sym.IsLocal(),
	}
	if off, ok := sym.FrameOffset(); ok {
		e.Offset = &off
	}
	switch s := sym.(type) {
	case *symbols.Variable:
		e.Size = sizeOf(engine, s.Type())
	case *symbols.StructInstance:
		e.Struct = s.StructType().Name
		e.Size = sizeOf(engine, s.Type())
	case *symbols.Function:
		e.Signature = s.String()
		e.ParamSpace = s.ParamSpace()
		e.LocalSpace = s.LocalSpace()
	case *symbols.StructDefinition:
		// size and fields need the definition's name, see Capture
	}
	return e
}

func sizeOf(engine *layout.Engine, t types.Type) int {
	if engine == nil {
		return 0
	}
	size, err := engine.SizeOf(t)
	if err != nil {
		return 0
	}
	return size
}

// EncodeSnapshot writes snap as msgpack.
func EncodeSnapshot(w io.Writer, snap *Snapshot) error {
	return msgpack.NewEncoder(w).Encode(snap)
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, snap.Schema, SchemaVersion)
	}
	return &snap, nil
}
