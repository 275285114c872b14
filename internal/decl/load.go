package decl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"minic/internal/diag"
	"minic/internal/layout"
	"minic/internal/source"
	"minic/internal/symbols"
	"minic/internal/trace"
)

// DefaultMaxDiagnostics is used when Options.MaxDiagnostics is zero.
const DefaultMaxDiagnostics = 100

// Options configures Load.
type Options struct {
	Target         layout.Target
	MaxDiagnostics int
}

// ErrUnknownFile is returned when the file id is not part of the file set.
var ErrUnknownFile = errors.New("unknown file")

// Load processes the manifest stored in fs under file. Declarations are handled
// in document order in a single pass, so a name is visible only to the
// declarations that follow it.
//
// Problems with the declarations are reported in the returned bag; the error
// is reserved for cancellation and unknown files. A manifest that is not valid
// TOML yields a nil unit.
func Load(ctx context.Context, fs *source.FileSet, file source.FileID, opts Options) (*Unit, *diag.Bag, error) {
	limit := opts.MaxDiagnostics
	if limit == 0 {
		limit = DefaultMaxDiagnostics
	}
	bag := diag.NewBag(limit)

	f := fs.Get(file)
	if f == nil {
		return nil, bag, fmt.Errorf("%w: %d", ErrUnknownFile, file)
	}
	target := opts.Target
	if target.WordSize == 0 {
		target = layout.DefaultTarget()
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+filepath.Base(f.Path), trace.CurrentSpan(ctx))
	defer func() {
		span.WithExtra("diagnostics", strconv.Itoa(bag.Len())).End("")
	}()

	rep := diag.BagReporter{Bag: bag}
	m, unknown, err := DecodeManifest(f.Content)
	if err != nil {
		reportDecodeError(rep, f, err)
		return nil, bag, nil
	}
	for _, key := range unknown {
		diag.ReportWarning(rep, diag.DeclUnexpectedKey, source.Span{File: file},
			fmt.Sprintf("unexpected key %q is ignored", key)).Emit()
	}

	globals := symbols.NewScope(symbols.ScopeGlobal)
	unit := &Unit{
		Name:    unitName(m.Unit.Name, f.Path),
		File:    file,
		Globals: globals,
		Layout:  layout.New(target, globals),
	}
	d := &declarer{
		unit:   unit,
		rep:    rep,
		loc:    source.NewLocator(fs, file),
		engine: unit.Layout,
		tracer: tracer,
		parent: span.ID(),
		spans:  make(map[*symbols.Scope]map[string]source.Span),
	}
	for i := range m.Decls {
		if err := ctx.Err(); err != nil {
			return unit, bag, err
		}
		d.declareEntry(&m.Decls[i])
	}
	unit.Order = globals.Names()
	span.WithExtra("symbols", strconv.Itoa(globals.Len()))
	return unit, bag, nil
}

// LoadFile reads path into fs and processes it.
func LoadFile(ctx context.Context, fs *source.FileSet, path string, opts Options) (*Unit, *diag.Bag, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return Load(ctx, fs, id, opts)
}

func unitName(declared, path string) string {
	if name := source.NormalizeIdent(declared); name != "" {
		return name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func reportDecodeError(rep diag.Reporter, f *source.File, err error) {
	sp := source.Span{File: f.ID}
	msg := err.Error()
	var perr toml.ParseError
	if errors.As(err, &perr) {
		msg = perr.Message
		start, errStart := safecast.Conv[uint32](perr.Position.Start)
		end, errEnd := safecast.Conv[uint32](perr.Position.Start + perr.Position.Len)
		if errStart == nil && errEnd == nil && int(end) <= len(f.Content) {
			sp.Start, sp.End = start, end
		}
	}
	diag.ReportError(rep, diag.DeclParseError, sp, "invalid manifest: "+msg).Emit()
}
