package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"minic/internal/source"
)

// goldenLine is one rendered row; notes become rows of their own.
type goldenLine struct {
	sev  string
	code string
	path string
	pos  source.LineCol
	msg  string
}

func (l goldenLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
}

func compareGolden(a, b goldenLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.pos.Line, b.pos.Line),
		cmp.Compare(a.pos.Col, b.pos.Col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatGoldenDiagnostics renders diagnostics for golden comparisons, one
// "<severity> <code> <path>:<line>:<col> <message>" row each, sorted by
// position. With includeNotes every note adds a "note" row carrying the code
// of its diagnostic. Spans into unknown files are skipped.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	var rows []goldenLine
	for i := range diags {
		d := &diags[i]
		code := d.Code.ID()
		if row, ok := golden(fs, d.Primary, severityLabel(d.Severity), code, d.Message); ok {
			rows = append(rows, row)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if row, ok := golden(fs, n.Span, "note", code, n.Msg); ok {
				rows = append(rows, row)
			}
		}
	}
	slices.SortStableFunc(rows, compareGolden)

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.String()
	}
	return strings.Join(out, "\n")
}

func golden(fs *source.FileSet, span source.Span, sev, code, msg string) (goldenLine, bool) {
	f := fs.Get(span.File)
	if f == nil {
		return goldenLine{}, false
	}
	start, _ := fs.Resolve(span)
	return goldenLine{
		sev:  sev,
		code: code,
		path: goldenPath(f.FormatPath("relative", fs.BaseDir())),
		pos:  start,
		msg:  oneLine(msg),
	}, true
}

// goldenPath uses forward slashes and drops leading "./".
func goldenPath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

func severityLabel(sev Severity) string {
	return strings.ToLower(sev.String())
}

func oneLine(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	return strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))
}
