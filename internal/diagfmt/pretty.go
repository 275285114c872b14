package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"minic/internal/diag"
	"minic/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgBlue)
	codeColor    = color.New(color.Faint)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <sev>[<CODE>]: <Message>
// затем строку манифеста с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	for i := range items {
		printOne(w, &items[i], fs, opts)
	}
}

func printOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	file := fs.Get(d.Primary.File)
	if file == nil {
		fmt.Fprintf(w, "%s: %s\n", label(d.Severity, d.Code, opts.Color), d.Message)
		return
	}
	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		formatPath(file, fs, opts.PathMode), start.Line, start.Col,
		label(d.Severity, d.Code, opts.Color), d.Message)
	if !opts.NoSource {
		printSource(w, file, d.Primary, start.Line, opts.Color)
	}
	if !opts.ShowNotes {
		return
	}
	for _, note := range d.Notes {
		tag := "note"
		if opts.Color {
			tag = noteColor.Sprint(tag)
		}
		if fs.Get(note.Span.File) == nil {
			fmt.Fprintf(w, "  %s: %s\n", tag, note.Msg)
			continue
		}
		nstart, _ := fs.Resolve(note.Span)
		fmt.Fprintf(w, "  %s: %d:%d: %s\n", tag, nstart.Line, nstart.Col, note.Msg)
	}
}

func label(sev diag.Severity, code diag.Code, useColor bool) string {
	name := strings.ToLower(sev.String())
	id := "[" + code.ID() + "]"
	if !useColor {
		return name + id
	}
	c := infoColor
	switch sev {
	case diag.SevError:
		c = errorColor
	case diag.SevWarning:
		c = warningColor
	}
	return c.Sprint(name) + codeColor.Sprint(id)
}

// printSource пишет строку и под ней ^~~~ от начала span до его конца
// (или до конца строки, если span многострочный).
func printSource(w io.Writer, f *source.File, span source.Span, line uint32, useColor bool) {
	lo, hi, ok := lineBounds(f, line)
	if !ok {
		return
	}
	text := string(f.Content[lo:hi])
	fmt.Fprintf(w, "    %s\n", text)

	from := clampOffset(int(span.Start)-lo, len(text))
	to := clampOffset(int(span.End)-lo, len(text))
	var pad strings.Builder
	for _, r := range text[:from] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(text[from:to])
	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	if useColor {
		marker = caretColor.Sprint(marker)
	}
	fmt.Fprintf(w, "    %s%s\n", pad.String(), marker)
}

func clampOffset(off, limit int) int {
	if off < 0 {
		return 0
	}
	if off > limit {
		return limit
	}
	return off
}

// lineBounds возвращает байтовые границы строки line (1-based) без '\n'.
func lineBounds(f *source.File, line uint32) (lo, hi int, ok bool) {
	if line == 0 {
		return 0, 0, false
	}
	if line > 1 {
		if int(line-2) >= len(f.LineIdx) {
			return 0, 0, false
		}
		lo = int(f.LineIdx[line-2]) + 1
	}
	hi = len(f.Content)
	if int(line-1) < len(f.LineIdx) {
		hi = int(f.LineIdx[line-1])
	}
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
