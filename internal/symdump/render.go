package symdump

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextOptions controls RenderText.
type TextOptions struct {
	Color bool
	// MaxCell truncates longer cells with "..."; 0 disables truncation.
	MaxCell int
}

var columns = []string{"NAME", "KIND", "TYPE", "STORAGE", "DETAIL"}

// RenderText writes snap as an aligned table. Fields and locals are listed
// indented under their struct or function.
func RenderText(w io.Writer, snap *Snapshot, opts TextOptions) error {
	rows := [][]string{columns}
	for i := range snap.Globals {
		g := &snap.Globals[i]
		rows = append(rows, row("", g, storageText(g, false)))
		for j := range g.Fields {
			rows = append(rows, row("  ", &g.Fields[j], storageText(&g.Fields[j], true)))
		}
		for j := range g.Locals {
			rows = append(rows, row("  ", &g.Locals[j], storageText(&g.Locals[j], false)))
		}
	}
	if opts.MaxCell > 0 {
		for _, r := range rows {
			for i := range r {
				r[i] = truncate(r[i], opts.MaxCell)
			}
		}
	}

	widths := make([]int, len(columns))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	title := "unit " + snap.Unit
	header := formatRow(rows[0], widths)
	if opts.Color {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
		headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
		title = titleStyle.Render(title)
		header = headerStyle.Render(header)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(header)
	b.WriteByte('\n')
	for _, r := range rows[1:] {
		b.WriteString(formatRow(r, widths))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func row(indent string, e *Entry, storage string) []string {
	return []string{indent + e.Name, e.Kind, e.Type, storage, detailText(e)}
}

func storageText(e *Entry, field bool) string {
	switch {
	case field && e.Offset != nil:
		return "+" + strconv.Itoa(*e.Offset)
	case e.Local && e.Offset != nil:
		return "local " + strconv.Itoa(*e.Offset)
	default:
		return "global"
	}
}

func detailText(e *Entry) string {
	if e.Signature != "" {
		return fmt.Sprintf("%s params=%d locals=%d", e.Signature, e.ParamSpace, e.LocalSpace)
	}
	if e.Size > 0 {
		return "size=" + strconv.Itoa(e.Size)
	}
	return ""
}

func formatRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(cells)-1 {
			b.WriteString(cell)
			continue
		}
		b.WriteString(runewidth.FillRight(cell, widths[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// RenderJSON writes snap as indented JSON.
func RenderJSON(w io.Writer, snap *Snapshot) error {
	return encodeJSON(w, snap)
}

// RenderJSONAll writes snaps as one JSON array; nil snaps become an empty array.
func RenderJSONAll(w io.Writer, snaps []*Snapshot) error {
	if snaps == nil {
		snaps = []*Snapshot{}
	}
	return encodeJSON(w, snaps)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
