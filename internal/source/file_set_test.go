package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("decls.toml", []byte("a = 1"), 0)
	id2 := fs.Add("decls.toml", []byte("a = 2"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("decls.toml")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "a = 1" {
		t.Errorf("old version content = %q", got)
	}
	if fs.Get(FileID(99)) != nil {
		t.Errorf("expected nil for out-of-range id")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.toml", []byte("ab\ncd\n\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // the newline itself
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decls.toml")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a = 1\r\nb = 2\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a = 1\nb = 2\n" {
		t.Fatalf("content not normalized: %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := f.FormatPath("basename", ""); got != "decls.toml" {
		t.Errorf("basename = %q", got)
	}
	if got := f.FormatPath("relative", dir); got != "decls.toml" {
		t.Errorf("relative = %q", got)
	}
}

func TestNormalizeIdent(t *testing.T) {
	// "é" composed vs. "e" + combining acute
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if NormalizeIdent(decomposed) != composed {
		t.Fatalf("expected NFC form %q, got %q", composed, NormalizeIdent(decomposed))
	}
	if NormalizeIdent("  x ") != "x" {
		t.Fatalf("expected trimmed name")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 12}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Fatalf("cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover should be a no-op, got %v", got)
	}
	if !(Span{Start: 3, End: 3}).Empty() || a.Len() != 10 {
		t.Fatalf("Empty/Len mismatch")
	}
}
