package source

import (
	"bytes"
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// Locator finds declaration names inside a manifest file. Decoded manifests
// lose byte positions, so the locator searches for the quoted name moving
// forward through the file: declarations are visited in document order and
// every hit advances the cursor past it.
type Locator struct {
	file   *File
	cursor int
}

// NewLocator creates a locator over the given file of fs.
func NewLocator(fs *FileSet, id FileID) *Locator {
	return &Locator{file: fs.Get(id)}
}

// Find returns the span of the next quoted occurrence of name. When the name is
// not found after the cursor the search restarts from the beginning of the file;
// when it is absent altogether an empty span at offset 0 is returned.
func (l *Locator) Find(name string) Span {
	if l == nil || l.file == nil {
		return Span{}
	}
	needle := []byte(strconv.Quote(name))
	content := l.file.Content

	idx := bytes.Index(content[l.cursor:], needle)
	if idx >= 0 {
		idx += l.cursor
	} else {
		idx = bytes.Index(content, needle)
	}
	if idx < 0 {
		return Span{File: l.file.ID}
	}
	l.cursor = idx + len(needle)

	// skip the opening quote so the span covers the bare name
	return Span{
		File:  l.file.ID,
		Start: mustU32(idx + 1),
		End:   mustU32(idx + len(needle) - 1),
	}
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}
