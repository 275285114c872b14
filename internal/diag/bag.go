package diag

import (
	"fmt"
	"math"
	"sort"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit.
type Bag struct {
	items   []Diagnostic
	max     uint16
	dropped int
	// droppedErrors keeps errors cut by the limit visible to HasErrors.
	droppedErrors bool
}

// NewBag creates a bag holding at most max diagnostics; values outside
// uint16 are clamped.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		if max < 0 {
			limit = 0
		} else {
			limit = math.MaxUint16
		}
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(limit), 16)),
		max:   limit,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		b.dropped++
		if d.Severity >= SevError {
			b.droppedErrors = true
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Cap returns the configured limit.
func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether any diagnostic added to the bag is an error,
// including ones dropped over the limit.
func (b *Bag) HasErrors() bool {
	if b.droppedErrors {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Dropped returns how many diagnostics Add refused.
func (b *Bag) Dropped() int {
	return b.dropped
}

// Limit copies the bag into a new one holding at most max diagnostics.
// Whatever the copy drops still counts towards Dropped and HasErrors.
func (b *Bag) Limit(max int) *Bag {
	out := NewBag(max)
	for _, d := range b.items {
		out.Add(d)
	}
	out.dropped += b.dropped
	out.droppedErrors = out.droppedErrors || b.droppedErrors
	return out
}

// Len returns the number of stored diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders by file, start, end, severity (desc), code.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops diagnostics repeating an earlier Code+Primary pair.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code.ID(), d.Primary)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
