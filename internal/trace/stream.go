package trace

import (
	"io"
	"sync"
)

// StreamTracer formats every accepted event and writes it straight away.
// Writes are serialized; parallel workers share one tracer.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
}

// NewStreamTracer writes events at or below level to out.
func NewStreamTracer(out io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: out, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	// ошибки записи игнорируются: трасса не должна ломать обработку
	_, _ = t.out.Write(line) //nolint:errcheck
	t.mu.Unlock()
}

// Flush forwards to out when it buffers (bufio.Writer and friends).
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.out.(interface{ Flush() error })
	if !ok {
		return nil
	}
	return f.Flush()
}

// Close flushes, then closes out if it is closable.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	c, ok := t.out.(io.Closer)
	if !ok {
		return nil
	}
	return c.Close()
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level != LevelOff }
