package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next event sequence number, process-wide.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID. Zero is never returned and means "no span".
func NextSpanID() uint64 { return spanCounter.Add(1) }

// Span is an operation between Begin and End. A disabled span is still
// usable: every method becomes a no-op and ID reports 0.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

func active(t Tracer) bool { return t != nil && t.Enabled() }

// Begin opens a span under parent (0 for a root span) and emits SpanBegin.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !active(t) || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	s.emit(KindSpanBegin, s.started, "", nil)
	return s
}

// Point emits a single instant event attached to parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !active(t) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}

// End emits SpanEnd carrying detail and the collected extras, and returns
// how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || !active(s.tracer) {
		return 0
	}
	now := time.Now()
	s.emit(KindSpanEnd, now, detail, s.extra)
	return now.Sub(s.started)
}

// WithExtra records key=value for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !active(s.tracer) {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for disabled spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) emit(kind Kind, at time.Time, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}
