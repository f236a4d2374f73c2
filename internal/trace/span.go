package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seq   atomic.Uint64
	spans atomic.Uint64
)

// Span is an open span. The zero Span and spans of disabled tracers record
// nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	counts  map[string]int
}

// Begin opens a span under parent, 0 for a root span.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{tracer: t, id: spans.Add(1), parent: parent, scope: scope, name: name, started: time.Now()}
	t.Emit(&Event{
		Time:   s.started,
		Seq:    seq.Add(1),
		Kind:   KindSpanBegin,
		Scope:  scope,
		SpanID: s.id,
		Parent: parent,
		Name:   name,
	})
	return s
}

// Count attaches a tally to the end event, e.g. the owners a generator found.
func (s *Span) Count(key string, n int) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[key] = n
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:    now,
		Seq:     seq.Add(1),
		Kind:    KindSpanEnd,
		Scope:   s.scope,
		SpanID:  s.id,
		Parent:  s.parent,
		Name:    s.name,
		Detail:  detail,
		Elapsed: elapsed,
		Counts:  s.counts,
	})
	return elapsed
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Start opens a span under the span carried by ctx, using the tracer of ctx,
// and returns a context carrying the new span.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	span := Begin(FromContext(ctx), scope, name, SpanID(ctx))
	if span.id == 0 {
		return span, ctx
	}
	return span, withSpanID(ctx, span.id)
}

// Point emits an instant event under the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Seq:    seq.Add(1),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: SpanID(ctx),
		Name:   name,
		Detail: detail,
	})
}
