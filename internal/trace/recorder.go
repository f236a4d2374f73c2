package trace

import (
	"io"
	"sync"
)

// Recorder keeps the most recent events of a run in memory so they can be
// dumped after the run failed.
type Recorder struct {
	gate

	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewRecorder returns a Recorder holding up to capacity events.
func NewRecorder(capacity int, level Level) *Recorder {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Recorder{gate: gate{level}, events: make([]Event, capacity)}
}

func (r *Recorder) Emit(ev *Event) {
	if !r.level.ShouldEmit(ev.Scope) {
		return
	}
	r.mu.Lock()
	r.events[r.next] = *ev
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// Events returns the recorded events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Dump writes the recorded events to w.
func (r *Recorder) Dump(w io.Writer, format Format) error {
	for _, ev := range r.Events() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Flush() error { return nil }
func (r *Recorder) Close() error { return nil }

// tee forwards events to several tracers.
type tee struct {
	gate
	tracers []Tracer
}

func (t *tee) Emit(ev *Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

func (t *tee) Flush() error {
	var first error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *tee) Close() error {
	var first error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecorderOf returns the Recorder behind t, if any.
func RecorderOf(t Tracer) (*Recorder, bool) {
	switch t := t.(type) {
	case *Recorder:
		return t, true
	case *tee:
		for _, tr := range t.tracers {
			if r, ok := RecorderOf(tr); ok {
				return r, true
			}
		}
	}
	return nil, false
}
