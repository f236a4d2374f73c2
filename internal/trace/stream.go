package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes events to w as they happen. Output is buffered and
// flushed whenever a run span ends, so a trace file is complete per run even
// in watch mode.
type StreamTracer struct {
	gate
	format Format

	mu  sync.Mutex
	buf *bufio.Writer
	out io.Writer
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{gate: gate{level}, format: format, buf: bufio.NewWriter(w), out: w}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// A broken trace sink must not fail the run.
	_, _ = t.buf.Write(data)
	if ev.Kind == KindSpanEnd && ev.Scope == ScopeDriver {
		_ = t.buf.Flush()
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Flush()
}

// Close flushes and closes the underlying writer when it is an io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
