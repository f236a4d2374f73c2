package trace

import (
	"go.uber.org/zap"
)

// ZapTracer forwards events to a zap logger at debug level.
type ZapTracer struct {
	gate
	log *zap.Logger
}

// NewZapTracer creates a tracer writing to log. A nil logger discards events.
func NewZapTracer(log *zap.Logger, level Level) *ZapTracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapTracer{gate: gate{level}, log: log.Named("trace")}
}

func (t *ZapTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	fields := make([]zap.Field, 0, 6+len(ev.Counts))
	fields = append(fields,
		zap.String("kind", ev.Kind.String()),
		zap.String("scope", ev.Scope.String()),
	)
	if ev.SpanID != 0 {
		fields = append(fields, zap.Uint64("span", ev.SpanID))
	}
	if ev.Parent != 0 {
		fields = append(fields, zap.Uint64("parent", ev.Parent))
	}
	if ev.Kind == KindSpanEnd {
		fields = append(fields, zap.Duration("elapsed", ev.Elapsed))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	for k, n := range ev.Counts {
		fields = append(fields, zap.Int(k, n))
	}
	t.log.Debug(ev.Name, fields...)
}

func (t *ZapTracer) Flush() error {
	// Sync fails on terminals and pipes; those need no flushing.
	_ = t.log.Sync()
	return nil
}

func (t *ZapTracer) Close() error { return t.Flush() }
