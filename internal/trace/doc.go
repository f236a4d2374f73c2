// Package trace records spans and instant events of a dlgen run to help
// diagnose slow or stuck runs.
//
// Tracers:
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - Recorder: bounded in-memory history, dumped when a run fails
//   - ZapTracer: forwards events to the structured logger
//
// A level is the finest scope emitted: phase emits driver and pass events,
// detail adds per-package directive counts, debug adds per-candidate events.
// Span ends carry their duration and the tallies set with Span.Count.
//
// Tracers are propagated through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopePass, "collect")
//	defer span.End("")
package trace
