package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/trace"
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. It returns a cleanup function that flushes the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace flag")
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace-level flag")
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get trace-mode flag")
	}

	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	cfg := trace.Config{Level: level, OutputPath: traceOutput, Logger: logger.Base().Named("trace")}
	switch {
	case modeStr != "":
		if cfg.Mode, err = trace.ParseMode(modeStr); err != nil {
			return nil, err
		}
	case traceOutput == "":
		cfg.Mode = trace.ModeLog
	default:
		cfg.Mode = trace.ModeStream
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tracer")
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	activeTracer = tracer

	var once bool
	return func() {
		if once {
			return
		}
		once = true
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

var activeTracer trace.Tracer = trace.Nop

// dumpRecordedTrace writes the in-memory trace history to w after a failed
// command. It is a no-op unless --trace-mode is record or both.
func dumpRecordedTrace(w io.Writer) {
	rec, ok := trace.RecorderOf(activeTracer)
	if !ok {
		return
	}
	fmt.Fprintln(w, "trace: last recorded events")
	if err := rec.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
