package trace

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// StorageMode determines where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRecord                        // kept in memory, dumped on failure
	ModeBoth                          // stream and record
	ModeLog                           // structured logger
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRecord:
		return "record"
	case ModeBoth:
		return "both"
	case ModeLog:
		return "log"
	default:
		return "unknown"
	}
}

// ParseMode converts a --trace-mode value.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream":
		return ModeStream, nil
	case "record":
		return ModeRecord, nil
	case "both":
		return ModeBoth, nil
	case "log":
		return ModeLog, nil
	default:
		return 0, errors.Newf("invalid trace mode %q (expected: stream|record|both|log)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format // FormatAuto picks NDJSON for .ndjson and .jsonl paths
	// Output takes precedence over OutputPath; "-" or "" mean stderr.
	Output     io.Writer
	OutputPath string
	// RecordSize bounds the in-memory history, default 4096.
	RecordSize int
	Logger     *zap.Logger
}

// New creates a Tracer based on cfg.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatFor(cfg.OutputPath)
	}

	switch cfg.Mode {
	case ModeStream, 0:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, format), nil
	case ModeRecord:
		return NewRecorder(cfg.RecordSize, cfg.Level), nil
	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return &tee{gate: gate{cfg.Level}, tracers: []Tracer{
			NewStreamTracer(w, cfg.Level, format),
			NewRecorder(cfg.RecordSize, cfg.Level),
		}}, nil
	case ModeLog:
		if cfg.Logger == nil {
			return nil, errors.New("trace: log mode needs a logger")
		}
		return NewZapTracer(cfg.Logger, cfg.Level), nil
	default:
		return nil, errors.Newf("unknown trace mode %v", cfg.Mode)
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, errors.Wrap(err, "open trace output")
	}
	return f, nil
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }
