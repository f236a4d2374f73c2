// Package logger holds the process-wide structured logger of dlgen.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldPackage   = "package"
	FieldGenerator = "generator"
	FieldUnit      = "unit"
	FieldFile      = "file"
	FieldCount     = "count"
	FieldStage     = "stage"
	FieldDuration  = "duration"
)

var (
	// Logger is the global logger. It discards everything until Initialize runs.
	Logger *zap.SugaredLogger
	base   *zap.Logger
)

func init() {
	base = zap.NewNop()
	Logger = base.Sugar()
}

// Options configure Initialize.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string
	// JSON selects the JSON encoder instead of the console one.
	JSON bool
	// Output defaults to stderr; stdout carries command output.
	Output io.Writer
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.WarnLevel, errors.Newf("invalid log level %q (expected: debug|info|warn|error)", s)
	}
	return lvl, nil
}

// Initialize replaces the global logger.
func Initialize(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	base = zap.New(zapcore.NewCore(enc, zapcore.AddSync(out), lvl))
	Logger = base.Sugar()
	return nil
}

// Base returns the unsugared global logger, e.g. for the trace sink.
func Base() *zap.Logger {
	return base
}

// Named returns a child of the global logger.
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Sync flushes the global logger. Errors from syncing terminals are ignored.
func Sync() {
	_ = base.Sync()
}
