package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":      zapcore.WarnLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Errorf("expected an error for an unknown level")
	}
}

func TestInitializeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(Options{Level: "info", JSON: true, Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = Initialize(Options{Output: &bytes.Buffer{}}) })

	Named("driver").Infow("units emitted", FieldCount, 3)
	Logger.Debugw("hidden")

	out := buf.String()
	if !strings.Contains(out, `"msg":"units emitted"`) || !strings.Contains(out, `"count":3`) {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, `"logger":"driver"`) {
		t.Errorf("missing logger name in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry leaked at info level")
	}
}
