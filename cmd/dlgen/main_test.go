package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/darklink/dlgen/internal/diagfmt"
	"github.com/darklink/dlgen/internal/driver"
	"github.com/darklink/dlgen/internal/marker"
	"github.com/darklink/dlgen/internal/project"
)

func TestMergeSettings(t *testing.T) {
	cfg := project.Config{
		Generate: project.GenerateConfig{
			Patterns:    []string{"./models/..."},
			Tags:        []string{"integration"},
			EmitMarkers: "used",
			Prune:       true,
			Jobs:        4,
		},
		Output: project.OutputConfig{Format: "short", MaxDiagnostics: 20},
	}

	s, err := mergeSettings(cfg, overrides{})
	if err != nil {
		t.Fatalf("mergeSettings: %v", err)
	}
	if s.Patterns[0] != "./models/..." || s.EmitMarkers != driver.MarkersUsed || s.Format != diagfmt.FormatShort {
		t.Fatalf("manifest values not applied: %+v", s)
	}
	if !s.Prune || s.Jobs != 4 || s.MaxDiagnostics != 20 {
		t.Fatalf("manifest values not applied: %+v", s)
	}

	prune := false
	jobs := 1
	format := "json"
	var tags []string
	s, err = mergeSettings(cfg, overrides{Patterns: []string{"."}, Prune: &prune, Jobs: &jobs, Format: &format, Tags: &tags})
	if err != nil {
		t.Fatalf("mergeSettings: %v", err)
	}
	if s.Patterns[0] != "." || s.Prune || s.Jobs != 1 || s.Format != diagfmt.FormatJSON || len(s.Tags) != 0 {
		t.Fatalf("flags did not override the manifest: %+v", s)
	}
}

func TestMergeSettings_Defaults(t *testing.T) {
	s, err := mergeSettings(project.Config{}, overrides{})
	if err != nil {
		t.Fatalf("mergeSettings: %v", err)
	}
	if len(s.Patterns) != 1 || s.Patterns[0] != "./..." {
		t.Errorf("patterns = %v", s.Patterns)
	}
	if s.EmitMarkers != driver.MarkersAlways || s.Format != diagfmt.FormatPretty {
		t.Errorf("defaults = %+v", s)
	}
}

func TestMergeSettings_Invalid(t *testing.T) {
	bad := "sometimes"
	if _, err := mergeSettings(project.Config{}, overrides{EmitMarkers: &bad}); err == nil {
		t.Error("expected an error for an unknown emit-markers mode")
	}
	jobs := -1
	if _, err := mergeSettings(project.Config{}, overrides{Jobs: &jobs}); err == nil {
		t.Error("expected an error for negative jobs")
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Error("expected an error")
	}
	if uiModeOff.String() != "off" {
		t.Errorf("String() = %q", uiModeOff)
	}
}

func TestProgressView(t *testing.T) {
	if (settings{UI: uiModeOff}).progressView() || !(settings{UI: uiModeOn, Quiet: true}).progressView() {
		t.Error("explicit modes must win")
	}
	if (settings{UI: uiModeAuto, Quiet: true}).progressView() {
		t.Error("auto must not render in quiet mode")
	}
	if (settings{UI: uiModeAuto, Format: diagfmt.FormatJSON}).progressView() {
		t.Error("auto must not render next to machine-readable output")
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "model.go")
	gen := filepath.Join(dir, "model_notify.go")
	if err := os.WriteFile(user, []byte("package demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(gen, []byte(marker.GeneratedHeader+"\n\npackage demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: user, Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: gen, Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: gen, Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: user, Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "README.md"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.Join(dir, ".dlgen-123"), Op: fsnotify.Create}, false},
	}
	for _, tc := range cases {
		if got := relevant(tc.ev); got != tc.want {
			t.Errorf("relevant(%v) = %v, want %v", tc.ev, got, tc.want)
		}
	}
}

func TestWatchLoop_Debounces(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "model.go")
	if err := os.WriteFile(file, []byte("package demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, 50*time.Millisecond, func() { calls.Add(1) })
	}()

	for range 5 {
		events <- fsnotify.Event{Name: file, Op: fsnotify.Write}
	}
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watchLoop: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one regeneration for a burst, got %d", got)
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	r := runReport{Tool: "dlgen", Version: "1.0.0", Command: "generate", Units: []string{"example.com/demo.markers"}}

	jsonPath := filepath.Join(dir, "report.json")
	if err := writeReport(jsonPath, r); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if decoded["command"] != "generate" {
		t.Errorf("command = %v", decoded["command"])
	}

	mpPath := filepath.Join(dir, "report.msgpack")
	if err := writeReport(mpPath, r); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	data, err = os.ReadFile(mpPath)
	if err != nil {
		t.Fatal(err)
	}
	var back runReport
	if err := msgpack.Unmarshal(data, &back); err != nil {
		t.Fatalf("report is not msgpack: %v", err)
	}
	if back.Units[0] != "example.com/demo.markers" {
		t.Errorf("units = %v", back.Units)
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "dlgen" || payload.Version == "" {
		t.Errorf("payload = %+v", payload)
	}
}
