package ui

import (
	"strings"
	"testing"

	"github.com/darklink/dlgen/internal/driver"
)

func TestApplyStages(t *testing.T) {
	m := NewProgressModel("dlgen generate", []string{"example.com/a", "example.com/b"}, nil).(*progressModel)

	for _, p := range []string{"example.com/a", "example.com/b"} {
		m.apply(driver.Event{Package: p, Stage: driver.StageCollect, Status: driver.StatusQueued})
	}
	m.apply(driver.Event{Package: "example.com/a", Stage: driver.StageCollect, Status: driver.StatusDone})
	if got, want := m.percent(), 0.25; got != want {
		t.Errorf("percent after one package = %v, want %v", got, want)
	}

	m.apply(driver.Event{Package: "example.com/b", Stage: driver.StageCollect, Status: driver.StatusDone})
	m.apply(driver.Event{Stage: driver.StageAnalyze, Status: driver.StatusWorking})
	if !m.stages[driver.StageCollect].done || !m.stages[driver.StageAnalyze].running {
		t.Fatalf("collect should be done and analyze running")
	}

	m.apply(driver.Event{Package: "example.com/b", Stage: driver.StageEmit, Status: driver.StatusDone})
	m.apply(driver.Event{Package: "example.com/b", Stage: driver.StageEmit, Status: driver.StatusDone})
	m.apply(driver.Event{Package: "example.com/unknown", Stage: driver.StageEmit, Status: driver.StatusDone})
	if !m.stages[driver.StageAnalyze].done {
		t.Error("emit events close the analyze stage")
	}
	if got := m.pkgs[1].units; got != 2 {
		t.Errorf("b: %d units", got)
	}
	if got := m.stages[driver.StageEmit].count; got != 3 {
		t.Errorf("emit count = %d", got)
	}

	m.apply(driver.Event{Package: "example.com/a", Stage: driver.StageWrite, Status: driver.StatusError})
	if !m.pkgs[0].failed || !m.stages[driver.StageWrite].failed {
		t.Error("write error not recorded")
	}
	if got := m.percent(); got != 1 {
		t.Errorf("percent = %v, want 1", got)
	}

	view := m.View()
	for _, want := range []string{"dlgen generate", "collect  2/2 packages", "emit     3 units", "example.com/b", "2 units", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("example.com/very/long/package", 12); got != "example.c..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
