package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/darklink/dlgen/internal/autonotify"
	"github.com/darklink/dlgen/internal/diagfmt"
	"github.com/darklink/dlgen/internal/driver"
	"github.com/darklink/dlgen/internal/enummatch"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/observ"
	"github.com/darklink/dlgen/internal/ui"
)

// generators returns fresh instances of every generator dlgen runs.
func generators() []genkit.Generator {
	return []genkit.Generator{autonotify.New(), enummatch.New()}
}

// session is one load-and-run of the generators.
type session struct {
	settings settings
	stdout   io.Writer
	stderr   io.Writer
	timer    *observ.Timer

	comp   *host.Compilation
	result *driver.Result
}

func newSession(s settings, stdout, stderr io.Writer) *session {
	return &session{settings: s, stdout: stdout, stderr: stderr, timer: observ.NewTimer()}
}

func (s *session) load(ctx context.Context) error {
	done := s.timer.Track("load")
	comp, err := host.Load(ctx, host.LoadConfig{
		Dir:      s.settings.Dir,
		Patterns: s.settings.Patterns,
		Tags:     s.settings.Tags,
		Tests:    s.settings.Tests,
	})
	if err != nil {
		done("failed")
		return err
	}
	done(fmt.Sprintf("%d packages", len(comp.Packages)))
	s.comp = comp
	logger.Named("cli").Infow("packages loaded", logger.FieldCount, len(comp.Packages))
	return nil
}

func (s *session) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range s.comp.Packages {
		if p.Dir == "" || seen[p.Dir] {
			continue
		}
		seen[p.Dir] = true
		dirs = append(dirs, p.Dir)
	}
	sort.Strings(dirs)
	return dirs
}

func (s *session) packagePaths() []string {
	paths := make([]string, len(s.comp.Packages))
	for i, p := range s.comp.Packages {
		paths[i] = p.Path
	}
	return paths
}

// generate runs the generators and then after, both reporting to the same
// progress sink. With the terminal UI enabled the work runs on its own
// goroutine while the UI owns the terminal.
func (s *session) generate(ctx context.Context, title string, after func(driver.ProgressSink) error) error {
	work := func(sink driver.ProgressSink) error {
		res, err := driver.Run(ctx, s.comp, generators(), driver.Options{
			EmitMarkers:    s.settings.EmitMarkers,
			Jobs:           s.settings.Jobs,
			MaxDiagnostics: s.settings.MaxDiagnostics,
			Progress:       sink,
		})
		if err != nil {
			return err
		}
		s.result = res
		if after == nil || res.HasErrors() {
			return nil
		}
		return after(sink)
	}

	if !s.settings.progressView() {
		return work(driver.NopSink{})
	}
	events := make(chan driver.Event, 256)
	errCh := make(chan error, 1)
	go func() {
		errCh <- work(driver.ChannelSink{Ch: events})
		close(events)
	}()
	uiErr := ui.Run(s.stdout, title, s.packagePaths(), events)
	err := <-errCh
	if err != nil {
		return err
	}
	return uiErr
}

// renderDiagnostics prints the diagnostics of the run. Pretty and short go to
// stderr, machine formats to stdout.
func (s *session) renderDiagnostics() error {
	if s.result == nil || s.result.Diagnostics.Len() == 0 {
		return nil
	}
	cwd, _ := os.Getwd()
	items := s.result.Diagnostics.Items()
	w := s.stderr
	if s.settings.Format == diagfmt.FormatJSON || s.settings.Format == diagfmt.FormatMsgpack {
		w = s.stdout
	}
	return diagfmt.Render(w, s.settings.Format, items,
		diagfmt.PrettyOpts{Color: colorEnabled(), BaseDir: cwd, ShowNotes: true},
		diagfmt.JSONOpts{BaseDir: cwd, IncludeNotes: true})
}

// failure returns errReported when the run reported errors.
func (s *session) failure() error {
	if !s.result.HasErrors() {
		return nil
	}
	errs := 0
	for _, d := range s.result.Diagnostics.Items() {
		if d.Severity.Blocking() {
			errs++
		}
	}
	if !s.settings.Quiet && !machineFormat(s.settings.Format) {
		fmt.Fprintf(s.stderr, "dlgen: %d error(s), nothing written\n", errs)
	}
	return errReported
}

func (s *session) printTimings() {
	if !s.settings.Timings {
		return
	}
	fmt.Fprint(s.stderr, s.timer.Summary())
	if s.result != nil {
		fmt.Fprint(s.stderr, s.result.Timings.Summary())
	}
}

func (s *session) track(name string) func(note string) {
	return s.timer.Track(name)
}

func machineFormat(f diagfmt.Format) bool {
	return f == diagfmt.FormatJSON || f == diagfmt.FormatMsgpack
}

func writeEvents(sink driver.ProgressSink, comp *host.Compilation, status driver.Status, elapsed time.Duration, err error) {
	for _, p := range comp.Packages {
		sink.OnEvent(driver.Event{Package: p.Path, Stage: driver.StageWrite, Status: status, Err: err, Elapsed: elapsed})
	}
}
