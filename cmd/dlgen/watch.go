package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/logger"
)

const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [patterns]",
	Short: "Regenerate whenever a source file of the matched packages changes",
	RunE:  runWatch,
}

func init() {
	addGenerateFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	// the progress view would fight with the log of regenerations
	s.UI = uiModeOff

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	defer w.Close()

	log := logger.Named("watch")
	watched := make(map[string]bool)
	regenerate := func() {
		sess := newSession(s, cmd.OutOrStdout(), cmd.ErrOrStderr())
		rep, err := generateOnce(cmd, sess)
		if sess.comp != nil {
			for _, dir := range sess.dirs() {
				if watched[dir] {
					continue
				}
				if err := w.Add(dir); err != nil {
					log.Warnw("cannot watch directory", "dir", dir, "error", err)
					continue
				}
				watched[dir] = true
			}
		}
		switch {
		case err != nil:
			fmt.Fprintf(sess.stderr, "dlgen: %v\n", err)
		case sess.result.HasErrors():
			_ = sess.failure()
		case !s.Quiet:
			fmt.Fprintf(sess.stderr, "dlgen: %s %d written, %d unchanged, %d removed\n",
				time.Now().Format("15:04:05"), len(rep.Written), len(rep.Unchanged), len(rep.Removed))
		}
	}

	regenerate()
	if len(watched) == 0 {
		return errors.New("watch: no package directories to watch")
	}
	if !s.Quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "dlgen: watching %d directories, press Ctrl+C to stop\n", len(watched))
	}
	return watchLoop(ctx, w.Events, w.Errors, watchDebounce, regenerate)
}

// watchLoop calls fn once per burst of relevant events, after the burst has
// been quiet for wait.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, wait time.Duration, fn func()) error {
	log := logger.Named("watch")
	timer := time.NewTimer(wait)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			log.Debugw("change", logger.FieldFile, ev.Name, "op", ev.Op.String())
			timer.Reset(wait)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Warnw("watcher error", "error", err)
		case <-timer.C:
			fn()
		}
	}
}

// relevant reports whether ev may change the output of a run: a Go source
// file that was not written by dlgen.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if !strings.HasSuffix(base, ".go") || strings.HasPrefix(base, ".") {
		return false
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return true
	}
	f, err := os.Open(ev.Name)
	if err != nil {
		return true
	}
	defer f.Close()
	head := make([]byte, 64)
	n, _ := f.Read(head)
	return !host.IsGeneratedSource(head[:n])
}
