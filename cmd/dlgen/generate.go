package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/driver"
	"github.com/darklink/dlgen/internal/output"
)

var generateCmd = &cobra.Command{
	Use:   "generate [patterns]",
	Short: "Generate code for the //dl: directives of the matched packages",
	Long:  `Load the packages matched by the patterns (default ./... or the manifest's patterns), run every generator and write the generated files next to the sources`,
	RunE:  runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	sess := newSession(s, cmd.OutOrStdout(), cmd.ErrOrStderr())
	rep, err := generateOnce(cmd, sess)
	if err != nil {
		return err
	}
	if !s.Quiet && !machineFormat(s.Format) && !sess.result.HasErrors() {
		fmt.Fprintf(sess.stderr, "dlgen: %d written, %d unchanged, %d removed\n", len(rep.Written), len(rep.Unchanged), len(rep.Removed))
	}
	return sess.failure()
}

// generateOnce loads, generates and writes. Diagnostics, timings and the
// report are emitted before it returns.
func generateOnce(cmd *cobra.Command, sess *session) (*output.Report, error) {
	ctx := cmd.Context()
	if err := sess.load(ctx); err != nil {
		return nil, err
	}
	var rep *output.Report
	err := sess.generate(ctx, "dlgen generate", func(sink driver.ProgressSink) error {
		done := sess.track("write")
		start := time.Now()
		writeEvents(sink, sess.comp, driver.StatusWorking, 0, nil)
		var err error
		rep, err = output.Write(sess.result.Units, output.Options{
			Prune: sess.settings.Prune,
			Dirs:  sess.dirs(),
			Jobs:  sess.settings.Jobs,
		})
		if err != nil {
			done("failed")
			writeEvents(sink, sess.comp, driver.StatusError, time.Since(start), err)
			return err
		}
		done(fmt.Sprintf("%d written", len(rep.Written)))
		writeEvents(sink, sess.comp, driver.StatusDone, time.Since(start), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rep == nil {
		rep = &output.Report{}
	}
	if err := sess.renderDiagnostics(); err != nil {
		return nil, err
	}
	sess.printTimings()
	if sess.settings.Report != "" {
		if err := writeReport(sess.settings.Report, buildReport("generate", sess, rep, nil)); err != nil {
			return nil, err
		}
	}
	return rep, nil
}
