package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check [patterns]",
	Short: "Report generated files that are out of date",
	Long:  `Run the generators without writing and print a diff for every generated file that differs from the disk. Exits 1 on drift`,
	RunE:  runCheck,
}

func init() {
	addGenerateFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	sess := newSession(s, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if err := sess.load(ctx); err != nil {
		return err
	}
	if err := sess.generate(ctx, "dlgen check", nil); err != nil {
		return err
	}
	if err := sess.renderDiagnostics(); err != nil {
		return err
	}
	if err := sess.failure(); err != nil {
		return err
	}

	done := sess.track("check")
	drifts, err := output.Check(sess.result.Units, sess.dirs())
	if err != nil {
		done("failed")
		return err
	}
	done(fmt.Sprintf("%d drifted", len(drifts)))
	sess.printTimings()
	if s.Report != "" {
		if err := writeReport(s.Report, buildReport("check", sess, nil, drifts)); err != nil {
			return err
		}
	}

	if len(drifts) == 0 {
		if !s.Quiet && !machineFormat(s.Format) {
			fmt.Fprintln(sess.stderr, "dlgen: generated files are up to date")
		}
		return nil
	}
	if !machineFormat(s.Format) {
		printDrifts(sess, drifts)
	}
	return errReported
}

func printDrifts(sess *session, drifts []output.Drift) {
	kind := color.New(color.FgYellow, color.Bold)
	for _, d := range drifts {
		fmt.Fprintf(sess.stderr, "%s %s\n", kind.Sprintf("%-8s", d.Kind), d.Path)
		if !sess.settings.Quiet && d.Diff != "" {
			fmt.Fprint(sess.stdout, d.Diff)
		}
	}
	fmt.Fprintf(sess.stderr, "dlgen: %d generated file(s) out of date; run dlgen generate\n", len(drifts))
}
