package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/output"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [patterns]",
	Short: "Remove the files generated by dlgen",
	Long:  `Remove every file carrying the dlgen header from the directories of the matched packages`,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().StringSlice("tags", nil, "build tags used to select files")
	cleanCmd.Flags().Bool("tests", false, "include test files")
}

func runClean(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	sess := newSession(s, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err := sess.load(cmd.Context()); err != nil {
		return err
	}
	done := sess.track("clean")
	removed, err := output.Clean(sess.dirs())
	if err != nil {
		done("failed")
		return err
	}
	done(fmt.Sprintf("%d removed", len(removed)))
	if !s.Quiet {
		for _, path := range removed {
			fmt.Fprintf(sess.stdout, "removed %s\n", path)
		}
	}
	sess.printTimings()
	return nil
}
