package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/version"
)

// errReported is returned by commands that already printed why they failed.
var errReported = errors.New("failed")

var traceCleanup = func() {}

var rootCmd = &cobra.Command{
	Use:           "dlgen",
	Short:         "Compile-time code augmentation for Go packages",
	Long:          `dlgen reads //dl: directives in Go packages and generates change-notification accessors and exhaustive Match helpers next to them`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		if err := setupLogger(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		traceCleanup()
		logger.Sync()
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(markersCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics to keep (0 = manifest or unlimited)")
	flags.String("format", "", "diagnostics format (pretty|short|json|msgpack)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("trace", "", "trace output file (- for stderr); empty traces through the logger")
	flags.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	flags.String("trace-mode", "", "trace storage (stream|record|both|log); record keeps events in memory and prints them when the command fails")
	flags.String("ui", "auto", "progress view (auto|on|off)")

	err := rootCmd.Execute()
	if err != nil {
		dumpRecordedTrace(os.Stderr)
	}
	traceCleanup()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		}
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stderr)
	default:
		return errors.Newf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func setupLogger(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	level, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	asJSON, err := flags.GetBool("log-json")
	if err != nil {
		return err
	}
	return logger.Initialize(logger.Options{Level: level, JSON: asJSON, Output: cmd.ErrOrStderr()})
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled() bool {
	return !color.NoColor
}
