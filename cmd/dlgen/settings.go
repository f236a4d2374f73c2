package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/darklink/dlgen/internal/diagfmt"
	"github.com/darklink/dlgen/internal/driver"
	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/project"
)

// settings is the effective configuration of a command: manifest values
// overridden by flags.
type settings struct {
	Dir            string
	Manifest       string
	Patterns       []string
	Tags           []string
	Tests          bool
	EmitMarkers    driver.EmitMarkers
	Prune          bool
	Jobs           int
	Format         diagfmt.Format
	MaxDiagnostics int
	Quiet          bool
	Timings        bool
	UI             uiMode
	Report         string
}

// overrides holds the flags the user set explicitly.
type overrides struct {
	Patterns       []string
	Tags           *[]string
	Tests          *bool
	EmitMarkers    *string
	Prune          *bool
	Jobs           *int
	Format         *string
	MaxDiagnostics *int
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("tags", nil, "build tags used to select files")
	cmd.Flags().Bool("tests", false, "include test files")
	cmd.Flags().String("emit-markers", "", "packages receiving the marker declarations (always|used|never)")
	cmd.Flags().Bool("prune", false, "remove dlgen files that are no longer generated")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("report", "", "write a run report to this file (.json or .msgpack)")
}

func mergeSettings(cfg project.Config, ov overrides) (settings, error) {
	s := settings{
		Patterns:       cfg.Generate.Patterns,
		Tags:           cfg.Generate.Tags,
		Tests:          cfg.Generate.Tests,
		Prune:          cfg.Generate.Prune,
		Jobs:           cfg.Generate.Jobs,
		MaxDiagnostics: cfg.Output.MaxDiagnostics,
	}
	emitMarkers := cfg.Generate.EmitMarkers
	format := cfg.Output.Format

	if len(ov.Patterns) > 0 {
		s.Patterns = ov.Patterns
	}
	if ov.Tags != nil {
		s.Tags = *ov.Tags
	}
	if ov.Tests != nil {
		s.Tests = *ov.Tests
	}
	if ov.EmitMarkers != nil {
		emitMarkers = *ov.EmitMarkers
	}
	if ov.Prune != nil {
		s.Prune = *ov.Prune
	}
	if ov.Jobs != nil {
		if *ov.Jobs < 0 {
			return settings{}, errors.Newf("--jobs must not be negative, got %d", *ov.Jobs)
		}
		s.Jobs = *ov.Jobs
	}
	if ov.Format != nil {
		format = *ov.Format
	}
	if ov.MaxDiagnostics != nil {
		if *ov.MaxDiagnostics < 0 {
			return settings{}, errors.Newf("--max-diagnostics must not be negative, got %d", *ov.MaxDiagnostics)
		}
		s.MaxDiagnostics = *ov.MaxDiagnostics
	}
	if len(s.Patterns) == 0 {
		s.Patterns = []string{"./..."}
	}

	var err error
	if s.EmitMarkers, err = driver.ParseEmitMarkers(emitMarkers); err != nil {
		return settings{}, err
	}
	if s.Format, err = diagfmt.ParseFormat(format); err != nil {
		return settings{}, err
	}
	return s, nil
}

// resolveSettings loads the manifest above the working directory and applies
// the flags of cmd. Patterns given as arguments replace the manifest's.
func resolveSettings(cmd *cobra.Command, args []string) (settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return settings{}, errors.Wrap(err, "working directory")
	}
	var cfg project.Config
	dir := cwd
	manifestPath := ""
	m, ok, err := project.LoadManifest(cwd)
	if err != nil {
		return settings{}, err
	}
	if ok {
		cfg = m.Config
		manifestPath = m.Path
		// manifest patterns are relative to the manifest, argument patterns to
		// the working directory
		if len(args) == 0 {
			dir = m.Root
		}
		logger.Named("cli").Debugw("manifest loaded", "path", m.Path)
	}

	ov := overrides{Patterns: args}
	flags := cmd.Flags()
	if flags.Changed("tags") {
		v, _ := flags.GetStringSlice("tags")
		ov.Tags = &v
	}
	if flags.Changed("tests") {
		v, _ := flags.GetBool("tests")
		ov.Tests = &v
	}
	if flags.Changed("emit-markers") {
		v, _ := flags.GetString("emit-markers")
		ov.EmitMarkers = &v
	}
	if flags.Changed("prune") {
		v, _ := flags.GetBool("prune")
		ov.Prune = &v
	}
	if flags.Changed("jobs") {
		v, _ := flags.GetInt("jobs")
		ov.Jobs = &v
	}
	root := cmd.Root().PersistentFlags()
	if root.Changed("format") {
		v, _ := root.GetString("format")
		ov.Format = &v
	}
	if root.Changed("max-diagnostics") {
		v, _ := root.GetInt("max-diagnostics")
		ov.MaxDiagnostics = &v
	}

	s, err := mergeSettings(cfg, ov)
	if err != nil {
		return settings{}, err
	}
	s.Dir = dir
	s.Manifest = manifestPath

	if s.Quiet, err = root.GetBool("quiet"); err != nil {
		return settings{}, err
	}
	if s.Timings, err = root.GetBool("timings"); err != nil {
		return settings{}, err
	}
	uiValue, err := root.GetString("ui")
	if err != nil {
		return settings{}, err
	}
	if s.UI, err = readUIMode(uiValue); err != nil {
		return settings{}, err
	}
	if flags.Lookup("report") != nil {
		report, _ := flags.GetString("report")
		if report != "" {
			if report, err = filepath.Abs(report); err != nil {
				return settings{}, errors.Wrap(err, "--report")
			}
		}
		s.Report = report
	}
	return s, nil
}
