// Package diagfmt renders diagnostics for people and for tools.
package diagfmt

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/diag"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses the path relative to BaseDir when the file lies below
	// it, the path as given otherwise.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// Format selects a renderer.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatShort   Format = "short"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPretty, nil
	case FormatPretty, FormatShort, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", errors.Newf("unknown diagnostics format %q (want pretty, short, json or msgpack)", s)
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
	// Source returns the contents of a file for the excerpt; nil reads the
	// file from disk.
	Source func(path string) ([]byte, error)
}

// JSONOpts configures JSON and msgpack output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // trims the output, not the Bag
	IncludeNotes bool
}

func formatPath(path string, mode PathMode, baseDir string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		if baseDir == "" {
			return path
		}
		if rel, err := filepath.Rel(baseDir, path); err == nil {
			return filepath.ToSlash(rel)
		}
		return path
	default:
		return diag.RelPath(path, baseDir)
	}
}
