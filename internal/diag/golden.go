package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files. Paths are made relative to baseDir
// when possible. Returns an empty string when there is nothing to render.
func FormatGoldenDiagnostics(diags []Diagnostic, baseDir string, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = appendDiagnostic(rendered, d, baseDir, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d Diagnostic, baseDir string, includeNotes bool) []goldenDiagnostic {
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Path:     RelPath(d.Primary.File, baseDir),
		Line:     d.Primary.Line,
		Column:   d.Primary.Col,
		Message:  sanitizeMessage(d.Message),
	})

	if includeNotes {
		for _, note := range d.Notes {
			out = append(out, goldenDiagnostic{
				Severity: SevNote.Label(),
				Code:     d.Code.ID(),
				Path:     RelPath(note.Span.File, baseDir),
				Line:     note.Span.Line,
				Column:   note.Span.Col,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	return out
}

// RelPath returns path relative to baseDir in slash form, or the cleaned path
// itself when it lies outside baseDir.
func RelPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if baseDir != "" {
		if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
