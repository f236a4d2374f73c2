package diagfmt

import (
	"encoding/json"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/darklink/dlgen/internal/diag"
)

// LocationJSON is a position in a file.
type LocationJSON struct {
	File      string `json:"file" msgpack:"file"`
	StartByte uint32 `json:"start_byte" msgpack:"start_byte"`
	EndByte   uint32 `json:"end_byte" msgpack:"end_byte"`
	Line      uint32 `json:"line,omitempty" msgpack:"line,omitempty"`
	Col       uint32 `json:"col,omitempty" msgpack:"col,omitempty"`
}

// NoteJSON is an additional note of a diagnostic.
type NoteJSON struct {
	Message  string       `json:"message" msgpack:"message"`
	Location LocationJSON `json:"location" msgpack:"location"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity" msgpack:"severity"`
	Code     string       `json:"code" msgpack:"code"`
	Title    string       `json:"title" msgpack:"title"`
	Message  string       `json:"message" msgpack:"message"`
	Location LocationJSON `json:"location" msgpack:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON and msgpack output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics" msgpack:"diagnostics"`
	Count       int              `json:"count" msgpack:"count"`
}

func makeLocation(sp diag.Span, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File:      formatPath(sp.File, opts.PathMode, opts.BaseDir),
		StartByte: sp.Start,
		EndByte:   sp.End,
		Line:      sp.Line,
		Col:       sp.Col,
	}
}

// BuildDiagnosticsOutput builds the output structure without serialising it.
func BuildDiagnosticsOutput(items []diag.Diagnostic, opts JSONOpts) DiagnosticsOutput {
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, n)
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, opts),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Span, opts)}
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON writes diagnostics as indented JSON.
func JSON(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, opts))
}

// Msgpack writes diagnostics as one msgpack document.
func Msgpack(w io.Writer, items []diag.Diagnostic, opts JSONOpts) error {
	return msgpack.NewEncoder(w).Encode(BuildDiagnosticsOutput(items, opts))
}

func toU32(v int) (uint32, error) {
	return safecast.Conv[uint32](v)
}
