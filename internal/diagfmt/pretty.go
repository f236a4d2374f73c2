package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/darklink/dlgen/internal/diag"
)

type palette struct {
	err, warn, note, code, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		note:   mk(color.FgCyan),
		code:   mk(color.Faint),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.note
	}
}

// Pretty renders diagnostics in order as
//
//	<path>:<line>:<col>: ERROR DL.AN01: <message>
//
// followed by the source line with the primary span underlined and, when
// enabled, the notes in the same shape.
func Pretty(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) {
	p := newPalette(opts.Color)
	src := newSourceCache(opts.Source)
	for i, d := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(d.Primary, opts),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		excerpt(w, p, src, d.Primary)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "%s: %s: %s\n", location(n.Span, opts), p.note.Sprint(diag.SevNote.Label()), n.Msg)
			excerpt(w, p, src, n.Span)
		}
	}
}

// Short renders one line per diagnostic.
func Short(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range items {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(d.Primary, opts),
			p.severity(d.Severity).Sprint(d.Severity.Label()),
			d.Code.ID(),
			d.Message)
	}
}

func location(sp diag.Span, opts PrettyOpts) string {
	if sp.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", formatPath(sp.File, opts.PathMode, opts.BaseDir), sp.Line, sp.Col)
}

func excerpt(w io.Writer, p palette, src *sourceCache, sp diag.Span) {
	if sp.IsZero() || sp.Line == 0 {
		return
	}
	content, ok := src.get(sp.File)
	if !ok {
		return
	}
	start, end, ok := lineBounds(content, sp.Start)
	if !ok {
		return
	}
	text := string(content[start:end])
	spanEnd := min(max(sp.End, sp.Start+1), end)

	prefix := expandTabs(string(content[start:sp.Start]))
	marked := expandTabs(string(content[sp.Start:spanEnd]))
	num := fmt.Sprintf("%d", sp.Line)
	pad := strings.Repeat(" ", len(num))

	fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), expandTabs(text))
	fmt.Fprintf(w, "%s %s %s%s\n", pad, p.gutter.Sprint("|"),
		strings.Repeat(" ", runewidth.StringWidth(prefix)),
		p.caret.Sprint("^"+strings.Repeat("~", max(runewidth.StringWidth(marked)-1, 0))))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

type sourceCache struct {
	read  func(string) ([]byte, error)
	files map[string][]byte
}

func newSourceCache(read func(string) ([]byte, error)) *sourceCache {
	if read == nil {
		read = os.ReadFile
	}
	return &sourceCache{read: read, files: make(map[string][]byte)}
}

func (c *sourceCache) get(path string) ([]byte, bool) {
	if b, ok := c.files[path]; ok {
		return b, b != nil
	}
	b, err := c.read(path)
	if err != nil {
		b = nil
	}
	c.files[path] = b
	return b, b != nil
}

// lineBounds returns the byte range of the line holding offset, without the
// line terminator.
func lineBounds(content []byte, offset uint32) (uint32, uint32, bool) {
	n, err := toU32(len(content))
	if err != nil || offset > n {
		return 0, 0, false
	}
	start := uint32(0)
	if i := bytes.LastIndexByte(content[:offset], '\n'); i >= 0 {
		start = uint32(i + 1)
	}
	end := n
	if i := bytes.IndexByte(content[offset:], '\n'); i >= 0 {
		end = offset + uint32(i)
	}
	if end > start && content[end-1] == '\r' {
		end--
	}
	return start, end, true
}
