package diag

import (
	"fmt"
	"go/token"

	"fortio.org/safecast"
)

// Span is a resolved source range. It is detached from the token.FileSet that
// produced it so diagnostics stay comparable and serialisable across runs.
type Span struct {
	File  string `json:"file" msgpack:"file"`
	Start uint32 `json:"start_byte" msgpack:"start"`
	End   uint32 `json:"end_byte" msgpack:"end"`
	Line  uint32 `json:"line" msgpack:"line"`
	Col   uint32 `json:"col" msgpack:"col"`
}

// SpanOf resolves [pos, end) against fset. An invalid end collapses the span
// to its start.
func SpanOf(fset *token.FileSet, pos, end token.Pos) Span {
	if fset == nil || !pos.IsValid() {
		return Span{}
	}
	start := fset.Position(pos)
	sp := Span{
		File:  start.Filename,
		Start: toU32(start.Offset),
		Line:  toU32(start.Line),
		Col:   toU32(start.Column),
	}
	sp.End = sp.Start
	if end.IsValid() && end >= pos {
		sp.End = toU32(fset.Position(end).Offset)
	}
	return sp
}

func toU32(v int) uint32 {
	out, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0
	}
	return out
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.File == "" && s.Line == 0
}

func (s Span) String() string {
	if s.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}
