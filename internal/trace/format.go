package trace

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Format selects how StreamTracer and Recorder.Dump render events.
type Format uint8

const (
	FormatAuto   Format = iota // NDJSON for .ndjson and .jsonl outputs, text otherwise
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
)

func formatFor(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders ev followed by a newline.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time      string         `json:"time"`
	Seq       uint64         `json:"seq"`
	Kind      string         `json:"kind"`
	Scope     string         `json:"scope"`
	Span      uint64         `json:"span,omitempty"`
	Parent    uint64         `json:"parent,omitempty"`
	Name      string         `json:"name"`
	Detail    string         `json:"detail,omitempty"`
	ElapsedUS int64          `json:"elapsed_us,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, _ := json.Marshal(jsonEvent{
		Time:      ev.Time.Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.SpanID,
		Parent:    ev.Parent,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Counts:    ev.Counts,
	})
	return append(data, '\n')
}

// formatText renders
//
//	15:04:05.000000 [indent]-> name (detail)
//	15:04:05.000000 [indent]<- name 1.2ms owners=3 (detail)
//
// indented by scope.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("15:04:05.000000"))
	sb.WriteByte(' ')
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("-> ")
	case KindSpanEnd:
		sb.WriteString("<- ")
	default:
		sb.WriteString(" * ")
	}
	sb.WriteString(ev.Name)
	if ev.Kind == KindSpanEnd {
		sb.WriteByte(' ')
		sb.WriteString(ev.Elapsed.Round(time.Microsecond).String())
	}
	keys := make([]string, 0, len(ev.Counts))
	for k := range ev.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strconv.Itoa(ev.Counts[k]))
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteByte(')')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
