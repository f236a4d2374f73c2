package diag

import "strings"

// Severity ranks a diagnostic. Generators report warnings and errors; notes
// only appear attached to one of them and never block a run.
type Severity uint8

const (
	SevNote Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{
	SevNote:    "note",
	SevWarning: "warning",
	SevError:   "error",
}

// Label is the lower-case name used by the short and golden formats.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "unknown"
}

func (s Severity) String() string {
	return strings.ToUpper(s.Label())
}

// Blocking reports whether a diagnostic of this severity keeps a run from
// writing its units.
func (s Severity) Blocking() bool {
	return s >= SevError
}

// Severity is the severity code is reported with. Codes that only describe
// a directive dlgen ignores are warnings.
func (c Code) Severity() Severity {
	switch c {
	case EmFlagsMisapplied, MkMarkerShadowed:
		return SevWarning
	}
	return SevError
}
