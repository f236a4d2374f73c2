package driver

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// EmitMarkers selects the packages that receive the marker unit.
type EmitMarkers string

const (
	// MarkersAlways adds the marker unit to every package of the run.
	MarkersAlways EmitMarkers = "always"
	// MarkersUsed adds it only to packages containing a dl directive.
	MarkersUsed EmitMarkers = "used"
	// MarkersNever leaves marker declarations to the user.
	MarkersNever EmitMarkers = "never"
)

// ParseEmitMarkers parses the emit_markers setting; empty means always.
func ParseEmitMarkers(s string) (EmitMarkers, error) {
	switch m := EmitMarkers(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MarkersAlways, nil
	case MarkersAlways, MarkersUsed, MarkersNever:
		return m, nil
	default:
		return "", errors.Newf("unknown emit-markers mode %q (want always, used or never)", s)
	}
}

// Options configures one run.
type Options struct {
	EmitMarkers EmitMarkers
	// Jobs bounds collection parallelism; zero means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the diagnostics kept; zero means unlimited.
	MaxDiagnostics int
	Progress       ProgressSink
}

func (o Options) progress() ProgressSink {
	if o.Progress == nil {
		return NopSink{}
	}
	return o.Progress
}
