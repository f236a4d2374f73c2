package trace

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Level is the finest scope a tracer emits. Each level admits its own scope
// and every coarser one.
type Level uint8

const (
	LevelOff    Level = 0
	LevelPhase  Level = Level(ScopePass)    // run and generator boundaries
	LevelDetail Level = Level(ScopePackage) // adds per-package directive counts
	LevelDebug  Level = Level(ScopeNode)    // adds per-candidate events
)

var levelNames = map[Level]string{
	LevelOff:    "off",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel reads a --trace-level value. The empty string is off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return LevelOff, errors.Newf("invalid trace level %q (expected: off|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return scope != 0 && Level(scope) <= l
}

// gate carries the level of a tracer and answers the level half of Tracer.
type gate struct{ level Level }

func (g gate) Level() Level  { return g.level }
func (g gate) Enabled() bool { return g.level > LevelOff }
