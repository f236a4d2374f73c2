package trace

import "time"

// Kind tells span boundaries from instant events.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver  Scope = iota + 1 // a whole run
	ScopePass                     // collection or one generator phase
	ScopePackage                  // one package
	ScopeNode                     // one candidate or owner
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopePackage: "package", ScopeNode: "node"}

func (s Scope) String() string {
	if s > 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Span events carry the span's ID; points carry
// only the span they happened in.
type Event struct {
	Time   time.Time
	Seq    uint64
	Kind   Kind
	Scope  Scope
	SpanID uint64
	Parent uint64
	// Name is a stage ("collect"), a generator phase ("enummatch:resolve") or
	// a package path.
	Name   string
	Detail string
	// Elapsed and Counts are set on span ends.
	Elapsed time.Duration
	Counts  map[string]int
}
