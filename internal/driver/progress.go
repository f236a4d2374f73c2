package driver

import "time"

// Stage describes a high-level phase of a run.
type Stage string

const (
	StageCollect Stage = "collect"
	StageAnalyze Stage = "analyze"
	StageEmit    Stage = "emit"
	StageWrite   Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a package (or for the whole run when Package is
// empty).
type Event struct {
	Package string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines during collection.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
