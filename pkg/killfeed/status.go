package killfeed

import (
	"errors"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// StatsSink receives every accepted kill event.
type StatsSink interface {
	Record(ev event.KillEvent)
}

// SinkFunc is an adapter to allow ordinary functions to be used as StatsSinks.
type SinkFunc func(ev event.KillEvent)

// Record implements StatsSink.
func (f SinkFunc) Record(ev event.KillEvent) { f(ev) }

// Sinks fans one event out to several sinks in order.
type Sinks []StatsSink

// Record implements StatsSink.
func (s Sinks) Record(ev event.KillEvent) {
	for _, sink := range s {
		if sink != nil {
			sink.Record(ev)
		}
	}
}

// StatusKind classifies a monitor status notification.
type StatusKind int

const (
	StatusStarted StatusKind = iota
	StatusStopped
	StatusHalted
)

func (k StatusKind) String() string {
	switch k {
	case StatusStarted:
		return "started"
	case StatusStopped:
		return "stopped"
	case StatusHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Status is reported when monitoring starts, stops, or halts.
// Err is set only for StatusHalted.
type Status struct {
	Kind StatusKind
	Path string
	Err  error
	Time time.Time
}

// Reason returns a short human-readable cause for a halt.
func (s Status) Reason() string {
	switch {
	case s.Err == nil:
		return ""
	case errors.Is(s.Err, ErrTooManyErrors):
		return "too many consecutive I/O errors"
	case errors.Is(s.Err, ErrFileNotFound):
		return "file not found"
	case errors.Is(s.Err, ErrPermissionDenied):
		return "permission denied"
	case errors.Is(s.Err, ErrDecode):
		return "decode error"
	default:
		return s.Err.Error()
	}
}

// StatusReporter receives monitor lifecycle notifications.
type StatusReporter interface {
	Report(s Status)
}

// StatusFunc is an adapter to allow ordinary functions to be used as StatusReporters.
type StatusFunc func(s Status)

// Report implements StatusReporter.
func (f StatusFunc) Report(s Status) { f(s) }
