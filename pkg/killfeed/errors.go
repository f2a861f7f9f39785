package killfeed

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrFileNotFound is returned when the monitored log does not exist.
	ErrFileNotFound = errors.New("log file not found")

	// ErrPermissionDenied is returned when the monitored log cannot be read.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDecode is returned when a line cannot be decoded (for example a
	// partial line longer than the line limit).
	ErrDecode = errors.New("decode error")

	// ErrTooManyErrors is returned after the configured number of
	// consecutive transient I/O faults.
	ErrTooManyErrors = errors.New("too many consecutive errors")

	// ErrMonitorClosed is returned by Run or Watch after Close.
	ErrMonitorClosed = errors.New("monitor closed")

	// ErrAlreadyRunning is returned when Run or Watch is called twice.
	ErrAlreadyRunning = errors.New("monitor already running")
)

// MonitorOp identifies the monitor step that failed.
type MonitorOp string

const (
	MonitorOpOpen   MonitorOp = "open"
	MonitorOpStat   MonitorOp = "stat"
	MonitorOpRead   MonitorOp = "read"
	MonitorOpReopen MonitorOp = "reopen"
)

// MonitorError wraps a failure of the tail monitor.
type MonitorError struct {
	Op   MonitorOp
	Path string
	Err  error
}

func (e *MonitorError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("killfeed: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("killfeed: %s: %v", e.Op, e.Err)
}

func (e *MonitorError) Unwrap() error { return e.Err }

// ParseError wraps a parser failure for one line.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("killfeed: parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
