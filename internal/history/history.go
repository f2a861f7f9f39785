// Package history persists kill events and loads them back for lifetime
// analytics.
//
// Two backends exist: an append-only CSV file compatible with spreadsheet
// tools, and a SQLite database. Both keep every event, including ones that
// carry the Unknown sentinel; filtering happens at analysis time.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// Store is an append-only event history.
type Store interface {
	// Append persists one event.
	Append(ctx context.Context, ev event.KillEvent) error
	// Load returns every stored event in insertion order.
	Load(ctx context.Context) ([]event.KillEvent, error)
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendCSV    Backend = "csv"
	BackendSQLite Backend = "sqlite"
)

// ErrUnknownBackend is returned by Open and ParseBackend.
var ErrUnknownBackend = errors.New("unknown history backend")

// ParseBackend validates a backend name. The empty string selects CSV.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case "", BackendCSV:
		return BackendCSV, nil
	case BackendSQLite:
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for skipped rows.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func buildOptions(opts []Option) options {
	o := options{logger: discardLogger}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = discardLogger
	}
	return o
}

// Open opens the store for backend at path.
func Open(backend Backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendCSV, "":
		return NewCSV(path, opts...), nil
	case BackendSQLite:
		return OpenSQLite(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// HeaderError is returned when a CSV history file lacks required columns.
// No rows are read from such a file.
type HeaderError struct {
	Path    string
	Found   []string
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("history %s: missing columns %s (found %s)",
		e.Path, strings.Join(e.Missing, ","), strings.Join(e.Found, ","))
}
