// Package tailer follows a growing text file line by line.
//
// It wraps github.com/nxadm/tail, which handles reopening the file after
// rotation and waiting for a file that does not exist yet.
package tailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nxadm/tail"
)

// Option configures Follow.
type Option func(*options)

type options struct {
	fromStart bool
	poll      bool
	logger    *slog.Logger
}

// WithFromStart delivers the existing content before following.
// By default only lines appended after Follow starts are delivered.
func WithFromStart(v bool) Option {
	return func(o *options) {
		o.fromStart = v
	}
}

// WithPoll uses stat polling instead of filesystem notifications.
func WithPoll(v bool) Option {
	return func(o *options) {
		o.poll = v
	}
}

// WithLogger sets the logger for line errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Follow streams lines of path until ctx is cancelled.
// Both channels are closed when following stops.
func Follow(ctx context.Context, path string, opts ...Option) (<-chan string, <-chan error, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      o.poll,
		Logger:    tail.DiscardingLogger,
	}
	if !o.fromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("follow %s: %w", path, err)
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(lines)
		defer t.Cleanup()

		for {
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case l, ok := <-t.Lines:
				if !ok {
					if err := t.Err(); err != nil {
						sendError(errs, err)
					}
					return
				}
				if l.Err != nil {
					o.logger.Warn("tail line error", "path", path, "error", l.Err)
					continue
				}
				select {
				case lines <- l.Text:
				case <-ctx.Done():
					t.Stop()
					return
				}
			}
		}
	}()
	return lines, errs, nil
}

func sendError(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
