package killfeed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/killfeed/killfeed-go/internal/safefile"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// monitorErrBuffer is the buffer size for the Watch error channel.
const monitorErrBuffer = 16

// Monitor tails one growing log file and forwards every kill event to a
// StatsSink. It starts at the current end of the file, so content written
// before Run is never replayed.
//
// The file offset and the poll loop are owned by a single worker; only
// Stop and Close may be called from other goroutines.
type Monitor struct {
	cfg    monitorConfig
	path   string
	log    *slog.Logger
	filter markerFilter
	stat   func(string) (os.FileInfo, error)

	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	closed  bool
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewMonitor creates a monitor for the log at path.
// Options are validated here; the file is not opened until Run or Watch.
func NewMonitor(path string, opts ...MonitorOption) (*Monitor, error) {
	if path == "" {
		return nil, errors.New("invalid options: log path is required")
	}
	cfg := applyMonitorOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Monitor{
		cfg:    *cfg,
		path:   path,
		log:    log,
		filter: markerFilter(cfg.markers),
		stat:   os.Stat,
		stopCh: make(chan struct{}),
	}, nil
}

// Path returns the monitored file path.
func (m *Monitor) Path() string { return m.path }

// Run monitors the log until ctx is cancelled, Stop or Close is called,
// or a fatal error occurs. It blocks and may be called only once.
//
// A cooperative stop returns nil. A halt returns the fatal error, which
// matches ErrFileNotFound, ErrPermissionDenied, ErrDecode or
// ErrTooManyErrors with errors.Is.
func (m *Monitor) Run(ctx context.Context, sink StatsSink) error {
	ctx, cancel, done, err := m.begin(ctx)
	if err != nil {
		return err
	}
	defer close(done)
	defer cancel()
	return m.run(ctx, sink)
}

// Watch starts monitoring in a goroutine and returns channels.
// Both channels close when monitoring ends. A halt error is delivered on
// the error channel before it closes.
func (m *Monitor) Watch(ctx context.Context) (<-chan event.KillEvent, <-chan error, error) {
	ctx, cancel, done, err := m.begin(ctx)
	if err != nil {
		return nil, nil, err
	}

	eventCh := make(chan event.KillEvent)
	errCh := make(chan error, monitorErrBuffer)

	go func() {
		defer close(done)
		defer cancel()
		defer close(eventCh)
		defer close(errCh)

		sink := SinkFunc(func(ev event.KillEvent) {
			select {
			case eventCh <- ev:
			case <-ctx.Done():
			case <-m.stopCh:
			}
		})
		if err := m.run(ctx, sink); err != nil {
			sendError(ctx, errCh, err)
		}
	}()

	return eventCh, errCh, nil
}

// Stop asks the worker to exit. It returns immediately; the worker
// notices within one poll (or backoff) interval.
func (m *Monitor) Stop() {
	m.stopped.Store(true)
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Close stops the monitor and blocks until the worker has exited.
// Safe to call multiple times.
func (m *Monitor) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.Stop()
	if m.cancel != nil {
		m.cancel()
	}
	doneCh := m.doneCh
	m.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (m *Monitor) begin(ctx context.Context) (context.Context, context.CancelFunc, chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, nil, ErrMonitorClosed
	}
	if m.running {
		return nil, nil, nil, ErrAlreadyRunning
	}
	m.running = true

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.doneCh = make(chan struct{})
	return ctx, cancel, m.doneCh, nil
}

// tailState is owned by the worker goroutine.
type tailState struct {
	f      *os.File
	info   os.FileInfo
	offset int64
	errs   int
}

func (st *tailState) close() {
	if st.f != nil {
		st.f.Close()
		st.f = nil
	}
}

func (m *Monitor) run(ctx context.Context, sink StatsSink) (err error) {
	st := &tailState{}
	defer st.close()
	defer func() {
		if r := recover(); r != nil {
			err = m.halt(fmt.Errorf("monitor worker panic: %v", r))
		}
	}()

	if err := m.seekEnd(st); err != nil {
		return m.halt(&MonitorError{Op: MonitorOpOpen, Path: m.path, Err: classify(err)})
	}
	m.log.Info("monitoring started", "path", m.path, "offset", st.offset)
	m.report(Status{Kind: StatusStarted})

	for {
		if m.cancelled(ctx) {
			return m.stop(st)
		}

		err := m.cycle(ctx, st, sink)
		if err == nil {
			st.errs = 0
			continue
		}
		if isFatal(err) {
			return m.halt(err)
		}

		st.errs++
		m.log.Warn("transient monitor error",
			"path", m.path, "error", err, "attempt", st.errs, "max", m.cfg.maxErrors)
		if st.errs >= m.cfg.maxErrors {
			return m.halt(&MonitorError{Op: opOf(err), Path: m.path, Err: fmt.Errorf("%w: %w", ErrTooManyErrors, err)})
		}
		m.sleep(ctx, BackoffFactor*m.cfg.pollInterval)
	}
}

// cycle performs one poll: stat, then reset, read a batch, or sleep.
func (m *Monitor) cycle(ctx context.Context, st *tailState, sink StatsSink) error {
	if st.f == nil {
		// A previous reopen failed.
		return m.reopen(st)
	}

	info, err := m.stat(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return &MonitorError{Op: MonitorOpStat, Path: m.path, Err: fmt.Errorf("%w: %w", ErrPermissionDenied, err)}
		}
		return &MonitorError{Op: MonitorOpStat, Path: m.path, Err: err}
	}

	size := info.Size()
	switch {
	case size < st.offset:
		m.log.Info("log truncated or rotated", "path", m.path, "offset", st.offset, "size", size)
		return m.reopen(st)
	case st.info != nil && !os.SameFile(st.info, info):
		m.log.Info("log replaced", "path", m.path, "offset", st.offset, "size", size)
		return m.reopen(st)
	case size == st.offset:
		m.sleep(ctx, m.cfg.pollInterval)
		return nil
	}

	lines, next, err := m.readBatch(st, size)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		// Only a partial line so far.
		m.sleep(ctx, m.cfg.pollInterval)
		return nil
	}
	st.offset = next

	if m.cancelled(ctx) {
		return nil
	}
	for _, line := range lines {
		m.processLine(ctx, line, sink)
	}
	return nil
}

// readBatch reads up to maxLines complete lines between the stored offset
// and size. A trailing partial line is left for the next cycle.
func (m *Monitor) readBatch(st *tailState, size int64) ([]string, int64, error) {
	r := bufio.NewReader(io.NewSectionReader(st.f, st.offset, size-st.offset))
	offset := st.offset

	var lines []string
	for len(lines) < m.cfg.maxLines {
		raw, err := r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			if len(raw) > m.cfg.maxLineBytes {
				return nil, st.offset, &MonitorError{
					Op:   MonitorOpRead,
					Path: m.path,
					Err:  fmt.Errorf("%w: unterminated line exceeds %d bytes", ErrDecode, m.cfg.maxLineBytes),
				}
			}
			break
		}
		if err != nil {
			return nil, st.offset, &MonitorError{Op: MonitorOpRead, Path: m.path, Err: err}
		}
		offset += int64(len(raw))
		lines = append(lines, raw)
	}
	return lines, offset, nil
}

func (m *Monitor) processLine(ctx context.Context, raw string, sink StatsSink) {
	line := strings.ToValidUTF8(strings.TrimRight(raw, "\r\n"), "")
	if !m.filter.match(line) {
		return
	}

	result, err := m.cfg.parser.ParseLine(ctx, line)
	if err != nil {
		var fe *event.FieldError
		if errors.As(err, &fe) {
			m.log.Warn("discarding kill line with empty field",
				"victim", fe.Victim, "killer", fe.Killer, "weapon", fe.Weapon)
		} else {
			m.log.Warn("parse failed", "error", err)
		}
	}

	for _, ev := range result.Events {
		if err := ev.Validate(); err != nil {
			m.log.Warn("discarding invalid event", "error", err)
			continue
		}
		m.log.Debug("kill event", "killer", ev.Killer, "victim", ev.Victim, "weapon", ev.Weapon)
		sink.Record(ev)
	}
}

// seekEnd opens the log and positions the cursor at its current end.
func (m *Monitor) seekEnd(st *tailState) error {
	f, info, err := safefile.OpenRegular(m.path)
	if err != nil {
		return err
	}
	st.close()
	st.f = f
	st.info = info
	st.offset = info.Size()
	return nil
}

func (m *Monitor) reopen(st *tailState) error {
	st.close()
	if err := m.seekEnd(st); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return &MonitorError{Op: MonitorOpReopen, Path: m.path, Err: err}
	}
	return nil
}

func (m *Monitor) cancelled(ctx context.Context) bool {
	return m.stopped.Load() || ctx.Err() != nil
}

// sleep waits for d, waking early on cancellation.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	case <-m.stopCh:
	}
}

func (m *Monitor) stop(st *tailState) error {
	st.close()
	m.log.Info("monitoring stopped", "path", m.path, "offset", st.offset)
	m.report(Status{Kind: StatusStopped})
	return nil
}

func (m *Monitor) halt(err error) error {
	m.log.Error("monitoring halted", "path", m.path, "error", err)
	m.report(Status{Kind: StatusHalted, Err: err})
	return err
}

func (m *Monitor) report(s Status) {
	if m.cfg.reporter == nil {
		return
	}
	s.Path = m.path
	s.Time = time.Now()
	m.cfg.reporter.Report(s)
}

// classify maps open failures onto the package sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, safefile.ErrNotRegularFile):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	return err
}

func isFatal(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, safefile.ErrNotRegularFile)
}

func opOf(err error) MonitorOp {
	var me *MonitorError
	if errors.As(err, &me) {
		return me.Op
	}
	return MonitorOpRead
}

// markerFilter is the cheap substring check run before parsing.
// An empty filter accepts every line.
type markerFilter []string

func (f markerFilter) match(line string) bool {
	if len(f) == 0 {
		return true
	}
	for _, marker := range f {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// sendError sends an error to the error channel without blocking shutdown.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
