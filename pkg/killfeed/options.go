package killfeed

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultPollInterval is how long the monitor sleeps when the log has not grown.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultMaxLinesPerCycle caps the lines read per poll cycle.
	DefaultMaxLinesPerCycle = 100

	// MaxLinesPerCycleLimit is the largest accepted per-cycle line cap.
	MaxLinesPerCycleLimit = 1000

	// DefaultMaxConsecutiveErrors is how many transient faults in a row halt the monitor.
	DefaultMaxConsecutiveErrors = 5

	// BackoffFactor multiplies the poll interval after a transient fault.
	BackoffFactor = 5

	// DefaultMaxLineBytes bounds a single unterminated line.
	DefaultMaxLineBytes = 1024 * 1024
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MonitorOption configures a Monitor using the functional options pattern.
type MonitorOption func(*monitorConfig)

type monitorConfig struct {
	pollInterval time.Duration
	maxLines     int
	maxErrors    int
	maxLineBytes int
	markers      []string
	parser       Parser
	logger       *slog.Logger
	reporter     StatusReporter
}

func defaultMonitorConfig() *monitorConfig {
	return &monitorConfig{
		pollInterval: DefaultPollInterval,
		maxLines:     DefaultMaxLinesPerCycle,
		maxErrors:    DefaultMaxConsecutiveErrors,
		maxLineBytes: DefaultMaxLineBytes,
		markers:      []string{DeathMarker},
		parser:       DefaultParser{},
	}
}

func applyMonitorOptions(opts []MonitorOption) *monitorConfig {
	cfg := defaultMonitorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *monitorConfig) validate() error {
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.maxLines < 1 || c.maxLines > MaxLinesPerCycleLimit {
		return fmt.Errorf("max lines per cycle must be between 1 and %d, got %d", MaxLinesPerCycleLimit, c.maxLines)
	}
	if c.maxErrors < 1 {
		return fmt.Errorf("max consecutive errors must be at least 1, got %d", c.maxErrors)
	}
	if c.maxLineBytes < 1 {
		return fmt.Errorf("max line bytes must be positive, got %d", c.maxLineBytes)
	}
	return nil
}

// WithPollInterval sets how long to sleep when the log has not grown.
// Transient faults back off for BackoffFactor times this interval.
// Default: 100ms.
func WithPollInterval(interval time.Duration) MonitorOption {
	return func(c *monitorConfig) {
		c.pollInterval = interval
	}
}

// WithMaxLinesPerCycle caps how many lines are read per poll cycle.
// Lines beyond the cap are read on the next cycle. Default: 100.
func WithMaxLinesPerCycle(n int) MonitorOption {
	return func(c *monitorConfig) {
		c.maxLines = n
	}
}

// WithMaxConsecutiveErrors sets how many transient faults in a row halt
// monitoring. Default: 5.
func WithMaxConsecutiveErrors(n int) MonitorOption {
	return func(c *monitorConfig) {
		c.maxErrors = n
	}
}

// WithMaxLineBytes bounds the size of an unterminated line. A partial line
// larger than this halts the monitor with ErrDecode. Default: 1MB.
func WithMaxLineBytes(n int) MonitorOption {
	return func(c *monitorConfig) {
		c.maxLineBytes = n
	}
}

// WithMarkers replaces the substring pre-filter. A line reaches the parser
// only if it contains at least one marker. Calling it with no markers
// disables the pre-filter. Default: DeathMarker.
func WithMarkers(markers ...string) MonitorOption {
	return func(c *monitorConfig) {
		c.markers = append([]string(nil), markers...)
	}
}

// WithLogger sets a custom logger.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) MonitorOption {
	return func(c *monitorConfig) {
		c.logger = logger
	}
}

// WithParser sets a custom parser for log lines.
// If p is nil, this option has no effect.
func WithParser(p Parser) MonitorOption {
	return func(c *monitorConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParsers combines multiple parsers using ChainAll mode.
func WithParsers(parsers ...Parser) MonitorOption {
	return func(c *monitorConfig) {
		if len(parsers) > 0 {
			c.parser = &ParserChain{Mode: ChainAll, Parsers: parsers}
		}
	}
}

// WithStatusReporter receives started, stopped and halted notifications.
func WithStatusReporter(r StatusReporter) MonitorOption {
	return func(c *monitorConfig) {
		c.reporter = r
	}
}

// ParseOption configures ParseFile.
type ParseOption func(*parseConfig)

type parseConfig struct {
	parser         Parser
	markers        []string
	since          time.Time
	until          time.Time
	stopOnError    bool
	lineTimestamps bool
	maxLineBytes   int
	logger         *slog.Logger
}

func defaultParseConfig() *parseConfig {
	return &parseConfig{
		parser:         DefaultParser{},
		markers:        []string{DeathMarker},
		lineTimestamps: true,
		maxLineBytes:   DefaultMaxLineBytes,
	}
}

func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithParseParser sets a custom parser for ParseFile.
// If p is nil, this option has no effect.
func WithParseParser(p Parser) ParseOption {
	return func(c *parseConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithParseMarkers replaces the substring pre-filter used by ParseFile.
func WithParseMarkers(markers ...string) ParseOption {
	return func(c *parseConfig) {
		c.markers = append([]string(nil), markers...)
	}
}

// WithParseTimeRange keeps only events within [since, until).
// Zero values leave that boundary open.
func WithParseTimeRange(since, until time.Time) ParseOption {
	return func(c *parseConfig) {
		c.since = since
		c.until = until
	}
}

// WithParseStopOnError stops at the first malformed kill line instead of
// skipping it. Default: false.
func WithParseStopOnError(stop bool) ParseOption {
	return func(c *parseConfig) {
		c.stopOnError = stop
	}
}

// WithParseLineTimestamps controls whether events take the timestamp
// written at the start of the log line. When false, or when a line has no
// timestamp, the parser's observation time is kept. Default: true.
func WithParseLineTimestamps(use bool) ParseOption {
	return func(c *parseConfig) {
		c.lineTimestamps = use
	}
}

// WithParseLogger sets a logger for skipped lines.
func WithParseLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}
