package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/killfeed/killfeed-go/internal/safefile"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// Columns is the CSV header, in write order.
var Columns = []string{"timestamp", "killer", "victim", "weapon"}

// TimeLayout is how timestamps are written. Microsecond precision with an
// explicit offset keeps rows sortable as text within one zone.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// readLayouts are tried in order after RFC 3339. Layouts without an
// offset are read in the local zone.
var readLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateTime,
}

// ParseTimestamp parses a history timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// CSVStore keeps history in a CSV file. The file is opened per call, so
// it may be moved or deleted between appends.
type CSVStore struct {
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

// NewCSV returns a store for path. Nothing is created until the first Append.
func NewCSV(path string, opts ...Option) *CSVStore {
	o := buildOptions(opts)
	return &CSVStore{path: path, log: o.logger}
}

// Path returns the history file path.
func (s *CSVStore) Path() string { return s.path }

// Append writes one row, adding the header if the file is new or empty.
func (s *CSVStore) Append(ctx context.Context, ev event.KillEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, info, err := safefile.OpenAppend(s.path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(Columns)
	}
	w.Write([]string{ev.Timestamp.Format(TimeLayout), ev.Killer, ev.Victim, ev.Weapon})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write history: %w", err)
	}
	return f.Close()
}

// Load reads every valid row. A missing or empty file yields no events.
// Rows with a bad timestamp or an empty field are skipped.
func (s *CSVStore) Load(ctx context.Context) ([]event.KillEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := safefile.OpenRegular(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("history file not found", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	events, err := ReadCSV(ctx, f, s.log)
	var he *HeaderError
	if errors.As(err, &he) {
		he.Path = s.path
	}
	return events, err
}

// Close is a no-op; the file is not held open.
func (s *CSVStore) Close() error { return nil }

// ReadCSV parses history rows from r. Columns may appear in any order;
// extra columns are ignored. A header without the required columns
// returns a *HeaderError and no events.
func ReadCSV(ctx context.Context, r io.Reader, log *slog.Logger) ([]event.KillEvent, error) {
	if log == nil {
		log = discardLogger
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history header: %w", err)
	}

	idx := make(map[string]int, len(header))
	found := make([]string, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		found[i] = name
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &HeaderError{Found: found, Missing: missing}
	}

	var (
		events  []event.KillEvent
		skipped int
	)
	field := func(rec []string, col string) string {
		if i := idx[col]; i < len(rec) {
			return rec[i]
		}
		return ""
	}
	// Row numbers count the header as row 1.
	for row := 2; ; row++ {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			log.Debug("skipping malformed history row", "row", row, "error", err)
			skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read history row %d: %w", row, err)
		}

		ts, err := ParseTimestamp(field(rec, "timestamp"))
		if err != nil {
			log.Debug("skipping history row", "row", row, "error", err)
			skipped++
			continue
		}
		ev, err := event.New(ts, field(rec, "killer"), field(rec, "victim"), field(rec, "weapon"))
		if err != nil {
			log.Debug("skipping history row", "row", row, "error", err)
			skipped++
			continue
		}
		events = append(events, ev)
	}
	if skipped > 0 {
		log.Debug("history rows skipped", "count", skipped, "loaded", len(events))
	}
	return events, nil
}

// ErrHeaderRow is returned by ParseRow for the header line.
var ErrHeaderRow = errors.New("history header row")

// ParseRow parses one line in the column order CSVStore writes.
// It is meant for following a history file as it grows.
func ParseRow(line string) (event.KillEvent, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rec, err := cr.Read()
	if err != nil {
		return event.KillEvent{}, fmt.Errorf("parse history row: %w", err)
	}
	if len(rec) < len(Columns) {
		return event.KillEvent{}, fmt.Errorf("parse history row: want %d fields, got %d", len(Columns), len(rec))
	}
	if strings.EqualFold(strings.TrimSpace(rec[0]), Columns[0]) {
		return event.KillEvent{}, ErrHeaderRow
	}
	ts, err := ParseTimestamp(rec[0])
	if err != nil {
		return event.KillEvent{}, err
	}
	return event.New(ts, rec[1], rec[2], rec[3])
}
