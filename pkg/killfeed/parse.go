package killfeed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/killfeed/killfeed-go/internal/parser"
	"github.com/killfeed/killfeed-go/internal/safefile"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// ParseLine parses a single game log line into a KillEvent stamped with
// the current time.
//
// Return values:
//   - (*KillEvent, nil): Successfully parsed event
//   - (nil, nil): Line is not a kill line (not an error)
//   - (nil, *event.FieldError): Kill line with an empty field
//
// Example:
//
//	ev, err := killfeed.ParseLine(line)
//	if err != nil {
//	    log.Printf("rejected: %v", err)
//	} else if ev != nil {
//	    fmt.Printf("%s killed %s with %s\n", ev.Killer, ev.Victim, ev.Weapon)
//	}
func ParseLine(line string) (*event.KillEvent, error) {
	return parser.Parse(line)
}

// ParseFile replays a whole log file and returns its kill events in file
// order. Malformed kill lines are skipped unless WithParseStopOnError is set.
func ParseFile(ctx context.Context, path string, opts ...ParseOption) ([]event.KillEvent, error) {
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, classify(err)
	}
	defer f.Close()

	return ParseReader(ctx, f, opts...)
}

// ParseReader is ParseFile over an arbitrary reader.
func ParseReader(ctx context.Context, r io.Reader, opts ...ParseOption) ([]event.KillEvent, error) {
	cfg := applyParseOptions(opts)
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	filter := markerFilter(cfg.markers)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), cfg.maxLineBytes)

	var events []event.KillEvent
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		lineNo++

		line := strings.ToValidUTF8(strings.TrimRight(scanner.Text(), "\r"), "")
		if !filter.match(line) {
			continue
		}

		result, err := cfg.parser.ParseLine(ctx, line)
		if err != nil {
			if cfg.stopOnError {
				return events, fmt.Errorf("line %d: %w", lineNo, &ParseError{Line: line, Err: err})
			}
			log.Warn("skipping malformed kill line", "line", lineNo, "error", err)
		}

		for _, ev := range result.Events {
			if ev.Validate() != nil {
				continue
			}
			if cfg.lineTimestamps {
				if ts, ok := parser.LineTimestamp(line); ok {
					ev.Timestamp = ts
				}
			}
			if !cfg.since.IsZero() && ev.Timestamp.Before(cfg.since) {
				continue
			}
			if !cfg.until.IsZero() && !ev.Timestamp.Before(cfg.until) {
				continue
			}
			events = append(events, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return events, fmt.Errorf("%w: line %d exceeds %d bytes", ErrDecode, lineNo+1, cfg.maxLineBytes)
		}
		return events, err
	}
	return events, nil
}
