package pattern

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// RegexParser matches lines against user-defined kill patterns.
// A line matching several patterns yields one event per pattern, in file
// order.
//
// RegexParser is safe for concurrent use by multiple goroutines.
type RegexParser struct {
	patterns []*compiledPattern
	markers  []string
	now      func() time.Time
}

type compiledPattern struct {
	id     string
	marker string
	regex  *regexp.Regexp
	victim int
	killer int
	weapon int
}

// NewRegexParser compiles every pattern and checks its named groups.
func NewRegexParser(pf *PatternFile) (*RegexParser, error) {
	if pf == nil {
		return nil, errors.New("pattern file is nil")
	}

	rp := &RegexParser{now: time.Now}
	seenMarkers := make(map[string]bool)
	for i, p := range pf.Patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "regex",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
				Cause:   err,
			}
		}

		cp := &compiledPattern{id: p.ID, marker: p.Marker, regex: re}
		for _, group := range RequiredGroups {
			if re.SubexpIndex(group) < 0 {
				return nil, &PatternError{
					Index:   i,
					ID:      p.ID,
					Field:   "regex",
					Message: fmt.Sprintf("missing named group %q", group),
				}
			}
		}
		cp.victim = re.SubexpIndex("victim")
		cp.killer = re.SubexpIndex("killer")
		cp.weapon = re.SubexpIndex("weapon")
		rp.patterns = append(rp.patterns, cp)

		if !seenMarkers[p.Marker] {
			seenMarkers[p.Marker] = true
			rp.markers = append(rp.markers, p.Marker)
		}
	}
	return rp, nil
}

// NewRegexParserFromFile loads a pattern file and compiles it.
func NewRegexParserFromFile(path string) (*RegexParser, error) {
	pf, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewRegexParser(pf)
}

// Markers returns the distinct pre-filter markers in file order.
func (p *RegexParser) Markers() []string {
	return append([]string(nil), p.markers...)
}

// ParseLine implements killfeed.Parser. Events are stamped with the
// observation time. Matches with an empty field are dropped and reported
// as joined *event.FieldError values alongside any valid events.
func (p *RegexParser) ParseLine(ctx context.Context, line string) (killfeed.ParseResult, error) {
	var events []event.KillEvent
	var errs []error
	now := p.now()

	for _, cp := range p.patterns {
		m := cp.regex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ev, err := event.New(now, m[cp.killer], m[cp.victim], m[cp.weapon])
		if err != nil {
			errs = append(errs, fmt.Errorf("pattern %q: %w", cp.id, err))
			continue
		}
		events = append(events, ev)
	}

	result := killfeed.ParseResult{Events: events, Matched: len(events) > 0}
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	return result, nil
}

var _ killfeed.Parser = (*RegexParser)(nil)
