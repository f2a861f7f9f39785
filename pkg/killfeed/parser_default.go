package killfeed

import (
	"context"

	"github.com/killfeed/killfeed-go/internal/parser"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// DeathMarker is the substring every built-in kill line contains.
const DeathMarker = parser.DeathMarker

// DefaultParser recognizes the game's standard "<Actor Death>" kill line.
// Events are stamped with the time the line was observed.
type DefaultParser struct{}

// ParseLine implements the Parser interface.
// A kill line with an empty field yields an *event.FieldError.
func (DefaultParser) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	ev, err := parser.Parse(line)
	if err != nil {
		return ParseResult{}, err
	}
	if ev == nil {
		return ParseResult{}, nil
	}
	return ParseResult{Events: []event.KillEvent{*ev}, Matched: true}, nil
}

var _ Parser = DefaultParser{}
