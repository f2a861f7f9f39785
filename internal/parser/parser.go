// Package parser converts raw game log lines into kill events.
package parser

import (
	"strings"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// Parse parses a game log line into a KillEvent stamped with the current time.
//
// Returns:
//   - (*KillEvent, nil): Successfully parsed
//   - (nil, nil): Not a kill line
//   - (nil, *event.FieldError): Kill line with an empty victim, killer or weapon
func Parse(line string) (*event.KillEvent, error) {
	return ParseAt(line, time.Now())
}

// ParseAt is Parse with an explicit observation time.
func ParseAt(line string, ts time.Time) (*event.KillEvent, error) {
	// Trim trailing CR/LF for Windows CRLF compatibility
	line = strings.TrimRight(line, "\r\n")

	match := killLinePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, nil
	}

	ev, err := event.New(ts, match[killerGroup], match[victimGroup], match[weaponGroup])
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
