package parser

import (
	"strings"
	"time"
)

// LineTimestamp extracts the leading "<2006-01-02T15:04:05.000Z>" stamp the
// game writes on most lines. Offline replays use it instead of the
// observation time.
func LineTimestamp(line string) (time.Time, bool) {
	if len(line) < 2 || line[0] != '<' {
		return time.Time{}, false
	}
	end := strings.IndexByte(line, '>')
	if end < 0 {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, line[1:end])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
