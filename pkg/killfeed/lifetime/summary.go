package lifetime

import (
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// SessionGap is the largest gap between consecutive events that still
// counts as the same play session.
const SessionGap = 2 * time.Hour

// Summary holds overall lifetime totals.
type Summary struct {
	TotalKills    int       `json:"total_kills"`
	TotalDeaths   int       `json:"total_deaths"`
	Suicides      int       `json:"suicides"`
	KDRatio       float64   `json:"kd_ratio"`
	TotalSessions int       `json:"total_sessions"`
	FirstEvent    time.Time `json:"first_event,omitzero"`
	LastEvent     time.Time `json:"last_event,omitzero"`
	PlayHours     float64   `json:"play_hours"`
}

// ComputeSummary counts kills, deaths and suicides for player and
// estimates sessions. A suicide counts as a death.
// records are expected to come from Filter.
func ComputeSummary(records []event.KillEvent, player string) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}
	var prev time.Time
	for i, r := range chronological(records) {
		if i == 0 || r.Timestamp.Sub(prev) > SessionGap {
			s.TotalSessions++
		}
		prev = r.Timestamp

		switch classify(r, player) {
		case roleKill:
			s.TotalKills++
		case roleDeath:
			s.TotalDeaths++
		case roleSuicide:
			s.TotalDeaths++
			s.Suicides++
		}
	}
	s.FirstEvent, s.LastEvent = span(records)
	s.PlayHours = max(0, s.LastEvent.Sub(s.FirstEvent).Hours())
	s.KDRatio = ratio(s.TotalKills, s.TotalDeaths)
	return s
}

// Sessions splits records into runs separated by more than SessionGap.
// The result is in chronological order.
func Sessions(records []event.KillEvent) [][]event.KillEvent {
	var out [][]event.KillEvent
	for _, r := range chronological(records) {
		n := len(out)
		if n == 0 || r.Timestamp.Sub(out[n-1][len(out[n-1])-1].Timestamp) > SessionGap {
			out = append(out, []event.KillEvent{r})
			continue
		}
		out[n-1] = append(out[n-1], r)
	}
	return out
}

func span(records []event.KillEvent) (first, last time.Time) {
	first, last = records[0].Timestamp, records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		last = later(last, r.Timestamp)
	}
	return first, last
}
