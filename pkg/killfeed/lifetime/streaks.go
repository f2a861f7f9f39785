package lifetime

import (
	"slices"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// MaxStreakHistory is how many streaks StreakHistory keeps.
const MaxStreakHistory = 20

// StreakType distinguishes kill runs from death runs.
type StreakType string

const (
	StreakKill  StreakType = "kill"
	StreakDeath StreakType = "death"
)

// Streak is one closed run of consecutive kills or deaths.
// End is the timestamp of the event that broke the run.
type Streak struct {
	Type   StreakType `json:"type"`
	Length int        `json:"length"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
}

// Streaks is the streak report.
type Streaks struct {
	MaxKillStreak      int     `json:"max_kill_streak"`
	MaxDeathStreak     int     `json:"max_death_streak"`
	CurrentKillStreak  int     `json:"current_kill_streak"`
	CurrentDeathStreak int     `json:"current_death_streak"`
	AverageKillStreak  float64 `json:"average_kill_streak"`
	// History holds the longest closed streaks, longest first.
	// The run still in progress is not included.
	History []Streak `json:"history"`
}

// StreakHistory walks the records in time order and splits them into runs
// of kills and deaths. Suicides are skipped: they neither extend nor
// break a run.
func StreakHistory(records []event.KillEvent, player string) Streaks {
	var (
		out   Streaks
		cur   StreakType
		start time.Time
	)
	closeRun := func(length int, end time.Time) {
		out.History = append(out.History, Streak{Type: cur, Length: length, Start: start, End: end})
	}

	for _, r := range chronological(records) {
		switch classify(r, player) {
		case roleKill:
			if cur == StreakDeath && out.CurrentDeathStreak > 0 {
				closeRun(out.CurrentDeathStreak, r.Timestamp)
				out.CurrentDeathStreak = 0
			}
			if cur != StreakKill {
				cur, start = StreakKill, r.Timestamp
				out.CurrentKillStreak = 0
			}
			out.CurrentKillStreak++
			out.MaxKillStreak = max(out.MaxKillStreak, out.CurrentKillStreak)
		case roleDeath:
			if cur == StreakKill && out.CurrentKillStreak > 0 {
				closeRun(out.CurrentKillStreak, r.Timestamp)
				out.CurrentKillStreak = 0
			}
			if cur != StreakDeath {
				cur, start = StreakDeath, r.Timestamp
				out.CurrentDeathStreak = 0
			}
			out.CurrentDeathStreak++
			out.MaxDeathStreak = max(out.MaxDeathStreak, out.CurrentDeathStreak)
		}
	}

	var sum, n int
	for _, s := range out.History {
		if s.Type == StreakKill {
			sum += s.Length
			n++
		}
	}
	if n > 0 {
		out.AverageKillStreak = float64(sum) / float64(n)
	}

	slices.SortStableFunc(out.History, func(a, b Streak) int {
		return b.Length - a.Length
	})
	if len(out.History) > MaxStreakHistory {
		out.History = out.History[:MaxStreakHistory]
	}
	if out.History == nil {
		out.History = []Streak{}
	}
	return out
}
