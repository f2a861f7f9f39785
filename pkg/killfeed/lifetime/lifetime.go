// Package lifetime derives long-term reports from a persisted kill history.
//
// Every function is pure: it reads the records it is given and returns a
// fresh value. Nothing is cached or updated incrementally, so a report is
// always recomputed from the full history.
//
// The usual entry point is Compute, which filters the history for one
// player and builds every sub-report:
//
//	records, err := store.Load(ctx)
//	if err != nil {
//		return err
//	}
//	report := lifetime.Compute(records, "Ponder_OG")
//	fmt.Println(report.Summary.TotalKills)
package lifetime

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// Report bundles every lifetime sub-report for one player.
type Report struct {
	Player     string      `json:"player"`
	Records    int         `json:"records"`
	Summary    Summary     `json:"summary"`
	Weapons    Weapons     `json:"weapons"`
	Rivals     Rivals      `json:"rivals"`
	Trends     Trends      `json:"trends"`
	Streaks    Streaks     `json:"streaks"`
	Milestones []Milestone `json:"milestones"`
}

// Compute filters records for player and builds the full report.
func Compute(records []event.KillEvent, player string) Report {
	filtered := chronological(Filter(records, player))
	return Report{
		Player:     player,
		Records:    len(filtered),
		Summary:    ComputeSummary(filtered, player),
		Weapons:    WeaponMastery(filtered, player),
		Rivals:     Rivalries(filtered, player),
		Trends:     TimeTrends(filtered, player),
		Streaks:    StreakHistory(filtered, player),
		Milestones: Milestones(filtered, player),
	}
}

// Filter keeps the records that involve player, compared case-insensitively,
// and drops any record carrying the Unknown sentinel.
// An empty player yields no records.
func Filter(records []event.KillEvent, player string) []event.KillEvent {
	if player == "" {
		return nil
	}
	out := make([]event.KillEvent, 0, len(records))
	for _, r := range records {
		if r.HasUnknown() {
			continue
		}
		if !strings.EqualFold(r.Killer, player) && !strings.EqualFold(r.Victim, player) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// role is how one record relates to the player.
type role int

const (
	roleNone role = iota
	roleKill
	roleDeath
	roleSuicide
)

func classify(r event.KillEvent, player string) role {
	killer := strings.EqualFold(r.Killer, player)
	victim := strings.EqualFold(r.Victim, player)
	switch {
	case strings.EqualFold(r.Killer, r.Victim):
		if killer {
			return roleSuicide
		}
		return roleNone
	case killer:
		return roleKill
	case victim:
		return roleDeath
	}
	return roleNone
}

// chronological returns a copy of records sorted by timestamp.
// Records with equal timestamps keep their input order.
func chronological(records []event.KillEvent) []event.KillEvent {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b event.KillEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// ratio returns a/b, or a when b is zero.
func ratio(a, b int) float64 {
	if b == 0 {
		return float64(a)
	}
	return float64(a) / float64(b)
}

// later returns the later of two timestamps.
func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// byCountThenName sorts descending by count, ascending by name.
func byCountThenName(ca, cb int, na, nb string) int {
	if c := cmp.Compare(cb, ca); c != 0 {
		return c
	}
	return strings.Compare(na, nb)
}
