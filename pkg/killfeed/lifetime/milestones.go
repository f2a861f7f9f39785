package lifetime

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// MilestoneThresholds are the kill counts that earn a milestone.
var MilestoneThresholds = []int{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Milestone records when a kill-count threshold was first reached.
type Milestone struct {
	Label     string    `json:"milestone"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
	KillCount int       `json:"kill_count"`
}

// MilestoneLabel formats a threshold, such as "1,000 Kills".
func MilestoneLabel(threshold int) string {
	return humanize.Comma(int64(threshold)) + " Kills"
}

// Milestones counts the player's non-suicide kills in time order and
// emits each threshold once, in ascending order.
func Milestones(records []event.KillEvent, player string) []Milestone {
	out := []Milestone{}
	kills, next := 0, 0
	for _, r := range chronological(records) {
		if next == len(MilestoneThresholds) {
			break
		}
		if classify(r, player) != roleKill {
			continue
		}
		kills++
		for next < len(MilestoneThresholds) && kills >= MilestoneThresholds[next] {
			t := MilestoneThresholds[next]
			out = append(out, Milestone{
				Label:     MilestoneLabel(t),
				Threshold: t,
				Timestamp: r.Timestamp,
				KillCount: kills,
			})
			next++
		}
	}
	return out
}
