package lifetime

import (
	"fmt"
	"slices"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// Key layouts for trend buckets.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Bucket is one period and its kill count.
type Bucket struct {
	Period string `json:"period"`
	Kills  int    `json:"kills"`
}

// Trends groups the player's kills by calendar period.
type Trends struct {
	ByDay   map[string]int `json:"by_day"`
	ByWeek  map[string]int `json:"by_week"`
	ByMonth map[string]int `json:"by_month"`
	// ByHour is indexed by hour of day, 0-23.
	ByHour [24]int `json:"by_hour"`
	// ByWeekday is indexed Monday=0 through Sunday=6.
	ByWeekday [7]int `json:"by_weekday"`

	// Best buckets are nil when there are no kills. Ties go to the
	// earliest period.
	BestDay   *Bucket `json:"best_day,omitempty"`
	BestWeek  *Bucket `json:"best_week,omitempty"`
	BestMonth *Bucket `json:"best_month,omitempty"`
}

// TimeTrends buckets every non-suicide kill by the player.
// Timestamps are bucketed in their own location.
func TimeTrends(records []event.KillEvent, player string) Trends {
	t := Trends{
		ByDay:   make(map[string]int),
		ByWeek:  make(map[string]int),
		ByMonth: make(map[string]int),
	}
	for _, r := range records {
		if classify(r, player) != roleKill {
			continue
		}
		ts := r.Timestamp
		t.ByDay[ts.Format(DayLayout)]++
		t.ByWeek[WeekKey(ts)]++
		t.ByMonth[ts.Format(MonthLayout)]++
		t.ByHour[ts.Hour()]++
		t.ByWeekday[MondayIndex(ts.Weekday())]++
	}
	t.BestDay = best(t.ByDay)
	t.BestWeek = best(t.ByWeek)
	t.BestMonth = best(t.ByMonth)
	return t
}

// WeekKey formats the ISO week of ts, such as "2024-W07".
// The year is the ISO year, so 2021-01-01 is "2020-W53".
func WeekKey(ts time.Time) string {
	year, week := ts.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MondayIndex maps a weekday to Monday=0 through Sunday=6.
func MondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// best returns the bucket with the most kills. Keys sort chronologically,
// so scanning them in order breaks ties toward the earliest period.
func best(buckets map[string]int) *Bucket {
	var b *Bucket
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if b == nil || buckets[k] > b.Kills {
			b = &Bucket{Period: k, Kills: buckets[k]}
		}
	}
	return b
}
