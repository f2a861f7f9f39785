package lifetime

import (
	"slices"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// WeaponStat is one row of the weapon mastery table.
type WeaponStat struct {
	Weapon       string    `json:"weapon"`
	Kills        int       `json:"kills"`
	Deaths       int       `json:"deaths"`
	KDRatio      float64   `json:"kd_ratio"`
	UsagePercent float64   `json:"usage_percent"`
	FirstUse     time.Time `json:"first_use,omitzero"`
	LastUse      time.Time `json:"last_use,omitzero"`
}

// Weapons is the weapon mastery report.
type Weapons struct {
	// MostUsed is the weapon with the most kills, or nil without kills.
	MostUsed *WeaponStat `json:"most_used,omitempty"`
	// MostEffective is the weapon with the highest K/D, or nil if every
	// K/D is zero.
	MostEffective *WeaponStat `json:"most_effective,omitempty"`
	// Table is sorted by kills descending, then weapon name.
	Table []WeaponStat `json:"table"`
}

// WeaponMastery tallies kills with and deaths to each weapon from the
// player's point of view. Suicides are ignored. First and last use refer
// to kills only.
func WeaponMastery(records []event.KillEvent, player string) Weapons {
	rows := make(map[string]*WeaponStat)
	get := func(w string) *WeaponStat {
		if row, ok := rows[w]; ok {
			return row
		}
		row := &WeaponStat{Weapon: w}
		rows[w] = row
		return row
	}

	totalKills := 0
	for _, r := range chronological(records) {
		switch classify(r, player) {
		case roleKill:
			row := get(r.Weapon)
			row.Kills++
			totalKills++
			if row.FirstUse.IsZero() {
				row.FirstUse = r.Timestamp
			}
			row.LastUse = r.Timestamp
		case roleDeath:
			get(r.Weapon).Deaths++
		}
	}

	var out Weapons
	out.Table = make([]WeaponStat, 0, len(rows))
	for _, row := range rows {
		row.KDRatio = ratio(row.Kills, row.Deaths)
		if totalKills > 0 {
			row.UsagePercent = float64(row.Kills) / float64(totalKills) * 100
		}
		out.Table = append(out.Table, *row)
	}
	slices.SortFunc(out.Table, func(a, b WeaponStat) int {
		return byCountThenName(a.Kills, b.Kills, a.Weapon, b.Weapon)
	})

	for i := range out.Table {
		row := &out.Table[i]
		if row.Kills > 0 && out.MostUsed == nil {
			out.MostUsed = row
		}
		if row.KDRatio > 0 && (out.MostEffective == nil || row.KDRatio > out.MostEffective.KDRatio) {
			out.MostEffective = row
		}
	}
	return out
}
