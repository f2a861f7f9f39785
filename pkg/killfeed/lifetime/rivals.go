package lifetime

import (
	"slices"
	"strings"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// Rival is one row of the rivalry table. Names are lowercased.
type Rival struct {
	Player        string    `json:"player"`
	KilledThem    int       `json:"killed_them"`
	KilledByThem  int       `json:"killed_by_them"`
	HeadToHeadKD  float64   `json:"head_to_head_kd"`
	LastEncounter time.Time `json:"last_encounter,omitzero"`
}

// Encounters is the total number of kills between the player and this rival.
func (r Rival) Encounters() int { return r.KilledThem + r.KilledByThem }

// Rivals is the player-versus-player report.
type Rivals struct {
	// MostKilled is the opponent the player killed most, or nil.
	MostKilled *Rival `json:"most_killed,omitempty"`
	// Nemesis is the opponent who killed the player most, or nil.
	Nemesis *Rival `json:"nemesis,omitempty"`
	// Table is sorted by encounters descending, then name.
	Table []Rival `json:"table"`
}

// Rivalries tallies kills between the player and each opponent.
// Opponents are keyed case-insensitively; suicides are ignored.
func Rivalries(records []event.KillEvent, player string) Rivals {
	rows := make(map[string]*Rival)
	get := func(name string) *Rival {
		key := strings.ToLower(name)
		if row, ok := rows[key]; ok {
			return row
		}
		row := &Rival{Player: key}
		rows[key] = row
		return row
	}

	for _, r := range records {
		switch classify(r, player) {
		case roleKill:
			row := get(r.Victim)
			row.KilledThem++
			row.LastEncounter = later(row.LastEncounter, r.Timestamp)
		case roleDeath:
			row := get(r.Killer)
			row.KilledByThem++
			row.LastEncounter = later(row.LastEncounter, r.Timestamp)
		}
	}

	var out Rivals
	out.Table = make([]Rival, 0, len(rows))
	for _, row := range rows {
		row.HeadToHeadKD = ratio(row.KilledThem, row.KilledByThem)
		out.Table = append(out.Table, *row)
	}
	slices.SortFunc(out.Table, func(a, b Rival) int {
		return byCountThenName(a.Encounters(), b.Encounters(), a.Player, b.Player)
	})

	for i := range out.Table {
		row := &out.Table[i]
		if row.KilledThem > 0 && (out.MostKilled == nil || preferred(row.KilledThem, out.MostKilled.KilledThem, row.Player, out.MostKilled.Player)) {
			out.MostKilled = row
		}
		if row.KilledByThem > 0 && (out.Nemesis == nil || preferred(row.KilledByThem, out.Nemesis.KilledByThem, row.Player, out.Nemesis.Player)) {
			out.Nemesis = row
		}
	}
	return out
}

// preferred reports whether (count, name) outranks (bestCount, bestName).
func preferred(count, bestCount int, name, bestName string) bool {
	return byCountThenName(count, bestCount, name, bestName) < 0
}
