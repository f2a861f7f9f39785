package lifetime_test

import (
	"fmt"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
	"github.com/killfeed/killfeed-go/pkg/killfeed/lifetime"
)

func ExampleCompute() {
	start := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	var history []event.KillEvent
	for i := 0; i < 12; i++ {
		history = append(history, event.KillEvent{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Killer:    "Ponder_OG",
			Victim:    "Vagabondy",
			Weapon:    "weapon_x",
		})
	}
	history = append(history, event.KillEvent{
		Timestamp: start.Add(3 * time.Hour),
		Killer:    "Vagabondy",
		Victim:    "ponder_og",
		Weapon:    "weapon_y",
	})

	r := lifetime.Compute(history, "Ponder_OG")
	fmt.Printf("K/D %.1f over %d sessions\n", r.Summary.KDRatio, r.Summary.TotalSessions)
	fmt.Println("nemesis:", r.Rivals.Nemesis.Player)
	for _, m := range r.Milestones {
		fmt.Println(m.Label, m.Timestamp.Format(time.Kitchen))
	}
	// Output:
	// K/D 12.0 over 2 sessions
	// nemesis: vagabondy
	// 10 Kills 8:09PM
}
