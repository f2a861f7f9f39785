package event

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name                   string
		killer, victim, weapon string
		wantErr                bool
	}{
		{"valid", "Alice", "Bob", "Laser", false},
		{"trims whitespace", "  Alice ", "\tBob", "Laser  ", false},
		{"empty killer", "", "Bob", "Laser", true},
		{"whitespace victim", "Alice", "   ", "Laser", true},
		{"empty weapon", "Alice", "Bob", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := New(ts, tt.killer, tt.victim, tt.weapon)
			if tt.wantErr {
				var fe *FieldError
				if !errors.As(err, &fe) {
					t.Fatalf("New() error = %v, want *FieldError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if ev.Killer != "Alice" || ev.Victim != "Bob" || ev.Weapon != "Laser" {
				t.Errorf("New() = %+v, want trimmed fields", ev)
			}
			if !ev.Timestamp.Equal(ts) {
				t.Errorf("Timestamp = %v, want %v", ev.Timestamp, ts)
			}
		})
	}
}

func TestKillEvent_Predicates(t *testing.T) {
	suicide := KillEvent{Killer: "Alice", Victim: "Alice", Weapon: "Grenade"}
	if !suicide.IsSuicide() {
		t.Error("IsSuicide() = false, want true")
	}

	ev := KillEvent{Killer: "Alice", Victim: "UNKNOWN", Weapon: "Laser"}
	if !ev.HasUnknown() {
		t.Error("HasUnknown() = false, want true for case-insensitive sentinel")
	}
}
