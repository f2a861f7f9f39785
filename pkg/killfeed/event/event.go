// Package event defines the KillEvent type shared by the live and lifetime paths.
package event

import (
	"fmt"
	"strings"
	"time"
)

// Unknown is the sentinel identifier the game writes when it cannot name
// an actor or weapon. Records carrying it are persisted but excluded from
// lifetime statistics.
const Unknown = "unknown"

// KillEvent is one observed combat outcome.
// Values are immutable once created; pass them by value.
type KillEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Killer    string    `json:"killer"`
	Victim    string    `json:"victim"`
	Weapon    string    `json:"weapon"`
}

// New builds a KillEvent from raw captured fields.
// Fields are trimmed; a *FieldError is returned if any is empty afterwards.
func New(ts time.Time, killer, victim, weapon string) (KillEvent, error) {
	ev := KillEvent{
		Timestamp: ts,
		Killer:    strings.TrimSpace(killer),
		Victim:    strings.TrimSpace(victim),
		Weapon:    strings.TrimSpace(weapon),
	}
	if err := ev.Validate(); err != nil {
		return KillEvent{}, err
	}
	return ev, nil
}

// Validate reports a *FieldError if any identifier is empty after trimming.
func (e KillEvent) Validate() error {
	if strings.TrimSpace(e.Killer) == "" ||
		strings.TrimSpace(e.Victim) == "" ||
		strings.TrimSpace(e.Weapon) == "" {
		return &FieldError{Killer: e.Killer, Victim: e.Victim, Weapon: e.Weapon}
	}
	return nil
}

// IsSuicide reports whether killer and victim are the same identifier.
func (e KillEvent) IsSuicide() bool {
	return e.Killer == e.Victim
}

// HasUnknown reports whether any field equals the Unknown sentinel,
// compared case-insensitively.
func (e KillEvent) HasUnknown() bool {
	return strings.EqualFold(e.Killer, Unknown) ||
		strings.EqualFold(e.Victim, Unknown) ||
		strings.EqualFold(e.Weapon, Unknown)
}

// FieldError is returned when a line matches a kill pattern but one of the
// captured fields is empty. The partial fields are kept for logging.
type FieldError struct {
	Killer string
	Victim string
	Weapon string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("kill event has empty field: victim=%q killer=%q weapon=%q",
		e.Victim, e.Killer, e.Weapon)
}
