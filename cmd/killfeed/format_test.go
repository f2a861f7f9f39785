package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

const me = "Ponder_OG"

var sampleEvent = event.KillEvent{
	Timestamp: time.Date(2024, 1, 15, 12, 30, 45, 0, time.UTC),
	Killer:    me,
	Victim:    "Vagabondy",
	Weapon:    "weapon_x",
}

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"jsonl", true},
		{"pretty", true},
		{"json", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := validFormats[tt.format]; got != tt.valid {
				t.Errorf("validFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(sampleEvent, &buf); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("OutputJSON() output should end with newline")
	}

	var decoded event.KillEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("OutputJSON() produced invalid JSON: %v", err)
	}
	if decoded.Victim != "Vagabondy" || !decoded.Timestamp.Equal(sampleEvent.Timestamp) {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestOutputPretty(t *testing.T) {
	tests := []struct {
		name     string
		event    event.KillEvent
		contains string
	}{
		{
			name:     "player kill",
			event:    sampleEvent,
			contains: "[12:30:45] Ponder_OG killed Vagabondy with weapon_x",
		},
		{
			name:     "player death",
			event:    event.KillEvent{Timestamp: sampleEvent.Timestamp, Killer: "Vagabondy", Victim: me, Weapon: "weapon_y"},
			contains: "Vagabondy killed Ponder_OG with weapon_y",
		},
		{
			name:     "suicide",
			event:    event.KillEvent{Timestamp: sampleEvent.Timestamp, Killer: me, Victim: me, Weapon: "Crash"},
			contains: "Ponder_OG died by Crash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputPretty(tt.event, me, &buf); err != nil {
				t.Fatalf("OutputPretty() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("OutputPretty() = %q, want to contain %q", buf.String(), tt.contains)
			}
		})
	}
}

func TestOutputEvent_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := OutputEvent("xml", sampleEvent, me, &buf)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("OutputEvent(xml) error = %v, want unknown format", err)
	}
}

func TestFormatSummary(t *testing.T) {
	snap := killfeed.Snapshot{TotalKills: 3, TotalDeaths: 2, KDRatio: 1.5, KillStreak: 1, MaxKillStreak: 2, Events: 7}
	want := "kills 3  deaths 2  K/D 1.50  streak 1  best 2  events 7"
	if got := FormatSummary(snap); got != want {
		t.Errorf("FormatSummary() = %q, want %q", got, want)
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status killfeed.Status
		want   string
	}{
		{killfeed.Status{Kind: killfeed.StatusStarted, Path: "/x/Game.log"}, "monitoring /x/Game.log"},
		{killfeed.Status{Kind: killfeed.StatusStopped}, "monitoring stopped"},
		{killfeed.Status{Kind: killfeed.StatusHalted, Err: killfeed.ErrPermissionDenied}, "monitoring halted: permission denied"},
		{killfeed.Status{Kind: killfeed.StatusHalted, Err: errors.New("boom")}, "monitoring halted: boom"},
	}
	for _, tt := range tests {
		if got := FormatStatus(tt.status); got != tt.want {
			t.Errorf("FormatStatus(%v) = %q, want %q", tt.status.Kind, got, tt.want)
		}
	}
}
