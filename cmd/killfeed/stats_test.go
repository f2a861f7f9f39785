package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
	"github.com/killfeed/killfeed-go/pkg/killfeed/lifetime"
)

func bobReport() lifetime.Report {
	start := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	var records []event.KillEvent
	for i := 0; i < 10; i++ {
		records = append(records, event.KillEvent{
			Timestamp: start.Add(time.Duration(i) * time.Minute), Killer: me, Victim: "Bob", Weapon: "Laser",
		})
	}
	for i := 0; i < 5; i++ {
		records = append(records, event.KillEvent{
			Timestamp: start.Add(time.Duration(10+i) * time.Minute), Killer: "Bob", Victim: me, Weapon: "Pistol",
		})
	}
	return lifetime.Compute(records, me)
}

func TestRenderReport(t *testing.T) {
	now := time.Date(2024, 3, 8, 21, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := writeReport(&buf, "text", bobReport(), 10, now); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Lifetime stats for Ponder_OG",
		"Kills 10  Deaths 5  Suicides 0  K/D 2.00",
		"Sessions 1",
		"Most used: Laser (10 kills)",
		"Nemesis: bob (5)",
		"4 days ago",
		"Best day 2024-03-04 (10)",
		"Peak hour 20:00  Peak day Monday",
		"10 Kills",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, "text", lifetime.Compute(nil, me), 10, time.Now()); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no recorded events") {
		t.Errorf("empty report = %q", buf.String())
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, "json", bobReport(), 10, time.Now()); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	var decoded struct {
		Summary struct {
			TotalKills int `json:"total_kills"`
		} `json:"summary"`
		Rivals struct {
			Table []struct {
				Player       string  `json:"player"`
				HeadToHeadKD float64 `json:"head_to_head_kd"`
			} `json:"table"`
		} `json:"rivals"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Summary.TotalKills != 10 {
		t.Errorf("total_kills = %d, want 10", decoded.Summary.TotalKills)
	}
	if len(decoded.Rivals.Table) != 1 || decoded.Rivals.Table[0].Player != "bob" || decoded.Rivals.Table[0].HeadToHeadKD != 2 {
		t.Errorf("rivals = %+v", decoded.Rivals.Table)
	}
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, "yaml", bobReport(), 10, time.Now()); err == nil {
		t.Error("writeReport(yaml) should fail")
	}
}

func TestPeak(t *testing.T) {
	if got := peak([]int{0, 3, 1, 3}); got != 1 {
		t.Errorf("peak() = %d, want 1", got)
	}
	if got := peak(make([]int, 24)); got != 0 {
		t.Errorf("peak(zeros) = %d, want 0", got)
	}
}
