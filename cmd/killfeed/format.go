package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/killfeed/killfeed-go/pkg/killfeed"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// validFormats lists the event output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

const (
	colorPlayer = "#22c55e"
	colorOther  = "#ef4444"
	colorMuted  = "#94a3b8"
)

// styles renders for one writer; color is dropped when it is not a terminal.
type styles struct {
	player lipgloss.Style
	other  lipgloss.Style
	muted  lipgloss.Style
	bold   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		player: r.NewStyle().Foreground(lipgloss.Color(colorPlayer)).Bold(true),
		other:  r.NewStyle().Foreground(lipgloss.Color(colorOther)),
		muted:  r.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		bold:   r.NewStyle().Bold(true),
	}
}

// name colors the local player green and everyone else red.
func (s styles) name(n, player string) string {
	if player != "" && strings.EqualFold(n, player) {
		return s.player.Render(n)
	}
	return s.other.Render(n)
}

// printer writes events in one format.
type printer struct {
	format string
	player string
	out    io.Writer
	st     styles
}

func newPrinter(format, player string, out io.Writer) (*printer, error) {
	if !validFormats[format] {
		return nil, fmt.Errorf("unknown format: %s (want jsonl or pretty)", format)
	}
	return &printer{format: format, player: player, out: out, st: newStyles(out)}, nil
}

func (p *printer) event(ev event.KillEvent) error {
	switch p.format {
	case "jsonl":
		return OutputJSON(ev, p.out)
	default:
		return outputPretty(ev, p.player, p.st, p.out)
	}
}

// OutputEvent writes an event in the specified format to the writer.
func OutputEvent(format string, ev event.KillEvent, player string, out io.Writer) error {
	p, err := newPrinter(format, player, out)
	if err != nil {
		return err
	}
	return p.event(ev)
}

// OutputJSON writes an event as one JSON line.
func OutputJSON(ev event.KillEvent, out io.Writer) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes an event in human-readable form.
func OutputPretty(ev event.KillEvent, player string, out io.Writer) error {
	return outputPretty(ev, player, newStyles(out), out)
}

func outputPretty(ev event.KillEvent, player string, st styles, out io.Writer) error {
	ts := st.muted.Render("[" + ev.Timestamp.Format("15:04:05") + "]")
	var err error
	if ev.IsSuicide() {
		_, err = fmt.Fprintf(out, "%s %s died by %s\n", ts, st.name(ev.Killer, player), ev.Weapon)
	} else {
		_, err = fmt.Fprintf(out, "%s %s killed %s with %s\n",
			ts, st.name(ev.Killer, player), st.name(ev.Victim, player), ev.Weapon)
	}
	return err
}

// FormatSummary renders the one-line live summary.
func FormatSummary(snap killfeed.Snapshot) string {
	return fmt.Sprintf("kills %d  deaths %d  K/D %.2f  streak %d  best %d  events %d",
		snap.TotalKills, snap.TotalDeaths, snap.KDRatio,
		snap.KillStreak, snap.MaxKillStreak, snap.Events)
}

// FormatStatus renders a monitor status notification.
func FormatStatus(s killfeed.Status) string {
	switch s.Kind {
	case killfeed.StatusHalted:
		return fmt.Sprintf("monitoring halted: %s", s.Reason())
	case killfeed.StatusStarted:
		return fmt.Sprintf("monitoring %s", s.Path)
	default:
		return "monitoring stopped"
	}
}
