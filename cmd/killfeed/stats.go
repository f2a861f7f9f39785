package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/killfeed/killfeed-go/internal/config"
	"github.com/killfeed/killfeed-go/pkg/killfeed/lifetime"
)

var (
	// stats flags
	statsFormat  string
	statsTop     int
	statsHistory string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime statistics from the kill history",
	Long: `Compute lifetime statistics for the configured player from the history file.

Rows that do not involve the player, or that name an unknown actor or
weapon, are ignored. The report is recomputed from the whole history on
every run.

Examples:
  killfeed stats --player Ponder_OG
  killfeed stats --format json | jq .summary`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text",
		"Output format: text, json")
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 10,
		"Rows to show per table in text format")
	statsCmd.Flags().StringVar(&statsHistory, "history", "",
		"History file (default from config)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := config.ValidatePlayer(cfg.Player); err != nil {
		return fmt.Errorf("a player is required (--player or config): %w", err)
	}
	if statsHistory != "" {
		cfg.HistoryPath = statsHistory
	}

	records, err := loadHistory(cmd, cfg, log)
	if err != nil {
		return err
	}
	report := lifetime.Compute(records, cfg.Player)
	log.Debug("lifetime report computed", "loaded", len(records), "used", report.Records)

	return writeReport(cmd.OutOrStdout(), statsFormat, report, statsTop, time.Now())
}

func writeReport(out io.Writer, format string, r lifetime.Report, top int, now time.Time) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "text":
		return renderReport(out, r, top, now)
	default:
		return fmt.Errorf("unknown format: %s (want text or json)", format)
	}
}

// renderReport writes the human-readable report. now anchors relative times.
func renderReport(out io.Writer, r lifetime.Report, top int, now time.Time) error {
	st := newStyles(out)
	var b strings.Builder
	heading := func(s string) { fmt.Fprintf(&b, "\n%s\n", st.bold.Render(s)) }
	day := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(time.DateOnly)
	}
	limit := func(n int) int {
		if top >= 0 && top < n {
			return top
		}
		return n
	}

	s := r.Summary
	fmt.Fprintf(&b, "%s %s\n", st.bold.Render("Lifetime stats for"), st.player.Render(r.Player))
	if r.Records == 0 {
		fmt.Fprintln(&b, "  no recorded events")
		_, err := io.WriteString(out, b.String())
		return err
	}
	fmt.Fprintf(&b, "  Kills %s  Deaths %s  Suicides %s  K/D %.2f\n",
		humanize.Comma(int64(s.TotalKills)), humanize.Comma(int64(s.TotalDeaths)),
		humanize.Comma(int64(s.Suicides)), s.KDRatio)
	fmt.Fprintf(&b, "  Sessions %d  Span %.1fh  First %s  Last %s\n",
		s.TotalSessions, s.PlayHours, day(s.FirstEvent), day(s.LastEvent))

	w := r.Weapons
	if len(w.Table) > 0 {
		heading("Weapons")
		for _, row := range w.Table[:limit(len(w.Table))] {
			fmt.Fprintf(&b, "  %-28s kills %-5d deaths %-5d K/D %-6.2f usage %5.1f%%\n",
				row.Weapon, row.Kills, row.Deaths, row.KDRatio, row.UsagePercent)
		}
		if w.MostUsed != nil {
			fmt.Fprintf(&b, "  Most used: %s (%d kills)\n", w.MostUsed.Weapon, w.MostUsed.Kills)
		}
		if w.MostEffective != nil {
			fmt.Fprintf(&b, "  Most effective: %s (K/D %.2f)\n", w.MostEffective.Weapon, w.MostEffective.KDRatio)
		}
	}

	rv := r.Rivals
	if len(rv.Table) > 0 {
		heading("Rivals")
		for _, row := range rv.Table[:limit(len(rv.Table))] {
			fmt.Fprintf(&b, "  %-24s killed %-4d killed by %-4d K/D %-6.2f last %s\n",
				st.other.Render(row.Player), row.KilledThem, row.KilledByThem, row.HeadToHeadKD,
				humanize.RelTime(row.LastEncounter, now, "ago", "from now"))
		}
		if rv.MostKilled != nil {
			fmt.Fprintf(&b, "  Most killed: %s (%d)\n", rv.MostKilled.Player, rv.MostKilled.KilledThem)
		}
		if rv.Nemesis != nil {
			fmt.Fprintf(&b, "  Nemesis: %s (%d)\n", rv.Nemesis.Player, rv.Nemesis.KilledByThem)
		}
	}

	t := r.Trends
	if t.BestDay != nil {
		heading("Trends")
		fmt.Fprintf(&b, "  Best day %s (%d)  Best week %s (%d)  Best month %s (%d)\n",
			t.BestDay.Period, t.BestDay.Kills, t.BestWeek.Period, t.BestWeek.Kills,
			t.BestMonth.Period, t.BestMonth.Kills)
		fmt.Fprintf(&b, "  Peak hour %02d:00  Peak day %s\n", peak(t.ByHour[:]), weekdayNames[peak(t.ByWeekday[:])])
	}

	sk := r.Streaks
	heading("Streaks")
	fmt.Fprintf(&b, "  Best kill streak %d  Best death streak %d  Average kill streak %.1f\n",
		sk.MaxKillStreak, sk.MaxDeathStreak, sk.AverageKillStreak)
	fmt.Fprintf(&b, "  Current kill streak %d  Current death streak %d\n",
		sk.CurrentKillStreak, sk.CurrentDeathStreak)
	for _, h := range sk.History[:limit(len(sk.History))] {
		fmt.Fprintf(&b, "  %-5s %4d  %s to %s\n", h.Type, h.Length,
			h.Start.Format(time.DateTime), h.End.Format(time.DateTime))
	}

	if len(r.Milestones) > 0 {
		heading("Milestones")
		for _, m := range r.Milestones {
			fmt.Fprintf(&b, "  %-12s %s\n", m.Label, m.Timestamp.Format(time.DateTime))
		}
	}

	_, err := io.WriteString(out, b.String())
	return err
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// peak returns the index of the largest bucket, the first on ties.
func peak(buckets []int) int {
	best := 0
	for i, n := range buckets {
		if n > buckets[best] {
			best = i
		}
	}
	return best
}
