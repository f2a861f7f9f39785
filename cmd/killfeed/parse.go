package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/killfeed/killfeed-go/internal/history"
	"github.com/killfeed/killfeed-go/pkg/killfeed"
)

var (
	// parse flags
	parseFormat   string
	parseSave     bool
	parseSince    string
	parseUntil    string
	parsePatterns []string
	parseStrict   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Extract kill events from saved log files",
	Long: `Replay whole Game.log files (for example the logbackups folder) and print
every kill event found. Events keep the timestamp written on each log line.

Examples:
  killfeed parse logbackups/*.log
  killfeed parse Game.log --since 2024-03-01T00:00:00Z --format jsonl
  killfeed parse logbackups/*.log --save   # import into the history file`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "pretty",
		"Output format: pretty, jsonl")
	parseCmd.Flags().BoolVar(&parseSave, "save", false,
		"Append the events to the history file")
	parseCmd.Flags().StringVar(&parseSince, "since", "",
		"Only events at or after this time (RFC3339)")
	parseCmd.Flags().StringVar(&parseUntil, "until", "",
		"Only events before this time (RFC3339)")
	parseCmd.Flags().StringSliceVar(&parsePatterns, "patterns", nil,
		"Pattern files (YAML) with additional kill-line shapes")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false,
		"Fail on the first kill line with an empty field")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	since, err := parseTimeFlag("since", parseSince)
	if err != nil {
		return err
	}
	until, err := parseTimeFlag("until", parseUntil)
	if err != nil {
		return err
	}

	parser, markers, err := buildParser(append(cfg.PatternFiles, parsePatterns...))
	if err != nil {
		return err
	}
	opts := []killfeed.ParseOption{
		killfeed.WithParseTimeRange(since, until),
		killfeed.WithParseStopOnError(parseStrict),
		killfeed.WithParseLogger(log),
	}
	if parser != nil {
		opts = append(opts, killfeed.WithParseParser(parser), killfeed.WithParseMarkers(markers...))
	}

	pr, err := newPrinter(parseFormat, cfg.Player, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	var store history.Store
	if parseSave {
		if store, err = openHistory(cfg, log); err != nil {
			return err
		}
		defer store.Close()
	}
	stats := killfeed.NewStats(
		killfeed.WithPlayer(cfg.Player),
		killfeed.WithMaxEntries(cfg.MaxStatEntries),
		killfeed.WithStatsLogger(log),
	)

	for _, path := range args {
		events, err := killfeed.ParseFile(ctx, path, opts...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		log.Debug("parsed file", "path", path, "events", len(events))
		for _, ev := range events {
			stats.Record(ev)
			if err := pr.event(ev); err != nil {
				return err
			}
			if store != nil {
				if err := store.Append(ctx, ev); err != nil {
					return fmt.Errorf("save event: %w", err)
				}
			}
		}
	}

	if parseFormat == "pretty" {
		fmt.Fprintln(cmd.ErrOrStderr(), FormatSummary(stats.Snapshot()))
	}
	return nil
}

func parseTimeFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s format: %w", name, err)
	}
	return t, nil
}
