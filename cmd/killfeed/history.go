package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/killfeed/killfeed-go/internal/config"
	"github.com/killfeed/killfeed-go/internal/history"
	"github.com/killfeed/killfeed-go/internal/tailer"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

var (
	// history flags
	historyFormat string
	historyLimit  int
	historyFollow bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recorded kill events",
	Long: `Print the most recent events from the history file.

With --follow, keep printing rows as "killfeed tail" appends them
(CSV backend only).

Examples:
  killfeed history -n 20
  killfeed history --follow --format jsonl`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "pretty",
		"Output format: pretty, jsonl")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10,
		"Number of recent events to print (0 = all)")
	historyCmd.Flags().BoolVarP(&historyFollow, "follow", "F", false,
		"Keep printing new rows as they are appended")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	pr, err := newPrinter(historyFormat, cfg.Player, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if historyFollow {
		if err := followable(cfg.HistoryBackend); err != nil {
			return err
		}
	}

	records, err := loadHistory(cmd, cfg, log)
	if err != nil {
		return err
	}
	if err := printRecent(pr, records, historyLimit); err != nil {
		return err
	}
	if !historyFollow {
		return nil
	}
	return followHistory(cmd.Context(), cfg, log, pr)
}

// followable reports whether the configured backend can be followed.
func followable(backend string) error {
	b, err := history.ParseBackend(backend)
	if err != nil {
		return err
	}
	if b != history.BackendCSV {
		return errors.New("--follow requires the csv history backend")
	}
	return nil
}

// printRecent prints the last limit records, oldest first.
func printRecent(pr *printer, records []event.KillEvent, limit int) error {
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	for _, ev := range records {
		if err := pr.event(ev); err != nil {
			return err
		}
	}
	return nil
}

// followHistory prints rows appended to the CSV history until ctx ends.
func followHistory(ctx context.Context, cfg config.Config, log *slog.Logger, pr *printer) error {
	lines, errs, err := tailer.Follow(ctx, cfg.ResolvedHistoryPath(), tailer.WithLogger(log))
	if err != nil {
		return err
	}
	return printRows(lines, errs, log, pr)
}

// printRows prints each parsable row until both channels close.
func printRows(lines <-chan string, errs <-chan error, log *slog.Logger, pr *printer) error {
	for lines != nil || errs != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			ev, err := history.ParseRow(line)
			if errors.Is(err, history.ErrHeaderRow) {
				continue
			}
			if err != nil {
				log.Debug("skipping history row", "error", err)
				continue
			}
			if err := pr.event(ev); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return fmt.Errorf("follow history: %w", err)
		}
	}
	return nil
}
