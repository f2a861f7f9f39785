// Command killfeed follows a Star Citizen Game.log, prints kill events as
// they happen, records them to a history file, and reports lifetime
// statistics from that history.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killfeed/killfeed-go/internal/config"
	"github.com/killfeed/killfeed-go/internal/history"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

var (
	// global flags
	configPath string
	playerName string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "killfeed",
	Short: "Star Citizen kill feed and statistics",
	Long: `killfeed watches the Star Citizen Game.log for kill notices.

It prints each kill as it happens, keeps live session statistics,
appends every event to a history file, and computes lifetime reports
(weapon mastery, rivals, trends, streaks, milestones) from that history.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (YAML or TOML; default $XDG_CONFIG_HOME/killfeed/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&playerName, "player", "p", "",
		"Your in-game handle (overrides the config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSettings reads the config file and applies the global flags.
func loadSettings(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	log := newLogger(cmd.ErrOrStderr(), verbose)
	cfg, err := config.Load(configPath, log)
	if err != nil {
		return config.Config{}, nil, err
	}
	if p := strings.TrimSpace(playerName); p != "" {
		cfg.Player = p
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, log, nil
}

// openHistory opens the configured history store.
func openHistory(cfg config.Config, log *slog.Logger) (history.Store, error) {
	backend, err := history.ParseBackend(cfg.HistoryBackend)
	if err != nil {
		return nil, err
	}
	return history.Open(backend, cfg.ResolvedHistoryPath(), history.WithLogger(log))
}

// loadHistory reads every stored event. A history file with the wrong
// header is reported and treated as empty.
func loadHistory(cmd *cobra.Command, cfg config.Config, log *slog.Logger) ([]event.KillEvent, error) {
	store, err := openHistory(cfg, log)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	records, err := store.Load(cmd.Context())
	var he *history.HeaderError
	if errors.As(err, &he) {
		log.Warn("ignoring history file with unexpected header", "error", err)
		return nil, nil
	}
	return records, err
}
