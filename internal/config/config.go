package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppName names the config and data directories.
const AppName = "killfeed"

// Defaults and bounds.
const (
	DefaultPollInterval         = 0.1
	MinPollInterval             = 0.01
	MaxPollInterval             = 1.0
	DefaultMaxLinesPerCycle     = 100
	MinLinesPerCycle            = 1
	MaxLinesPerCycle            = 1000
	DefaultMaxStatEntries       = 1000
	MinStatEntries              = 100
	MaxStatEntries              = 10000
	DefaultRecentCapacity       = 10000
	DefaultMaxConsecutiveErrors = 5
	MaxPlayerNameLength         = 50
)

// Config holds every setting the CLI reads from disk.
type Config struct {
	Player               string   `yaml:"player" toml:"player"`
	LogPath              string   `yaml:"log_path" toml:"log_path"`
	HistoryPath          string   `yaml:"history_path" toml:"history_path"`
	HistoryBackend       string   `yaml:"history_backend" toml:"history_backend"`
	AutoLog              bool     `yaml:"auto_log" toml:"auto_log"`
	PollInterval         float64  `yaml:"poll_interval" toml:"poll_interval"`
	MaxLinesPerCycle     int      `yaml:"max_lines_per_cycle" toml:"max_lines_per_cycle"`
	MaxStatEntries       int      `yaml:"max_stat_entries" toml:"max_stat_entries"`
	RecentCapacity       int      `yaml:"recent_capacity" toml:"recent_capacity"`
	MaxConsecutiveErrors int      `yaml:"max_consecutive_errors" toml:"max_consecutive_errors"`
	PatternFiles         []string `yaml:"pattern_files" toml:"pattern_files"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HistoryBackend:       "csv",
		AutoLog:              true,
		PollInterval:         DefaultPollInterval,
		MaxLinesPerCycle:     DefaultMaxLinesPerCycle,
		MaxStatEntries:       DefaultMaxStatEntries,
		RecentCapacity:       DefaultRecentCapacity,
		MaxConsecutiveErrors: DefaultMaxConsecutiveErrors,
	}
}

// Load reads path, or DefaultPath when path is empty, over the defaults.
// Out-of-range values are clamped to their defaults with a warning on log.
func Load(path string, log *slog.Logger) (Config, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Debug("config file not found, using defaults", "path", resolved)
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(resolved, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	cfg.normalize(log)
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// normalize trims strings, expands paths and clamps numbers.
func (c *Config) normalize(log *slog.Logger) {
	c.Player = strings.TrimSpace(c.Player)
	c.HistoryBackend = strings.ToLower(strings.TrimSpace(c.HistoryBackend))
	if c.HistoryBackend == "" {
		c.HistoryBackend = "csv"
	}

	if c.PollInterval < MinPollInterval || c.PollInterval > MaxPollInterval {
		log.Warn("poll_interval out of range, using default",
			"value", c.PollInterval, "min", MinPollInterval, "max", MaxPollInterval, "default", DefaultPollInterval)
		c.PollInterval = DefaultPollInterval
	}
	c.MaxLinesPerCycle = clampInt(log, "max_lines_per_cycle", c.MaxLinesPerCycle,
		MinLinesPerCycle, MaxLinesPerCycle, DefaultMaxLinesPerCycle)
	c.MaxStatEntries = clampInt(log, "max_stat_entries", c.MaxStatEntries,
		MinStatEntries, MaxStatEntries, DefaultMaxStatEntries)
	if c.RecentCapacity <= 0 {
		log.Warn("recent_capacity must be positive, using default",
			"value", c.RecentCapacity, "default", DefaultRecentCapacity)
		c.RecentCapacity = DefaultRecentCapacity
	}
	if c.MaxConsecutiveErrors <= 0 {
		log.Warn("max_consecutive_errors must be positive, using default",
			"value", c.MaxConsecutiveErrors, "default", DefaultMaxConsecutiveErrors)
		c.MaxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}

	c.LogPath = mustExpand(c.LogPath)
	c.HistoryPath = mustExpand(c.HistoryPath)
	patterns := c.PatternFiles[:0]
	for _, p := range c.PatternFiles {
		if p = mustExpand(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	c.PatternFiles = patterns
}

func clampInt(log *slog.Logger, key string, v, lo, hi, def int) int {
	if v < lo || v > hi {
		log.Warn(key+" out of range, using default", "value", v, "min", lo, "max", hi, "default", def)
		return def
	}
	return v
}

// Validate checks the settings that cannot be defaulted.
// An empty player is allowed here; commands that need one call ValidatePlayer.
func (c Config) Validate() error {
	if c.Player != "" {
		if err := ValidatePlayer(c.Player); err != nil {
			return err
		}
	}
	switch c.HistoryBackend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("history_backend must be csv or sqlite, got %q", c.HistoryBackend)
	}
	return nil
}

// PollDuration returns the poll interval as a duration.
func (c Config) PollDuration() time.Duration {
	return time.Duration(c.PollInterval * float64(time.Second))
}

// ResolvedHistoryPath returns HistoryPath, or the default for the backend.
func (c Config) ResolvedHistoryPath() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return DefaultHistoryPath(c.HistoryBackend)
}

// forbiddenPlayerChars may not appear in a player name.
const forbiddenPlayerChars = "<>&\"'\\/|;`$"

// ErrInvalidPlayer is returned by ValidatePlayer.
var ErrInvalidPlayer = errors.New("invalid player name")

// ValidatePlayer rejects empty, overlong, or shell-unsafe names.
func ValidatePlayer(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidPlayer)
	case len([]rune(name)) > MaxPlayerNameLength:
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidPlayer, MaxPlayerNameLength)
	case strings.ContainsAny(name, forbiddenPlayerChars):
		return fmt.Errorf("%w: contains one of %s", ErrInvalidPlayer, forbiddenPlayerChars)
	}
	return nil
}
