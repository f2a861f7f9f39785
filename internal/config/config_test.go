package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.PollInterval != want.PollInterval || cfg.MaxLinesPerCycle != want.MaxLinesPerCycle ||
		cfg.MaxStatEntries != want.MaxStatEntries || !cfg.AutoLog || cfg.HistoryBackend != "csv" {
		t.Fatalf("Load = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_DefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, AppName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, AppName, "config.yaml"), []byte("player: FromXDG\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Player != "FromXDG" {
		t.Fatalf("Player = %q, want %q", cfg.Player, "FromXDG")
	}
}

func TestLoad_YAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeFile(t, "config.yaml", `
player: "  Ponder_OG  "
log_path: ~/sc/Game.log
history_backend: SQLite
auto_log: false
poll_interval: 0.25
max_lines_per_cycle: 500
max_stat_entries: 2000
pattern_files:
  - ~/patterns/ships.yaml
  - ""
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Player != "Ponder_OG" {
		t.Errorf("Player = %q", cfg.Player)
	}
	if cfg.LogPath != filepath.Join(home, "sc", "Game.log") {
		t.Errorf("LogPath = %q, want under %q", cfg.LogPath, home)
	}
	if cfg.HistoryBackend != "sqlite" {
		t.Errorf("HistoryBackend = %q", cfg.HistoryBackend)
	}
	if cfg.AutoLog {
		t.Error("AutoLog = true, want false")
	}
	if cfg.PollDuration() != 250*time.Millisecond {
		t.Errorf("PollDuration = %v", cfg.PollDuration())
	}
	if cfg.MaxLinesPerCycle != 500 || cfg.MaxStatEntries != 2000 {
		t.Errorf("limits = %d, %d", cfg.MaxLinesPerCycle, cfg.MaxStatEntries)
	}
	if len(cfg.PatternFiles) != 1 || cfg.PatternFiles[0] != filepath.Join(home, "patterns", "ships.yaml") {
		t.Errorf("PatternFiles = %v", cfg.PatternFiles)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
player = "Ponder_OG"
history_backend = "csv"
poll_interval = 0.5
max_consecutive_errors = 8
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Player != "Ponder_OG" || cfg.PollInterval != 0.5 || cfg.MaxConsecutiveErrors != 8 {
		t.Fatalf("Load = %+v", cfg)
	}
	if !cfg.AutoLog {
		t.Error("AutoLog default lost when key is absent")
	}
}

func TestLoad_OutOfRangeValuesFallBack(t *testing.T) {
	path := writeFile(t, "config.yaml", `
poll_interval: 5
max_lines_per_cycle: 0
max_stat_entries: 50
recent_capacity: -1
max_consecutive_errors: 0
`)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	cfg, err := Load(path, log)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.PollInterval != want.PollInterval {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.MaxLinesPerCycle != want.MaxLinesPerCycle {
		t.Errorf("MaxLinesPerCycle = %d", cfg.MaxLinesPerCycle)
	}
	if cfg.MaxStatEntries != want.MaxStatEntries {
		t.Errorf("MaxStatEntries = %d", cfg.MaxStatEntries)
	}
	if cfg.RecentCapacity != want.RecentCapacity {
		t.Errorf("RecentCapacity = %d", cfg.RecentCapacity)
	}
	if cfg.MaxConsecutiveErrors != want.MaxConsecutiveErrors {
		t.Errorf("MaxConsecutiveErrors = %d", cfg.MaxConsecutiveErrors)
	}
	if got := strings.Count(buf.String(), "level=WARN"); got != 5 {
		t.Errorf("warnings = %d, want 5:\n%s", got, buf.String())
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "config.toml", "player = \n")
	if _, err := Load(path, nil); err == nil {
		t.Fatal("Load returned nil error for invalid TOML")
	}
}

func TestValidatePlayer(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Ponder_OG", false},
		{"Pilot-42.x", false},
		{"", true},
		{"   ", true},
		{strings.Repeat("a", 50), false},
		{strings.Repeat("a", 51), true},
		{"bad<name", true},
		{"semi;colon", true},
		{"back`tick", true},
		{"dollar$", true},
		{"slash/name", true},
		{`quote"`, true},
	}
	for _, tt := range tests {
		err := ValidatePlayer(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePlayer(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidPlayer) {
			t.Errorf("ValidatePlayer(%q) error %v is not ErrInvalidPlayer", tt.name, err)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg.HistoryBackend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted unknown backend")
	}
	cfg = Default()
	cfg.Player = "a|b"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("Validate error = %v, want ErrInvalidPlayer", err)
	}
}

func TestResolvedHistoryPath(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	cfg := Default()
	if got, want := cfg.ResolvedHistoryPath(), filepath.Join(data, AppName, "kill_log.csv"); got != want {
		t.Errorf("csv path = %q, want %q", got, want)
	}
	cfg.HistoryBackend = "sqlite"
	if got, want := cfg.ResolvedHistoryPath(), filepath.Join(data, AppName, "kill_log.db"); got != want {
		t.Errorf("sqlite path = %q, want %q", got, want)
	}
	cfg.HistoryPath = "/tmp/custom.csv"
	if got := cfg.ResolvedHistoryPath(); got != "/tmp/custom.csv" {
		t.Errorf("explicit path = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x/y")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath = %q", got)
	}
	if _, err := ExpandPath("   "); err == nil {
		t.Error("ExpandPath accepted empty path")
	}
	rel, err := ExpandPath("relative/file")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(rel) {
		t.Errorf("ExpandPath(relative) = %q, not absolute", rel)
	}
}
