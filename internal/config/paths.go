package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(configHome(), AppName, "config.yaml")
}

// DefaultHistoryPath returns the default history path for backend.
func DefaultHistoryPath(backend string) string {
	name := "kill_log.csv"
	if backend == "sqlite" {
		name = "kill_log.db"
	}
	return filepath.Join(dataHome(), AppName, name)
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "share")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// ExpandPath expands a leading ~ and makes the path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") || strings.HasPrefix(trimmed, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, trimmed[1:])
	}
	return filepath.Abs(trimmed)
}

// mustExpand expands path, returning it unchanged on failure and "" for "".
func mustExpand(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}
