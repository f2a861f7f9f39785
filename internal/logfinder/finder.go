// Package logfinder locates the Star Citizen Game.log file.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EnvLogPath is the environment variable that overrides log discovery.
const EnvLogPath = "KILLFEED_LOG"

// LogFileName is the name of the game's live log.
const LogFileName = "Game.log"

// ErrLogNotFound is returned when no candidate Game.log exists.
var ErrLogNotFound = errors.New("game log not found")

// Channels lists the release channels that each keep their own Game.log.
var Channels = []string{"LIVE", "PTU", "EPTU"}

// DefaultLogPaths returns candidate Game.log locations for every channel,
// LIVE first. home is the user's home directory; when empty, only the
// absolute install paths are returned.
func DefaultLogPaths(home string) []string {
	var paths []string
	for _, ch := range Channels {
		if home != "" {
			paths = append(paths,
				filepath.Join(home, "AppData", "Local", "Star Citizen", ch, LogFileName),
				filepath.Join(home, "Documents", "Star Citizen", ch, LogFileName),
			)
		}
		paths = append(paths,
			filepath.Join("C:", string(filepath.Separator), "Program Files", "Roberts Space Industries", "StarCitizen", ch, LogFileName),
		)
	}
	return paths
}

// FindLogFile returns the Game.log path to monitor.
//
// Priority:
//  1. explicit (if non-empty)
//  2. KILLFEED_LOG environment variable
//  3. The most recently modified existing entry of DefaultLogPaths
//
// A directory given explicitly or via the environment is searched for
// Game.log. The returned path has symlinks resolved.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveLogFile(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s", ErrLogNotFound, explicit)
	}

	if env := os.Getenv(EnvLogPath); env != "" {
		if resolved := resolveLogFile(env); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to %s", ErrLogNotFound, EnvLogPath, env)
	}

	home, _ := os.UserHomeDir()
	return FindLatest(existing(DefaultLogPaths(home)))
}

type candidate struct {
	path    string
	modTime int64
}

// FindLatest returns the most recently modified regular file among paths.
// Stat results are cached so a file deleted mid-sort cannot reorder the list.
func FindLatest(paths []string) (string, error) {
	candidates := make([]candidate, 0, len(paths))
	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, candidate{path: p, modTime: info.ModTime().UnixNano()})
	}
	if len(candidates) == 0 {
		return "", ErrLogNotFound
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// existing returns the resolved paths of the candidates that exist.
func existing(paths []string) []string {
	var found []string
	for _, p := range paths {
		if resolved := resolveLogFile(p); resolved != "" {
			found = append(found, resolved)
		}
	}
	return found
}

// resolveLogFile resolves symlinks and returns the regular file at path,
// or path/Game.log when path is a directory. Empty means not found.
func resolveLogFile(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		resolved = filepath.Join(resolved, LogFileName)
		info, err = os.Stat(resolved)
		if err != nil {
			return ""
		}
	}
	if !info.Mode().IsRegular() {
		return ""
	}
	return resolved
}
