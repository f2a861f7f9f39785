// Package config loads killfeed settings from a YAML or TOML file.
//
// # Resolution
//
// Load reads the file at the given path, or the default path when it is
// empty:
//
//	$XDG_CONFIG_HOME/killfeed/config.yaml
//
// A missing file is not an error; defaults are used instead. The format is
// chosen by extension: .toml is TOML, anything else is YAML.
//
// # Example
//
//	player: Ponder_OG
//	log_path: ~/Games/StarCitizen/LIVE/Game.log
//	history_backend: sqlite
//	poll_interval: 0.1
//	max_lines_per_cycle: 100
//	max_stat_entries: 1000
//	pattern_files:
//	  - ~/.config/killfeed/ship_kills.yaml
//
// # Ranges
//
// Numeric values outside their allowed range fall back to the default and
// a warning is logged. They never fail the load.
package config
