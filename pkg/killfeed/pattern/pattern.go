// Package pattern lets users describe additional kill-line shapes in YAML.
// Each pattern names a marker substring for the pre-filter and a regular
// expression with victim, killer and weapon named groups.
package pattern

// PatternFile represents the structure of a YAML pattern file.
//
// Example YAML file:
//
//	version: 1
//	patterns:
//	  - id: vehicle_destruction
//	    marker: "<Vehicle Destruction>"
//	    regex: "<Vehicle Destruction>.*?Vehicle '(?P<victim>[^']+)'.*?caused by '(?P<killer>[^']+)'.*?with '(?P<weapon>[^']+)'"
type PatternFile struct {
	// Version is the pattern file format version. Only version 1 is supported.
	Version int `yaml:"version"`

	// Patterns is the list of pattern definitions.
	Patterns []Pattern `yaml:"patterns"`
}

// Pattern is a single kill-line definition.
type Pattern struct {
	// ID uniquely identifies the pattern within its file.
	ID string `yaml:"id"`

	// Marker is a literal substring every matching line contains. Lines
	// without any configured marker never reach the regex.
	Marker string `yaml:"marker"`

	// Regex must define the named groups victim, killer and weapon.
	Regex string `yaml:"regex"`
}

// RequiredGroups are the named capture groups every pattern must define.
var RequiredGroups = []string{"victim", "killer", "weapon"}
