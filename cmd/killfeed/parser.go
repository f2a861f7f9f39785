package main

import (
	"fmt"

	"github.com/killfeed/killfeed-go/pkg/killfeed"
	"github.com/killfeed/killfeed-go/pkg/killfeed/pattern"
)

// buildParser builds a Parser from pattern file paths, along with the
// markers for the line pre-filter.
// Returns a nil parser if no patterns are specified (use default parser).
func buildParser(patternFiles []string) (killfeed.Parser, []string, error) {
	if len(patternFiles) == 0 {
		return nil, nil, nil
	}

	parsers := []killfeed.Parser{killfeed.DefaultParser{}}
	markers := []string{killfeed.DeathMarker}
	seen := map[string]bool{killfeed.DeathMarker: true}

	for i, path := range patternFiles {
		rp, err := pattern.NewRegexParserFromFile(path)
		if err != nil {
			// Error from pattern package is already sanitized (no path)
			return nil, nil, fmt.Errorf("pattern file %d: %w", i+1, err)
		}
		parsers = append(parsers, rp)
		for _, m := range rp.Markers() {
			if !seen[m] {
				seen[m] = true
				markers = append(markers, m)
			}
		}
	}

	return &killfeed.ParserChain{
		Mode:    killfeed.ChainAll,
		Parsers: parsers,
	}, markers, nil
}
