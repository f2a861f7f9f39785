package pattern_test

import (
	"context"
	"fmt"
	"log"

	"github.com/killfeed/killfeed-go/pkg/killfeed"
	"github.com/killfeed/killfeed-go/pkg/killfeed/pattern"
)

// Example loads an in-memory pattern file and parses one line.
func Example() {
	yamlData := []byte(`version: 1
patterns:
  - id: ship_kill
    marker: "<Ship Kill>"
    regex: '<Ship Kill> (?P<killer>\S+) destroyed (?P<victim>\S+) using (?P<weapon>\S+)'
`)

	pf, err := pattern.LoadBytes(yamlData)
	if err != nil {
		log.Fatal(err)
	}
	parser, err := pattern.NewRegexParser(pf)
	if err != nil {
		log.Fatal(err)
	}

	result, err := parser.ParseLine(context.Background(), "<Ship Kill> Alice destroyed Bob using torpedo")
	if err != nil {
		log.Fatal(err)
	}
	if result.Matched {
		ev := result.Events[0]
		fmt.Printf("Killer: %s\n", ev.Killer)
		fmt.Printf("Victim: %s\n", ev.Victim)
		fmt.Printf("Weapon: %s\n", ev.Weapon)
	}
	// Output:
	// Killer: Alice
	// Victim: Bob
	// Weapon: torpedo
}

// ExampleNewRegexParserFromFile combines custom patterns with the built-in
// kill line for a monitor.
func ExampleNewRegexParserFromFile() {
	custom, err := pattern.NewRegexParserFromFile("testdata/valid.yaml")
	if err != nil {
		log.Fatal(err)
	}

	markers := append([]string{killfeed.DeathMarker}, custom.Markers()...)
	_, err = killfeed.NewMonitor("Game.log",
		killfeed.WithParsers(killfeed.DefaultParser{}, custom),
		killfeed.WithMarkers(markers...),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(markers), "markers")
	// Output: 3 markers
}
