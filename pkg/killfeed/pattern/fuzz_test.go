package pattern

import (
	"context"
	"testing"
)

// FuzzRegexParser_ParseLine checks that arbitrary input never panics and
// never yields an event with an empty field.
func FuzzRegexParser_ParseLine(f *testing.F) {
	pf := &PatternFile{
		Version: 1,
		Patterns: []Pattern{
			{
				ID:     "ship_kill",
				Marker: "<Ship Kill>",
				Regex:  `<Ship Kill> (?P<killer>\S+) destroyed (?P<victim>\S+) using (?P<weapon>\S+)`,
			},
			{
				ID:     "optional_weapon",
				Marker: "K",
				Regex:  `K (?P<killer>\w*) (?P<victim>\w*)(?: (?P<weapon>\w+))?`,
			},
		},
	}
	parser, err := NewRegexParser(pf)
	if err != nil {
		f.Fatalf("Failed to create parser: %v", err)
	}

	f.Add("<Ship Kill> Alice destroyed Bob using torpedo")
	f.Add("K  ")
	f.Add("K a b c")
	f.Add("")
	f.Add("\x00\xff<Ship Kill>")

	f.Fuzz(func(t *testing.T, line string) {
		result, _ := parser.ParseLine(context.Background(), line)
		for _, ev := range result.Events {
			if err := ev.Validate(); err != nil {
				t.Errorf("ParseLine(%q) returned invalid event %+v", line, ev)
			}
		}
		if result.Matched != (len(result.Events) > 0) {
			t.Errorf("ParseLine(%q) Matched=%v with %d events", line, result.Matched, len(result.Events))
		}
	})
}
