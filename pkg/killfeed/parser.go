package killfeed

import (
	"context"
	"errors"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

// ParseResult represents the result of parsing a log line.
type ParseResult struct {
	// Events contains the parsed kill events.
	Events []event.KillEvent

	// Matched indicates whether the parser recognized the line.
	Matched bool
}

// Parser turns one log line into zero or more kill events.
// Implementations include DefaultParser and pattern.RegexParser.
type Parser interface {
	// ParseLine returns Matched=false for unrelated lines. Errors are
	// reserved for lines that look like kill lines but are malformed.
	ParseLine(ctx context.Context, line string) (ParseResult, error)
}

// ParserFunc is an adapter to allow ordinary functions to be used as Parsers.
type ParserFunc func(ctx context.Context, line string) (ParseResult, error)

// ParseLine implements the Parser interface.
func (f ParserFunc) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	return f(ctx, line)
}

// ChainMode specifies how ParserChain executes parsers.
type ChainMode int

const (
	// ChainAll executes all parsers and combines results (default).
	ChainAll ChainMode = iota

	// ChainFirst stops at the first parser that matches.
	ChainFirst

	// ChainContinueOnError skips parsers that return errors and continues.
	// Errors are joined and returned with the collected events.
	ChainContinueOnError
)

// ParserChain combines multiple parsers.
type ParserChain struct {
	Mode    ChainMode
	Parsers []Parser
}

// ParseLine implements the Parser interface.
//
// If ctx is cancelled mid-chain, the events collected so far are returned
// together with the context error.
func (c *ParserChain) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	var events []event.KillEvent
	var errs []error
	matched := false

	for _, p := range c.Parsers {
		if err := ctx.Err(); err != nil {
			return ParseResult{Events: events, Matched: matched}, err
		}
		if p == nil {
			continue
		}

		result, err := p.ParseLine(ctx, line)
		if err != nil {
			if c.Mode == ChainContinueOnError {
				errs = append(errs, err)
				continue
			}
			return ParseResult{}, err
		}
		if !result.Matched {
			continue
		}
		matched = true
		events = append(events, result.Events...)
		if c.Mode == ChainFirst {
			break
		}
	}

	if len(errs) > 0 {
		return ParseResult{Events: events, Matched: matched}, errors.Join(errs...)
	}
	return ParseResult{Events: events, Matched: matched}, nil
}
