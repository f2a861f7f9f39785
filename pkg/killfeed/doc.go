// Package killfeed tails a Star Citizen Game.log and turns kill lines into
// live statistics.
//
// The pipeline is:
//
//	Game.log -> Monitor -> Parser -> StatsSink (Stats, RefreshScheduler, ...)
//
// # Live Monitoring
//
//	stats := killfeed.NewStats(killfeed.WithPlayer("Ponder_OG"))
//	sched := killfeed.NewRefreshScheduler(func(pending int) {
//	    render(stats.Snapshot())
//	})
//	defer sched.Stop()
//
//	m, err := killfeed.NewMonitor(path,
//	    killfeed.WithPollInterval(100*time.Millisecond),
//	    killfeed.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = m.Run(ctx, killfeed.Sinks{stats, sched})
//
// Run seeks to the end of the file first; content written before it
// started is never replayed. Truncation or replacement of the file resets
// the cursor to the new end. Transient I/O faults are retried with a
// backoff; a missing file at startup, a permission error, an oversized
// unterminated line, or too many consecutive faults halt monitoring.
//
// # Channel API
//
// Watch runs the same loop in a goroutine and returns channels, for
// callers that prefer select loops:
//
//	events, errs, err := m.Watch(ctx)
//
// # Parsing
//
// ParseLine parses a single line. ParseFile replays a whole log, taking
// timestamps from the line prefix when present. Custom kill-line shapes
// can be added with the pattern subpackage and combined through
// ParserChain.
//
// # Lifetime Statistics
//
// The lifetime subpackage computes reports from a complete event history
// and is independent of Stats.
package killfeed
