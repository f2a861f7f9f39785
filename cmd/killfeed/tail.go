package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/killfeed/killfeed-go/internal/config"
	"github.com/killfeed/killfeed-go/internal/history"
	"github.com/killfeed/killfeed-go/internal/logfinder"
	"github.com/killfeed/killfeed-go/pkg/killfeed"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

var (
	// tail flags
	tailLogPath   string
	tailFormat    string
	tailPatterns  []string
	tailNoHistory bool
	tailSummary   bool
	tailRecent    int
)

// defaultRecent is how many events the exit recap lists.
const defaultRecent = 10

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow Game.log and print kills as they happen",
	Long: `Follow the Star Citizen Game.log and print kill events in real time.

Only content written after the command starts is read. Each kill updates
the live session statistics and, unless disabled, is appended to the
history file used by "killfeed stats".

Examples:
  # Auto-detect Game.log and print colored output
  killfeed tail --player Ponder_OG

  # Explicit log path, JSON Lines output for jq
  killfeed tail --log "D:\Games\StarCitizen\LIVE\Game.log" --format jsonl | jq .

  # Extra kill-line shapes from a pattern file
  killfeed tail --patterns ship_kills.yaml`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailLogPath, "log", "l", "",
		"Game.log path or its directory (auto-detected if not specified)")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "pretty",
		"Output format: pretty, jsonl")
	tailCmd.Flags().StringSliceVar(&tailPatterns, "patterns", nil,
		"Pattern files (YAML) with additional kill-line shapes")
	tailCmd.Flags().BoolVar(&tailNoHistory, "no-history", false,
		"Do not append events to the history file")
	tailCmd.Flags().BoolVar(&tailSummary, "summary", true,
		"Print a live summary line to stderr (pretty format only)")
	tailCmd.Flags().IntVar(&tailRecent, "recent", defaultRecent,
		"Events listed in the recent activity recap on exit (0 = none)")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if tailLogPath != "" {
		cfg.LogPath = tailLogPath
	}
	if tailNoHistory {
		cfg.AutoLog = false
	}
	cfg.PatternFiles = append(cfg.PatternFiles, tailPatterns...)
	if cfg.Player == "" {
		log.Warn("no player configured; kills and deaths will not be counted")
	}

	p, err := newPipeline(cfg, log, pipelineOutput{
		format:  tailFormat,
		events:  cmd.OutOrStdout(),
		status:  cmd.ErrOrStderr(),
		summary: tailSummary && tailFormat == "pretty",
		recent:  tailRecent,
	})
	if err != nil {
		return err
	}
	defer p.close()

	return p.run(ctx)
}

type pipelineOutput struct {
	format  string
	events  io.Writer
	status  io.Writer
	summary bool
	recent  int
}

// pipeline wires the monitor to live stats, output and history.
type pipeline struct {
	cfg     config.Config
	log     *slog.Logger
	out     pipelineOutput
	monitor *killfeed.Monitor
	stats   *killfeed.Stats
	sched   *killfeed.RefreshScheduler
	printer *printer
	store   history.Store
}

func newPipeline(cfg config.Config, log *slog.Logger, out pipelineOutput) (*pipeline, error) {
	path, err := logfinder.FindLogFile(cfg.LogPath)
	if err != nil {
		return nil, err
	}
	parser, markers, err := buildParser(cfg.PatternFiles)
	if err != nil {
		return nil, err
	}
	pr, err := newPrinter(out.format, cfg.Player, out.events)
	if err != nil {
		return nil, err
	}

	p := &pipeline{cfg: cfg, log: log, out: out, printer: pr}
	p.stats = killfeed.NewStats(
		killfeed.WithPlayer(cfg.Player),
		killfeed.WithMaxEntries(cfg.MaxStatEntries),
		killfeed.WithRecentCapacity(cfg.RecentCapacity),
		killfeed.WithStatsLogger(log),
	)
	p.sched = killfeed.NewRefreshScheduler(p.refresh)

	opts := []killfeed.MonitorOption{
		killfeed.WithPollInterval(cfg.PollDuration()),
		killfeed.WithMaxLinesPerCycle(cfg.MaxLinesPerCycle),
		killfeed.WithMaxConsecutiveErrors(cfg.MaxConsecutiveErrors),
		killfeed.WithLogger(log),
		killfeed.WithStatusReporter(killfeed.StatusFunc(p.status)),
	}
	if parser != nil {
		opts = append(opts, killfeed.WithParser(parser), killfeed.WithMarkers(markers...))
	}
	if p.monitor, err = killfeed.NewMonitor(path, opts...); err != nil {
		return nil, err
	}

	if cfg.AutoLog {
		if p.store, err = openHistory(cfg, log); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// run blocks until ctx is cancelled or the monitor halts.
// History appends happen on their own goroutine so that a slow disk
// never delays the tail loop.
func (p *pipeline) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	pending := make(chan event.KillEvent, 256)

	sink := killfeed.Sinks{
		p.stats,
		killfeed.SinkFunc(func(ev event.KillEvent) {
			if err := p.printer.event(ev); err != nil {
				p.log.Warn("output failed", "error", err)
			}
		}),
		p.historySink(pending),
		p.sched,
	}

	g.Go(func() error {
		defer close(pending)
		return p.monitor.Run(gctx, sink)
	})
	g.Go(func() error {
		// Drain after cancellation so accepted events are not lost.
		wctx := context.WithoutCancel(gctx)
		for ev := range pending {
			if err := p.store.Append(wctx, ev); err != nil {
				p.log.Warn("history append failed", "error", err)
			}
		}
		return nil
	})

	err := g.Wait()
	p.sched.Stop()
	if p.out.summary {
		fmt.Fprintln(p.out.status, FormatSummary(p.stats.Snapshot()))
		p.recap()
	}
	return err
}

// historySink queues events for the history writer. The writer drains
// pending until it is closed, so the send never needs a cancel case.
func (p *pipeline) historySink(pending chan<- event.KillEvent) killfeed.SinkFunc {
	return func(ev event.KillEvent) {
		if p.store == nil {
			return
		}
		pending <- ev
	}
}

// recap lists the most recent events of the session.
func (p *pipeline) recap() {
	recent := p.stats.Recent(p.out.recent)
	if len(recent) == 0 {
		return
	}
	fmt.Fprintln(p.out.status, p.printer.st.bold.Render("recent activity"))
	for _, ev := range recent {
		if err := outputPretty(ev, p.cfg.Player, p.printer.st, p.out.status); err != nil {
			p.log.Warn("output failed", "error", err)
			return
		}
	}
}

// refresh runs on the scheduler's timer goroutine.
func (p *pipeline) refresh(pending int) {
	snap := p.stats.Snapshot()
	p.log.Debug("refresh", "pending", pending, "events", snap.Events)
	if p.out.summary {
		fmt.Fprintln(p.out.status, p.printer.st.muted.Render(FormatSummary(snap)))
	}
}

// status runs on the monitor worker. The monitor logs halts itself.
func (p *pipeline) status(s killfeed.Status) {
	if p.out.format == "pretty" {
		fmt.Fprintln(p.out.status, p.printer.st.bold.Render(FormatStatus(s)))
	}
}

func (p *pipeline) close() {
	p.monitor.Close()
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.log.Warn("close history", "error", err)
		}
	}
}
