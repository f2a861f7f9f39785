package killfeed

import (
	"sync"
	"time"

	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

const (
	// RefreshWindow is the target spacing between refreshes under load.
	RefreshWindow = 100 * time.Millisecond
	// MinRefreshDelay is the shortest delay before a scheduled refresh.
	MinRefreshDelay = 50 * time.Millisecond
)

// RefreshScheduler coalesces bursts of notifications into throttled
// refresh callbacks, roughly one per RefreshWindow.
//
// Each Notify replaces the pending timer with one firing after
// max(MinRefreshDelay, RefreshWindow - time since the last refresh).
// The callback runs on the timer goroutine without the scheduler's lock
// held, so it may call Notify itself.
type RefreshScheduler struct {
	refresh func(pending int)

	mu          sync.Mutex
	pending     int
	lastRefresh time.Time
	timer       *time.Timer
	gen         uint64
	stopped     bool
}

// NewRefreshScheduler creates a scheduler that calls refresh with the
// number of notifications coalesced into that refresh.
func NewRefreshScheduler(refresh func(pending int)) *RefreshScheduler {
	return &RefreshScheduler{refresh: refresh}
}

// Notify records one update and (re)schedules the refresh.
func (s *RefreshScheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.pending++
	delay := refreshDelay(time.Since(s.lastRefresh))
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() { s.fire(gen) })
}

// Record implements StatsSink so the scheduler can follow a Stats in a Sinks chain.
func (s *RefreshScheduler) Record(event.KillEvent) { s.Notify() }

func (s *RefreshScheduler) fire(gen uint64) {
	s.mu.Lock()
	// A newer Notify replaced this timer after it had already fired.
	if s.stopped || gen != s.gen || s.pending == 0 {
		s.mu.Unlock()
		return
	}
	n := s.pending
	s.pending = 0
	s.lastRefresh = time.Now()
	s.timer = nil
	s.mu.Unlock()

	s.refresh(n)
}

// Pending returns the number of notifications not yet refreshed.
func (s *RefreshScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stop cancels any scheduled refresh. Later Notify calls are ignored.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func refreshDelay(sinceLast time.Duration) time.Duration {
	return max(MinRefreshDelay, RefreshWindow-sinceLast)
}
