package killfeed_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killfeed/killfeed-go/pkg/killfeed"
)

func TestRefreshScheduler_CoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	s := killfeed.NewRefreshScheduler(func(pending int) {
		mu.Lock()
		calls = append(calls, pending)
		mu.Unlock()
	})
	defer s.Stop()

	for _n := 0; _n < 100; _n++ {
		s.Notify()
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{100}, calls)
	assert.Zero(t, s.Pending())
}

func TestRefreshScheduler_CallbackMayNotify(t *testing.T) {
	var calls atomic.Int32
	var s *killfeed.RefreshScheduler
	s = killfeed.NewRefreshScheduler(func(pending int) {
		if calls.Add(1) == 1 {
			s.Notify()
		}
	})
	defer s.Stop()

	s.Notify()

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRefreshScheduler_BurstDefersUntilQuiet(t *testing.T) {
	var calls, coalesced atomic.Int32
	s := killfeed.NewRefreshScheduler(func(n int) {
		calls.Add(1)
		coalesced.Store(int32(n))
	})
	defer s.Stop()

	// Each Notify re-arms the timer for at least MinRefreshDelay, so a
	// burst spaced tighter than that never lets a refresh fire.
	const notifies = 60
	for _n := 0; _n < notifies; _n++ {
		s.Notify()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(0), calls.Load(), "refresh fired during burst")
	assert.Equal(t, notifies, s.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 1 }, 200*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, int32(notifies), coalesced.Load())
	assert.Equal(t, 0, s.Pending())
}

func TestRefreshScheduler_Stop(t *testing.T) {
	var calls atomic.Int32
	s := killfeed.NewRefreshScheduler(func(int) { calls.Add(1) })

	s.Notify()
	s.Stop()
	s.Notify()

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestRefreshScheduler_AsSink(t *testing.T) {
	var got atomic.Int32
	sched := killfeed.NewRefreshScheduler(func(n int) { got.Add(int32(n)) })
	defer sched.Stop()
	stats := killfeed.NewStats(killfeed.WithPlayer(me))

	sink := killfeed.Sinks{stats, sched}
	sink.Record(ev(me, "a", "w"))
	sink.Record(ev(me, "b", "w"))

	assert.Eventually(t, func() bool { return got.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, stats.Snapshot().TotalKills)
}
