package killfeed

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/killfeed/killfeed-go/internal/ring"
	"github.com/killfeed/killfeed-go/pkg/killfeed/event"
)

const (
	// DefaultMaxEntries is the default cardinality cap of each frequency table.
	DefaultMaxEntries = 1000
	// MinMaxEntries and MaxMaxEntries bound the configurable cap.
	MinMaxEntries = 100
	MaxMaxEntries = 10000

	// DefaultRecentCapacity is the default size of the recent-events ring.
	DefaultRecentCapacity = ring.DefaultCapacity

	// evictEvery is how many table insertions separate eviction passes.
	evictEvery = 100
	// tablesPerEvent is how many frequency tables each event touches.
	tablesPerEvent = 4
)

// Count is one row of a frequency table.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// counter is a frequency table that remembers first-seen order so that
// ties sort deterministically.
type counter struct {
	entries map[string]*counterEntry
	seq     uint64
}

type counterEntry struct {
	count int
	seq   uint64
}

func newCounter() *counter {
	return &counter{entries: make(map[string]*counterEntry)}
}

func (c *counter) add(name string) {
	if e, ok := c.entries[name]; ok {
		e.count++
		return
	}
	c.seq++
	c.entries[name] = &counterEntry{count: 1, seq: c.seq}
}

func (c *counter) get(name string) int {
	if e, ok := c.entries[name]; ok {
		return e.count
	}
	return 0
}

func (c *counter) len() int { return len(c.entries) }

type rankedEntry struct {
	name string
	counterEntry
}

func (c *counter) ranked() []rankedEntry {
	out := make([]rankedEntry, 0, len(c.entries))
	for name, e := range c.entries {
		out = append(out, rankedEntry{name: name, counterEntry: *e})
	}
	sortRanked(out)
	return out
}

// sortRanked orders by count descending, then first-seen order.
func sortRanked(rows []rankedEntry) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].seq < rows[j].seq
	})
}

// trim keeps only the n highest-ranked entries.
func (c *counter) trim(n int) int {
	if len(c.entries) <= n {
		return 0
	}
	rows := c.ranked()
	for _, r := range rows[n:] {
		delete(c.entries, r.name)
	}
	return len(rows) - n
}

// StatsOption configures a Stats aggregator.
type StatsOption func(*statsConfig)

type statsConfig struct {
	player         string
	maxEntries     int
	recentCapacity int
	logger         *slog.Logger
}

// WithPlayer sets the local player whose kills, deaths and streaks are tracked.
func WithPlayer(name string) StatsOption {
	return func(c *statsConfig) {
		c.player = name
	}
}

// WithMaxEntries sets the cardinality cap of each frequency table.
// Values outside [MinMaxEntries, MaxMaxEntries] fall back to DefaultMaxEntries.
func WithMaxEntries(n int) StatsOption {
	return func(c *statsConfig) {
		c.maxEntries = n
	}
}

// WithRecentCapacity sets how many recent events are kept.
// Non-positive values use DefaultRecentCapacity.
func WithRecentCapacity(n int) StatsOption {
	return func(c *statsConfig) {
		c.recentCapacity = n
	}
}

// WithStatsLogger sets a logger for eviction and reset messages.
func WithStatsLogger(logger *slog.Logger) StatsOption {
	return func(c *statsConfig) {
		c.logger = logger
	}
}

// Stats is the live, per-session aggregate of kill events.
// All state sits behind one mutex; it is safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	player     string
	maxEntries int
	log        *slog.Logger

	sessionID uuid.UUID
	startedAt time.Time
	lastEvent time.Time
	events    int

	totalKills     int
	totalDeaths    int
	killStreak     int
	deathStreak    int
	maxKillStreak  int
	maxDeathStreak int

	weaponsUsed    *counter
	weaponsAgainst *counter
	victims        *counter
	killers        *counter
	insertions     uint64

	recent *ring.Ring[event.KillEvent]
}

// NewStats creates an empty aggregator with a fresh session ID.
func NewStats(opts ...StatsOption) *Stats {
	cfg := statsConfig{maxEntries: DefaultMaxEntries, recentCapacity: DefaultRecentCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	log := cfg.logger
	if log == nil {
		log = discardLogger
	}
	if cfg.maxEntries < MinMaxEntries || cfg.maxEntries > MaxMaxEntries {
		log.Warn("max entries out of range, using default",
			"value", cfg.maxEntries, "default", DefaultMaxEntries)
		cfg.maxEntries = DefaultMaxEntries
	}

	s := &Stats{
		player:     cfg.player,
		maxEntries: cfg.maxEntries,
		log:        log,
		recent:     ring.New[event.KillEvent](cfg.recentCapacity),
	}
	s.resetLocked()
	return s
}

// Record adds one event. It implements StatsSink.
func (s *Stats) Record(ev event.KillEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events++
	s.lastEvent = ev.Timestamp
	s.recent.Push(ev)

	s.weaponsUsed.add(ev.Weapon)
	s.weaponsAgainst.add(ev.Weapon)
	s.victims.add(ev.Victim)
	s.killers.add(ev.Killer)
	s.insertions += tablesPerEvent
	if s.insertions%evictEvery == 0 {
		s.evictLocked()
	}

	if s.player == "" {
		return
	}
	switch {
	case ev.IsSuicide():
		if ev.Killer == s.player {
			s.deathLocked()
		}
	case ev.Killer == s.player:
		s.totalKills++
		s.killStreak++
		s.deathStreak = 0
		s.maxKillStreak = max(s.maxKillStreak, s.killStreak)
	case ev.Victim == s.player:
		s.deathLocked()
	}
}

func (s *Stats) deathLocked() {
	s.totalDeaths++
	s.deathStreak++
	s.killStreak = 0
	s.maxDeathStreak = max(s.maxDeathStreak, s.deathStreak)
}

// evictLocked trims every frequency table to maxEntries.
func (s *Stats) evictLocked() {
	for name, c := range s.tablesLocked() {
		if dropped := c.trim(s.maxEntries); dropped > 0 {
			s.log.Debug("evicted frequency table entries", "table", name, "dropped", dropped, "kept", c.len())
		}
	}
}

func (s *Stats) tablesLocked() map[string]*counter {
	return map[string]*counter{
		"weapons_used":    s.weaponsUsed,
		"weapons_against": s.weaponsAgainst,
		"victims":         s.victims,
		"killers":         s.killers,
	}
}

// Reset clears all counters, tables and recent events and starts a new session.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.log.Info("statistics reset", "session", s.sessionID.String())
}

func (s *Stats) resetLocked() {
	s.sessionID = uuid.New()
	s.startedAt = time.Now()
	s.lastEvent = time.Time{}
	s.events = 0
	s.totalKills, s.totalDeaths = 0, 0
	s.killStreak, s.deathStreak = 0, 0
	s.maxKillStreak, s.maxDeathStreak = 0, 0
	s.weaponsUsed = newCounter()
	s.weaponsAgainst = newCounter()
	s.victims = newCounter()
	s.killers = newCounter()
	s.insertions = 0
	s.recent.Reset()
}

// SetPlayer changes the tracked player. Existing counters are kept.
func (s *Stats) SetPlayer(name string) {
	s.mu.Lock()
	s.player = name
	s.mu.Unlock()
}

// Player returns the tracked player.
func (s *Stats) Player() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// SessionID identifies the current monitoring session.
func (s *Stats) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID.String()
}

// Recent returns up to n of the newest events, oldest first.
func (s *Stats) Recent(n int) []event.KillEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recent.Last(n)
}

// Snapshot is a consistent copy of the live statistics.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Player    string    `json:"player"`
	StartedAt time.Time `json:"started_at"`
	LastEvent time.Time `json:"last_event,omitzero"`
	Events    int       `json:"events"`

	TotalKills     int     `json:"total_kills"`
	TotalDeaths    int     `json:"total_deaths"`
	KDRatio        float64 `json:"kd_ratio"`
	KillStreak     int     `json:"kill_streak"`
	DeathStreak    int     `json:"death_streak"`
	MaxKillStreak  int     `json:"max_kill_streak"`
	MaxDeathStreak int     `json:"max_death_streak"`

	// Tables are sorted by count descending, then first-seen order.
	WeaponsUsed    []Count `json:"weapons_used"`
	WeaponsAgainst []Count `json:"weapons_against"`
	Victims        []Count `json:"victims"`
	Killers        []Count `json:"killers"`
}

// Snapshot copies the current state. Sorting happens after the lock is released.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		SessionID:      s.sessionID.String(),
		Player:         s.player,
		StartedAt:      s.startedAt,
		LastEvent:      s.lastEvent,
		Events:         s.events,
		TotalKills:     s.totalKills,
		TotalDeaths:    s.totalDeaths,
		KillStreak:     s.killStreak,
		DeathStreak:    s.deathStreak,
		MaxKillStreak:  s.maxKillStreak,
		MaxDeathStreak: s.maxDeathStreak,
	}
	used := copyEntries(s.weaponsUsed)
	against := copyEntries(s.weaponsAgainst)
	victims := copyEntries(s.victims)
	killers := copyEntries(s.killers)
	s.mu.Unlock()

	snap.KDRatio = KDRatio(snap.TotalKills, snap.TotalDeaths)
	snap.WeaponsUsed = toCounts(used)
	snap.WeaponsAgainst = toCounts(against)
	snap.Victims = toCounts(victims)
	snap.Killers = toCounts(killers)
	return snap
}

func copyEntries(c *counter) []rankedEntry {
	out := make([]rankedEntry, 0, len(c.entries))
	for name, e := range c.entries {
		out = append(out, rankedEntry{name: name, counterEntry: *e})
	}
	return out
}

func toCounts(rows []rankedEntry) []Count {
	sortRanked(rows)
	out := make([]Count, len(rows))
	for i, r := range rows {
		out[i] = Count{Name: r.name, Count: r.count}
	}
	return out
}

// Top returns at most n rows of a sorted table.
func Top(rows []Count, n int) []Count {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// KDRatio returns kills/deaths, or kills when there are no deaths.
func KDRatio(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return float64(kills) / float64(deaths)
}
