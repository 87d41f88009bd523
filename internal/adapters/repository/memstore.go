package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/scorer"
	"github.com/okian/deuce/pkg/metrics"
)

// Snapshot is an immutable copy of every entry, most recently updated first.
type Snapshot struct {
	Entries []Entry
	TakenAt time.Time
}

// match pairs a scorer with its latest view; mu serialises scoring on it.
type match struct {
	mu    sync.Mutex
	sc    *scorer.Scorer
	entry Entry
}

// MatchStore keeps matches in memory. The map is guarded by mu; each match
// has its own lock so scoring on different matches never contends.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*match

	snapshotInterval      time.Duration
	metricsUpdateInterval time.Duration
	newID                 func() string
	now                   func() time.Time
	onChange              func(Entry)

	snapshot atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMatchStore constructs a match store and starts its background goroutines.
// They stop when ctx is done or Close is called.
func NewMatchStore(ctx context.Context, opts ...Option) *MatchStore {
	s := &MatchStore{
		matches:               make(map[string]*match),
		snapshotInterval:      250 * time.Millisecond,
		metricsUpdateInterval: 5 * time.Second,
		newID:                 func() string { return uuid.NewString() },
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.snapshot.Store(&Snapshot{TakenAt: s.now()})
	s.every(ctx, s.snapshotInterval, s.PublishSnapshot)
	s.every(ctx, s.metricsUpdateInterval, s.updateMetrics)
	return s
}

func (s *MatchStore) every(ctx context.Context, interval time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Close stops the background goroutines.
func (s *MatchStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Create starts a new match.
func (s *MatchStore) Create(_ context.Context, mt model.MatchType) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	sc, err := scorer.New(mt)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_match_type")
		return Entry{}, fmt.Errorf("create match: %w", err)
	}

	now := s.now()
	m := &match{sc: sc}
	m.entry = Entry{ID: s.newID(), MatchType: mt, CreatedAt: now}
	m.refresh(now)

	s.mu.Lock()
	s.matches[m.entry.ID] = m
	s.mu.Unlock()
	s.changed(m.entry)

	// New matches show up in listings right away.
	s.PublishSnapshot()
	return m.entry, nil
}

// Get returns the latest view of a match.
func (s *MatchStore) Get(_ context.Context, id string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	m, err := s.lookup(id)
	if err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry, nil
}

// Update runs fn with the match locked.
func (s *MatchStore) Update(_ context.Context, id string, fn func(*scorer.Scorer) error) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	m, err := s.lookup(id)
	if err != nil {
		return Entry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := fn(m.sc); err != nil {
		return m.entry, err
	}
	m.refresh(s.now())
	s.changed(m.entry)
	return m.entry, nil
}

func (s *MatchStore) changed(e Entry) {
	if s.onChange != nil {
		s.onChange(e)
	}
}

// List returns up to limit entries from the latest snapshot.
func (s *MatchStore) List(_ context.Context, limit int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	snap := s.snapshot.Load()
	n := min(limit, len(snap.Entries))
	out := make([]Entry, n)
	copy(out, snap.Entries[:n])
	return out, nil
}

// Count returns the number of stored matches.
func (s *MatchStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Snapshot returns the latest published snapshot.
func (s *MatchStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// PublishSnapshot rebuilds and publishes the list snapshot.
func (s *MatchStore) PublishSnapshot() {
	start := time.Now()

	s.mu.RLock()
	all := make([]*match, 0, len(s.matches))
	for _, m := range s.matches {
		all = append(all, m)
	}
	s.mu.RUnlock()

	entries := make([]Entry, 0, len(all))
	for _, m := range all {
		m.mu.Lock()
		entries = append(entries, m.entry)
		m.mu.Unlock()
	}
	sortEntries(entries)
	s.snapshot.Store(&Snapshot{Entries: entries, TakenAt: s.now()})

	metrics.RecordRepositorySnapshotRebuildDuration(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateRepositorySnapshotLastUnix(float64(time.Now().Unix()))
	metrics.IncrementRepositorySnapshotCount()
}

func (s *MatchStore) updateMetrics() {
	snap := s.snapshot.Load()
	active := 0
	for i := range snap.Entries {
		if !snap.Entries[i].State.IsFinished {
			active++
		}
	}
	metrics.UpdateTotalMatches(len(snap.Entries))
	metrics.UpdateActiveMatches(active)
}

func (s *MatchStore) lookup(id string) (*match, error) {
	s.mu.RLock()
	m, ok := s.matches[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

// refresh rebuilds the cached view; m.mu must be held or m unpublished.
func (m *match) refresh(now time.Time) {
	winner, _ := m.sc.Winner()
	m.entry.State = m.sc.State()
	m.entry.Score = m.sc.Score()
	m.entry.Winner = winner
	m.entry.Points = m.sc.Points()
	m.entry.UpdatedAt = now
}

// sortEntries orders by UpdatedAt desc, then ID asc for stable output.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
