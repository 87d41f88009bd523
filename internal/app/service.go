// Package service wires the match store, event ingestion and live feed into
// the operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/deuce/internal/adapters/mq/queue"
	workerpool "github.com/okian/deuce/internal/adapters/mq/worker"
	"github.com/okian/deuce/internal/adapters/repository"
	"github.com/okian/deuce/internal/domain/dedupe"
	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/domain/scorer"
	"github.com/okian/deuce/internal/domain/types"
	"github.com/okian/deuce/pkg/logger"
	"github.com/okian/deuce/pkg/metrics"
)

// Publisher receives a view after every change to a match.
type Publisher interface {
	Publish(view types.MatchView)
}

// Service implements the API dependencies for the scoring service.
type Service struct {
	mu sync.RWMutex

	store   *repository.MatchStore
	deduper dedupe.Deduper
	queue   *eventqueue.Partitioned
	pool    *workerpool.Pool

	publisher Publisher

	workerCount      int
	queueSize        int
	dedupeSize       int
	snapshotInterval time.Duration

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        10_000,
		dedupeSize:       100_000,
		snapshotInterval: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	// Background loops outlive the request that started us; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewMatchStore(runCtx,
		repository.WithSnapshotInterval(s.snapshotInterval),
		repository.WithChangeHook(s.publish),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewPartitioned(s.workerCount, eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.queue, s)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains queued events and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	_ = s.store.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// CreateMatch starts a match of the named type.
func (s *Service) CreateMatch(ctx context.Context, matchType string) (types.MatchView, error) {
	mt, err := rules.ParseMatchType(matchType)
	if err != nil {
		return types.MatchView{}, err
	}
	e, err := s.store.Create(ctx, mt)
	if err != nil {
		return types.MatchView{}, err
	}
	metrics.RecordMatchCreated(string(mt))
	s.logger.Info(ctx, "match created", logger.String("match_id", e.ID), logger.String("match_type", string(mt)))
	return toView(e), nil
}

// Match returns the current view of a match.
func (s *Service) Match(ctx context.Context, id string) (types.MatchView, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return types.MatchView{}, err
	}
	return toView(e), nil
}

// Matches lists up to limit matches, most recently updated first.
func (s *Service) Matches(ctx context.Context, limit int) ([]types.MatchView, error) {
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.MatchView, len(entries))
	for i := range entries {
		out[i] = toView(entries[i])
	}
	return out, nil
}

// ScorePoint awards the next point of a match to side.
func (s *Service) ScorePoint(ctx context.Context, id string, side model.Side) (types.MatchView, error) {
	if side != model.SideHome && side != model.SideAway {
		return types.MatchView{}, fmt.Errorf("%w: %q", ErrInvalidSide, side.String())
	}

	var out scorer.Outcome
	e, err := s.store.Update(ctx, id, func(sc *scorer.Scorer) error {
		var err error
		out, err = sc.IncreaseScore(side.IsHome())
		return err
	})
	if err != nil {
		return types.MatchView{}, err
	}
	s.recordOutcome(ctx, e, side, out)
	return toView(e), nil
}

// Undo takes back the last point of a match.
func (s *Service) Undo(ctx context.Context, id string) (types.MatchView, error) {
	e, err := s.store.Update(ctx, id, func(sc *scorer.Scorer) error {
		if !sc.Undo() {
			return ErrNothingToUndo
		}
		return nil
	})
	if err != nil {
		return types.MatchView{}, err
	}
	metrics.RecordUndo()
	s.logger.Debug(ctx, "point undone", logger.String("match_id", id), logger.String("score", e.Score))
	return toView(e), nil
}

// ApplyEvent applies a queued event; it is called by the worker pool.
func (s *Service) ApplyEvent(ctx context.Context, e model.Event) error {
	var err error
	switch e.Kind {
	case model.EventPoint:
		_, err = s.ScorePoint(ctx, e.MatchID, e.Side)
	case model.EventUndo:
		_, err = s.Undo(ctx, e.MatchID)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return err
}

// SeenAndRecord atomically checks if an event id was seen and records it if not.
// Returns true if the event was already seen, false if it was newly recorded.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an event for asynchronous processing. It returns false
// when the match's queue is full or the service is stopping.
func (s *Service) Enqueue(ctx context.Context, e model.Event) bool {
	ok := s.queue.Enqueue(ctx, e)
	if !ok {
		s.logger.Warn(ctx, "event rejected by queue",
			logger.String("event_id", e.EventID),
			logger.String("match_id", e.MatchID),
		)
	}
	return ok
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{Started: s.started, WorkerCount: s.workerCount}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats.QueueCapacity = s.queue.Capacity()
	stats.QueueLength = s.queue.Len(ctx)
	stats.DedupeSize = s.deduper.Size()
	stats.Matches = s.store.Count(ctx)
	stats.EventsProcessed = s.pool.Processed()
	for _, e := range s.store.Snapshot().Entries {
		if !e.State.IsFinished {
			stats.ActiveMatches++
		}
	}
	if v, ok := s.publisher.(interface{ Viewers() int }); ok {
		stats.LiveViewers = v.Viewers()
	}

	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateTotalMatches(stats.Matches)
	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

func (s *Service) publish(e repository.Entry) {
	if s.publisher != nil {
		s.publisher.Publish(toView(e))
	}
}

func (s *Service) recordOutcome(ctx context.Context, e repository.Entry, side model.Side, out scorer.Outcome) {
	if !out.Applied {
		return
	}
	metrics.RecordPointScored(side.String())
	if out.GameCompleted {
		// The finished game is the last one recorded in its set.
		metrics.RecordGameCompleted(lastGameWasTiebreak(e.State, out.SetCompleted))
	}
	if out.SetCompleted {
		metrics.RecordSetCompleted()
	}
	if out.MatchCompleted {
		metrics.RecordMatchCompleted(string(e.MatchType))
		s.logger.Info(ctx, "match finished",
			logger.String("match_id", e.ID),
			logger.String("winner", e.Winner.String()),
			logger.String("score", e.Score),
		)
	}
}

// lastGameWasTiebreak looks up the game that just finished. When the point
// also closed a set that set may no longer be the current one.
func lastGameWasTiebreak(state model.MatchState, setCompleted bool) bool {
	idx := state.CurrentSetIndex
	if setCompleted && !state.IsFinished && idx > 0 {
		idx--
	}
	if idx >= len(state.Sets) {
		return false
	}
	games := state.Sets[idx].Games
	if len(games) == 0 {
		return false
	}
	return games[len(games)-1].IsTiebreak
}

func toView(e repository.Entry) types.MatchView {
	return types.MatchView{
		ID:          e.ID,
		MatchType:   e.MatchType,
		Score:       e.Score,
		Finished:    e.State.IsFinished,
		Winner:      e.Winner,
		Points:      e.Points,
		Sets:        types.SetsOf(e.State),
		CurrentGame: e.State.CurrentSet().CurrentGame,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
