package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/domain/scorer"
)

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) *MatchStore {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 7, 14, 12, 0, 0, 0, time.UTC)}
	n := 0
	s := NewMatchStore(context.Background(),
		WithSnapshotInterval(time.Hour),
		WithMetricsUpdateInterval(time.Hour),
		WithClock(clock.Now),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("m%d", n) }),
	)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func point(isHome bool) func(*scorer.Scorer) error {
	return func(sc *scorer.Scorer) error {
		_, err := sc.IncreaseScore(isHome)
		return err
	}
}

func TestMatchStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	e, err := store.Create(ctx, model.DoublesDavisCup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "m1" {
		t.Errorf("expected id m1, got %s", e.ID)
	}
	if e.Score != "0:0-0:0" {
		t.Errorf("expected love all, got %s", e.Score)
	}
	if !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Errorf("expected created == updated on a new match")
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	e, err = store.Update(ctx, e.ID, point(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Score != "0:0-15:0" || e.Points != 1 {
		t.Errorf("expected 15:0 after one point, got %s (%d points)", e.Score, e.Points)
	}
	if !e.UpdatedAt.After(e.CreatedAt) {
		t.Errorf("expected updated_at to move forward")
	}

	got, err := store.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != e.Score {
		t.Errorf("Get returned %s, Update returned %s", got.Score, e.Score)
	}
}

func TestMatchStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, model.MatchType("PADEL")); !errors.Is(err, rules.ErrUnrecognizedMatchType) {
		t.Errorf("expected ErrUnrecognizedMatchType, got %v", err)
	}
	if store.Count(ctx) != 0 {
		t.Errorf("failed create must not store a match")
	}

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Update(ctx, "nope", point(true)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.List(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestMatchStore_UpdateFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	e, _ := store.Create(ctx, model.SinglesATPFinals)

	boom := errors.New("boom")
	got, err := store.Update(ctx, e.ID, func(*scorer.Scorer) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if !got.UpdatedAt.Equal(e.UpdatedAt) {
		t.Errorf("failed update must not touch updated_at")
	}
}

func TestMatchStore_ListUsesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a, _ := store.Create(ctx, model.DoublesATPTour)
	b, _ := store.Create(ctx, model.DoublesGrandSlam)

	list, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	// Scoring on a is not visible until the next snapshot.
	if _, err := store.Update(ctx, a.ID, point(false)); err != nil {
		t.Fatal(err)
	}
	list, _ = store.List(ctx, 10)
	if list[1].Score != "0:0-0:0" {
		t.Errorf("expected stale snapshot, got %s", list[1].Score)
	}

	store.PublishSnapshot()
	list, _ = store.List(ctx, 1)
	if len(list) != 1 || list[0].ID != a.ID || list[0].Score != "0:0-0:15" {
		t.Errorf("expected fresh a at the top, got %+v", list)
	}
}

func TestMatchStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	e, _ := store.Create(ctx, model.SinglesGrandSlam)

	const goroutines, perG = 8, 10
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(home bool) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				if _, err := store.Update(ctx, e.ID, point(home)); err != nil {
					t.Error(err)
				}
			}
		}(g%2 == 0)
	}
	wg.Wait()

	got, _ := store.Get(ctx, e.ID)
	if got.Points != goroutines*perG {
		t.Errorf("expected %d points recorded, got %d", goroutines*perG, got.Points)
	}
}

func TestMatchStore_Close(t *testing.T) {
	store := NewMatchStore(context.Background(), WithSnapshotInterval(time.Millisecond))
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	// Second close is a no-op.
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
}

func BenchmarkMatchStore_Update(b *testing.B) {
	ctx := context.Background()
	store := NewMatchStore(ctx, WithSnapshotInterval(time.Hour))
	defer func() { _ = store.Close() }()

	ids := make([]string, 64)
	for i := range ids {
		e, _ := store.Create(ctx, model.SinglesGrandSlam)
		ids[i] = e.ID
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			id := ids[i%len(ids)]
			_, _ = store.Update(ctx, id, func(sc *scorer.Scorer) error {
				if sc.Finished() {
					sc.Undo()
					return nil
				}
				_, err := sc.IncreaseScore(i%3 != 0)
				return err
			})
			i++
		}
	})
}

func TestMatchStore_ChangeHook(t *testing.T) {
	ctx := context.Background()
	var scores []string
	store := NewMatchStore(ctx,
		WithSnapshotInterval(time.Hour),
		WithChangeHook(func(e Entry) { scores = append(scores, e.Score) }),
	)
	defer func() { _ = store.Close() }()

	e, _ := store.Create(ctx, model.DoublesDavisCup)
	_, _ = store.Update(ctx, e.ID, point(true))
	_, _ = store.Update(ctx, e.ID, func(*scorer.Scorer) error { return errors.New("rejected") })
	_, _ = store.Update(ctx, e.ID, point(false))

	want := []string{"0:0-0:0", "0:0-15:0", "0:0-15:15"}
	if fmt.Sprint(scores) != fmt.Sprint(want) {
		t.Errorf("expected hook calls %v, got %v", want, scores)
	}
}
