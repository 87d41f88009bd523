// Package repository holds the in-memory match store.
package repository

import (
	"context"
	"time"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/scorer"
)

// Entry is a read-only view of one stored match.
type Entry struct {
	ID        string
	MatchType model.MatchType
	State     model.MatchState
	Score     string
	Winner    model.Side
	Points    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store provides read/write access to matches.
type Store interface {
	// Create starts a new match of type mt and returns it.
	Create(ctx context.Context, mt model.MatchType) (Entry, error)

	// Get returns the current view of a match.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (Entry, error)

	// Update runs fn with exclusive access to the match's scorer and returns
	// the view after fn. If fn fails the entry is returned unchanged along
	// with fn's error.
	Update(ctx context.Context, id string, fn func(*scorer.Scorer) error) (Entry, error)

	// List returns up to limit matches from the latest snapshot, most
	// recently updated first.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Count returns the number of stored matches.
	Count(ctx context.Context) int
}
