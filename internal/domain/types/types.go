// Package types contains the JSON shapes shared by the service and its API.
package types

import (
	"time"

	"github.com/okian/deuce/internal/domain/model"
)

// SetScore is the games score of one set.
type SetScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// MatchView is the public representation of a match.
type MatchView struct {
	ID          string          `json:"id"`
	MatchType   model.MatchType `json:"match_type"`
	Score       string          `json:"score"`
	Finished    bool            `json:"finished"`
	Winner      model.Side      `json:"winner"`
	Points      int             `json:"points"`
	Sets        []SetScore      `json:"sets"`
	CurrentGame model.GameState `json:"current_game"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Stats is the body of GET /stats.
type Stats struct {
	Started         bool  `json:"started"`
	WorkerCount     int   `json:"worker_count"`
	QueueCapacity   int   `json:"queue_capacity"`
	QueueLength     int   `json:"queue_length"`
	DedupeSize      int64 `json:"dedupe_size"`
	Matches         int   `json:"matches"`
	ActiveMatches   int   `json:"active_matches"`
	EventsProcessed int64 `json:"events_processed"`
	LiveViewers     int   `json:"live_viewers"`
}

// SetsOf returns the scores of every set up to and including the current one.
func SetsOf(state model.MatchState) []SetScore {
	n := min(state.CurrentSetIndex+1, len(state.Sets))
	out := make([]SetScore, n)
	for i := 0; i < n; i++ {
		out[i] = SetScore{Home: state.Sets[i].HomeScore, Away: state.Sets[i].AwayScore}
	}
	return out
}
