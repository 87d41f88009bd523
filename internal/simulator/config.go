// Package simulator drives a running scoring service with random matches
// and checks the scores it reports against a local scorer.
package simulator

import (
	"time"

	"github.com/okian/deuce/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL      string          // Base URL of the service
	MatchType    model.MatchType // Format of every simulated match
	Matches      int             // Number of matches to play
	Points       int             // Maximum events per match
	HomeBias     float64         // Probability that home wins a point
	UndoRate     float64         // Probability that an event is an undo
	ResendRate   float64         // Probability that an event is submitted twice
	Timeout      time.Duration   // HTTP request timeout
	Wait         time.Duration   // How long to wait for events to be applied
	PollInterval time.Duration   // Delay between score checks
	OutputFile   string          // Optional JSON dump of generated events
	Verbose      bool            // Log every mismatch and retry
}

// Event is the body of POST /events.
type Event struct {
	EventID string `json:"event_id"`
	MatchID string `json:"match_id"`
	Kind    string `json:"kind"`
	Side    string `json:"side,omitempty"`
	TS      string `json:"ts"`
}

// AckResponse is the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// matchRun is one simulated match and the score it should end on.
type matchRun struct {
	ID       string
	Events   []Event
	Resend   map[int]bool
	Expected string
	Finished bool
}

// Stats holds run statistics.
type Stats struct {
	MatchesCreated  int
	EventsGenerated int
	EventsSubmitted int
	EventsAccepted  int
	EventsDuplicate int
	EventsRetried   int
	EventsFailed    int
	MatchesVerified int
	MatchesFinished int
	MatchesMismatch int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
