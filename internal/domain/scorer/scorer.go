// Package scorer is the stateful, undoable point-by-point API on top of the
// pure scoring and progression engines.
//
// A Scorer is owned by a single caller; it does no locking of its own.
package scorer

import (
	"fmt"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/notation"
	"github.com/okian/deuce/internal/domain/progression"
	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/domain/scoring"
)

// Outcome describes what a single IncreaseScore call changed.
type Outcome struct {
	// Applied is false when the match was already finished.
	Applied        bool
	GameCompleted  bool
	SetCompleted   bool
	MatchCompleted bool
	// GameWinner is set when GameCompleted is true.
	GameWinner model.Side
}

// Scorer keeps the current match state and every earlier state for undo.
type Scorer struct {
	state   model.MatchState
	history []model.MatchState
}

// New starts a match of the given type.
func New(mt model.MatchType) (*Scorer, error) {
	cfg, err := rules.CreateMatchConfig(mt)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg), nil
}

// NewFromConfig starts a match from an already built configuration.
func NewFromConfig(cfg model.MatchConfig) *Scorer {
	return &Scorer{state: cfg.InitialState.Clone()}
}

// Replay builds a scorer for mt and feeds it the given point winners in order.
func Replay(mt model.MatchType, points []model.Side) (*Scorer, error) {
	s, err := New(mt)
	if err != nil {
		return nil, err
	}
	for i, p := range points {
		if p == model.SideNone {
			return nil, fmt.Errorf("point %d has no side", i)
		}
		if _, err := s.IncreaseScore(p.IsHome()); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return s, nil
}

// IncreaseScore awards the next point to home (isHome) or away and cascades
// the result through game, set and match. Points on a finished match are
// ignored. An error means the rules are malformed; the state is left as it was.
func (s *Scorer) IncreaseScore(isHome bool) (Outcome, error) {
	if s.state.IsFinished {
		return Outcome{}, nil
	}

	cur := s.state
	r := cur.Rules
	set := cur.CurrentSet()
	game := set.CurrentGame

	var (
		next model.GameState
		done bool
		err  error
	)
	if game.IsTiebreak {
		if next, err = scoring.ScoreTiebreakPoint(game, isHome, r.RegularTiebreakPoints); err != nil {
			return Outcome{}, err
		}
		done, err = scoring.IsGameFinished(next, false, r.RegularTiebreakPoints)
	} else {
		next = scoring.ScoreGamePoint(game, isHome, r.DecidingPoint)
		done, err = scoring.IsGameFinished(next, r.DecidingPoint, 0)
	}
	if err != nil {
		return Outcome{}, err
	}

	set.CurrentGame = next
	out := Outcome{Applied: true}
	nextState := cur
	nextState.Sets = cloneSets(cur.Sets)

	if !done {
		nextState.Sets[cur.CurrentSetIndex] = set
		s.push(nextState)
		return out, nil
	}

	winner := scoring.Winner(next)
	out.GameCompleted = true
	out.GameWinner = winner
	set = progression.ProgressToNextGame(set, winner.IsHome(), r.DecidingPoint)
	nextState.Sets[cur.CurrentSetIndex] = set

	if !progression.IsSetFinished(set, r, cur.IsFinalSet()) {
		s.push(nextState)
		return out, nil
	}

	out.SetCompleted = true
	if set.HomeScore > set.AwayScore {
		nextState.HomeScore++
	} else {
		nextState.AwayScore++
	}
	nextState.IsFinished = progression.CheckMatchComplete(nextState.HomeScore, nextState.AwayScore, r)
	out.MatchCompleted = nextState.IsFinished

	if !nextState.IsFinished && !cur.IsFinalSet() {
		nextState.CurrentSetIndex++
		nextState.Sets[nextState.CurrentSetIndex] = progression.ProgressToNextSet(r.DecidingPoint)
	}
	s.push(nextState)
	return out, nil
}

// Undo restores the state before the most recent point. It returns false when
// the match is at its initial state.
func (s *Scorer) Undo() bool {
	n := len(s.history)
	if n == 0 {
		return false
	}
	s.state = s.history[n-1]
	s.history = s.history[:n-1]
	return true
}

// Score renders the current state, e.g. "6:4;2:2-30:15".
func (s *Scorer) Score() string {
	return notation.Match(s.state)
}

// Winner returns the match winner; false while the match is in progress.
func (s *Scorer) Winner() (model.Side, bool) {
	return progression.MatchWinner(s.state)
}

// State returns a copy of the current match state.
func (s *Scorer) State() model.MatchState {
	return s.state.Clone()
}

// Points returns how many points can be undone.
func (s *Scorer) Points() int {
	return len(s.history)
}

// Finished reports whether the match is over.
func (s *Scorer) Finished() bool {
	return s.state.IsFinished
}

func (s *Scorer) push(next model.MatchState) {
	s.history = append(s.history, s.state)
	s.state = next
}

// cloneSets copies the set slice; set game histories are never written in
// place, so they can be shared between snapshots.
func cloneSets(sets []model.SetState) []model.SetState {
	out := make([]model.SetState, len(sets))
	copy(out, sets)
	return out
}
