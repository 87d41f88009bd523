// Package scoring advances a single game, regular or tiebreak, by one point.
//
// Every function here is pure: it returns a new GameState and never touches
// its input. Scoring a game that is already won returns the input unchanged.
package scoring

import (
	"fmt"

	"github.com/okian/deuce/internal/domain/model"
)

// Regular game units. Anything above unitAdvantage is a won game.
const (
	unitForty     = 3
	unitAdvantage = 4
	winMargin     = 2
)

// IsGameFinished reports whether game has a winner. Tiebreaks need the point
// target; passing tiebreakPoints <= 0 for a tiebreak game is a caller bug and
// yields ErrMissingParameter. decidingPoint applies the no-ad rule to
// regular games: the first point after deuce wins.
func IsGameFinished(game model.GameState, decidingPoint bool, tiebreakPoints int) (bool, error) {
	if game.IsTiebreak {
		if tiebreakPoints <= 0 {
			return false, fmt.Errorf("%w: tiebreak points required for a tiebreak game", ErrMissingParameter)
		}
		return isTiebreakWon(game, tiebreakPoints), nil
	}
	return isRegularGameWon(game, decidingPoint), nil
}

// ScoreGamePoint awards a point in a regular game. When both sides would
// reach advantage the score falls back to deuce (40-40).
func ScoreGamePoint(game model.GameState, isHome bool, decidingPoint bool) model.GameState {
	if isRegularGameWon(game, decidingPoint) {
		return game
	}

	next := increment(game, isHome)
	if next.HomeScore == unitAdvantage && next.AwayScore == unitAdvantage {
		next.HomeScore = unitForty
		next.AwayScore = unitForty
	}
	return next
}

// ScoreTiebreakPoint awards a point in a tiebreak played to tiebreakPoints.
func ScoreTiebreakPoint(game model.GameState, isHome bool, tiebreakPoints int) (model.GameState, error) {
	if tiebreakPoints <= 0 {
		return game, fmt.Errorf("%w: tiebreak points must be positive, got %d", ErrMissingParameter, tiebreakPoints)
	}
	if isTiebreakWon(game, tiebreakPoints) {
		return game, nil
	}
	return increment(game, isHome), nil
}

// Winner returns the side leading a game. Only meaningful once the game is finished.
func Winner(game model.GameState) model.Side {
	return model.SideOf(game.HomeScore > game.AwayScore)
}

func isRegularGameWon(game model.GameState, decidingPoint bool) bool {
	hi, lo := spread(game)
	if hi >= unitAdvantage && hi-lo >= winMargin {
		return true
	}
	return decidingPoint && hi == unitAdvantage && lo == unitForty
}

func isTiebreakWon(game model.GameState, target int) bool {
	hi, lo := spread(game)
	return hi >= target && hi-lo >= winMargin
}

func spread(game model.GameState) (hi, lo int) {
	return max(game.HomeScore, game.AwayScore), min(game.HomeScore, game.AwayScore)
}

func increment(game model.GameState, isHome bool) model.GameState {
	if isHome {
		game.HomeScore++
	} else {
		game.AwayScore++
	}
	return game
}
