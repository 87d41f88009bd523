// Package progression rolls finished games into sets and finished sets into
// the match score.
package progression

import (
	"github.com/okian/deuce/internal/domain/model"
)

const (
	gamesToWinSet     = 6
	tiebreakGameCount = 6
	maxSetGames       = 7 // only via 7-5 or a won 6-6 tiebreak
	setWinMargin      = 2
)

// IsSetFinished reports whether a set has a winner.
//
// isFinalSet and rules.FinalSetMatchTiebreak do not alter the outcome: the
// final set is decided like any other set, including the regular tiebreak
// at 6-6.
func IsSetFinished(set model.SetState, rules model.ScoringRules, isFinalSet bool) bool {
	hi := max(set.HomeScore, set.AwayScore)
	lo := min(set.HomeScore, set.AwayScore)
	if hi == maxSetGames {
		return true
	}
	return hi >= gamesToWinSet && hi-lo >= setWinMargin
}

// ProgressToNextGame credits the finished current game to the winner, files
// it into the set's game history and opens the next game. The next game is a
// tiebreak exactly when the set stands at 6-6.
func ProgressToNextGame(set model.SetState, homeWonGame bool, decidingPoint bool) model.SetState {
	next := set.Clone()
	if homeWonGame {
		next.HomeScore++
	} else {
		next.AwayScore++
	}
	next.Games = append(next.Games, set.CurrentGame)
	next.CurrentGame = model.GameState{
		IsTiebreak: next.HomeScore == tiebreakGameCount && next.AwayScore == tiebreakGameCount,
	}
	return next
}

// ProgressToNextSet returns a fresh 0-0 set.
func ProgressToNextSet(decidingPoint bool) model.SetState {
	return model.SetState{
		CurrentGame: model.GameState{},
		Games:       []model.GameState{},
	}
}

// CheckMatchComplete reports whether either side has won a strict majority
// of the sets.
func CheckMatchComplete(homeSetsWon, awaySetsWon int, rules model.ScoringRules) bool {
	return max(homeSetsWon, awaySetsWon) >= rules.SetsToWin()
}

// MatchWinner returns the winner of a finished match. The boolean is false
// while the match is still in progress.
func MatchWinner(match model.MatchState) (model.Side, bool) {
	if !match.IsFinished {
		return model.SideNone, false
	}
	return model.SideOf(match.HomeScore > match.AwayScore), true
}
