// Package rules maps match types to their scoring rules and initial state.
package rules

import (
	"fmt"
	"strings"

	"github.com/okian/deuce/internal/domain/model"
)

// Tiebreak targets shared by every supported format.
const (
	regularTiebreakPoints = 7
	matchTiebreakPoints   = 10
)

var catalog = map[model.MatchType]model.ScoringRules{
	model.SinglesGrandSlam: {BestOf: 5},
	model.SinglesATPFinals: {BestOf: 3},
	model.DoublesDavisCup:  {BestOf: 3},
	model.DoublesATPTour:   {BestOf: 3, FinalSetMatchTiebreak: true, DecidingPoint: true},
	model.DoublesGrandSlam: {BestOf: 3, FinalSetMatchTiebreak: true},
}

// MatchTypes lists the supported match types in a stable order.
func MatchTypes() []model.MatchType {
	return []model.MatchType{
		model.SinglesGrandSlam,
		model.SinglesATPFinals,
		model.DoublesDavisCup,
		model.DoublesATPTour,
		model.DoublesGrandSlam,
	}
}

// ParseMatchType resolves a match type identifier, ignoring case and
// surrounding whitespace.
func ParseMatchType(v string) (model.MatchType, error) {
	mt := model.MatchType(strings.ToUpper(strings.TrimSpace(v)))
	if _, ok := catalog[mt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedMatchType, v)
	}
	return mt, nil
}

// Rules returns the scoring rules for a match type.
func Rules(mt model.MatchType) (model.ScoringRules, error) {
	r, ok := catalog[mt]
	if !ok {
		return model.ScoringRules{}, fmt.Errorf("%w: %q", ErrUnrecognizedMatchType, string(mt))
	}
	r.RegularTiebreakPoints = regularTiebreakPoints
	r.MatchTiebreakPoints = matchTiebreakPoints
	return r, nil
}

// CreateMatchConfig builds the rules and the 0-0 starting state for a match.
func CreateMatchConfig(mt model.MatchType) (model.MatchConfig, error) {
	r, err := Rules(mt)
	if err != nil {
		return model.MatchConfig{}, err
	}

	sets := make([]model.SetState, r.BestOf)
	for i := range sets {
		sets[i] = newSet()
	}

	return model.MatchConfig{
		MatchType: mt,
		Rules:     r,
		InitialState: model.MatchState{
			CurrentSetIndex: 0,
			Sets:            sets,
			IsFinished:      false,
			MatchType:       mt,
			Rules:           r,
		},
	}, nil
}

func newSet() model.SetState {
	return model.SetState{
		CurrentGame: model.GameState{},
		Games:       []model.GameState{},
	}
}
