package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MatchType identifies one of the supported tennis scoring formats.
type MatchType string

// Supported match types.
const (
	SinglesGrandSlam MatchType = "SINGLES_GRANDSLAM"
	SinglesATPFinals MatchType = "SINGLES_ATP_FINALS"
	DoublesDavisCup  MatchType = "DOUBLES_DAVISCUP"
	DoublesATPTour   MatchType = "DOUBLES_ATPTOUR"
	DoublesGrandSlam MatchType = "DOUBLES_GRANDSLAM"
)

// Side is one of the two competitors of a match.
type Side int

// Sides. SideNone is the zero value and means "no side", e.g. no winner yet.
const (
	SideNone Side = iota
	SideHome
	SideAway
)

// SideOf maps the is-home flag used by the scoring engine to a Side.
func SideOf(isHome bool) Side {
	if isHome {
		return SideHome
	}
	return SideAway
}

// IsHome reports whether s is the home side.
func (s Side) IsHome() bool { return s == SideHome }

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return ""
	}
}

// ParseSide parses "home" or "away" (case-insensitive).
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "home":
		return SideHome, nil
	case "away":
		return SideAway, nil
	}
	return SideNone, fmt.Errorf("invalid side %q: must be home or away", v)
}

// MarshalJSON encodes a side as "home", "away" or null.
func (s Side) MarshalJSON() ([]byte, error) {
	if s == SideNone {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes "home" or "away".
func (s *Side) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = SideNone
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseSide(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ScoringRules parameterise the scoring state machine for a match type.
type ScoringRules struct {
	BestOf                int  `json:"best_of"`
	FinalSetMatchTiebreak bool `json:"final_set_match_tiebreak"`
	MatchTiebreakPoints   int  `json:"match_tiebreak_points"`
	RegularTiebreakPoints int  `json:"regular_tiebreak_points"`
	DecidingPoint         bool `json:"deciding_point"`
}

// SetsToWin is the strict majority of BestOf.
func (r ScoringRules) SetsToWin() int {
	return (r.BestOf + 1) / 2
}

// GameState is the score of a single game. Regular games count in units
// 0, 1, 2, 3, 4 meaning 0, 15, 30, 40 and advantage; tiebreaks count points.
type GameState struct {
	HomeScore  int  `json:"home"`
	AwayScore  int  `json:"away"`
	IsTiebreak bool `json:"tiebreak"`
}

// SetState is the games score of a set. Games holds the completed games,
// oldest first, and is never consulted for scoring decisions.
type SetState struct {
	HomeScore   int         `json:"home"`
	AwayScore   int         `json:"away"`
	CurrentGame GameState   `json:"current_game"`
	Games       []GameState `json:"games"`
}

// Clone returns a copy of s that shares no memory with it.
func (s SetState) Clone() SetState {
	games := make([]GameState, len(s.Games))
	copy(games, s.Games)
	s.Games = games
	return s
}

// MatchState is a snapshot of a whole match. Sets has exactly BestOf entries
// from creation on; sets after CurrentSetIndex stay at 0-0 until reached.
type MatchState struct {
	HomeScore       int          `json:"home"`
	AwayScore       int          `json:"away"`
	CurrentSetIndex int          `json:"current_set_index"`
	Sets            []SetState   `json:"sets"`
	IsFinished      bool         `json:"finished"`
	MatchType       MatchType    `json:"match_type"`
	Rules           ScoringRules `json:"rules"`
}

// Clone returns a deep copy of m.
func (m MatchState) Clone() MatchState {
	sets := make([]SetState, len(m.Sets))
	for i, s := range m.Sets {
		sets[i] = s.Clone()
	}
	m.Sets = sets
	return m
}

// CurrentSet returns the set in progress (or the last played set once the
// match is finished).
func (m MatchState) CurrentSet() SetState {
	return m.Sets[m.CurrentSetIndex]
}

// IsFinalSet reports whether the current set is the last one the format allows.
func (m MatchState) IsFinalSet() bool {
	return m.CurrentSetIndex == len(m.Sets)-1
}

// MatchConfig bundles a match type with its rules and starting state.
type MatchConfig struct {
	MatchType    MatchType
	Rules        ScoringRules
	InitialState MatchState
}
