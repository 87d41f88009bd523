// Package notation renders match snapshots in conventional tennis notation,
// e.g. "6:4;3:6;2:2-30:15".
package notation

import (
	"strconv"
	"strings"

	"github.com/okian/deuce/internal/domain/model"
)

var pointNames = map[int]string{
	0: "0",
	1: "15",
	2: "30",
	3: "40",
	4: "Ad",
}

// Game formats a game score. Tiebreaks use plain point counts.
func Game(game model.GameState) string {
	if game.IsTiebreak {
		return strconv.Itoa(game.HomeScore) + ":" + strconv.Itoa(game.AwayScore)
	}
	return pointName(game.HomeScore) + ":" + pointName(game.AwayScore)
}

// Set formats the games score of a set.
func Set(set model.SetState) string {
	return strconv.Itoa(set.HomeScore) + ":" + strconv.Itoa(set.AwayScore)
}

// Match formats every set up to the current one joined by ";". Unfinished
// matches get the current game appended after "-".
func Match(match model.MatchState) string {
	var b strings.Builder
	for i, s := range match.Sets {
		if i > match.CurrentSetIndex {
			break
		}
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(Set(s))
	}
	if !match.IsFinished {
		b.WriteByte('-')
		b.WriteString(Game(match.CurrentSet().CurrentGame))
	}
	return b.String()
}

func pointName(units int) string {
	if name, ok := pointNames[units]; ok {
		return name
	}
	return strconv.Itoa(units)
}
