package simulator

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/scorer"
)

const randomFloatDivisor = 1_000_000

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	if err != nil {
		return 0
	}
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateMatch builds the event stream of one match and mirrors it on a
// local scorer to know the score the service must end on. Generation stops
// once the match is over.
func generateMatch(ctx context.Context, cfg *Config, matchID string) (*matchRun, error) {
	sc, err := scorer.New(cfg.MatchType)
	if err != nil {
		return nil, err
	}
	run := &matchRun{ID: matchID, Resend: make(map[int]bool)}

	for i := 0; i < cfg.Points && !sc.Finished(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during event generation: %w", err)
		}
		e := Event{
			EventID: uuid.NewString(),
			MatchID: matchID,
			TS:      time.Now().UTC().Format(time.RFC3339),
		}
		if sc.Points() > 0 && getRandomFloat() < cfg.UndoRate {
			e.Kind = string(model.EventUndo)
			sc.Undo()
		} else {
			side := model.SideOf(getRandomFloat() < cfg.HomeBias)
			e.Kind = string(model.EventPoint)
			e.Side = side.String()
			if _, err := sc.IncreaseScore(side.IsHome()); err != nil {
				return nil, err
			}
		}
		if getRandomFloat() < cfg.ResendRate {
			run.Resend[len(run.Events)] = true
		}
		run.Events = append(run.Events, e)
	}

	run.Expected = sc.Score()
	run.Finished = sc.Finished()
	return run, nil
}
