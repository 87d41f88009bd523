package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/deuce/pkg/logger"
)

// verifyResults polls each match until its remote score equals the expected
// one or cfg.Wait elapses.
func verifyResults(ctx context.Context, cfg *Config, client *HTTPClient, runs []*matchRun, stats *Stats) error {
	log := logger.Get().Named("simulator")
	log.Info(ctx, "verifying results", logger.Duration("wait", cfg.Wait))

	deadline := time.Now().Add(cfg.Wait)
	pending := make(map[string]*matchRun, len(runs))
	for _, r := range runs {
		pending[r.ID] = r
	}
	last := make(map[string]string, len(runs))

	for {
		for id, r := range pending {
			v, err := client.Match(ctx, id)
			if err != nil {
				return err
			}
			last[id] = v.Score
			if v.Score == r.Expected && v.Finished == r.Finished {
				delete(pending, id)
				stats.MatchesVerified++
				if r.Finished {
					stats.MatchesFinished++
				}
			}
		}
		if len(pending) == 0 || time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.PollInterval):
		}
	}

	stats.MatchesMismatch = len(pending)
	for id, r := range pending {
		if cfg.Verbose || stats.MatchesMismatch <= 10 {
			log.Warn(ctx, "score mismatch",
				logger.String("match_id", id),
				logger.String("expected", r.Expected),
				logger.String("actual", last[id]))
		}
	}
	if stats.MatchesMismatch > 0 {
		return fmt.Errorf("%d of %d matches did not reach the expected score", stats.MatchesMismatch, len(runs))
	}

	log.Info(ctx, "result verification completed", logger.Int("matches", stats.MatchesVerified))
	return nil
}
