package simulator

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/deuce/pkg/logger"
)

type submitCounters struct {
	submitted atomic.Int64
	accepted  atomic.Int64
	duplicate atomic.Int64
	retried   atomic.Int64
	failed    atomic.Int64
}

// submitEvents posts every match's events with one goroutine per match, so
// the events of a match reach the service in generation order.
func submitEvents(ctx context.Context, cfg *Config, client *HTTPClient, runs []*matchRun, stats *Stats) error {
	log := logger.Get().Named("simulator")
	var total int
	for _, r := range runs {
		total += len(r.Events) + len(r.Resend)
	}
	log.Info(ctx, "submitting events", logger.Int("events", total), logger.Int("matches", len(runs)))

	var (
		c   submitCounters
		wg  sync.WaitGroup
		mu  sync.Mutex
		err error
	)
	for _, run := range runs {
		wg.Add(1)
		go func(run *matchRun) {
			defer wg.Done()
			for i, e := range run.Events {
				sends := 1
				if run.Resend[i] {
					sends = 2
				}
				for n := 0; n < sends; n++ {
					if serr := submitWithRetry(ctx, cfg, client, e, &c); serr != nil {
						mu.Lock()
						if err == nil {
							err = fmt.Errorf("match %s event %d: %w", run.ID, i, serr)
						}
						mu.Unlock()
						return
					}
				}
			}
		}(run)
	}
	wg.Wait()

	stats.EventsSubmitted = int(c.submitted.Load())
	stats.EventsAccepted = int(c.accepted.Load())
	stats.EventsDuplicate = int(c.duplicate.Load())
	stats.EventsRetried = int(c.retried.Load())
	stats.EventsFailed = int(c.failed.Load())

	log.Info(ctx, "event submission completed",
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("retried", stats.EventsRetried),
		logger.Int("failed", stats.EventsFailed))
	return err
}

// submitWithRetry posts e until the service accepts it or reports it as a
// duplicate. 429 means the match's queue is full and is retried with backoff.
func submitWithRetry(ctx context.Context, cfg *Config, client *HTTPClient, e Event, c *submitCounters) error {
	backoff := retryBackoff
	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		status, ack, err := client.PostEvent(ctx, e)
		c.submitted.Add(1)
		switch {
		case err != nil:
			c.failed.Add(1)
			return err
		case status == http.StatusAccepted:
			c.accepted.Add(1)
			return nil
		case status == http.StatusOK:
			if ack.Duplicate || ack.Status == "duplicate" {
				c.duplicate.Add(1)
				return nil
			}
			c.accepted.Add(1)
			return nil
		case status == http.StatusTooManyRequests:
			c.retried.Add(1)
			if cfg.Verbose {
				logger.Get().Debug(ctx, "backpressure, retrying",
					logger.String("event_id", e.EventID), logger.Duration("backoff", backoff))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxRetryBackoff)
		default:
			c.failed.Add(1)
			return fmt.Errorf("unexpected status %d", status)
		}
	}
	c.failed.Add(1)
	return fmt.Errorf("gave up after %d attempts", maxSubmitAttempts)
}
