package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/deuce/pkg/logger"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete simulation and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulator")

	log.Info(ctx, "starting match simulation",
		logger.String("base_url", cfg.BaseURL),
		logger.String("match_type", string(cfg.MatchType)),
		logger.Int("matches", cfg.Matches),
		logger.Int("points", cfg.Points),
		logger.Float64("home_bias", cfg.HomeBias),
		logger.Float64("undo_rate", cfg.UndoRate),
		logger.Float64("resend_rate", cfg.ResendRate))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create matches and generate their events
	runs := make([]*matchRun, 0, cfg.Matches)
	for i := 0; i < cfg.Matches; i++ {
		v, err := client.CreateMatch(ctx, string(cfg.MatchType))
		if err != nil {
			return stats, fmt.Errorf("match creation failed: %w", err)
		}
		stats.MatchesCreated++
		run, err := generateMatch(ctx, cfg, v.ID)
		if err != nil {
			return stats, fmt.Errorf("event generation failed: %w", err)
		}
		stats.EventsGenerated += len(run.Events)
		runs = append(runs, run)
	}

	// Step 3: Submit events
	if err := submitEvents(ctx, cfg, client, runs, stats); err != nil {
		return stats, fmt.Errorf("event submission failed: %w", err)
	}

	// Step 4: Wait for the workers and compare scores
	verifyErr := verifyResults(ctx, cfg, client, runs, stats)

	// Step 5: Save events to file
	if cfg.OutputFile != "" {
		if err := saveEventsToFile(ctx, cfg.OutputFile, runs); err != nil {
			log.Warn(ctx, "failed to save events to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("result verification failed: %w", verifyErr)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Matches <= 0 {
		cfg.Matches = DefaultMatches
	}
	if cfg.Points <= 0 {
		cfg.Points = DefaultPoints
	}
	if cfg.HomeBias <= 0 || cfg.HomeBias >= 1 {
		cfg.HomeBias = DefaultHomeBias
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultWait
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
}

// saveEventsToFile writes the generated events as a JSON array.
func saveEventsToFile(ctx context.Context, filename string, runs []*matchRun) error {
	var events []Event
	for _, r := range runs {
		events = append(events, r.Events...)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events to save")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "events saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, eventsPerSecond float64
	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsAccepted+stats.EventsDuplicate) / float64(stats.EventsSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("matches_created", stats.MatchesCreated),
		logger.Int("matches_verified", stats.MatchesVerified),
		logger.Int("matches_finished", stats.MatchesFinished),
		logger.Int("matches_mismatch", stats.MatchesMismatch),
		logger.Int("events_generated", stats.EventsGenerated),
		logger.Int("events_submitted", stats.EventsSubmitted),
		logger.Int("events_accepted", stats.EventsAccepted),
		logger.Int("events_duplicate", stats.EventsDuplicate),
		logger.Int("events_retried", stats.EventsRetried),
		logger.Int("events_failed", stats.EventsFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("success_rate", successRate),
		logger.Float64("events_per_second", eventsPerSecond))
}
