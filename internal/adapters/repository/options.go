package repository

import "time"

// Option applies a configuration option to the MatchStore.
type Option func(*MatchStore)

// WithSnapshotInterval sets how often the list snapshot is rebuilt.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *MatchStore) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MatchStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithIDGenerator replaces the uuid based match id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *MatchStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MatchStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithChangeHook registers fn to run after every create and successful update.
// It runs while the match is locked, so calls for one match arrive in order;
// fn must not block or call back into the store for the same match.
func WithChangeHook(fn func(Entry)) Option {
	return func(s *MatchStore) {
		s.onChange = fn
	}
}
