// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers files and environment on top of New().
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds each worker partition's event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of event workers (one partition each).
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many event ids are remembered for deduplication.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxListLimit caps GET /matches?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// SnapshotIntervalMS is how often the match list snapshot is rebuilt.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`

	// LiveBufferSize is the per-viewer send buffer of the live feed.
	LiveBufferSize int `koanf:"live_buffer_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		EventQueueSize:     10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         100_000,
		MaxListLimit:       100,
		SnapshotIntervalMS: 250,
		LiveBufferSize:     16,
	}
}
