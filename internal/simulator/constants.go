package simulator

import "time"

// Defaults applied by Run when a Config field is zero.
const (
	DefaultMatches      = 10
	DefaultPoints       = 400
	DefaultHomeBias     = 0.5
	DefaultTimeout      = 10 * time.Second
	DefaultWait         = 30 * time.Second
	DefaultPollInterval = 100 * time.Millisecond

	maxSubmitAttempts = 50
	retryBackoff      = 20 * time.Millisecond
	maxRetryBackoff   = time.Second

	percentageMultiplier = 100
)
