package live

import "github.com/okian/deuce/pkg/logger"

// Option configures a Hub.
type Option func(*Hub)

// WithBufferSize sets how many updates may queue per viewer before it is dropped.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}
