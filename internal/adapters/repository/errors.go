package repository

import "errors"

// Sentinel kinds for match store errors.
var (
	ErrNotFound     = errors.New("match not found")
	ErrInvalidLimit = errors.New("invalid list limit")
)
