package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrInvalidSide   = errors.New("invalid side")
	ErrInvalidEvent  = errors.New("invalid event")
)
