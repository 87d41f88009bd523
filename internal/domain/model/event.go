// Package model contains domain models passed between layers.
package model

import "time"

// EventKind tells a worker what to do with a point event.
type EventKind string

// Event kinds.
const (
	EventPoint EventKind = "point"
	EventUndo  EventKind = "undo"
)

// Event is a scoring instruction submitted by an umpire device.
// Fields mirror the OpenAPI schema for /events.
type Event struct {
	EventID string    // unique id for idempotency
	MatchID string    // match the event applies to
	Kind    EventKind // point or undo
	Side    Side      // side winning the point; SideNone for undo
	TS      time.Time // event timestamp
}
