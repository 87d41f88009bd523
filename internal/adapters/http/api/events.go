// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/deuce/internal/domain/dedupe"
	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/types"
)

// EventDependencies defines the interface for event processing dependencies.
type EventDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.Event) bool
}

// MatchReader confirms the target match exists before an event is accepted.
type MatchReader interface {
	Match(ctx context.Context, id string) (types.MatchView, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps    EventDependencies
	matches MatchReader
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies, matches MatchReader) *EventsHandler {
	return &EventsHandler{deps: deps, matches: matches}
}

type eventRequest struct {
	EventID string `json:"event_id"`
	MatchID string `json:"match_id"`
	Kind    string `json:"kind"`
	Side    string `json:"side,omitempty"`
	TS      string `json:"ts,omitempty"`
}

var (
	errMissingEventID = errors.New("event_id is required")
	errMissingMatchID = errors.New("match_id is required")
	errUnknownKind    = errors.New("kind must be point or undo")
	errBadTimestamp   = errors.New("ts must be RFC3339")
)

// toEvent validates the request and converts it to a domain event.
func (r eventRequest) toEvent(now time.Time) (model.Event, error) {
	e := model.Event{
		EventID: strings.TrimSpace(r.EventID),
		MatchID: strings.TrimSpace(r.MatchID),
		Kind:    model.EventKind(strings.ToLower(strings.TrimSpace(r.Kind))),
		TS:      now,
	}
	if e.EventID == "" {
		return model.Event{}, errMissingEventID
	}
	if e.MatchID == "" {
		return model.Event{}, errMissingMatchID
	}
	switch e.Kind {
	case model.EventPoint:
		side, err := model.ParseSide(r.Side)
		if err != nil {
			return model.Event{}, err
		}
		e.Side = side
	case model.EventUndo:
	default:
		return model.Event{}, errUnknownKind
	}
	if r.TS != "" {
		ts, err := time.Parse(time.RFC3339, r.TS)
		if err != nil {
			return model.Event{}, errBadTimestamp
		}
		e.TS = ts
	}
	return e, nil
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := req.toEvent(time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if _, err := h.matches.Match(r.Context(), e.MatchID); err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), e.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), e); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), e.EventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
