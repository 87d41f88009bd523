// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/okian/deuce/internal/adapters/repository"
	service "github.com/okian/deuce/internal/app"
	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/internal/domain/rules"
	"github.com/okian/deuce/internal/domain/types"
)

const defaultRequestTimeout = 10 * time.Second

// MatchService is what the match handlers need.
type MatchService interface {
	CreateMatch(ctx context.Context, matchType string) (types.MatchView, error)
	Match(ctx context.Context, id string) (types.MatchView, error)
	Matches(ctx context.Context, limit int) ([]types.MatchView, error)
	ScorePoint(ctx context.Context, id string, side model.Side) (types.MatchView, error)
	Undo(ctx context.Context, id string) (types.MatchView, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MatchService
	EventDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	matchesHandler *MatchesHandler

	live    http.Handler
	docs    func(chi.Router)
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLiveHandler mounts h at GET /matches/{id}/live.
func WithLiveHandler(h http.Handler) Option {
	return func(s *Server) { s.live = h }
}

// WithDocs lets another package register documentation routes.
func WithDocs(register func(chi.Router)) Option {
	return func(s *Server) { s.docs = register }
}

// WithMaxListLimit caps GET /matches?limit.
func WithMaxListLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.matchesHandler.maxLimit = n
		}
	}
}

// WithRequestTimeout bounds non-streaming handlers.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		eventsHandler:  NewEventsHandler(deps, deps),
		matchesHandler: NewMatchesHandler(deps),
		timeout:        defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with every route attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(MetricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Get("/healthz", s.healthHandler.HandleHealth)

	// Streaming routes must not inherit the request timeout.
	if s.live != nil {
		r.Method(http.MethodGet, "/matches/{id}/live", s.live)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(s.timeout))

		r.Get("/stats", s.statsHandler.HandleStats)
		r.Post("/events", s.eventsHandler.HandlePostEvent)

		r.Post("/matches", s.matchesHandler.HandleCreate)
		r.Get("/matches", s.matchesHandler.HandleList)
		r.Get("/matches/{id}", s.matchesHandler.HandleGet)
		r.Post("/matches/{id}/points", s.matchesHandler.HandlePoint)
		r.Post("/matches/{id}/undo", s.matchesHandler.HandleUndo)

		if s.docs != nil {
			s.docs(r)
		}
	})
	return r
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps service errors onto HTTP status codes and error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, rules.ErrUnrecognizedMatchType),
		errors.Is(err, service.ErrInvalidSide),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNothingToUndo):
		return http.StatusConflict, "nothing_to_undo"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
