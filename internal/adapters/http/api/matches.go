package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/pkg/logger"
)

const (
	defaultListLimit = 20
	defaultMaxLimit  = 100
)

// MatchesHandler serves the match resource.
type MatchesHandler struct {
	svc      MatchService
	maxLimit int
}

// NewMatchesHandler creates a matches handler.
func NewMatchesHandler(svc MatchService) *MatchesHandler {
	return &MatchesHandler{svc: svc, maxLimit: defaultMaxLimit}
}

type createMatchRequest struct {
	MatchType string `json:"match_type"`
}

type pointRequest struct {
	Side string `json:"side"`
}

// HandleCreate handles POST /matches.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.svc.CreateMatch(r.Context(), req.MatchType)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	w.Header().Set("Location", "/matches/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// HandleList handles GET /matches?limit=N, most recently updated first.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_matches"
	limit := defaultListLimit
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "bad_request",
				NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	views, err := h.svc.Matches(r.Context(), limit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /matches/{id}.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Match(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "api.get_match", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandlePoint handles POST /matches/{id}/points.
func (h *MatchesHandler) HandlePoint(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_point"
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	side, err := model.ParseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.svc.ScorePoint(r.Context(), chi.URLParam(r, "id"), side)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleUndo handles POST /matches/{id}/undo.
func (h *MatchesHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "api.undo", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *MatchesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, code, Wrap(op, err))
}
