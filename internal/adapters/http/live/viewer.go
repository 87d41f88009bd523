package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/okian/deuce/internal/adapters/repository"
	"github.com/okian/deuce/internal/domain/types"
	"github.com/okian/deuce/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// MatchReader loads the current view of a match.
type MatchReader interface {
	Match(ctx context.Context, id string) (types.MatchView, error)
}

type viewer struct {
	matchID string
	send    chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler serves GET /matches/{id}/live. It must be mounted on a chi router.
func (h *Hub) Handler(matches MatchReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		view, err := matches.Match(r.Context(), id)
		if err != nil {
			status, code := http.StatusInternalServerError, "internal"
			if errors.Is(err, repository.ErrNotFound) {
				status, code = http.StatusNotFound, "not_found"
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": err.Error()})
			return
		}
		initial, err := json.Marshal(view)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			h.logger.Debug(r.Context(), "websocket upgrade failed", logger.Error(err))
			return
		}
		v, ok := h.subscribe(id, initial)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}
		h.logger.Debug(r.Context(), "viewer connected", logger.String("match_id", id))

		go h.writePump(conn, v)
		h.readPump(conn, v)
	})
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(conn *websocket.Conn, v *viewer) {
	defer func() {
		h.unsubscribe(v)
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug(context.Background(), "viewer read error",
					logger.String("match_id", v.matchID), logger.Error(err))
			}
			return
		}
	}
}

// writePump forwards queued views to the socket and keeps it alive with pings.
func (h *Hub) writePump(conn *websocket.Conn, v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
