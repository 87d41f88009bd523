// Package live pushes match updates to WebSocket viewers.
package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/okian/deuce/internal/domain/types"
	"github.com/okian/deuce/pkg/logger"
	"github.com/okian/deuce/pkg/metrics"
)

const defaultBufferSize = 16

// Hub fans match views out to the viewers subscribed to each match.
// Publish never blocks: a viewer whose buffer is full is disconnected.
type Hub struct {
	mu      sync.Mutex
	subs    map[string]map[*viewer]struct{}
	latest  map[string][]byte
	viewers int
	closed  bool

	bufferSize int
	logger     logger.Logger
}

// NewHub creates a hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:       make(map[string]map[*viewer]struct{}),
		latest:     make(map[string][]byte),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("live")
	}
	return h
}

// Publish delivers view to every viewer of its match.
func (h *Hub) Publish(view types.MatchView) {
	msg, err := json.Marshal(view)
	if err != nil {
		h.logger.Error(context.Background(), "encode match view", logger.String("match_id", view.ID), logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest[view.ID] = msg
	for v := range h.subs[view.ID] {
		select {
		case v.send <- msg:
			metrics.RecordLiveMessage()
		default:
			metrics.RecordLiveDropped()
			h.logger.Warn(context.Background(), "dropping slow viewer", logger.String("match_id", view.ID))
			h.removeLocked(v)
		}
	}
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewers
}

// Close disconnects every viewer; later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for v := range set {
			h.removeLocked(v)
		}
	}
}

// subscribe registers a viewer for matchID and queues the newest known
// view. initial is used only when nothing was published for the match yet,
// since a published view is never older than one read before subscribing.
func (h *Hub) subscribe(matchID string, initial []byte) (*viewer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	v := &viewer{matchID: matchID, send: make(chan []byte, h.bufferSize)}
	first := initial
	if msg, ok := h.latest[matchID]; ok {
		first = msg
	}
	v.send <- first

	set, ok := h.subs[matchID]
	if !ok {
		set = make(map[*viewer]struct{})
		h.subs[matchID] = set
	}
	set[v] = struct{}{}
	h.viewers++
	metrics.UpdateLiveViewers(h.viewers)
	return v, true
}

func (h *Hub) unsubscribe(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(v)
}

// removeLocked closes the viewer's send channel exactly once.
func (h *Hub) removeLocked(v *viewer) {
	set, ok := h.subs[v.matchID]
	if !ok {
		return
	}
	if _, ok := set[v]; !ok {
		return
	}
	delete(set, v)
	if len(set) == 0 {
		delete(h.subs, v.matchID)
	}
	close(v.send)
	h.viewers--
	metrics.UpdateLiveViewers(h.viewers)
}
