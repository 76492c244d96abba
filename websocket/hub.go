// Package websocket pushes live slot and scan updates to dashboard clients.
// file: websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"conference-desk/logger"
)

// Message actions sent to dashboards.
const (
	ActionSlotsChanged   = "slotsChanged"
	ActionActionRecorded = "actionRecorded"
	ActionSnapshot       = "snapshot"
)

// Message is the JSON envelope for every dashboard push.
type Message struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data,omitempty"`
	SentAt time.Time   `json:"sent_at"`
}

// ConnectionMetrics receives the live connection count.
type ConnectionMetrics interface {
	PublishDashboardConnections(count int)
}

// SnapshotFunc builds the state a newly connected dashboard starts from.
type SnapshotFunc func(ctx context.Context) (interface{}, error)

// Hub tracks dashboard connections and fans messages out to them.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool
	broadcast   chan []byte
	upgrader    websocket.Upgrader
	metrics     ConnectionMetrics
	snapshot    SnapshotFunc
	now         func() time.Time
}

// ensure Hub implements Broadcaster
var _ Broadcaster = (*Hub)(nil)

// NewHub creates a hub accepting upgrades from allowedOrigins. An empty list
// or "*" accepts any origin.
func NewHub(allowedOrigins []string, metrics ConnectionMetrics, snapshot SnapshotFunc) *Hub {
	h := &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan []byte, 256),
		metrics:     metrics,
		snapshot:    snapshot,
		now:         time.Now,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		logger.Warn().Str("origin", origin).Msg("[CheckOrigin] rejected dashboard origin")
		return false
	}
}

// Run distributes queued messages until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.connections {
				select {
				case c.send <- msg:
				default:
					logger.Warn().Str("remote", c.conn.RemoteAddr().String()).Msg("Dropping broadcast message for slow dashboard")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a message for every dashboard. It never blocks the caller.
func (h *Hub) Broadcast(action string, payload interface{}) {
	msg, err := h.encode(action, payload)
	if err != nil {
		logger.Error().Err(err).Str("action", action).Msg("Error marshalling broadcast message")
		return
	}
	select {
	case h.broadcast <- msg:
		logger.Debug().Str("action", action).Msg("Broadcast queued")
	default:
		logger.Warn().Str("action", action).Msg("Broadcast queue full, message dropped")
	}
}

// ConnectionCount reports how many dashboards are connected.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) encode(action string, payload interface{}) ([]byte, error) {
	return json.Marshal(Message{Action: action, Data: payload, SentAt: h.now().UTC()})
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	n := len(h.connections)
	h.mu.Unlock()
	h.publishCount(n)
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, c)
	close(c.send)
	n := len(h.connections)
	h.mu.Unlock()
	h.publishCount(n)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.connections {
		delete(h.connections, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.publishCount(0)
}

func (h *Hub) publishCount(n int) {
	if h.metrics != nil {
		h.metrics.PublishDashboardConnections(n)
	}
}

// sendSnapshot queues the current state for a single connection.
func (h *Hub) sendSnapshot(ctx context.Context, c *Connection) {
	if h.snapshot == nil {
		return
	}
	state, err := h.snapshot(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("[sendSnapshot] could not build dashboard snapshot")
		return
	}
	msg, err := h.encode(ActionSnapshot, state)
	if err != nil {
		logger.Error().Err(err).Msg("[sendSnapshot] Error marshalling snapshot")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.connections[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
