// Package websocket provides the WebSocket server and connection handling.
// file: websocket/connection.go
package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"conference-desk/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single dashboard client.
type Connection struct {
	conn WSConn
	send chan []byte
	user string
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// inbound is the only message a dashboard sends: {"action":"refresh"}.
type inbound struct {
	Action string `json:"action"`
}

// ServeWs upgrades the HTTP request to a WebSocket connection and starts the read and write pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, user string) {
	logger.Info().Str("remote", r.RemoteAddr).Str("user", user).Msg("[ServeWs] Upgrading to WS")
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		logger.Error().Err(err).Msg("[ServeWs] WebSocket upgrade error")
		return
	}

	c := &Connection{
		conn: wsConn,
		send: make(chan []byte, 64),
		user: user,
	}
	h.register(c)
	h.sendSnapshot(r.Context(), c)

	go c.readPump(h)
	go c.writePump()
}

// readPump watches for close frames and refresh requests.
func (c *Connection) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("[readPump] Read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var in inbound
		if err := json.Unmarshal(message, &in); err != nil {
			logger.Warn().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("[readPump] Invalid JSON")
			continue
		}
		if in.Action == "refresh" {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			h.sendSnapshot(ctx, c)
			cancel()
		}
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("[writePump] Error writing")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("[writePump] Ping error")
				return
			}
		}
	}
}
