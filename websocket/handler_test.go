// file: websocket/handler_test.go
package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func startTestServer(t *testing.T, h *Hub) (*httptest.Server, *websocket.Conn) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWs(w, r, "coordinator1")
	}))

	wsURL := "ws" + server.URL[len("http"):]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err, "Expected WebSocket connection to succeed")
	return server, conn
}

// Test: a new dashboard gets a snapshot, then live broadcasts
func TestServeWs_SnapshotThenBroadcast(t *testing.T) {
	h := NewHub(nil, nil, func(context.Context) (interface{}, error) {
		return map[string]bool{"event_closed": false}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	server, conn := startTestServer(t, h)
	defer server.Close()
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first Message
	assert.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, ActionSnapshot, first.Action)

	h.Broadcast(ActionSlotsChanged, map[string]int{"total_participants": 7})

	var next Message
	assert.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, ActionSlotsChanged, next.Action)
	assert.Equal(t, 1, h.ConnectionCount())
}

// Test: a refresh request gets a fresh snapshot
func TestServeWs_Refresh(t *testing.T) {
	calls := 0
	h := NewHub(nil, nil, func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	})
	server, conn := startTestServer(t, h)
	defer server.Close()
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m Message
	assert.NoError(t, conn.ReadJSON(&m))

	assert.NoError(t, conn.WriteJSON(map[string]string{"action": "refresh"}))
	assert.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, ActionSnapshot, m.Action)
	assert.Equal(t, float64(2), m.Data)
}

// Test: WebSocket upgrade should fail with a non-WebSocket request
func TestServeWs_Failure(t *testing.T) {
	h := NewHub(nil, nil, nil)
	req, _ := http.NewRequest(http.MethodGet, "/ws/dashboard", nil)
	w := httptest.NewRecorder()

	h.ServeWs(w, req, "admin")

	assert.Equal(t, http.StatusBadRequest, w.Code, "Expected failure when not upgrading to WebSocket")
	assert.Equal(t, 0, h.ConnectionCount())
}

// Test: disallowed origins are refused
func TestServeWs_ForbiddenOrigin(t *testing.T) {
	h := NewHub([]string{"https://desk.example.com"}, nil, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWs(w, r, "admin")
	}))
	defer server.Close()

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], header)

	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
