// file: heartbeat.go
package main

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/middleware"
)

// ScannerStatus is one staff scanner seen recently.
type ScannerStatus struct {
	User     string    `json:"user"`
	Device   string    `json:"device,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// HeartbeatManager tracks which scanner desks are online.
type HeartbeatManager struct {
	mu             sync.Mutex
	activeSessions map[string]ScannerStatus
	timeout        time.Duration
	now            func() time.Time
}

// NewHeartbeatManager initializes a heartbeat tracker. Scanners silent for
// longer than timeout are dropped.
func NewHeartbeatManager(timeout time.Duration) *HeartbeatManager {
	return &HeartbeatManager{
		activeSessions: make(map[string]ScannerStatus),
		timeout:        timeout,
		now:            time.Now,
	}
}

// UpdateHeartbeat marks a scanner as active.
func (h *HeartbeatManager) UpdateHeartbeat(user, device string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := user + "|" + device
	h.activeSessions[key] = ScannerStatus{User: user, Device: device, LastSeen: h.now()}
	logger.Debug().Str("user", user).Str("device", device).Msg("[HeartbeatManager.UpdateHeartbeat] scanner updated")
}

// Active lists scanners seen within the timeout, most recent first.
func (h *HeartbeatManager) Active() []ScannerStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ScannerStatus, 0, len(h.activeSessions))
	for _, s := range h.activeSessions {
		if h.now().Sub(s.LastSeen) <= h.timeout {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

// cleanup removes scanners past the timeout.
func (h *HeartbeatManager) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.activeSessions {
		if h.now().Sub(s.LastSeen) > h.timeout {
			logger.Info().Str("scanner", id).Dur("timeout", h.timeout).Msg("[HeartbeatManager] removing inactive scanner")
			delete(h.activeSessions, id)
		}
	}
}

// CleanupInactiveSessions prunes the table until ctx is cancelled.
func (h *HeartbeatManager) CleanupInactiveSessions(ctx context.Context) {
	ticker := time.NewTicker(h.timeout)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.cleanup()
		}
	}
}

// HeartbeatHandler records a ping from the signed-in scanner.
func (h *HeartbeatManager) HeartbeatHandler(c *gin.Context) {
	h.UpdateHeartbeat(middleware.CurrentUser(c), c.Query("device"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ActiveHandler lists the online scanners.
func (h *HeartbeatManager) ActiveHandler(c *gin.Context) {
	active := h.Active()
	c.JSON(http.StatusOK, gin.H{"scanners": active, "count": len(active)})
}
