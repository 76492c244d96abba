// Package controllers: controllers/dashboard.go
package controllers

import (
	"context"
	"sync"
	"time"

	"conference-desk/logger"
	"conference-desk/services"
	"conference-desk/websocket"
)

// Notifier pushes state changes to live dashboards.
type Notifier interface {
	SlotsChanged()
	ActionRecorded(res *services.ActionResult)
}

// ActionMetrics counts accepted scans.
type ActionMetrics interface {
	PublishActionRecorded(action string)
}

// DashboardNotifier broadcasts over the websocket hub.
type DashboardNotifier struct {
	slots   services.SlotServiceInterface
	hub     websocket.Broadcaster
	metrics ActionMetrics
	wg      sync.WaitGroup
}

// ensure DashboardNotifier implements Notifier
var _ Notifier = (*DashboardNotifier)(nil)

// NewDashboardNotifier creates a DashboardNotifier. metrics may be nil.
func NewDashboardNotifier(slots services.SlotServiceInterface, hub websocket.Broadcaster, metrics ActionMetrics) *DashboardNotifier {
	return &DashboardNotifier{slots: slots, hub: hub, metrics: metrics}
}

// SlotsChanged recomputes slot stats in the background and broadcasts them.
func (d *DashboardNotifier) SlotsChanged() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		stats, err := d.slots.Stats(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("SlotsChanged: skipped broadcast, stats unavailable")
			return
		}
		d.hub.Broadcast(websocket.ActionSlotsChanged, stats)
	}()
}

// ActionRecorded broadcasts an accepted scan.
func (d *DashboardNotifier) ActionRecorded(res *services.ActionResult) {
	d.hub.Broadcast(websocket.ActionActionRecorded, res)
	if d.metrics != nil {
		d.metrics.PublishActionRecorded(string(res.Action))
	}
}

// Wait blocks until background broadcasts finish.
func (d *DashboardNotifier) Wait() {
	d.wg.Wait()
}
