// Package controllers: controllers/slot_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/models"
	"conference-desk/services"
)

// SlotController serves the open/closed view for the registration page.
type SlotController struct {
	Slots services.SlotServiceInterface
}

// NewSlotController creates a SlotController.
func NewSlotController(slots services.SlotServiceInterface) *SlotController {
	return &SlotController{Slots: slots}
}

// GetSlots returns every track plus the event-wide totals.
func (sc *SlotController) GetSlots(c *gin.Context) {
	stats, err := sc.Slots.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "GetSlots", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTrack returns one track's slot status.
func (sc *SlotController) GetTrack(c *gin.Context) {
	track, err := models.ParseTrack(c.Param("track"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "track"})
		return
	}
	slot, err := sc.Slots.TrackStatus(c.Request.Context(), track)
	if err != nil {
		respondError(c, "GetTrack", err)
		return
	}
	c.JSON(http.StatusOK, slot)
}
