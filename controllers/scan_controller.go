// Package controllers: controllers/scan_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/middleware"
	"conference-desk/models"
	"conference-desk/services"
)

// ScanController backs the volunteers' scanner app.
type ScanController struct {
	QR       services.QRServiceInterface
	Checkin  services.CheckinServiceInterface
	Notifier Notifier
}

// NewScanController creates a ScanController. notifier may be nil.
func NewScanController(qr services.QRServiceInterface, checkin services.CheckinServiceInterface, notifier Notifier) *ScanController {
	return &ScanController{QR: qr, Checkin: checkin, Notifier: notifier}
}

type resolveRequest struct {
	QR string `json:"qr" binding:"required"`
}

type actionRequest struct {
	QR              string `json:"qr" binding:"required_without=ParticipantID"`
	ParticipantID   string `json:"participant_id"`
	Action          string `json:"action" binding:"required,action_kind"`
	MealType        string `json:"meal_type" binding:"omitempty,meal_type"`
	WorkshopTrack   string `json:"workshop_track" binding:"omitempty,workshop_track"`
	CompetitionType string `json:"competition_type" binding:"omitempty,competition_track"`
}

// Resolve decodes scanned text into the badge identity. It authorizes nothing,
// but a replaced badge is refused.
func (sc *ScanController) Resolve(c *gin.Context) {
	var req resolveRequest
	if !bindJSON(c, &req) {
		return
	}
	payload, err := sc.QR.Verify(c.Request.Context(), req.QR)
	if err != nil {
		respondError(c, "Resolve", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// Action records a meal, workshop, competition or accommodation scan.
// A scanned QR text takes precedence over a typed participant id.
func (sc *ScanController) Action(c *gin.Context) {
	var req actionRequest
	if !bindJSON(c, &req) {
		return
	}

	participantID := req.ParticipantID
	if req.QR != "" {
		payload, err := sc.QR.Verify(c.Request.Context(), req.QR)
		if err != nil {
			respondError(c, "Action", err)
			return
		}
		participantID = payload.ParticipantID
	}

	res, err := sc.Checkin.AuthorizeAction(c.Request.Context(), services.ActionRequest{
		ParticipantID:   participantID,
		Kind:            models.ActionKind(req.Action),
		MealType:        req.MealType,
		WorkshopTrack:   req.WorkshopTrack,
		CompetitionType: req.CompetitionType,
		RecordedBy:      middleware.CurrentUser(c),
	})
	if err != nil {
		logger.Warn().Err(err).Str("participant_id", participantID).Str("action", req.Action).Msg("Action: rejected")
		respondError(c, "Action", err)
		return
	}

	c.JSON(http.StatusCreated, res)
	if sc.Notifier != nil {
		sc.Notifier.ActionRecorded(res)
	}
}
