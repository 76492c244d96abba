// Package controllers: controllers/participant_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/middleware"
	"conference-desk/services"
)

// ParticipantController serves and regenerates badge QR codes.
type ParticipantController struct {
	QR services.QRServiceInterface
}

// NewParticipantController creates a ParticipantController.
func NewParticipantController(qr services.QRServiceInterface) *ParticipantController {
	return &ParticipantController{QR: qr}
}

// GetQRCode serves the badge as a PNG image.
func (pc *ParticipantController) GetQRCode(c *gin.Context) {
	png, err := pc.QR.Image(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetQRCode", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// RegenerateQRCode issues a new badge, replacing the stored one.
func (pc *ParticipantController) RegenerateQRCode(c *gin.Context) {
	badge, err := pc.QR.Regenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "RegenerateQRCode", err)
		return
	}
	logger.Info().Str("participant_id", badge.Payload.ParticipantID).Str("by", middleware.CurrentUser(c)).
		Msg("RegenerateQRCode: new badge issued")
	c.JSON(http.StatusOK, gin.H{"participant": badge.Payload, "qr_payload": badge.Text})
}
