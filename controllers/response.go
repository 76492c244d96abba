// Package controllers: controllers/response.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/services"
	"conference-desk/store"
)

// respondError maps a service error onto a status code and JSON body.
// Internal errors are logged here and never echoed to the client.
func respondError(c *gin.Context, op string, err error) {
	var (
		ve *services.ValidationError
		pe *services.PreconditionError
		ce *services.CapacityError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, services.ErrInvalidQR):
		c.JSON(http.StatusBadRequest, gin.H{"error": "QR code was not issued by this event"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &pe):
		body := gin.H{"error": pe.Message, "rule": pe.Rule}
		if len(pe.Details) > 0 {
			body["details"] = pe.Details
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{
			"error": ce.Error(),
			"rule":  "capacity_closed",
			"track": ce.Track,
			"used":  ce.Used,
			"max":   ce.Max,
		})
	case errors.Is(err, store.ErrUnavailable):
		logger.Error().Err(err).Str("op", op).Msg("store unavailable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage is unavailable, please retry"})
	default:
		logger.Error().Err(err).Str("op", op).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
