// Package controllers: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
)

// Health returns "OK" for load balancer checks.
func Health(c *gin.Context) {
	logger.Debug().Msg("Health: Health check requested")
	c.String(http.StatusOK, "OK")
}

// NotFound answers unknown routes with the JSON error shape.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
