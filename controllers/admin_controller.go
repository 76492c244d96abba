// Package controllers provides HTTP handlers for various admin operations.
// File: controllers/admin_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/middleware"
	"conference-desk/services"
)

// ---------------- Admin Controller ----------------

// AdminController provides the admin views over registrations and attendance.
type AdminController struct {
	Registrations services.RegistrationServiceInterface
	Checkin       services.CheckinServiceInterface
	Notifier      Notifier
}

// NewAdminController initializes a new instance of AdminController. notifier may be nil.
func NewAdminController(regs services.RegistrationServiceInterface, checkin services.CheckinServiceInterface, notifier Notifier) *AdminController {
	return &AdminController{Registrations: regs, Checkin: checkin, Notifier: notifier}
}

// ---------------- registration management ----------------

// ListRegistrations returns registrations, optionally filtered with ?status=.
func (ac *AdminController) ListRegistrations(c *gin.Context) {
	regs, err := ac.Registrations.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, "ListRegistrations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs, "count": len(regs)})
}

// GetRegistration returns a registration with full member records.
func (ac *AdminController) GetRegistration(c *gin.Context) {
	detail, err := ac.Registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetRegistration", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending pending_review confirmed completed"`
}

// UpdateStatus moves a registration forward, e.g. pending -> confirmed after payment.
func (ac *AdminController) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	reg, err := ac.Registrations.AdvanceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, "UpdateStatus", err)
		return
	}

	logger.Info().Str("registration_id", c.Param("id")).Str("status", req.Status).
		Str("by", middleware.CurrentUser(c)).Msg("UpdateStatus: registration status changed")
	c.JSON(http.StatusOK, reg)
	if ac.Notifier != nil {
		ac.Notifier.SlotsChanged()
	}
}

// ---------------- attendance ----------------

// Attendance returns per-action counts for ?date=YYYY-MM-DD, defaulting to today.
func (ac *AdminController) Attendance(c *gin.Context) {
	report, err := ac.Checkin.AttendanceSummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, "Attendance", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
