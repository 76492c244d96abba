// Package middleware provides request filters and security checks for the application.
// File: middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/models"
)

// Session and context keys shared with the auth controller.
const (
	SessionUserKey = "user"
	SessionRoleKey = "role"

	ContextUserKey = "staff_user"
	ContextRoleKey = "staff_role"
)

// -------------- authentication middleware --------------

// AuthRequired is a middleware that ensures a staff member is logged in.
// On success the username and role are copied into the gin context.
//
//	api.Use(AuthRequired)
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	user, _ := session.Get(SessionUserKey).(string)
	role, _ := session.Get(SessionRoleKey).(string)

	// block request if user session is missing
	if user == "" {
		logger.Warn().Str("path", c.Request.URL.Path).Msg("AuthRequired: no user in session")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	c.Set(ContextUserKey, user)
	c.Set(ContextRoleKey, models.Role(role))
	logger.Debug().Str("user", user).Str("role", role).Msg("[AuthRequired] User authenticated - proceeding with request")
	c.Next()
}

// CurrentUser returns the username AuthRequired stored, or "".
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}

// CurrentRole returns the role AuthRequired stored, or "".
func CurrentRole(c *gin.Context) models.Role {
	role, _ := c.Get(ContextRoleKey)
	r, _ := role.(models.Role)
	return r
}
