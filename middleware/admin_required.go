// Package middleware description is Middleware that checks if the user is an admin.
// file: middleware/admin_required.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"conference-desk/models"
)

// AdminRequired is a middleware that checks if the user is an admin.
func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin)
}

// StaffRequired admits coordinators and admins, the roles that operate scanners.
func StaffRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleCoordinator, models.RoleAdmin)
}
