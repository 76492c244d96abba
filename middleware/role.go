// Package middleware file: middleware/role.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-desk/logger"
	"conference-desk/models"
)

// RoleRequired lets the request through only for the listed roles. It must
// run after AuthRequired.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := CurrentRole(c)
		if !allowed[role] {
			logger.Warn().Str("user", CurrentUser(c)).Str("role", string(role)).
				Str("path", c.Request.URL.Path).Msg("RoleRequired: access blocked")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}
