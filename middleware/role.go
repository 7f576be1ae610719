// Package middleware file: middleware/role.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-hackhub/logger"
	"go-hackhub/models"
)

// RoleRequired authenticates the request like AuthRequired and then lets only
// users of the given role through.
func RoleRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFromSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if id.Role != role {
			logger.Warn.Printf("[RoleRequired] %s (%s) blocked from %s route %s", id.Username, id.Role, role, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "only " + string(role) + " users may do this"})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// OrganizationRequired restricts a route to ORGANIZATION users.
func OrganizationRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleOrganization)
}

// ClientRequired restricts a route to CLIENT users.
func ClientRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleClient)
}
