// Package middleware provides request filters and security checks for the application.
// File: middleware/auth.go
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go-hackhub/logger"
	"go-hackhub/models"
)

// Session keys written at login.
const (
	SessionUserID   = "userID"
	SessionUsername = "username"
	SessionRole     = "role"
)

// identityKey is the gin context key holding the request Identity.
const identityKey = "hackhub.identity"

// -------------- session lifecycle --------------

// StartSession stores id in the caller's session. Any previous session data is replaced.
func StartSession(c *gin.Context, id models.Identity) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionUserID, id.UserID)
	session.Set(SessionUsername, id.Username)
	session.Set(SessionRole, string(id.Role))
	if err := session.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logger.Debug.Printf("[StartSession] Session started for %s", id.Username)
	return nil
}

// EndSession clears the caller's session and expires its cookie.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// identityFromSession rebuilds the Identity stored by StartSession.
func identityFromSession(c *gin.Context) (models.Identity, bool) {
	session := sessions.Default(c)
	userID, _ := session.Get(SessionUserID).(string)
	username, _ := session.Get(SessionUsername).(string)
	role, _ := session.Get(SessionRole).(string)
	if userID == "" || username == "" || !models.Role(role).Valid() {
		return models.Identity{}, false
	}
	return models.Identity{UserID: userID, Username: username, Role: models.Role(role)}, true
}

// -------------- authentication middleware --------------

// AuthRequired is a middleware that ensures the user is logged in.
// Requests without a session get 401 with a JSON error body; otherwise the
// Identity is placed on the context for CurrentIdentity.
//
//	router.GET("/users/me", middleware.AuthRequired, ...)
func AuthRequired(c *gin.Context) {
	id, ok := identityFromSession(c)
	if !ok {
		logger.Warn.Printf("[AuthRequired] No session for %s %s", c.Request.Method, c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.Set(identityKey, id)
	logger.Debug.Printf("[AuthRequired] %s authenticated - proceeding with request", id.Username)
	c.Next()
}

// CurrentIdentity returns the Identity set by AuthRequired.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
