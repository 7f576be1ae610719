// Package controllers exposes the HTTP API on top of the services.
// file: controllers/errors.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go-hackhub/logger"
	"go-hackhub/services"
)

// statusFor maps a service error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrStatusRegression),
		errors.Is(err, services.ErrGroupFull),
		errors.Is(err, services.ErrAlreadyGrouped),
		errors.Is(err, services.ErrUsernameTaken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON {error} body. Internal failures are logged
// and hidden from the client.
func respondError(c *gin.Context, where string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("[%s] %v", where, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	logger.Debug.Printf("[%s] %d: %v", where, status, err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest answers a malformed request body or query.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
