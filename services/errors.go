// Package services implements the platform operations on top of the document store.
// file: services/errors.go
package services

import "errors"

// Sentinel errors returned (possibly wrapped) by the services. Controllers map
// them to HTTP status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrStatusRegression   = errors.New("status cannot go backwards")
	ErrGroupFull          = errors.New("group is full")
	ErrAlreadyGrouped     = errors.New("attendant is already in a group")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("not allowed")
)
