// Package store persists users, hackathons and attendants as JSON documents.
// Entities reference each other by id only; joins are explicit functions
// (see join.go) instead of implicit population.
package store

import (
	"context"
	"errors"

	"go-hackhub/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key (username, hackathon+user) is taken.
	ErrDuplicate = errors.New("duplicate document")
)

// UserRepository stores user documents.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	// ModifyUser loads the user, applies fn and stores the result as one
	// atomic step. Nothing is written when fn fails.
	ModifyUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
}

// HackathonRepository stores hackathon documents. The Attendants field of a
// hackathon is never persisted.
type HackathonRepository interface {
	CreateHackathon(ctx context.Context, h *models.Hackathon) error
	GetHackathon(ctx context.Context, id string) (*models.Hackathon, error)
	UpdateHackathon(ctx context.Context, h *models.Hackathon) error
	ListHackathons(ctx context.Context, f models.HackathonFilter) ([]models.Hackathon, error)
}

// AttendantRepository stores attendant documents with their embedded invites.
type AttendantRepository interface {
	CreateAttendant(ctx context.Context, a *models.Attendant) error
	GetAttendant(ctx context.Context, id string) (*models.Attendant, error)
	FindAttendant(ctx context.Context, hackathonID, userID string) (*models.Attendant, error)
	FindAttendantByInvite(ctx context.Context, inviteID string) (*models.Attendant, error)
	UpdateAttendant(ctx context.Context, a *models.Attendant) error
	// UpdateAttendants stores every attendant or none of them.
	UpdateAttendants(ctx context.Context, attendants ...*models.Attendant) error
	DeleteAttendant(ctx context.Context, id string) error
	ListAttendantsByHackathon(ctx context.Context, hackathonID string) ([]models.Attendant, error)
	ListAttendantsByUser(ctx context.Context, userID string) ([]models.Attendant, error)
}

// Store is the full document store.
type Store interface {
	UserRepository
	HackathonRepository
	AttendantRepository
	Close() error
}
