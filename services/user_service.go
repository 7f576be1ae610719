// file: services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go-hackhub/logger"
	"go-hackhub/models"
	"go-hackhub/store"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username string
	Password string
	Name     string
	Surname  string
	Email    string
	Avatar   string
	Role     models.Role
	Skills   []string
}

// ProfileUpdate carries profile edits; nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string
	Surname     *string
	Email       *string
	Avatar      *string
	Skills      *[]string
	Experiences *[]models.Experience
}

// UserService manages accounts and profiles.
type UserService struct {
	Store store.UserRepository
	// Cost is the bcrypt cost; tests lower it.
	Cost int
}

// NewUserService creates a UserService using bcrypt.DefaultCost.
func NewUserService(s store.UserRepository) *UserService {
	return &UserService{Store: s, Cost: bcrypt.DefaultCost}
}

// HashPassword hashes password with a random salt.
func (s *UserService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// checkPasswordHash verifies if the provided plain-text password matches the stored hashed password.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Signup creates a new account. CLIENT accounts start with an empty badge.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case in.Username == "" || strings.ContainsAny(in.Username, " \t\n/"):
		return nil, fmt.Errorf("%w: username must be non-empty and contain no spaces or slashes", ErrInvalidInput)
	case len(in.Password) < 6:
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	hashed, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hashed,
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		Avatar:       in.Avatar,
		Role:         in.Role,
		Skills:       normalizeSkills(in.Skills),
		Experiences:  []models.Experience{},
		CreatedAt:    time.Now().UTC(),
	}
	if u.Role == models.RoleClient {
		u.Badge = &models.Badge{}
	}

	if err := s.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, u.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logger.Info.Printf("[UserService.Signup] Created %s user %s", u.Role, u.Username)
	return u, nil
}

// Authenticate returns the user when password matches. Unknown usernames and
// wrong passwords yield the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn.Printf("[UserService.Authenticate] Unknown user %s", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !checkPasswordHash(password, u.PasswordHash) {
		logger.Warn.Printf("[UserService.Authenticate] Wrong password for user %s", username)
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Exists reports whether a user with exactly this username exists.
func (s *UserService) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.Store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("load user: %w", err)
	}
}

// GetByUsername loads a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, wrapNotFound(err, "user %s", username)
	}
	return u, nil
}

// GetByID loads a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Store.GetUser(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "user %s", id)
	}
	return u, nil
}

// UpdateProfile applies upd to the user with id userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	if upd.Experiences != nil {
		for _, exp := range *upd.Experiences {
			if exp.EndDate != nil && exp.EndDate.Before(exp.StartDate) {
				return nil, fmt.Errorf("%w: experience at %s ends before it starts", ErrInvalidInput, exp.Company)
			}
		}
	}

	// applied atomically so a concurrent badge update is not overwritten
	u, err := s.Store.ModifyUser(ctx, userID, func(u *models.User) error {
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Surname != nil {
			u.Surname = *upd.Surname
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		if upd.Skills != nil {
			u.Skills = normalizeSkills(*upd.Skills)
		}
		if upd.Experiences != nil {
			u.Experiences = *upd.Experiences
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, wrapNotFound(err, "user %s", userID)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	logger.Info.Printf("[UserService.UpdateProfile] Updated profile of %s", u.Username)
	return u, nil
}

// Ranking lists CLIENT users by wins, then participations, then username.
func (s *UserService) Ranking(ctx context.Context) ([]models.User, error) {
	users, err := s.Store.ListUsers(ctx, models.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	badge := func(u models.User) models.Badge {
		if u.Badge == nil {
			return models.Badge{}
		}
		return *u.Badge
	}
	sort.SliceStable(users, func(i, j int) bool {
		bi, bj := badge(users[i]), badge(users[j])
		if bi.Win != bj.Win {
			return bi.Win > bj.Win
		}
		if bi.Participation != bj.Participation {
			return bi.Participation > bj.Participation
		}
		return users[i].Username < users[j].Username
	})
	return users, nil
}

// normalizeSkills trims, drops empties and de-duplicates case-insensitively.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		sk = strings.TrimSpace(sk)
		key := strings.ToLower(sk)
		if sk == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sk)
	}
	return out
}

// wrapNotFound turns store.ErrNotFound into ErrNotFound with context.
func wrapNotFound(err error, format string, args ...interface{}) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
