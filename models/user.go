// Package models defines data structures used across the application.
// File: models/user.go
package models

import "time"

// Role distinguishes hackathon organizers from participants.
type Role string

const (
	RoleOrganization Role = "ORGANIZATION"
	RoleClient       Role = "CLIENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOrganization || r == RoleClient
}

// ----------------------- user model -----------------------

// Badge holds the ranking counters of a CLIENT user.
type Badge struct {
	Win           int `json:"win"`
	Participation int `json:"participation"`
}

// Experience is one entry of a user's work history.
type Experience struct {
	Role      string     `json:"role"`
	Company   string     `json:"company"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// User is an account. PasswordHash is persisted but stripped by Public.
type User struct {
	ID           string       `json:"_id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"password,omitempty"`
	Name         string       `json:"name"`
	Surname      string       `json:"surname,omitempty"`
	Email        string       `json:"email"`
	Avatar       string       `json:"avatar,omitempty"`
	Role         Role         `json:"role"`
	Badge        *Badge       `json:"badge,omitempty"`
	Skills       []string     `json:"skills"`
	Experiences  []Experience `json:"experiences"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Public returns a copy of u safe to send to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.Experiences == nil {
		u.Experiences = []Experience{}
	}
	return u
}

// IsOrganization reports whether u organizes hackathons.
func (u User) IsOrganization() bool {
	return u.Role == RoleOrganization
}
