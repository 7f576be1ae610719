package store

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables needed by SQLStore.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is restricted to types both SQLite and Postgres accept.
func (s *SQLStore) CreateSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    body TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS hackathons (
    id TEXT PRIMARY KEY,
    organization TEXT NOT NULL,
    status TEXT NOT NULL,
    city_key TEXT NOT NULL,
    country_key TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    body TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_hackathons_organization ON hackathons(organization)`,
	`CREATE INDEX IF NOT EXISTS idx_hackathons_location ON hackathons(country_key, city_key)`,
	`CREATE TABLE IF NOT EXISTS attendants (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    hackathon_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    body TEXT NOT NULL,
    UNIQUE (hackathon_id, user_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_attendants_user ON attendants(user_id)`,
	`CREATE TABLE IF NOT EXISTS attendant_invites (
    invite_id TEXT PRIMARY KEY,
    attendant_id TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_attendant_invites_attendant ON attendant_invites(attendant_id)`,
}
