// Package migrations applies the database schema in-process at startup.
// Statements are idempotent so repeated application is safe.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS campuses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS owners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accommodations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		building_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		num_bedrooms INTEGER NOT NULL,
		num_beds INTEGER NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		geo_address TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		available_from TIMESTAMPTZ NOT NULL,
		available_to TIMESTAMPTZ NOT NULL,
		monthly_rent DOUBLE PRECISION NOT NULL,
		owner_id TEXT NOT NULL REFERENCES owners(id),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accommodation_photos (
		id TEXT PRIMARY KEY,
		accommodation_id TEXT NOT NULL REFERENCES accommodations(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS specialists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		accommodation_id TEXT NOT NULL REFERENCES accommodations(id),
		member_id TEXT NOT NULL REFERENCES members(id),
		reserved_from TIMESTAMPTZ NOT NULL,
		reserved_to TIMESTAMPTZ NOT NULL,
		contact_name TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		accommodation_id TEXT NOT NULL REFERENCES accommodations(id),
		member_id TEXT NOT NULL REFERENCES members(id),
		reservation_id TEXT NOT NULL UNIQUE REFERENCES reservations(id),
		score INTEGER NOT NULL CHECK (score >= 0 AND score <= 5),
		comment TEXT NOT NULL DEFAULT '',
		moderated BOOLEAN NOT NULL DEFAULT FALSE,
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		moderated_by TEXT REFERENCES specialists(id),
		moderation_note TEXT NOT NULL DEFAULT '',
		moderated_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		specialist_id TEXT NOT NULL REFERENCES specialists(id),
		reservation_id TEXT NOT NULL REFERENCES reservations(id),
		type TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS action_logs (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		actor_type TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		accommodation_id TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Apply runs every schema statement in order against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
