package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_kind AS ENUM ('meeting', 'presentation', 'networking', 'break'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN CREATE TYPE registration_status AS ENUM ('Registered', 'Attended', 'No-Show'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS attendees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		organization TEXT NOT NULL DEFAULT '',
		is_vendor BOOLEAN NOT NULL DEFAULT FALSE,
		photo_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS event_attendees (
		event_id TEXT NOT NULL,
		attendee_id TEXT NOT NULL REFERENCES attendees(id) ON DELETE CASCADE,
		check_in_time TIMESTAMPTZ,
		PRIMARY KEY (event_id, attendee_id)
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		name TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		kind session_kind NOT NULL DEFAULT 'presentation',
		location_id TEXT,
		capacity_per_location JSONB,
		requires_pre_assignment BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_event ON sessions (event_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		attendee_id TEXT NOT NULL,
		expected_location_id TEXT,
		status registration_status NOT NULL DEFAULT 'Registered',
		scan_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, attendee_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_attendee ON registrations (attendee_id)`,
	`CREATE TABLE IF NOT EXISTS scans (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id TEXT NOT NULL,
		attendee_id TEXT NOT NULL,
		attendee_name TEXT NOT NULL,
		location_id TEXT,
		location_name TEXT NOT NULL DEFAULT '',
		session_id TEXT,
		scanned_at TIMESTAMPTZ NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT '',
		scan_type TEXT NOT NULL,
		scan_status TEXT NOT NULL,
		expected_location_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_attendee_location ON scans (attendee_id, location_id, scanned_at)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_attendee_session ON scans (attendee_id, session_id, scanned_at)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
