package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS authorized_vehicles (
		id              BIGSERIAL PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		owner_name      TEXT NOT NULL,
		contact_info    TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_authorized_vehicles_plate ON authorized_vehicles(plate_number);`,
	`CREATE TABLE IF NOT EXISTS guest_vehicles (
		id              BIGSERIAL PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		owner_name      TEXT NOT NULL,
		reason          TEXT,
		valid_from      TIMESTAMPTZ NOT NULL,
		valid_until     TIMESTAMPTZ NOT NULL,
		added_by        TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_guest_vehicles_plate ON guest_vehicles(plate_number);`,
	`CREATE INDEX IF NOT EXISTS idx_guest_vehicles_window ON guest_vehicles(valid_from, valid_until);`,
	`CREATE TABLE IF NOT EXISTS events (
		id              UUID PRIMARY KEY,
		event_name      TEXT NOT NULL,
		event_date      TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'scheduled',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_events_status_date ON events(status, event_date);`,
	`CREATE TABLE IF NOT EXISTS event_guest_vehicles (
		id              BIGSERIAL PRIMARY KEY,
		event_id        UUID NOT NULL REFERENCES events(id),
		plate_number    TEXT NOT NULL,
		name            TEXT NOT NULL,
		reason          TEXT,
		added_by        TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_event_guest_vehicles_event ON event_guest_vehicles(event_id);`,
	`CREATE INDEX IF NOT EXISTS idx_event_guest_vehicles_plate ON event_guest_vehicles(plate_number);`,
	`CREATE TABLE IF NOT EXISTS pending_approvals (
		id              UUID PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		detected_at     TIMESTAMPTZ NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_pending_approvals_plate ON pending_approvals(plate_number);`,
	`CREATE TABLE IF NOT EXISTS vehicle_logs (
		id              BIGSERIAL PRIMARY KEY,
		plate_number    TEXT NOT NULL,
		status          TEXT NOT NULL,
		security_clear  BOOLEAN NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_logs_plate ON vehicle_logs(plate_number);`,
	`CREATE TABLE IF NOT EXISTS surveillance_alerts (
		id                  UUID PRIMARY KEY,
		type                TEXT NOT NULL,
		label               TEXT,
		confidence          NUMERIC(5,2),
		location            TEXT,
		status              TEXT NOT NULL DEFAULT 'new',
		team_dispatched     BOOLEAN NOT NULL DEFAULT false,
		team_dispatch_time  TIMESTAMPTZ,
		resolution_time     TIMESTAMPTZ,
		details             JSONB,
		timestamp           TIMESTAMPTZ NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_surveillance_alerts_status ON surveillance_alerts(status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
