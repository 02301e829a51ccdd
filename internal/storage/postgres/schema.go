// Package postgres owns the relational schema used in service mode.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS parties (
		nric           TEXT PRIMARY KEY,
		role           TEXT NOT NULL,
		name           TEXT NOT NULL,
		age            INTEGER NOT NULL,
		marital_status TEXT NOT NULL,
		password_hash  TEXT NOT NULL,
		application_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		project_id   TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		neighborhood TEXT NOT NULL,
		units        JSONB NOT NULL,
		prices       JSONB NOT NULL,
		opens_at     TIMESTAMPTZ NOT NULL,
		closes_at    TIMESTAMPTZ NOT NULL,
		manager_id   TEXT NOT NULL,
		officer_slot INTEGER NOT NULL,
		officer_ids  TEXT[] NOT NULL DEFAULT '{}',
		visible      BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		application_id    TEXT PRIMARY KEY,
		applicant_nric    TEXT NOT NULL,
		project_id        TEXT NOT NULL,
		flat_type         TEXT NOT NULL,
		status            TEXT NOT NULL,
		withdrawal_status TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS applications_applicant_idx ON applications (applicant_nric)`,
	`CREATE INDEX IF NOT EXISTS applications_project_idx ON applications (project_id)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		registration_id TEXT PRIMARY KEY,
		officer_nric    TEXT NOT NULL,
		project_id      TEXT NOT NULL,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS registrations_officer_idx ON registrations (officer_nric)`,
	`CREATE TABLE IF NOT EXISTS enquiries (
		enquiry_id     TEXT PRIMARY KEY,
		applicant_nric TEXT NOT NULL,
		project_id     TEXT NOT NULL,
		question       TEXT NOT NULL,
		reply          TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id       BIGSERIAL PRIMARY KEY,
		ts       TIMESTAMPTZ NOT NULL,
		actor    TEXT NOT NULL,
		action   TEXT NOT NULL,
		subject  TEXT NOT NULL,
		decision TEXT NOT NULL DEFAULT '',
		reason   TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate brings the schema up to date. Statements are idempotent so calling
// this on every boot is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}
