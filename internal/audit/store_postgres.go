package audit

import (
	"context"
	"database/sql"
	"fmt"

	"btoflow/pkg/domain"
)

// PostgresStore persists audit events for service mode.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (ts, actor, action, subject, decision, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.Timestamp, event.Actor.String(), event.Action, event.Subject, event.Decision, event.Reason)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ts, actor, action, subject, decision, reason FROM audit_events ORDER BY ts")
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var event Event
		var actor string
		if err := rows.Scan(&event.Timestamp, &actor, &event.Action, &event.Subject, &event.Decision, &event.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Actor = domain.NRIC(actor)
		out = append(out, event)
	}
	return out, rows.Err()
}
