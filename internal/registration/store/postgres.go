package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"btoflow/internal/registration/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// Postgres persists registrations.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const registrationColumns = "registration_id, officer_nric, project_id, status, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(scanner rowScanner) (*models.Registration, error) {
	var (
		r       models.Registration
		id      string
		officer string
		project string
		status  string
	)
	err := scanner.Scan(&id, &officer, &project, &status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	if r.ID, err = domain.ParseRegistrationID(id); err != nil {
		return nil, err
	}
	r.OfficerNRIC = domain.NRIC(officer)
	r.ProjectID = domain.ProjectID(project)
	if r.Status, err = models.ParseStatus(status); err != nil {
		return nil, err
	}
	return &r, nil
}

// NextID allocates the next registration ID from the stored sequence high
// water mark. Concurrent allocations may collide; Create's unique constraint
// turns that into ErrConflict for the caller to retry.
func (s *Postgres) NextID(ctx context.Context) (domain.RegistrationID, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(registration_id FROM 2) AS INTEGER)), 0) + 1
		FROM registrations
	`).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("next registration id: %w", err)
	}
	return domain.FormatRegistrationID(next), nil
}

func (s *Postgres) Create(ctx context.Context, r *models.Registration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (registration_id, officer_nric, project_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID.String(), r.OfficerNRIC.String(), r.ProjectID.String(), string(r.Status), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.RegistrationID) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE registration_id = $1", id.String())
	return scanRegistration(row)
}

func (s *Postgres) Update(ctx context.Context, r *models.Registration) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE registrations SET status = $2, updated_at = $3 WHERE registration_id = $1
	`, r.ID.String(), string(r.Status), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Registration, error) {
	return s.list(ctx, "SELECT "+registrationColumns+" FROM registrations ORDER BY registration_id")
}

func (s *Postgres) ListByOfficer(ctx context.Context, officer domain.NRIC) ([]*models.Registration, error) {
	return s.list(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE officer_nric = $1 ORDER BY registration_id", officer.String())
}

func (s *Postgres) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Registration, error) {
	return s.list(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE project_id = $1 ORDER BY registration_id", projectID.String())
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
