package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"btoflow/internal/application/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// Postgres persists applications.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const applicationColumns = "application_id, applicant_nric, project_id, flat_type, status, withdrawal_status, created_at, updated_at"

func scanApplication(scanner rowScanner) (*models.Application, error) {
	var (
		a          models.Application
		id         string
		nric       string
		projectID  string
		flatType   string
		status     string
		withdrawal string
	)
	err := scanner.Scan(&id, &nric, &projectID, &flatType, &status, &withdrawal, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if a.ID, err = domain.ParseApplicationID(id); err != nil {
		return nil, err
	}
	a.ApplicantNRIC = domain.NRIC(nric)
	a.ProjectID = domain.ProjectID(projectID)
	if a.FlatType, err = domain.ParseFlatType(flatType); err != nil {
		return nil, err
	}
	if a.Status, err = models.ParseStatus(status); err != nil {
		return nil, err
	}
	if a.Withdrawal, err = models.ParseWithdrawalStatus(withdrawal); err != nil {
		return nil, err
	}
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) Create(ctx context.Context, a *models.Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (application_id, applicant_nric, project_id, flat_type, status, withdrawal_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID.String(), a.ApplicantNRIC.String(), a.ProjectID.String(), a.FlatType.String(),
		string(a.Status), string(a.Withdrawal), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE application_id = $1", id.String())
	return scanApplication(row)
}

// FindActiveByApplicant returns the applicant's non-terminal application.
func (s *Postgres) FindActiveByApplicant(ctx context.Context, nric domain.NRIC) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE applicant_nric = $1 AND status <> $2
		ORDER BY created_at DESC
		LIMIT 1
	`, nric.String(), string(models.StatusUnsuccessful))
	return scanApplication(row)
}

func (s *Postgres) Update(ctx context.Context, a *models.Application) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, withdrawal_status = $3, updated_at = $4
		WHERE application_id = $1
	`, a.ID.String(), string(a.Status), string(a.Withdrawal), a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
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

func (s *Postgres) List(ctx context.Context) ([]*models.Application, error) {
	return s.list(ctx, "SELECT "+applicationColumns+" FROM applications ORDER BY created_at")
}

func (s *Postgres) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Application, error) {
	return s.list(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE project_id = $1 ORDER BY created_at", projectID.String())
}

func (s *Postgres) CountByProject(ctx context.Context, projectID domain.ProjectID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM applications WHERE project_id = $1", projectID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
