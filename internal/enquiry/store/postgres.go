package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"btoflow/internal/enquiry/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// Postgres persists enquiries.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed enquiry store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const enquiryColumns = "enquiry_id, applicant_nric, project_id, question, reply, status, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnquiry(scanner rowScanner) (*models.Enquiry, error) {
	var (
		e         models.Enquiry
		id        string
		applicant string
		projectID string
		status    string
	)
	err := scanner.Scan(&id, &applicant, &projectID, &e.Question, &e.Reply, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan enquiry: %w", err)
	}
	if e.ID, err = domain.ParseEnquiryID(id); err != nil {
		return nil, err
	}
	e.ApplicantNRIC = domain.NRIC(applicant)
	e.ProjectID = domain.ProjectID(projectID)
	if e.Status, err = models.ParseStatus(status); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Postgres) Create(ctx context.Context, e *models.Enquiry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enquiries (enquiry_id, applicant_nric, project_id, question, reply, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID.String(), e.ApplicantNRIC.String(), e.ProjectID.String(), e.Question, e.Reply,
		string(e.Status), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert enquiry: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.EnquiryID) (*models.Enquiry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+enquiryColumns+" FROM enquiries WHERE enquiry_id = $1", id.String())
	return scanEnquiry(row)
}

func (s *Postgres) Update(ctx context.Context, e *models.Enquiry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE enquiries
		SET question = $2, reply = $3, status = $4, updated_at = $5
		WHERE enquiry_id = $1
	`, e.ID.String(), e.Question, e.Reply, string(e.Status), e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update enquiry: %w", err)
	}
	return requireOneRow(result)
}

func (s *Postgres) Delete(ctx context.Context, id domain.EnquiryID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM enquiries WHERE enquiry_id = $1", id.String())
	if err != nil {
		return fmt.Errorf("delete enquiry: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Enquiry, error) {
	return s.list(ctx, "SELECT "+enquiryColumns+" FROM enquiries ORDER BY created_at")
}

func (s *Postgres) ListByApplicant(ctx context.Context, nric domain.NRIC) ([]*models.Enquiry, error) {
	return s.list(ctx,
		"SELECT "+enquiryColumns+" FROM enquiries WHERE applicant_nric = $1 ORDER BY created_at", nric.String())
}

func (s *Postgres) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Enquiry, error) {
	return s.list(ctx,
		"SELECT "+enquiryColumns+" FROM enquiries WHERE project_id = $1 ORDER BY created_at", projectID.String())
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Enquiry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	var out []*models.Enquiry
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
