package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"btoflow/internal/application/models"
	"btoflow/internal/storage/csvstore"
	"btoflow/pkg/domain"
)

const applicationsFile = "applications.csv"

var applicationHeader = []string{
	"application_id", "applicant_nric", "project_id", "flat_type",
	"status", "withdrawal_status", "created_at", "updated_at",
}

// CSV is the durable application store for console mode.
type CSV struct {
	*InMemory
	dir string
}

// OpenCSV loads the application table from dir.
func OpenCSV(dir string) (*CSV, error) {
	s := &CSV{InMemory: NewInMemory(), dir: dir}
	rows, err := csvstore.ReadAll(filepath.Join(dir, applicationsFile), len(applicationHeader))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		a, err := decodeApplication(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", applicationsFile, err)
		}
		s.applications[a.ID] = a
	}
	return s, nil
}

func decodeApplication(row []string) (*models.Application, error) {
	id, err := domain.ParseApplicationID(row[0])
	if err != nil {
		return nil, err
	}
	nric, err := domain.ParseNRIC(row[1])
	if err != nil {
		return nil, err
	}
	projectID, err := domain.ParseProjectID(row[2])
	if err != nil {
		return nil, err
	}
	ft, err := domain.ParseFlatType(row[3])
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(row[4])
	if err != nil {
		return nil, err
	}
	withdrawal, err := models.ParseWithdrawalStatus(row[5])
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339, row[6])
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", row[6], err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row[7])
	if err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", row[7], err)
	}
	return &models.Application{
		ID:            id,
		ApplicantNRIC: nric,
		ProjectID:     projectID,
		FlatType:      ft,
		Status:        status,
		Withdrawal:    withdrawal,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func encodeApplication(a *models.Application) []string {
	return []string{
		a.ID.String(),
		a.ApplicantNRIC.String(),
		a.ProjectID.String(),
		a.FlatType.String(),
		string(a.Status),
		string(a.Withdrawal),
		a.CreatedAt.UTC().Format(time.RFC3339),
		a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *CSV) flush() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.applications))
	for _, a := range s.applications {
		rows = append(rows, encodeApplication(a))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, applicationsFile), applicationHeader, rows)
}

func (s *CSV) Create(ctx context.Context, a *models.Application) error {
	if err := s.InMemory.Create(ctx, a); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		delete(s.applications, a.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) Update(ctx context.Context, a *models.Application) error {
	prev, err := s.InMemory.FindByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if err := s.InMemory.Update(ctx, a); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		_ = s.InMemory.Update(ctx, prev)
		return err
	}
	return nil
}
