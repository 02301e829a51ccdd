package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"btoflow/internal/registration/models"
	"btoflow/internal/storage/csvstore"
	"btoflow/pkg/domain"
)

const registrationsFile = "registrations.csv"

var registrationHeader = []string{
	"registration_id", "officer_nric", "project_id", "status", "created_at", "updated_at",
}

// CSV is the durable registration store for console mode, rewriting the
// snapshot after every mutation and rolling back on flush failure.
type CSV struct {
	*InMemory
	dir string
}

// OpenCSV loads registrations from dir, creating an empty table on first run.
func OpenCSV(dir string) (*CSV, error) {
	s := &CSV{InMemory: NewInMemory(), dir: dir}
	rows, err := csvstore.ReadAll(filepath.Join(dir, registrationsFile), len(registrationHeader))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		r, err := decodeRegistration(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", registrationsFile, err)
		}
		s.registrations[r.ID] = r
		if seq := r.ID.SequenceNumber(); seq >= s.nextSeq {
			s.nextSeq = seq + 1
		}
	}
	return s, nil
}

func decodeRegistration(row []string) (*models.Registration, error) {
	id, err := domain.ParseRegistrationID(row[0])
	if err != nil {
		return nil, err
	}
	officer, err := domain.ParseNRIC(row[1])
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(row[3])
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339, row[4])
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", row[4], err)
	}
	updatedAt, err := time.Parse(time.RFC3339, row[5])
	if err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", row[5], err)
	}
	return &models.Registration{
		ID:          id,
		OfficerNRIC: officer,
		ProjectID:   domain.ProjectID(row[2]),
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func encodeRegistration(r *models.Registration) []string {
	return []string{
		r.ID.String(),
		r.OfficerNRIC.String(),
		r.ProjectID.String(),
		string(r.Status),
		r.CreatedAt.Format(time.RFC3339),
		r.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *CSV) flush() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.registrations))
	for _, r := range s.registrations {
		rows = append(rows, encodeRegistration(r))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, registrationsFile), registrationHeader, rows)
}

func (s *CSV) Create(ctx context.Context, r *models.Registration) error {
	if err := s.InMemory.Create(ctx, r); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		delete(s.registrations, r.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) Update(ctx context.Context, r *models.Registration) error {
	s.mu.Lock()
	prev := s.registrations[r.ID]
	s.mu.Unlock()
	if err := s.InMemory.Update(ctx, r); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		s.registrations[r.ID] = prev
		s.mu.Unlock()
		return err
	}
	return nil
}
