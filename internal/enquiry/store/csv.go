package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"btoflow/internal/enquiry/models"
	"btoflow/internal/storage/csvstore"
	"btoflow/pkg/domain"
)

const enquiriesFile = "enquiries.csv"

var enquiryHeader = []string{
	"enquiry_id", "applicant_nric", "project_id", "question", "reply", "status", "created_at", "updated_at",
}

// CSV is the durable enquiry store for console mode, rewriting the snapshot
// after every mutation and rolling back on flush failure.
type CSV struct {
	*InMemory
	dir string
}

// OpenCSV loads enquiries from dir, creating an empty table on first run.
func OpenCSV(dir string) (*CSV, error) {
	s := &CSV{InMemory: NewInMemory(), dir: dir}
	rows, err := csvstore.ReadAll(filepath.Join(dir, enquiriesFile), len(enquiryHeader))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		e, err := decodeEnquiry(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", enquiriesFile, err)
		}
		s.enquiries[e.ID] = e
	}
	return s, nil
}

func decodeEnquiry(row []string) (*models.Enquiry, error) {
	id, err := domain.ParseEnquiryID(row[0])
	if err != nil {
		return nil, err
	}
	applicant, err := domain.ParseNRIC(row[1])
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(row[5])
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
	return &models.Enquiry{
		ID:            id,
		ApplicantNRIC: applicant,
		ProjectID:     domain.ProjectID(row[2]),
		Question:      row[3],
		Reply:         row[4],
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func encodeEnquiry(e *models.Enquiry) []string {
	return []string{
		e.ID.String(),
		e.ApplicantNRIC.String(),
		e.ProjectID.String(),
		e.Question,
		e.Reply,
		string(e.Status),
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *CSV) flush() error {
	s.mu.RLock()
	rows := make([][]string, 0, len(s.enquiries))
	for _, e := range s.enquiries {
		rows = append(rows, encodeEnquiry(e))
	}
	s.mu.RUnlock()
	return csvstore.WriteAll(filepath.Join(s.dir, enquiriesFile), enquiryHeader, rows)
}

func (s *CSV) Create(ctx context.Context, e *models.Enquiry) error {
	if err := s.InMemory.Create(ctx, e); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		delete(s.enquiries, e.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) Update(ctx context.Context, e *models.Enquiry) error {
	s.mu.Lock()
	prev := s.enquiries[e.ID]
	s.mu.Unlock()
	if err := s.InMemory.Update(ctx, e); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		s.enquiries[e.ID] = prev
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *CSV) Delete(ctx context.Context, id domain.EnquiryID) error {
	s.mu.Lock()
	prev := s.enquiries[id]
	s.mu.Unlock()
	if err := s.InMemory.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.mu.Lock()
		s.enquiries[id] = prev
		s.mu.Unlock()
		return err
	}
	return nil
}
