// Package store provides enquiry persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"btoflow/internal/enquiry/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// InMemory keeps enquiries in a map guarded by a mutex.
type InMemory struct {
	mu        sync.RWMutex
	enquiries map[domain.EnquiryID]*models.Enquiry
}

// NewInMemory constructs an empty in-memory enquiry store.
func NewInMemory() *InMemory {
	return &InMemory{enquiries: make(map[domain.EnquiryID]*models.Enquiry)}
}

func (s *InMemory) Create(_ context.Context, e *models.Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enquiries[e.ID]; ok {
		return sentinel.ErrConflict
	}
	s.enquiries[e.ID] = e.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.EnquiryID) (*models.Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enquiries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, e *models.Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enquiries[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.enquiries[e.ID] = e.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.EnquiryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enquiries[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.enquiries, id)
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.Enquiry) bool { return true }), nil
}

func (s *InMemory) ListByApplicant(_ context.Context, nric domain.NRIC) ([]*models.Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *models.Enquiry) bool { return e.ApplicantNRIC == nric }), nil
}

func (s *InMemory) ListByProject(_ context.Context, projectID domain.ProjectID) ([]*models.Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *models.Enquiry) bool { return e.ProjectID == projectID }), nil
}

// collect expects the read lock to be held.
func (s *InMemory) collect(keep func(*models.Enquiry) bool) []*models.Enquiry {
	out := make([]*models.Enquiry, 0)
	for _, e := range s.enquiries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
