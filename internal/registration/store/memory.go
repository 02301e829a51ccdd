// Package store provides registration persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"btoflow/internal/registration/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// InMemory keeps registrations in a map guarded by a mutex. It also issues
// the R-prefixed sequential IDs.
type InMemory struct {
	mu            sync.RWMutex
	registrations map[domain.RegistrationID]*models.Registration
	nextSeq       int
}

// NewInMemory constructs an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{
		registrations: make(map[domain.RegistrationID]*models.Registration),
		nextSeq:       1,
	}
}

// NextID returns the next unused registration ID.
func (s *InMemory) NextID(_ context.Context) (domain.RegistrationID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.FormatRegistrationID(s.nextSeq)
	s.nextSeq++
	return id, nil
}

func (s *InMemory) Create(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.ID]; ok {
		return sentinel.ErrConflict
	}
	s.registrations[r.ID] = r.Clone()
	if seq := r.ID.SequenceNumber(); seq >= s.nextSeq {
		s.nextSeq = seq + 1
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.registrations[r.ID] = r.Clone()
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*models.Registration) bool { return true }), nil
}

func (s *InMemory) ListByOfficer(_ context.Context, officer domain.NRIC) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r *models.Registration) bool { return r.OfficerNRIC == officer }), nil
}

func (s *InMemory) ListByProject(_ context.Context, projectID domain.ProjectID) ([]*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(r *models.Registration) bool { return r.ProjectID == projectID }), nil
}

// collect expects the read lock to be held.
func (s *InMemory) collect(keep func(*models.Registration) bool) []*models.Registration {
	out := make([]*models.Registration, 0)
	for _, r := range s.registrations {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.SequenceNumber() < out[j].ID.SequenceNumber()
	})
	return out
}
