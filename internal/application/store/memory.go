package store

import (
	"context"
	"sort"
	"sync"

	"btoflow/internal/application/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// InMemory keeps applications in process memory. Applications are append-only
// plus status updates; nothing is ever deleted.
type InMemory struct {
	mu           sync.RWMutex
	applications map[domain.ApplicationID]*models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{applications: make(map[domain.ApplicationID]*models.Application)}
}

func (s *InMemory) Create(_ context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[a.ID]; ok {
		return sentinel.ErrConflict
	}
	s.applications[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

// FindActiveByApplicant returns the applicant's non-terminal application.
// At most one can exist; a missing one returns ErrNotFound.
func (s *InMemory) FindActiveByApplicant(_ context.Context, nric domain.NRIC) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if a.ApplicantNRIC == nric && a.Active() {
			return a.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applications[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0, len(s.applications))
	for _, a := range s.applications {
		out = append(out, a.Clone())
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemory) ListByProject(_ context.Context, projectID domain.ProjectID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, a := range s.applications {
		if a.ProjectID == projectID {
			out = append(out, a.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

// CountByProject reports how many applications reference the project,
// regardless of status. Projects with any application cannot be deleted.
func (s *InMemory) CountByProject(_ context.Context, projectID domain.ProjectID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.applications {
		if a.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func sortByCreation(apps []*models.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID.String() < apps[j].ID.String()
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}
