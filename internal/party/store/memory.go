package store

import (
	"context"
	"sync"

	"btoflow/internal/party"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// InMemory keeps all parties in process memory. It owns the persisted copies:
// lookups return clones and updates replace the stored clone, so callers never
// share mutable state with the store.
type InMemory struct {
	mu         sync.RWMutex
	applicants map[domain.NRIC]*party.Applicant
	officers   map[domain.NRIC]*party.Officer
	managers   map[domain.NRIC]*party.Manager
}

func NewInMemory() *InMemory {
	return &InMemory{
		applicants: make(map[domain.NRIC]*party.Applicant),
		officers:   make(map[domain.NRIC]*party.Officer),
		managers:   make(map[domain.NRIC]*party.Manager),
	}
}

func cloneApplicant(a *party.Applicant) *party.Applicant {
	clone := *a
	if a.ApplicationID != nil {
		appID := *a.ApplicationID
		clone.ApplicationID = &appID
	}
	return &clone
}

func (s *InMemory) CreateApplicant(_ context.Context, a *party.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(a.ID) {
		return sentinel.ErrConflict
	}
	s.applicants[a.ID] = cloneApplicant(a)
	return nil
}

func (s *InMemory) CreateOfficer(_ context.Context, o *party.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(o.ID) {
		return sentinel.ErrConflict
	}
	clone := *o
	s.officers[o.ID] = &clone
	return nil
}

func (s *InMemory) CreateManager(_ context.Context, m *party.Manager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(m.ID) {
		return sentinel.ErrConflict
	}
	clone := *m
	s.managers[m.ID] = &clone
	return nil
}

func (s *InMemory) exists(nric domain.NRIC) bool {
	_, inApplicants := s.applicants[nric]
	_, inOfficers := s.officers[nric]
	_, inManagers := s.managers[nric]
	return inApplicants || inOfficers || inManagers
}

func (s *InMemory) FindApplicant(_ context.Context, nric domain.NRIC) (*party.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applicants[nric]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplicant(a), nil
}

func (s *InMemory) FindOfficer(_ context.Context, nric domain.NRIC) (*party.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.officers[nric]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (s *InMemory) FindManager(_ context.Context, nric domain.NRIC) (*party.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.managers[nric]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

// FindParty resolves an NRIC to whichever variant holds it.
func (s *InMemory) FindParty(ctx context.Context, nric domain.NRIC) (party.Party, error) {
	if a, err := s.FindApplicant(ctx, nric); err == nil {
		return a, nil
	}
	if o, err := s.FindOfficer(ctx, nric); err == nil {
		return o, nil
	}
	if m, err := s.FindManager(ctx, nric); err == nil {
		return m, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) UpdateApplicant(_ context.Context, a *party.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applicants[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applicants[a.ID] = cloneApplicant(a)
	return nil
}

// UpdateParty persists credential changes for any variant.
func (s *InMemory) UpdateParty(ctx context.Context, p party.Party) error {
	switch v := p.(type) {
	case *party.Applicant:
		return s.UpdateApplicant(ctx, v)
	case *party.Officer:
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.officers[v.ID]; !ok {
			return sentinel.ErrNotFound
		}
		clone := *v
		s.officers[v.ID] = &clone
		return nil
	case *party.Manager:
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.managers[v.ID]; !ok {
			return sentinel.ErrNotFound
		}
		clone := *v
		s.managers[v.ID] = &clone
		return nil
	default:
		return sentinel.ErrInvalidState
	}
}

func (s *InMemory) ListApplicants(_ context.Context) ([]*party.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*party.Applicant, 0, len(s.applicants))
	for _, a := range s.applicants {
		out = append(out, cloneApplicant(a))
	}
	return out, nil
}

func (s *InMemory) ListOfficers(_ context.Context) ([]*party.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*party.Officer, 0, len(s.officers))
	for _, o := range s.officers {
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemory) ListManagers(_ context.Context) ([]*party.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*party.Manager, 0, len(s.managers))
	for _, m := range s.managers {
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}
