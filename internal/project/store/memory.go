package store

import (
	"context"
	"sort"
	"sync"

	"btoflow/internal/project/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
)

// InMemory keeps projects in process memory. Execute runs validate-then-mutate
// under the store lock so capacity and inventory checks cannot race the
// mutation they guard; the postgres store gives the same guarantee with
// SELECT ... FOR UPDATE.
type InMemory struct {
	mu       sync.RWMutex
	projects map[domain.ProjectID]*models.Project
}

func NewInMemory() *InMemory {
	return &InMemory{projects: make(map[domain.ProjectID]*models.Project)}
}

func (s *InMemory) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.projects[p.ID] = p.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.projects[p.ID] = p.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

// Execute atomically validates and mutates one project, persisting the result
// before releasing the lock. The returned project is a clone of the committed
// state. If validate fails the project is left untouched.
func (s *InMemory) Execute(
	_ context.Context,
	id domain.ProjectID,
	validate func(*models.Project) error,
	mutate func(*models.Project),
) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if validate != nil {
		if err := validate(p); err != nil {
			return nil, err
		}
	}
	mutate(p)
	return p.Clone(), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListVisible returns only projects open to new applications.
func (s *InMemory) ListVisible(ctx context.Context) ([]*models.Project, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := all[:0]
	for _, p := range all {
		if p.Visible {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// ListByManager returns projects owned by the manager.
func (s *InMemory) ListByManager(ctx context.Context, managerID domain.NRIC) ([]*models.Project, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := all[:0]
	for _, p := range all {
		if p.ManagerID == managerID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}
