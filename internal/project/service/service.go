// Package service implements project administration: managers create listings,
// maintain flat inventory, and gate visibility.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"btoflow/internal/platform/metrics"
	"btoflow/internal/project/models"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/platform/sentinel"
)

// ProjectStore persists projects.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id domain.ProjectID) error
	Execute(ctx context.Context, id domain.ProjectID, validate func(*models.Project) error, mutate func(*models.Project)) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	ListVisible(ctx context.Context) ([]*models.Project, error)
	ListByManager(ctx context.Context, manager domain.NRIC) ([]*models.Project, error)
}

// ApplicationCounter reports how many applications reference a project, used
// to refuse deleting a project with history.
type ApplicationCounter interface {
	CountByProject(ctx context.Context, projectID domain.ProjectID) (int, error)
}

// Service is the project administration surface.
type Service struct {
	projects     ProjectStore
	applications ApplicationCounter
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Option configures optional collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the project administration service.
func New(projects ProjectStore, applications ApplicationCounter, opts ...Option) *Service {
	s := &Service{
		projects:     projects,
		applications: applications,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries the listing details for a new project.
type CreateParams struct {
	ID           domain.ProjectID
	Name         string
	Neighborhood string
	OpensAt      time.Time
	ClosesAt     time.Time
	ManagerID    domain.NRIC
	OfficerSlot  int
	Units        map[domain.FlatType]int
	Prices       map[domain.FlatType]float64
}

// Create registers a new listing under the manager. New projects start
// hidden; the manager toggles visibility when the listing is ready.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Project, error) {
	p, err := models.New(params.ID, params.Name, params.Neighborhood, params.ManagerID, params.OfficerSlot)
	if err != nil {
		return nil, err
	}
	p.OpensAt = params.OpensAt
	p.ClosesAt = params.ClosesAt
	for ft, units := range params.Units {
		if err := p.SetFlatType(ft, units, params.Prices[ft]); err != nil {
			return nil, err
		}
	}
	if err := s.projects.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "project id already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist project")
	}
	s.logger.InfoContext(ctx, "project created",
		"project_id", p.ID.String(), "manager", params.ManagerID.String())
	return p, nil
}

// SetVisibility flips whether applicants may newly apply. Hiding a project
// never touches existing applications.
func (s *Service) SetVisibility(ctx context.Context, actor domain.NRIC, id domain.ProjectID, visible bool) (*models.Project, error) {
	p, err := s.projects.Execute(ctx, id,
		func(p *models.Project) error { return requireManager(p, actor) },
		func(p *models.Project) { p.Visible = visible },
	)
	if err != nil {
		return nil, translateProjectErr(err)
	}
	return p, nil
}

// SetFlatType updates units and price for one flat type on the manager's own
// project.
func (s *Service) SetFlatType(ctx context.Context, actor domain.NRIC, id domain.ProjectID, ft domain.FlatType, units int, price float64) (*models.Project, error) {
	var applyErr error
	p, err := s.projects.Execute(ctx, id,
		func(p *models.Project) error { return requireManager(p, actor) },
		func(p *models.Project) { applyErr = p.SetFlatType(ft, units, price) },
	)
	if err != nil {
		return nil, translateProjectErr(err)
	}
	if applyErr != nil {
		return nil, applyErr
	}
	return p, nil
}

// Delete removes a listing that has no application history. Only the owning
// manager may delete.
func (s *Service) Delete(ctx context.Context, actor domain.NRIC, id domain.ProjectID) error {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return translateProjectErr(err)
	}
	if err := requireManager(p, actor); err != nil {
		return err
	}
	count, err := s.applications.CountByProject(ctx, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to count applications")
	}
	if count > 0 {
		return dErrors.New(dErrors.CodeRuleViolation, "project has applications and cannot be deleted")
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return translateProjectErr(err)
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", id.String())
	return nil
}

// Get resolves one project.
func (s *Service) Get(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, translateProjectErr(err)
	}
	return p, nil
}

// ListOpen returns the projects applicants may browse: visible listings whose
// application window contains now.
func (s *Service) ListOpen(ctx context.Context, now time.Time) ([]*models.Project, error) {
	visible, err := s.projects.ListVisible(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list projects")
	}
	open := visible[:0]
	for _, p := range visible {
		if !now.Before(p.OpensAt) && !now.After(p.ClosesAt) {
			open = append(open, p)
		}
	}
	return open, nil
}

// ListAll returns every listing for staff views.
func (s *Service) ListAll(ctx context.Context) ([]*models.Project, error) {
	out, err := s.projects.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list projects")
	}
	return out, nil
}

// ListMine returns the manager's own listings.
func (s *Service) ListMine(ctx context.Context, manager domain.NRIC) ([]*models.Project, error) {
	out, err := s.projects.ListByManager(ctx, manager)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list projects")
	}
	return out, nil
}

func requireManager(p *models.Project, actor domain.NRIC) error {
	if p.ManagerID != actor {
		return dErrors.New(dErrors.CodeForbidden, "project belongs to another manager")
	}
	return nil
}

func translateProjectErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return dErrors.Wrap(err, dErrors.CodeStorage, "project store failure")
}
