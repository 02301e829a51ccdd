// Package service implements the enquiry desk: applicants raise questions
// about projects, staff answer them.
package service

import (
	"context"
	"errors"
	"log/slog"

	"btoflow/internal/enquiry/models"
	"btoflow/internal/party"
	"btoflow/internal/platform/metrics"
	projmodels "btoflow/internal/project/models"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/platform/sentinel"
	"btoflow/pkg/requestcontext"
)

// EnquiryStore persists enquiries.
type EnquiryStore interface {
	Create(ctx context.Context, e *models.Enquiry) error
	FindByID(ctx context.Context, id domain.EnquiryID) (*models.Enquiry, error)
	Update(ctx context.Context, e *models.Enquiry) error
	Delete(ctx context.Context, id domain.EnquiryID) error
	ListByApplicant(ctx context.Context, nric domain.NRIC) ([]*models.Enquiry, error)
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Enquiry, error)
}

// ProjectStore resolves the project an enquiry targets.
type ProjectStore interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*projmodels.Project, error)
}

// Service is the enquiry desk.
type Service struct {
	enquiries EnquiryStore
	projects  ProjectStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures optional collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the enquiry desk.
func New(enquiries EnquiryStore, projects ProjectStore, opts ...Option) *Service {
	s := &Service{
		enquiries: enquiries,
		projects:  projects,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit raises a new enquiry against an existing project.
func (s *Service) Submit(ctx context.Context, applicant domain.NRIC, projectID domain.ProjectID, question string) (*models.Enquiry, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load project")
	}

	e, err := models.New(domain.NewEnquiryID(), applicant, projectID, question, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.enquiries.Create(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist enquiry")
	}

	if s.metrics != nil {
		s.metrics.EnquiriesSubmitted.Inc()
	}
	s.logger.InfoContext(ctx, "enquiry submitted",
		"enquiry_id", e.ID.String(),
		"applicant", applicant.String(),
		"project_id", projectID.String(),
	)
	return e, nil
}

// Edit rewrites a pending enquiry's question. Owner only.
func (s *Service) Edit(ctx context.Context, actor domain.NRIC, id domain.EnquiryID, question string) (*models.Enquiry, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.CanEdit(actor); err != nil {
		return nil, err
	}
	if err := e.ApplyEdit(question, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.enquiries.Update(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist enquiry")
	}
	return e, nil
}

// Delete removes a pending enquiry. Owner only.
func (s *Service) Delete(ctx context.Context, actor domain.NRIC, id domain.EnquiryID) error {
	e, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := e.CanDelete(actor); err != nil {
		return err
	}
	if err := s.enquiries.Delete(ctx, e.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to delete enquiry")
	}
	return nil
}

// Reply answers a pending enquiry. Managers may answer any enquiry; officers
// only those against a project whose team they are on.
func (s *Service) Reply(ctx context.Context, actor domain.NRIC, role party.Role, id domain.EnquiryID, reply string) (*models.Enquiry, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch role {
	case party.RoleManager:
	case party.RoleOfficer:
		project, err := s.projects.FindByID(ctx, e.ProjectID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load project")
		}
		if !project.HasOfficer(actor) {
			return nil, dErrors.New(dErrors.CodeForbidden, "officer is not on the project team")
		}
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "only staff may reply to enquiries")
	}

	if err := e.CanReply(); err != nil {
		return nil, err
	}
	if err := e.ApplyReply(reply, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.enquiries.Update(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist reply")
	}

	s.logger.InfoContext(ctx, "enquiry replied",
		"enquiry_id", e.ID.String(), "by", actor.String())
	return e, nil
}

// ListForApplicant returns the applicant's own enquiries.
func (s *Service) ListForApplicant(ctx context.Context, nric domain.NRIC) ([]*models.Enquiry, error) {
	out, err := s.enquiries.ListByApplicant(ctx, nric)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list enquiries")
	}
	return out, nil
}

// ListForProject returns the enquiries raised against a project.
func (s *Service) ListForProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Enquiry, error) {
	out, err := s.enquiries.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list enquiries")
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, id domain.EnquiryID) (*models.Enquiry, error) {
	e, err := s.enquiries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "enquiry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load enquiry")
	}
	return e, nil
}
