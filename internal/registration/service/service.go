// Package service implements the officer registration gate: the approval
// workflow that controls membership of a project's officer team.
package service

import (
	"context"
	"errors"
	"log/slog"

	"btoflow/internal/audit"
	"btoflow/internal/party"
	"btoflow/internal/platform/metrics"
	projmodels "btoflow/internal/project/models"
	"btoflow/internal/registration/models"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/platform/sentinel"
	"btoflow/pkg/requestcontext"
)

// RegistrationStore persists registrations and issues their sequential IDs.
type RegistrationStore interface {
	NextID(ctx context.Context) (domain.RegistrationID, error)
	Create(ctx context.Context, r *models.Registration) error
	FindByID(ctx context.Context, id domain.RegistrationID) (*models.Registration, error)
	Update(ctx context.Context, r *models.Registration) error
	List(ctx context.Context) ([]*models.Registration, error)
	ListByOfficer(ctx context.Context, officer domain.NRIC) ([]*models.Registration, error)
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Registration, error)
}

// ProjectStore resolves projects and runs the officer-team mutation in a
// critical section so the slot capacity holds under concurrent approvals.
type ProjectStore interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*projmodels.Project, error)
	Execute(ctx context.Context, id domain.ProjectID, validate func(*projmodels.Project) error, mutate func(*projmodels.Project)) (*projmodels.Project, error)
}

// OfficerStore resolves officers.
type OfficerStore interface {
	FindOfficer(ctx context.Context, nric domain.NRIC) (*party.Officer, error)
}

// AuditPublisher records registration decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the registration gate.
type Service struct {
	registrations RegistrationStore
	projects      ProjectStore
	officers      OfficerStore
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         AuditPublisher
}

// Option configures optional collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New constructs the registration gate.
func New(registrations RegistrationStore, projects ProjectStore, officers OfficerStore, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		projects:      projects,
		officers:      officers,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register files a PENDING registration for the officer. At most one PENDING
// registration may exist per officer and project, and an officer already on
// the team cannot file another.
func (s *Service) Register(ctx context.Context, officerNRIC domain.NRIC, projectID domain.ProjectID) (*models.Registration, error) {
	if _, err := s.officers.FindOfficer(ctx, officerNRIC); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "officer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load officer")
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load project")
	}
	if project.ManagerID == officerNRIC {
		return nil, dErrors.New(dErrors.CodeRuleViolation, "the project manager cannot register as its officer")
	}
	if project.HasOfficer(officerNRIC) {
		return nil, dErrors.New(dErrors.CodeRuleViolation, "officer is already on the project team")
	}

	existing, err := s.registrations.ListByOfficer(ctx, officerNRIC)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list registrations")
	}
	for _, r := range existing {
		if r.ProjectID == projectID && r.Pending() {
			return nil, dErrors.New(dErrors.CodeConflict, "a registration for this project is already pending")
		}
	}

	id, err := s.registrations.NextID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to allocate registration id")
	}
	reg := models.New(id, officerNRIC, projectID, requestcontext.Now(ctx))
	if err := s.registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "registration id already taken, retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist registration")
	}

	s.count(func(m *metrics.Metrics) { m.RegistrationsCreated.Inc() })
	s.emit(ctx, audit.Event{
		Actor:   officerNRIC,
		Action:  audit.ActionRegistrationCreated,
		Subject: reg.ID.String(),
	})
	s.log(ctx, slog.LevelInfo, "registration filed",
		"registration_id", reg.ID.String(),
		"officer", officerNRIC.String(),
		"project_id", projectID.String(),
	)
	return reg, nil
}

// Decide records the manager's verdict on a PENDING registration. Approval
// seats the officer inside the project store's critical section, so the team
// can never outgrow the slot capacity under concurrent approvals; a failed
// registration persist unseats the officer again. Rejection touches the
// registration only.
func (s *Service) Decide(ctx context.Context, id domain.RegistrationID, approve bool) (*models.Registration, error) {
	reg, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load registration")
	}
	if err := reg.CanDecide(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if approve {
		officer := reg.OfficerNRIC
		if _, err := s.projects.Execute(ctx, reg.ProjectID,
			func(p *projmodels.Project) error { return p.CanAddOfficer(officer) },
			func(p *projmodels.Project) { p.ApplyAddOfficer(officer) },
		); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrSlotFull):
				return nil, dErrors.New(dErrors.CodeRuleViolation, "project officer slots are full")
			case errors.Is(err, sentinel.ErrConflict):
				return nil, dErrors.New(dErrors.CodeConflict, "officer is already on the project team")
			case errors.Is(err, sentinel.ErrNotFound):
				return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
			default:
				return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to seat officer")
			}
		}
	}

	reg.ApplyDecision(approve, now)
	if err := s.registrations.Update(ctx, reg); err != nil {
		if approve {
			officer := reg.OfficerNRIC
			if _, rbErr := s.projects.Execute(ctx, reg.ProjectID, nil,
				func(p *projmodels.Project) { p.ApplyRemoveOfficer(officer) },
			); rbErr != nil {
				s.log(ctx, slog.LevelError, "failed to unseat officer after aborted approval",
					"registration_id", reg.ID.String(), "error", rbErr.Error())
			}
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist registration decision")
	}

	if approve {
		s.count(func(m *metrics.Metrics) { m.RegistrationsApproved.Inc() })
	}
	s.emit(ctx, audit.Event{
		Actor:    requestcontext.Actor(ctx),
		Action:   audit.ActionRegistrationDecided,
		Subject:  reg.ID.String(),
		Decision: string(reg.Status),
	})
	s.log(ctx, slog.LevelInfo, "registration decided",
		"registration_id", reg.ID.String(),
		"status", string(reg.Status),
	)
	return reg, nil
}

// ListForProject returns every registration filed against the project.
func (s *Service) ListForProject(ctx context.Context, projectID domain.ProjectID) ([]*models.Registration, error) {
	regs, err := s.registrations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list registrations")
	}
	return regs, nil
}

// ListForOfficer returns the officer's own registrations, oldest first.
func (s *Service) ListForOfficer(ctx context.Context, officer domain.NRIC) ([]*models.Registration, error) {
	regs, err := s.registrations.ListByOfficer(ctx, officer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list registrations")
	}
	return regs, nil
}

func (s *Service) count(inc func(*metrics.Metrics)) {
	if s.metrics != nil {
		inc(s.metrics)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.log(ctx, slog.LevelWarn, "audit emit failed", "action", event.Action, "error", err.Error())
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.Log(ctx, level, msg, args...)
}
