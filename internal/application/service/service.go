// Package service implements the application lifecycle engine: the only code
// path that creates applications, decides them, and books units against
// project inventory.
package service

import (
	"context"
	"errors"
	"log/slog"

	appmodels "btoflow/internal/application/models"
	"btoflow/internal/application/eligibility"
	"btoflow/internal/audit"
	"btoflow/internal/party"
	"btoflow/internal/platform/metrics"
	projmodels "btoflow/internal/project/models"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/platform/sentinel"
	"btoflow/pkg/requestcontext"
)

// ApplicationStore is the slice of the record store the engine mutates.
type ApplicationStore interface {
	Create(ctx context.Context, a *appmodels.Application) error
	FindByID(ctx context.Context, id domain.ApplicationID) (*appmodels.Application, error)
	FindActiveByApplicant(ctx context.Context, nric domain.NRIC) (*appmodels.Application, error)
	Update(ctx context.Context, a *appmodels.Application) error
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*appmodels.Application, error)
}

// ProjectStore resolves projects and runs inventory mutations in a critical
// section (mutex in memory, row lock in postgres).
type ProjectStore interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*projmodels.Project, error)
	Execute(ctx context.Context, id domain.ProjectID, validate func(*projmodels.Project) error, mutate func(*projmodels.Project)) (*projmodels.Project, error)
}

// ApplicantStore resolves applicants and persists their application link.
type ApplicantStore interface {
	FindApplicant(ctx context.Context, nric domain.NRIC) (*party.Applicant, error)
	UpdateApplicant(ctx context.Context, a *party.Applicant) error
}

// AuditPublisher records lifecycle decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the application lifecycle engine.
type Service struct {
	applications ApplicationStore
	projects     ProjectStore
	applicants   ApplicantStore
	logger       *slog.Logger
	metrics      *metrics.Metrics
	audit        AuditPublisher
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

// New constructs the lifecycle engine.
func New(applications ApplicationStore, projects ProjectStore, applicants ApplicantStore, opts ...Option) *Service {
	s := &Service{
		applications: applications,
		projects:     projects,
		applicants:   applicants,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs the eligibility checker and, on success, creates the PENDING
// application and links it to the applicant. This is the only path that
// creates an Application.
func (s *Service) Submit(ctx context.Context, nric domain.NRIC, projectID domain.ProjectID, ft domain.FlatType) (*appmodels.Application, error) {
	applicant, err := s.applicants.FindApplicant(ctx, nric)
	if err != nil {
		return nil, translateLookup(err, "applicant not found")
	}

	// Resolve the current application from the store, not the applicant's
	// link, so a stale or dangling reference can never block a submission.
	current, err := s.applications.FindActiveByApplicant(ctx, nric)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load current application")
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load project")
	}

	// A missing project falls through as nil and fails rule 1.
	if err := eligibility.CanApply(applicant, current, project, ft); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRuleViolation, err.Error())
	}

	now := requestcontext.Now(ctx)
	app := appmodels.New(domain.NewApplicationID(), nric, projectID, ft, now)
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist application")
	}

	// The store lookup found no active application, so any link still held is
	// stale (terminal or pointing at a purged record). Release it before
	// linking the new one.
	if applicant.ApplicationID != nil {
		applicant.UnlinkApplication()
	}
	if err := applicant.LinkApplication(app.ID); err != nil {
		return nil, err
	}
	if err := s.applicants.UpdateApplicant(ctx, applicant); err != nil {
		// Treat the submission as not committed: retire the orphaned
		// application so it can never count as active.
		app.ApplyDecision(false, now)
		if rbErr := s.applications.Update(ctx, app); rbErr != nil {
			s.log(ctx, slog.LevelError, "failed to retire orphaned application",
				"application_id", app.ID.String(), "error", rbErr.Error())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist applicant")
	}

	s.count(func(m *metrics.Metrics) { m.ApplicationsSubmitted.Inc() })
	s.emit(ctx, audit.Event{
		Actor:   nric,
		Action:  audit.ActionApplicationSubmitted,
		Subject: app.ID.String(),
	})
	s.log(ctx, slog.LevelInfo, "application submitted",
		"application_id", app.ID.String(),
		"applicant", nric.String(),
		"project_id", projectID.String(),
		"flat_type", ft.String(),
	)
	return app, nil
}

// Decide records the manager's verdict on a PENDING application.
func (s *Service) Decide(ctx context.Context, id domain.ApplicationID, approve bool) (*appmodels.Application, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "application not found")
	}
	if err := app.CanDecide(); err != nil {
		return nil, err
	}

	app.ApplyDecision(approve, requestcontext.Now(ctx))
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist decision")
	}

	if approve {
		s.count(func(m *metrics.Metrics) { m.ApplicationsApproved.Inc() })
	} else {
		s.count(func(m *metrics.Metrics) { m.ApplicationsRejected.Inc() })
	}
	s.emit(ctx, audit.Event{
		Actor:    requestcontext.Actor(ctx),
		Action:   audit.ActionApplicationDecided,
		Subject:  app.ID.String(),
		Decision: string(app.Status),
	})
	return app, nil
}

// Book reserves one unit for a SUCCESSFUL application. The inventory
// decrement runs inside the project store's critical section and is the only
// place inventory ever decreases; at zero units the booking fails outright.
// The application update and the inventory decrement commit together: a
// failed application persist releases the reserved unit.
func (s *Service) Book(ctx context.Context, id domain.ApplicationID) (*appmodels.Application, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "application not found")
	}
	if err := app.CanBook(); err != nil {
		return nil, err
	}

	ft := app.FlatType
	if _, err := s.projects.Execute(ctx, app.ProjectID,
		func(p *projmodels.Project) error { return p.CanReserveUnit(ft) },
		func(p *projmodels.Project) { p.ApplyReserveUnit(ft) },
	); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNoUnits):
			return nil, dErrors.New(dErrors.CodeRuleViolation, "no units available for flat type")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to reserve unit")
		}
	}

	app.ApplyBooking(requestcontext.Now(ctx))
	if err := s.applications.Update(ctx, app); err != nil {
		if _, rbErr := s.projects.Execute(ctx, app.ProjectID, nil,
			func(p *projmodels.Project) { p.ApplyReleaseUnit(ft) },
		); rbErr != nil {
			s.log(ctx, slog.LevelError, "failed to release unit after aborted booking",
				"application_id", app.ID.String(), "error", rbErr.Error())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist booking")
	}

	s.count(func(m *metrics.Metrics) { m.ApplicationsBooked.Inc() })
	s.emit(ctx, audit.Event{
		Actor:    requestcontext.Actor(ctx),
		Action:   audit.ActionApplicationBooked,
		Subject:  app.ID.String(),
		Decision: string(appmodels.StatusBooked),
	})
	s.log(ctx, slog.LevelInfo, "unit booked",
		"application_id", app.ID.String(),
		"project_id", app.ProjectID.String(),
		"flat_type", ft.String(),
	)
	return app, nil
}

// CurrentFor resolves the applicant's linked application for display.
func (s *Service) CurrentFor(ctx context.Context, nric domain.NRIC) (*appmodels.Application, error) {
	applicant, err := s.applicants.FindApplicant(ctx, nric)
	if err != nil {
		return nil, translateLookup(err, "applicant not found")
	}
	if applicant.ApplicationID == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no application on record")
	}
	app, err := s.applications.FindByID(ctx, *applicant.ApplicationID)
	if err != nil {
		return nil, translateLookup(err, "application not found")
	}
	return app, nil
}

// ListForProject returns every application referencing the project, oldest
// first, for manager and officer views.
func (s *Service) ListForProject(ctx context.Context, projectID domain.ProjectID) ([]*appmodels.Application, error) {
	apps, err := s.applications.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list applications")
	}
	return apps, nil
}

func translateLookup(err error, message string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, message)
	}
	return dErrors.Wrap(err, dErrors.CodeStorage, "record store failure")
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
