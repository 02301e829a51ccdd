package service

import (
	"context"
	"log/slog"

	appmodels "btoflow/internal/application/models"
	"btoflow/internal/audit"
	"btoflow/internal/platform/metrics"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
	"btoflow/pkg/requestcontext"
)

// RequestWithdrawal flags the applicant's current application for manager
// review. Any non-terminal status may request; the request overwrites a
// previously rejected one.
func (s *Service) RequestWithdrawal(ctx context.Context, nric domain.NRIC) (*appmodels.Application, error) {
	applicant, err := s.applicants.FindApplicant(ctx, nric)
	if err != nil {
		return nil, translateLookup(err, "applicant not found")
	}
	if applicant.ApplicationID == nil {
		return nil, dErrors.New(dErrors.CodeRuleViolation, "no active application to withdraw")
	}
	app, err := s.applications.FindByID(ctx, *applicant.ApplicationID)
	if err != nil {
		return nil, translateLookup(err, "application not found")
	}
	if err := app.CanRequestWithdrawal(); err != nil {
		return nil, err
	}

	app.ApplyWithdrawalRequest(requestcontext.Now(ctx))
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist withdrawal request")
	}

	s.count(func(m *metrics.Metrics) { m.WithdrawalsRequested.Inc() })
	s.emit(ctx, audit.Event{
		Actor:   nric,
		Action:  audit.ActionWithdrawalRequested,
		Subject: app.ID.String(),
	})
	s.log(ctx, slog.LevelInfo, "withdrawal requested",
		"application_id", app.ID.String(), "applicant", nric.String())
	return app, nil
}

// DecideWithdrawal records the manager's verdict on a pending withdrawal
// request. Approval marks the application withdrawn for display and blocks
// any later booking; the underlying status and any booked unit are left as
// they stand.
func (s *Service) DecideWithdrawal(ctx context.Context, id domain.ApplicationID, approve bool) (*appmodels.Application, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "application not found")
	}
	if err := app.CanDecideWithdrawal(); err != nil {
		return nil, err
	}

	app.ApplyWithdrawalDecision(approve, requestcontext.Now(ctx))
	if err := s.applications.Update(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist withdrawal decision")
	}

	if approve {
		s.count(func(m *metrics.Metrics) { m.WithdrawalsApproved.Inc() })
	}
	s.emit(ctx, audit.Event{
		Actor:    requestcontext.Actor(ctx),
		Action:   audit.ActionWithdrawalDecided,
		Subject:  app.ID.String(),
		Decision: string(app.Withdrawal),
	})
	return app, nil
}
