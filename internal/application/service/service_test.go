package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"btoflow/internal/application/eligibility"
	appmodels "btoflow/internal/application/models"
	appstore "btoflow/internal/application/store"
	"btoflow/internal/party"
	partystore "btoflow/internal/party/store"
	projmodels "btoflow/internal/project/models"
	projstore "btoflow/internal/project/store"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

const (
	applicantNRIC = domain.NRIC("S1234567A")
	managerNRIC   = domain.NRIC("S9876543C")
	projectID     = domain.ProjectID("ACACIA")
)

type LifecycleSuite struct {
	suite.Suite
	ctx          context.Context
	applications *appstore.InMemory
	projects     *projstore.InMemory
	parties      *partystore.InMemory
	service      *Service
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.applications = appstore.NewInMemory()
	s.projects = projstore.NewInMemory()
	s.parties = partystore.NewInMemory()
	s.service = New(s.applications, s.projects, s.parties)

	applicant := &party.Applicant{
		Identity: party.Identity{
			ID:            applicantNRIC,
			FullName:      "Jo Tan",
			Age:           36,
			MaritalStatus: domain.MaritalStatusSingle,
		},
	}
	s.Require().NoError(s.parties.CreateApplicant(s.ctx, applicant))

	project, err := projmodels.New(projectID, "Acacia Breeze", "Yishun", managerNRIC, 3)
	s.Require().NoError(err)
	s.Require().NoError(project.SetFlatType(domain.FlatTypeTwoRooms, 1, 150000))
	project.Visible = true
	s.Require().NoError(s.projects.Create(s.ctx, project))
}

func (s *LifecycleSuite) submit() *appmodels.Application {
	app, err := s.service.Submit(s.ctx, applicantNRIC, projectID, domain.FlatTypeTwoRooms)
	s.Require().NoError(err)
	return app
}

func (s *LifecycleSuite) TestSubmitCreatesPendingAndLinksApplicant() {
	app := s.submit()
	s.Equal(appmodels.StatusPending, app.Status)
	s.Equal(appmodels.WithdrawalNone, app.Withdrawal)

	applicant, err := s.parties.FindApplicant(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	s.Require().NotNil(applicant.ApplicationID)
	s.Equal(app.ID, *applicant.ApplicationID)
}

func (s *LifecycleSuite) TestSubmitRejectsIneligible() {
	_, err := s.service.Submit(s.ctx, applicantNRIC, projectID, domain.FlatTypeThreeRooms)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
	s.ErrorIs(err, eligibility.ErrIneligibleFlatType)
}

func (s *LifecycleSuite) TestSubmitRejectsSecondActiveApplication() {
	s.submit()
	_, err := s.service.Submit(s.ctx, applicantNRIC, projectID, domain.FlatTypeTwoRooms)
	s.Require().Error(err)
	s.ErrorIs(err, eligibility.ErrAlreadyApplied)
}

func (s *LifecycleSuite) TestRejectedApplicantCanReapply() {
	app := s.submit()
	_, err := s.service.Decide(s.ctx, app.ID, false)
	s.Require().NoError(err)

	again, err := s.service.Submit(s.ctx, applicantNRIC, projectID, domain.FlatTypeTwoRooms)
	s.Require().NoError(err)
	s.NotEqual(app.ID, again.ID)
}

func (s *LifecycleSuite) TestSubmitRecoversFromDanglingApplicationLink() {
	// An applicant record may carry a link to an application that no longer
	// exists in the store. Submission must relink cleanly instead of failing
	// after the new application was already persisted.
	applicant, err := s.parties.FindApplicant(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	missing := domain.NewApplicationID()
	applicant.ApplicationID = &missing
	s.Require().NoError(s.parties.UpdateApplicant(s.ctx, applicant))

	app := s.submit()

	relinked, err := s.parties.FindApplicant(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	s.Require().NotNil(relinked.ApplicationID)
	s.Equal(app.ID, *relinked.ApplicationID)

	// Exactly one application exists: the new one, no orphan left behind.
	all, err := s.applications.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(app.ID, all[0].ID)
	s.Equal(appmodels.StatusPending, all[0].Status)
}

func (s *LifecycleSuite) TestDecideOnlyOnce() {
	app := s.submit()
	decided, err := s.service.Decide(s.ctx, app.ID, true)
	s.Require().NoError(err)
	s.Equal(appmodels.StatusSuccessful, decided.Status)

	_, err = s.service.Decide(s.ctx, app.ID, false)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

func (s *LifecycleSuite) TestDecideUnknownApplication() {
	_, err := s.service.Decide(s.ctx, domain.NewApplicationID(), true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *LifecycleSuite) TestBookConsumesLastUnitAndRefusesNext() {
	first := s.submit()
	_, err := s.service.Decide(s.ctx, first.ID, true)
	s.Require().NoError(err)

	booked, err := s.service.Book(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(appmodels.StatusBooked, booked.Status)

	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.Equal(0, project.UnitsFor(domain.FlatTypeTwoRooms))

	// A second SUCCESSFUL application for the same flat type cannot book
	// against empty inventory.
	second := appmodels.New(domain.NewApplicationID(), "S7654321B", projectID, domain.FlatTypeTwoRooms, time.Now())
	second.Status = appmodels.StatusSuccessful
	s.Require().NoError(s.applications.Create(s.ctx, second))

	_, err = s.service.Book(s.ctx, second.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))

	project, err = s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.Equal(0, project.UnitsFor(domain.FlatTypeTwoRooms))
}

func (s *LifecycleSuite) TestBookRequiresSuccessful() {
	app := s.submit()
	_, err := s.service.Book(s.ctx, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

func (s *LifecycleSuite) TestWithdrawalApprovedDisplaysWithdrawnOnBooked() {
	app := s.submit()
	_, err := s.service.Decide(s.ctx, app.ID, true)
	s.Require().NoError(err)
	_, err = s.service.Book(s.ctx, app.ID)
	s.Require().NoError(err)

	_, err = s.service.RequestWithdrawal(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	decided, err := s.service.DecideWithdrawal(s.ctx, app.ID, true)
	s.Require().NoError(err)

	// The underlying status stays BOOKED; the display flips to WITHDRAWN and
	// the unit stays consumed.
	s.Equal(appmodels.StatusBooked, decided.Status)
	s.Equal(appmodels.EffectiveStatusWithdrawn, decided.EffectiveStatus())

	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.Equal(0, project.UnitsFor(domain.FlatTypeTwoRooms))
}

func (s *LifecycleSuite) TestWithdrawalApprovedBlocksBooking() {
	app := s.submit()
	_, err := s.service.Decide(s.ctx, app.ID, true)
	s.Require().NoError(err)

	_, err = s.service.RequestWithdrawal(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	_, err = s.service.DecideWithdrawal(s.ctx, app.ID, true)
	s.Require().NoError(err)

	_, err = s.service.Book(s.ctx, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

func (s *LifecycleSuite) TestWithdrawalRejectedAllowsNewRequest() {
	app := s.submit()
	_, err := s.service.RequestWithdrawal(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	_, err = s.service.DecideWithdrawal(s.ctx, app.ID, false)
	s.Require().NoError(err)

	again, err := s.service.RequestWithdrawal(s.ctx, applicantNRIC)
	s.Require().NoError(err)
	s.Equal(appmodels.WithdrawalPending, again.Withdrawal)
}

func (s *LifecycleSuite) TestWithdrawalRequiresActiveApplication() {
	_, err := s.service.RequestWithdrawal(s.ctx, applicantNRIC)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

// failingUpdateStore fails the first application Update so the compensation
// path is observable.
type failingUpdateStore struct {
	*appstore.InMemory
	failures int
}

func (f *failingUpdateStore) Update(ctx context.Context, a *appmodels.Application) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.InMemory.Update(ctx, a)
}

func (s *LifecycleSuite) TestBookReleasesUnitWhenPersistFails() {
	app := s.submit()
	_, err := s.service.Decide(s.ctx, app.ID, true)
	s.Require().NoError(err)

	flaky := &failingUpdateStore{InMemory: s.applications, failures: 1}
	svc := New(flaky, s.projects, s.parties)

	_, err = svc.Book(s.ctx, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorage))

	// The reserved unit is handed back and the application stays bookable.
	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.Equal(1, project.UnitsFor(domain.FlatTypeTwoRooms))

	stored, err := s.applications.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(appmodels.StatusSuccessful, stored.Status)

	booked, err := svc.Book(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(appmodels.StatusBooked, booked.Status)
}
