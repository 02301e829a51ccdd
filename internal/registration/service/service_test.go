package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"btoflow/internal/party"
	partystore "btoflow/internal/party/store"
	projmodels "btoflow/internal/project/models"
	projstore "btoflow/internal/project/store"
	"btoflow/internal/registration/models"
	regstore "btoflow/internal/registration/store"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

const (
	officerNRIC       = domain.NRIC("T7654321B")
	secondOfficerNRIC = domain.NRIC("T1111111C")
	managerNRIC       = domain.NRIC("S9876543C")
	projectID         = domain.ProjectID("ACACIA")
)

type RegistrationSuite struct {
	suite.Suite
	ctx           context.Context
	registrations *regstore.InMemory
	projects      *projstore.InMemory
	parties       *partystore.InMemory
	service       *Service
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.registrations = regstore.NewInMemory()
	s.projects = projstore.NewInMemory()
	s.parties = partystore.NewInMemory()
	s.service = New(s.registrations, s.projects, s.parties)

	for _, nric := range []domain.NRIC{officerNRIC, secondOfficerNRIC} {
		officer := &party.Officer{
			Identity: party.Identity{
				ID:            nric,
				FullName:      "Officer " + string(nric),
				Age:           30,
				MaritalStatus: domain.MaritalStatusSingle,
			},
		}
		s.Require().NoError(s.parties.CreateOfficer(s.ctx, officer))
	}

	s.createProject(projectID, 1)
}

func (s *RegistrationSuite) createProject(id domain.ProjectID, slots int) {
	project, err := projmodels.New(id, "Acacia Breeze", "Yishun", managerNRIC, slots)
	s.Require().NoError(err)
	s.Require().NoError(s.projects.Create(s.ctx, project))
}

func (s *RegistrationSuite) TestRegisterCreatesPendingWithSequentialIDs() {
	first, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, first.Status)
	s.Equal(domain.RegistrationID("R0001"), first.ID)

	second, err := s.service.Register(s.ctx, secondOfficerNRIC, projectID)
	s.Require().NoError(err)
	s.Equal(domain.RegistrationID("R0002"), second.ID)
}

func (s *RegistrationSuite) TestRegisterRejectsSecondPendingForSamePair() {
	_, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *RegistrationSuite) TestRegisterAllowedAgainAfterRejection() {
	reg, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)
	_, err = s.service.Decide(s.ctx, reg.ID, false)
	s.Require().NoError(err)

	again, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, again.Status)
}

func (s *RegistrationSuite) TestApproveSeatsOfficer() {
	reg, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)

	decided, err := s.service.Decide(s.ctx, reg.ID, true)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, decided.Status)

	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.True(project.HasOfficer(officerNRIC))
}

func (s *RegistrationSuite) TestApproveFailsWhenSlotsFull() {
	first, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)
	second, err := s.service.Register(s.ctx, secondOfficerNRIC, projectID)
	s.Require().NoError(err)

	_, err = s.service.Decide(s.ctx, first.ID, true)
	s.Require().NoError(err)

	// officerSlot is 1, so the second approval must fail and leave the
	// registration PENDING.
	_, err = s.service.Decide(s.ctx, second.ID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))

	stored, err := s.registrations.FindByID(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)

	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.False(project.HasOfficer(secondOfficerNRIC))
	s.Len(project.OfficerIDs, 1)
}

func (s *RegistrationSuite) TestRejectNeverTouchesTeam() {
	reg, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)

	decided, err := s.service.Decide(s.ctx, reg.ID, false)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, decided.Status)

	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.Empty(project.OfficerIDs)
}

func (s *RegistrationSuite) TestDecisionsAreFinal() {
	reg, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)
	_, err = s.service.Decide(s.ctx, reg.ID, true)
	s.Require().NoError(err)

	_, err = s.service.Decide(s.ctx, reg.ID, false)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

func (s *RegistrationSuite) TestRegisterRejectsOwnManager() {
	// An officer who manages the project cannot also join its team.
	managed, err := projmodels.New("BOUGAIN", "Bougainvillea Rise", "Tampines", officerNRIC, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.projects.Create(s.ctx, managed))

	_, err = s.service.Register(s.ctx, officerNRIC, managed.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

func (s *RegistrationSuite) TestRegisterRejectsSeatedOfficer() {
	reg, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)
	_, err = s.service.Decide(s.ctx, reg.ID, true)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

// failingRegStore fails Update so the unseat compensation is observable.
type failingRegStore struct {
	*regstore.InMemory
	failures int
}

func (f *failingRegStore) Update(ctx context.Context, r *models.Registration) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.InMemory.Update(ctx, r)
}

func (s *RegistrationSuite) TestApproveUnseatsOfficerWhenPersistFails() {
	reg, err := s.service.Register(s.ctx, officerNRIC, projectID)
	s.Require().NoError(err)

	flaky := &failingRegStore{InMemory: s.registrations, failures: 1}
	svc := New(flaky, s.projects, s.parties)

	_, err = svc.Decide(s.ctx, reg.ID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorage))

	project, err := s.projects.FindByID(s.ctx, projectID)
	s.Require().NoError(err)
	s.False(project.HasOfficer(officerNRIC))

	// The slot is free again, so a retry succeeds.
	decided, err := svc.Decide(s.ctx, reg.ID, true)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, decided.Status)
}
