package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	appmodels "btoflow/internal/application/models"
	appstore "btoflow/internal/application/store"
	"btoflow/internal/project/models"
	projstore "btoflow/internal/project/store"
	"btoflow/pkg/domain"
	dErrors "btoflow/pkg/domain-errors"
)

const (
	managerNRIC = domain.NRIC("S9876543C")
	otherNRIC   = domain.NRIC("S1111111D")
	projectID   = domain.ProjectID("ACACIA")
)

type ProjectSuite struct {
	suite.Suite
	ctx          context.Context
	projects     *projstore.InMemory
	applications *appstore.InMemory
	service      *Service
}

func TestProjectSuite(t *testing.T) {
	suite.Run(t, new(ProjectSuite))
}

func (s *ProjectSuite) SetupTest() {
	s.ctx = context.Background()
	s.projects = projstore.NewInMemory()
	s.applications = appstore.NewInMemory()
	s.service = New(s.projects, s.applications)
}

func (s *ProjectSuite) create() *models.Project {
	p, err := s.service.Create(s.ctx, CreateParams{
		ID:           projectID,
		Name:         "Acacia Breeze",
		Neighborhood: "Yishun",
		OpensAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ClosesAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		ManagerID:    managerNRIC,
		OfficerSlot:  3,
		Units:        map[domain.FlatType]int{domain.FlatTypeTwoRooms: 4},
		Prices:       map[domain.FlatType]float64{domain.FlatTypeTwoRooms: 150000},
	})
	s.Require().NoError(err)
	return p
}

func (s *ProjectSuite) TestCreateStartsHidden() {
	p := s.create()
	s.False(p.Visible)
	s.Equal(4, p.UnitsFor(domain.FlatTypeTwoRooms))

	_, err := s.service.Create(s.ctx, CreateParams{
		ID: projectID, Name: "Dup", Neighborhood: "Yishun",
		ManagerID: managerNRIC, OfficerSlot: 1,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ProjectSuite) TestVisibilityOwnerOnly() {
	s.create()

	_, err := s.service.SetVisibility(s.ctx, otherNRIC, projectID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	p, err := s.service.SetVisibility(s.ctx, managerNRIC, projectID, true)
	s.Require().NoError(err)
	s.True(p.Visible)
}

func (s *ProjectSuite) TestSetFlatTypeValidatesUnits() {
	s.create()

	p, err := s.service.SetFlatType(s.ctx, managerNRIC, projectID, domain.FlatTypeThreeRooms, 2, 280000)
	s.Require().NoError(err)
	s.Equal(2, p.UnitsFor(domain.FlatTypeThreeRooms))

	_, err = s.service.SetFlatType(s.ctx, managerNRIC, projectID, domain.FlatTypeTwoRooms, -1, 150000)
	s.Require().Error(err)
}

func (s *ProjectSuite) TestDeleteRefusedWithApplicationHistory() {
	s.create()

	app := newApplication(projectID)
	s.Require().NoError(s.applications.Create(s.ctx, app))

	err := s.service.Delete(s.ctx, managerNRIC, projectID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRuleViolation))
}

func (s *ProjectSuite) TestDeleteOwnerOnly() {
	s.create()

	err := s.service.Delete(s.ctx, otherNRIC, projectID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Require().NoError(s.service.Delete(s.ctx, managerNRIC, projectID))
	_, err = s.service.Get(s.ctx, projectID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ProjectSuite) TestListOpenHonorsWindowAndVisibility() {
	s.create()
	_, err := s.service.SetVisibility(s.ctx, managerNRIC, projectID, true)
	s.Require().NoError(err)

	inWindow := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	open, err := s.service.ListOpen(s.ctx, inWindow)
	s.Require().NoError(err)
	s.Len(open, 1)

	afterClose := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	open, err = s.service.ListOpen(s.ctx, afterClose)
	s.Require().NoError(err)
	s.Empty(open)

	_, err = s.service.SetVisibility(s.ctx, managerNRIC, projectID, false)
	s.Require().NoError(err)
	open, err = s.service.ListOpen(s.ctx, inWindow)
	s.Require().NoError(err)
	s.Empty(open)
}

func newApplication(projectID domain.ProjectID) *appmodels.Application {
	return appmodels.New(domain.NewApplicationID(), "S1234567A", projectID, domain.FlatTypeTwoRooms, time.Now())
}

func (s *ProjectSuite) TestListMine() {
	s.create()

	mine, err := s.service.ListMine(s.ctx, managerNRIC)
	s.Require().NoError(err)
	s.Len(mine, 1)

	none, err := s.service.ListMine(s.ctx, otherNRIC)
	s.Require().NoError(err)
	s.Empty(none)
}
