package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "btoflow/internal/application/models"
	appstore "btoflow/internal/application/store"
	"btoflow/internal/party"
	partystore "btoflow/internal/party/store"
	projmodels "btoflow/internal/project/models"
	projstore "btoflow/internal/project/store"
	"btoflow/pkg/domain"
)

type fixture struct {
	ctx          context.Context
	applications *appstore.InMemory
	parties      *partystore.InMemory
	projects     *projstore.InMemory
	generator    *Generator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:          context.Background(),
		applications: appstore.NewInMemory(),
		parties:      partystore.NewInMemory(),
		projects:     projstore.NewInMemory(),
	}
	f.generator = NewGenerator(f.applications, f.parties, f.projects)
	return f
}

func (f *fixture) addProject(t *testing.T, id domain.ProjectID, name string) {
	t.Helper()
	p, err := projmodels.New(id, name, "Yishun", "S9876543C", 3)
	require.NoError(t, err)
	require.NoError(t, f.projects.Create(f.ctx, p))
}

func (f *fixture) addApplicant(t *testing.T, nric domain.NRIC, name string, age int, marital domain.MaritalStatus) {
	t.Helper()
	a := &party.Applicant{
		Identity: party.Identity{ID: nric, FullName: name, Age: age, MaritalStatus: marital},
	}
	require.NoError(t, f.parties.CreateApplicant(f.ctx, a))
}

func (f *fixture) addApplication(t *testing.T, nric domain.NRIC, projectID domain.ProjectID, ft domain.FlatType, status appmodels.Status, withdrawn bool) {
	t.Helper()
	app := appmodels.New(domain.NewApplicationID(), nric, projectID, ft, time.Now())
	app.Status = status
	if withdrawn {
		app.Withdrawal = appmodels.WithdrawalApproved
	}
	require.NoError(t, f.applications.Create(f.ctx, app))
}

func TestBookingsFilters(t *testing.T) {
	f := newFixture(t)
	f.addProject(t, "ACACIA", "Acacia Breeze")
	f.addProject(t, "BAHAR", "Bahar Green")
	f.addApplicant(t, "S1111111A", "Jo Tan", 36, domain.MaritalStatusSingle)
	f.addApplicant(t, "S2222222B", "Lim Wei", 40, domain.MaritalStatusMarried)
	f.addApplicant(t, "S3333333C", "Ng Hui", 28, domain.MaritalStatusMarried)

	f.addApplication(t, "S1111111A", "ACACIA", domain.FlatTypeTwoRooms, appmodels.StatusBooked, false)
	f.addApplication(t, "S2222222B", "BAHAR", domain.FlatTypeThreeRooms, appmodels.StatusBooked, false)
	// Non-booked applications never appear.
	f.addApplication(t, "S3333333C", "ACACIA", domain.FlatTypeTwoRooms, appmodels.StatusSuccessful, false)

	t.Run("unfiltered, sorted by project then applicant", func(t *testing.T) {
		rows, err := f.generator.Bookings(f.ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, domain.ProjectID("ACACIA"), rows[0].ProjectID)
		assert.Equal(t, "Jo Tan", rows[0].ApplicantName)
		assert.Equal(t, domain.ProjectID("BAHAR"), rows[1].ProjectID)
	})

	t.Run("marital status filter", func(t *testing.T) {
		rows, err := f.generator.Bookings(f.ctx, Filter{MaritalStatus: domain.MaritalStatusMarried})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.NRIC("S2222222B"), rows[0].ApplicantNRIC)
	})

	t.Run("flat type filter", func(t *testing.T) {
		rows, err := f.generator.Bookings(f.ctx, Filter{FlatType: domain.FlatTypeTwoRooms})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.NRIC("S1111111A"), rows[0].ApplicantNRIC)
	})

	t.Run("project filter", func(t *testing.T) {
		rows, err := f.generator.Bookings(f.ctx, Filter{ProjectID: "BAHAR"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Bahar Green", rows[0].ProjectName)
	})

	t.Run("combined filters", func(t *testing.T) {
		rows, err := f.generator.Bookings(f.ctx, Filter{
			MaritalStatus: domain.MaritalStatusSingle,
			ProjectID:     "BAHAR",
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestBookingsMarksWithdrawn(t *testing.T) {
	f := newFixture(t)
	f.addProject(t, "ACACIA", "Acacia Breeze")
	f.addApplicant(t, "S1111111A", "Jo Tan", 36, domain.MaritalStatusSingle)

	// Booked with an approved withdrawal still shows up, flagged.
	f.addApplication(t, "S1111111A", "ACACIA", domain.FlatTypeTwoRooms, appmodels.StatusBooked, true)

	rows, err := f.generator.Bookings(f.ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Withdrawn)
}

func TestBookingsEmpty(t *testing.T) {
	f := newFixture(t)
	rows, err := f.generator.Bookings(f.ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
