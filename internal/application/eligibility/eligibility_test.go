package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "btoflow/internal/application/models"
	"btoflow/internal/party"
	projmodels "btoflow/internal/project/models"
	"btoflow/pkg/domain"
)

func newApplicant(t *testing.T, marital domain.MaritalStatus) *party.Applicant {
	t.Helper()
	return &party.Applicant{
		Identity: party.Identity{
			ID:            domain.NRIC("S1234567A"),
			FullName:      "Jo Tan",
			Age:           36,
			MaritalStatus: marital,
		},
	}
}

func newProject(t *testing.T, twoRooms, threeRooms int) *projmodels.Project {
	t.Helper()
	p, err := projmodels.New("ACACIA", "Acacia Breeze", "Yishun", "S9876543C", 3)
	require.NoError(t, err)
	require.NoError(t, p.SetFlatType(domain.FlatTypeTwoRooms, twoRooms, 150000))
	require.NoError(t, p.SetFlatType(domain.FlatTypeThreeRooms, threeRooms, 280000))
	p.Visible = true
	return p
}

func activeApplication(applicant domain.NRIC, status appmodels.Status) *appmodels.Application {
	app := appmodels.New(domain.NewApplicationID(), applicant, "ACACIA", domain.FlatTypeTwoRooms, time.Now())
	app.Status = status
	return app
}

func TestCanApply(t *testing.T) {
	tests := []struct {
		name     string
		marital  domain.MaritalStatus
		current  *appmodels.Application
		project  func(t *testing.T) *projmodels.Project
		flatType domain.FlatType
		wantErr  error
	}{
		{
			name:    "single applicant rejected for three rooms",
			marital: domain.MaritalStatusSingle,
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 2)
			},
			flatType: domain.FlatTypeThreeRooms,
			wantErr:  ErrIneligibleFlatType,
		},
		{
			name:    "single applicant allowed two rooms",
			marital: domain.MaritalStatusSingle,
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 2)
			},
			flatType: domain.FlatTypeTwoRooms,
		},
		{
			name:    "married applicant allowed three rooms",
			marital: domain.MaritalStatusMarried,
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 2)
			},
			flatType: domain.FlatTypeThreeRooms,
		},
		{
			name:    "zero units rejected",
			marital: domain.MaritalStatusSingle,
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 0, 2)
			},
			flatType: domain.FlatTypeTwoRooms,
			wantErr:  ErrNoUnitsAvailable,
		},
		{
			name:    "missing project rejected",
			marital: domain.MaritalStatusSingle,
			project: func(t *testing.T) *projmodels.Project {
				return nil
			},
			flatType: domain.FlatTypeTwoRooms,
			wantErr:  ErrProjectUnavailable,
		},
		{
			name:    "hidden project rejected",
			marital: domain.MaritalStatusSingle,
			project: func(t *testing.T) *projmodels.Project {
				p := newProject(t, 1, 2)
				p.Visible = false
				return p
			},
			flatType: domain.FlatTypeTwoRooms,
			wantErr:  ErrProjectUnavailable,
		},
		{
			name:    "pending application blocks reapplication",
			marital: domain.MaritalStatusSingle,
			current: activeApplication("S1234567A", appmodels.StatusPending),
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 2)
			},
			flatType: domain.FlatTypeTwoRooms,
			wantErr:  ErrAlreadyApplied,
		},
		{
			name:    "booked application blocks reapplication",
			marital: domain.MaritalStatusSingle,
			current: activeApplication("S1234567A", appmodels.StatusBooked),
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 2)
			},
			flatType: domain.FlatTypeTwoRooms,
			wantErr:  ErrAlreadyApplied,
		},
		{
			name:    "unsuccessful application does not block reapplication",
			marital: domain.MaritalStatusSingle,
			current: activeApplication("S1234567A", appmodels.StatusUnsuccessful),
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 2)
			},
			flatType: domain.FlatTypeTwoRooms,
		},
		{
			name:    "visibility checked before duplicate application",
			marital: domain.MaritalStatusSingle,
			current: activeApplication("S1234567A", appmodels.StatusPending),
			project: func(t *testing.T) *projmodels.Project {
				p := newProject(t, 1, 2)
				p.Visible = false
				return p
			},
			flatType: domain.FlatTypeTwoRooms,
			wantErr:  ErrProjectUnavailable,
		},
		{
			name:    "marital rule checked before inventory",
			marital: domain.MaritalStatusSingle,
			project: func(t *testing.T) *projmodels.Project {
				return newProject(t, 1, 0)
			},
			flatType: domain.FlatTypeThreeRooms,
			wantErr:  ErrIneligibleFlatType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicant := newApplicant(t, tt.marital)
			err := CanApply(applicant, tt.current, tt.project(t), tt.flatType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
