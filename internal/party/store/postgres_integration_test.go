//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/party"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
	"btoflow/pkg/testutil/containers"
)

func TestPostgresPartyStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	store := NewPostgres(pg.DB)

	reset := func() {
		require.NoError(t, pg.Truncate(ctx, "parties"))
	}

	t.Run("create and find per variant", func(t *testing.T) {
		reset()
		applicant := &party.Applicant{
			Identity: party.Identity{
				ID:            "S1234567A",
				FullName:      "Jo Tan",
				Age:           36,
				MaritalStatus: domain.MaritalStatusSingle,
				PasswordHash:  "hash",
			},
		}
		require.NoError(t, store.CreateApplicant(ctx, applicant))

		got, err := store.FindApplicant(ctx, applicant.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jo Tan", got.FullName)
		assert.Nil(t, got.ApplicationID)

		_, err = store.FindOfficer(ctx, applicant.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("nric unique across variants", func(t *testing.T) {
		reset()
		applicant := &party.Applicant{Identity: party.Identity{ID: "S1234567A", FullName: "Jo Tan"}}
		require.NoError(t, store.CreateApplicant(ctx, applicant))

		officer := &party.Officer{Identity: party.Identity{ID: "S1234567A", FullName: "Imposter"}}
		assert.ErrorIs(t, store.CreateOfficer(ctx, officer), sentinel.ErrConflict)
	})

	t.Run("application link round trip", func(t *testing.T) {
		reset()
		applicant := &party.Applicant{Identity: party.Identity{ID: "S1234567A", FullName: "Jo Tan"}}
		require.NoError(t, store.CreateApplicant(ctx, applicant))

		appID := domain.NewApplicationID()
		require.NoError(t, applicant.LinkApplication(appID))
		require.NoError(t, store.UpdateApplicant(ctx, applicant))

		got, err := store.FindApplicant(ctx, applicant.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ApplicationID)
		assert.Equal(t, appID, *got.ApplicationID)

		got.UnlinkApplication()
		require.NoError(t, store.UpdateApplicant(ctx, got))

		again, err := store.FindApplicant(ctx, applicant.ID)
		require.NoError(t, err)
		assert.Nil(t, again.ApplicationID)
	})

	t.Run("find party resolves role", func(t *testing.T) {
		reset()
		manager := &party.Manager{Identity: party.Identity{ID: "S9876543C", FullName: "Ng Hui"}}
		require.NoError(t, store.CreateManager(ctx, manager))

		p, err := store.FindParty(ctx, "S9876543C")
		require.NoError(t, err)
		assert.Equal(t, party.RoleManager, p.Role())
	})
}
