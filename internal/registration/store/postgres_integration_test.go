//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/registration/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/testutil/containers"
)

func TestPostgresRegistrationStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	store := NewPostgres(pg.DB)

	reset := func() {
		require.NoError(t, pg.Truncate(ctx, "registrations"))
	}

	t.Run("sequence continues from persisted ids", func(t *testing.T) {
		reset()

		first, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationID("R0001"), first)

		reg := models.New(first, "T7654321B", "ACACIA", time.Now().UTC())
		require.NoError(t, store.Create(ctx, reg))

		second, err := store.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationID("R0002"), second)
	})

	t.Run("round trip and scoped lists", func(t *testing.T) {
		reset()
		now := time.Now().UTC()

		reg := models.New("R0001", "T7654321B", "ACACIA", now)
		require.NoError(t, store.Create(ctx, reg))
		other := models.New("R0002", "T1111111C", "BAHAR", now)
		require.NoError(t, store.Create(ctx, other))

		reg.ApplyDecision(true, now)
		require.NoError(t, store.Update(ctx, reg))

		got, err := store.FindByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)

		byProject, err := store.ListByProject(ctx, "ACACIA")
		require.NoError(t, err)
		assert.Len(t, byProject, 1)

		byOfficer, err := store.ListByOfficer(ctx, "T1111111C")
		require.NoError(t, err)
		assert.Len(t, byOfficer, 1)
		assert.Equal(t, domain.RegistrationID("R0002"), byOfficer[0].ID)
	})
}
