//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/project/models"
	"btoflow/pkg/domain"
	"btoflow/pkg/platform/sentinel"
	"btoflow/pkg/testutil/containers"
)

func TestPostgresProjectStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	store := NewPostgres(pg.DB)

	create := func(t *testing.T, id domain.ProjectID, units int) *models.Project {
		t.Helper()
		require.NoError(t, pg.Truncate(ctx, "projects"))
		p, err := models.New(id, "Acacia Breeze", "Yishun", "S9876543C", 2)
		require.NoError(t, err)
		require.NoError(t, p.SetFlatType(domain.FlatTypeTwoRooms, units, 150000))
		p.OpensAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		p.ClosesAt = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		p.Visible = true
		require.NoError(t, store.Create(ctx, p))
		return p
	}

	t.Run("round trip", func(t *testing.T) {
		p := create(t, "ACACIA", 4)

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.UnitsFor(domain.FlatTypeTwoRooms))
		assert.Equal(t, 150000.0, got.Prices[domain.FlatTypeTwoRooms])
		assert.True(t, got.Visible)
		assert.True(t, got.OpensAt.Equal(p.OpensAt))
	})

	t.Run("execute serializes unit reservations", func(t *testing.T) {
		p := create(t, "ACACIA", 1)

		// Two workers race for the last unit through the row-locked critical
		// section; exactly one wins.
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = store.Execute(ctx, p.ID,
					func(p *models.Project) error { return p.CanReserveUnit(domain.FlatTypeTwoRooms) },
					func(p *models.Project) { p.ApplyReserveUnit(domain.FlatTypeTwoRooms) },
				)
			}(i)
		}
		wg.Wait()

		var wins, losses int
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				losses++
				assert.ErrorIs(t, err, sentinel.ErrNoUnits)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, losses)

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.UnitsFor(domain.FlatTypeTwoRooms))
	})

	t.Run("execute rolls back on validation failure", func(t *testing.T) {
		p := create(t, "ACACIA", 0)

		_, err := store.Execute(ctx, p.ID,
			func(p *models.Project) error { return p.CanReserveUnit(domain.FlatTypeTwoRooms) },
			func(p *models.Project) { p.ApplyReserveUnit(domain.FlatTypeTwoRooms) },
		)
		assert.ErrorIs(t, err, sentinel.ErrNoUnits)
	})

	t.Run("officer array round trip", func(t *testing.T) {
		p := create(t, "ACACIA", 1)

		_, err := store.Execute(ctx, p.ID,
			func(p *models.Project) error { return p.CanAddOfficer("T7654321B") },
			func(p *models.Project) { p.ApplyAddOfficer("T7654321B") },
		)
		require.NoError(t, err)

		got, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.HasOfficer("T7654321B"))
		assert.Equal(t, 1, got.RemainingSlots())
	})

	t.Run("delete", func(t *testing.T) {
		p := create(t, "ACACIA", 1)
		require.NoError(t, store.Delete(ctx, p.ID))
		_, err := store.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
