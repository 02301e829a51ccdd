package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/application/models"
	"btoflow/pkg/domain"
)

func TestCSVReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenCSV(dir)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	app := models.New(domain.NewApplicationID(), "S1234567A", "ACACIA", domain.FlatTypeTwoRooms, now)
	require.NoError(t, store.Create(ctx, app))

	app.ApplyDecision(true, now)
	app.ApplyWithdrawalRequest(now)
	require.NoError(t, store.Update(ctx, app))

	// A fresh open must see the decided, withdrawal-pending state.
	reloaded, err := OpenCSV(dir)
	require.NoError(t, err)

	got, err := reloaded.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccessful, got.Status)
	assert.Equal(t, models.WithdrawalPending, got.Withdrawal)
	assert.Equal(t, app.ApplicantNRIC, got.ApplicantNRIC)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestCSVOpenMissingFileStartsEmpty(t *testing.T) {
	store, err := OpenCSV(t.TempDir())
	require.NoError(t, err)

	apps, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apps)
}
