package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btoflow/internal/project/models"
	"btoflow/pkg/domain"
)

func TestCSVReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenCSV(dir)
	require.NoError(t, err)

	project, err := models.New("ACACIA", "Acacia Breeze", "Yishun", "S9876543C", 3)
	require.NoError(t, err)
	require.NoError(t, project.SetFlatType(domain.FlatTypeTwoRooms, 4, 150000))
	require.NoError(t, project.SetFlatType(domain.FlatTypeThreeRooms, 2, 280000))
	project.OpensAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	project.ClosesAt = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	project.Visible = true
	require.NoError(t, store.Create(ctx, project))

	// Mutate through the critical section, then reopen from disk.
	_, err = store.Execute(ctx, project.ID,
		func(p *models.Project) error { return p.CanAddOfficer("T7654321B") },
		func(p *models.Project) { p.ApplyAddOfficer("T7654321B") },
	)
	require.NoError(t, err)

	reloaded, err := OpenCSV(dir)
	require.NoError(t, err)

	got, err := reloaded.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acacia Breeze", got.Name)
	assert.Equal(t, 4, got.UnitsFor(domain.FlatTypeTwoRooms))
	assert.Equal(t, 280000.0, got.Prices[domain.FlatTypeThreeRooms])
	assert.True(t, got.OpensAt.Equal(project.OpensAt))
	assert.True(t, got.Visible)
	assert.True(t, got.HasOfficer("T7654321B"))
}

func TestCSVDeletePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenCSV(dir)
	require.NoError(t, err)

	project, err := models.New("BAHAR", "Bahar Green", "Jurong", "S9876543C", 2)
	require.NoError(t, err)
	project.OpensAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	project.ClosesAt = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, project))
	require.NoError(t, store.Delete(ctx, project.ID))

	reloaded, err := OpenCSV(dir)
	require.NoError(t, err)
	projects, err := reloaded.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
