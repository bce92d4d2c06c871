package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qehclinic/portal-backend/internal/content"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "Visiting hours"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, content.CollPatientTabs, id)
	require.NoError(t, err)
	assert.Equal(t, "Visiting hours", got.Title)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.Date.IsZero(), "date defaults to creation time")

	_, err = repo.Get(ctx, content.CollPatientTabs, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_UpdatePreservesDate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id, err := repo.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "MDT notes", Date: date})
	require.NoError(t, err)

	err = repo.Update(ctx, content.CollClinicUpdates, id, content.Update{Title: "MDT notes (revised)", Body: "<p>x</p>"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, content.CollClinicUpdates, id)
	require.NoError(t, err)
	assert.Equal(t, "MDT notes (revised)", got.Title)
	assert.True(t, got.Date.Equal(date), "edits must not move the record to another date bucket")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	err = repo.Update(ctx, content.CollClinicUpdates, "missing", content.Update{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, content.CollSupportResources, &content.Record{Title: "Helpline"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, content.CollSupportResources, id))
	_, err = repo.Get(ctx, content.CollSupportResources, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, content.CollSupportResources, id), ErrNotFound)
}

func TestMemoryRepository_ListBySortKey_MissingKeysLast(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Legacy record without a sort key, then two ordered records.
	legacy, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "legacy"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "second", SortKey: content.IntPtr(1)})
	require.NoError(t, err)
	first, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "first", SortKey: content.IntPtr(0)})
	require.NoError(t, err)

	list, err := repo.List(ctx, content.CollPatientTabs, BySortKey)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, legacy, list[2].ID)
}

func TestMemoryRepository_ListByDateDesc(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	old := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "older", Date: old})
	require.NoError(t, err)
	_, err = repo.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "newer", Date: recent})
	require.NoError(t, err)

	list, err := repo.List(ctx, content.CollClinicUpdates, ByDateDesc)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
	assert.Equal(t, "older", list[1].Title)
}

func TestMemoryRepository_ReplaceOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "a", SortKey: content.IntPtr(0)})
	require.NoError(t, err)
	b, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "b", SortKey: content.IntPtr(1)})
	require.NoError(t, err)

	err = repo.ReplaceOrder(ctx, content.CollPatientTabs, []content.OrderedID{
		{ID: b, SortKey: 0, Version: 0},
		{ID: a, SortKey: 1, Version: 0},
	})
	require.NoError(t, err)

	list, err := repo.List(ctx, content.CollPatientTabs, BySortKey)
	require.NoError(t, err)
	assert.Equal(t, b, list[0].ID)
	assert.Equal(t, a, list[1].ID)
	assert.Equal(t, 1, list[0].Version, "successful reorder bumps the version")
}

func TestMemoryRepository_ReplaceOrder_VersionConflict(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "a", SortKey: content.IntPtr(0)})
	require.NoError(t, err)

	// A stale version must reject the whole batch.
	err = repo.ReplaceOrder(ctx, content.CollPatientTabs, []content.OrderedID{{ID: a, SortKey: 0, Version: 7}})
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := repo.Get(ctx, content.CollPatientTabs, a)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Version)
}

func TestMemoryRepository_ListIsolatedFromCallerMutation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "a", SortKey: content.IntPtr(0)})
	require.NoError(t, err)

	list, err := repo.List(ctx, content.CollPatientTabs, BySortKey)
	require.NoError(t, err)
	list[0].Title = "mutated"
	list[0].SortKey = content.IntPtr(99)

	got, err := repo.Get(ctx, content.CollPatientTabs, id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, 0, *got.SortKey)
}
