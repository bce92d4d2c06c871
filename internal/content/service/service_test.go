package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qehclinic/portal-backend/internal/content"
	"github.com/qehclinic/portal-backend/internal/content/repository"
)

type fakeRemover struct {
	deleted []string
	err     error
}

func (f *fakeRemover) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.err
}

func newService() (*Service, *repository.MemoryRepository, *fakeRemover) {
	repo := repository.NewMemoryRepository()
	remover := &fakeRemover{}
	return NewService(repo, remover), repo, remover
}

func TestCreate_AppendsToManualOrder(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{Title: "First visit"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{Title: "Ward map"})
	require.NoError(t, err)

	list, err := svc.List(ctx, content.CollPatientTabs)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, 0, *list[0].SortKey)
	assert.Equal(t, b, list[1].ID)
	assert.Equal(t, 1, *list[1].SortKey)
}

func TestCreate_SanitisesBody(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	id, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{
		Title: "Diet advice",
		Body:  `<p>Eat well</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, content.CollPatientTabs, id)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "<p>Eat well</p>")
	assert.NotContains(t, got.Body, "script")
}

func TestCreate_RequiresTitle(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Create(context.Background(), content.CollPatientTabs, &content.Record{Title: "   "})
	assert.ErrorIs(t, err, content.ErrTitleRequired)
}

func TestCreate_ClinicUpdateCategory(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "x", Category: "Gossip"})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	// Referred only survives in Social Welfare.
	id, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "Scan slots", Category: "Scan", Referred: true})
	require.NoError(t, err)
	got, err := svc.Get(ctx, content.CollClinicUpdates, id)
	require.NoError(t, err)
	assert.False(t, got.Referred)

	id, err = svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "Housing case", Category: content.CategorySocialWelfare, Referred: true})
	require.NoError(t, err)
	got, err = svc.Get(ctx, content.CollClinicUpdates, id)
	require.NoError(t, err)
	assert.True(t, got.Referred)
}

func TestUpdate_ClearsReferredOutsideSocialWelfare(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	id, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "Case", Category: content.CategorySocialWelfare, Referred: true})
	require.NoError(t, err)

	err = svc.Update(ctx, content.CollClinicUpdates, id, content.Update{Title: "Case", Category: "MDT"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, content.CollClinicUpdates, id)
	require.NoError(t, err)
	assert.Equal(t, "MDT", got.Category)
	assert.False(t, got.Referred)
}

func TestUpdate_Validation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	id, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "x", Category: "MDT"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Update(ctx, content.CollClinicUpdates, id, content.Update{Title: "", Category: "MDT"}), content.ErrTitleRequired)
	assert.ErrorIs(t, svc.Update(ctx, content.CollClinicUpdates, id, content.Update{Title: "x", Category: "Nope"}), ErrUnknownCategory)
}

func TestGrouped(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	d1 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "old scan", Category: "Scan", Date: d1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "new scan", Category: "Scan", Date: d2})
	require.NoError(t, err)

	grouped, err := svc.Grouped(ctx)
	require.NoError(t, err)
	scan := grouped["Scan"]
	require.Len(t, scan, 2)
	assert.Equal(t, "2024-05-20", scan[0].DateKey)
	assert.Equal(t, "new scan", scan[0].Items[0].Title)
	assert.Equal(t, "2024-05-02", scan[1].DateKey)
}

func TestUpdate_ReferredFlipLeavesOthersAlone(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "Housing assistance", Category: content.CategorySocialWelfare})
	require.NoError(t, err)
	b, err := svc.Create(ctx, content.CollClinicUpdates, &content.Record{Title: "Transport grant", Category: content.CategorySocialWelfare})
	require.NoError(t, err)

	referred := true
	require.NoError(t, svc.Update(ctx, content.CollClinicUpdates, a, content.Update{
		Title:    "Housing assistance",
		Category: content.CategorySocialWelfare,
		Referred: &referred,
	}))

	ra, err := svc.Get(ctx, content.CollClinicUpdates, a)
	require.NoError(t, err)
	assert.True(t, ra.Referred, "edited record should read back as referred")

	rb, err := svc.Get(ctx, content.CollClinicUpdates, b)
	require.NoError(t, err)
	assert.False(t, rb.Referred, "other record must keep its own referred value")
}

func TestDelete_RemovesStoredImage(t *testing.T) {
	svc, repo, remover := newService()
	ctx := context.Background()

	id, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "x", ImagePath: "uploads/x.png"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, content.CollPatientTabs, id))
	assert.Equal(t, []string{"uploads/x.png"}, remover.deleted)
	_, err = svc.Get(ctx, content.CollPatientTabs, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type fakeReverseRemover struct {
	fakeRemover
}

func (f *fakeReverseRemover) KeyFromURL(raw string) (string, error) {
	return "uploads/from-url.png", nil
}

func TestDelete_FallsBackToImageURL(t *testing.T) {
	repo := repository.NewMemoryRepository()
	remover := &fakeReverseRemover{}
	svc := NewService(repo, remover)
	ctx := context.Background()

	id, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "x", ImageURL: "https://cdn.example/uploads/from-url.png"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, content.CollPatientTabs, id))
	assert.Equal(t, []string{"uploads/from-url.png"}, remover.deleted)
}

func TestDelete_ImageFailureIsNotFatal(t *testing.T) {
	svc, repo, remover := newService()
	remover.err = errors.New("minio down")
	ctx := context.Background()

	id, err := repo.Create(ctx, content.CollPatientTabs, &content.Record{Title: "x", ImagePath: "uploads/x.png"})
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, content.CollPatientTabs, id))
}

func TestMoveItem(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	x, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{Title: "X"})
	require.NoError(t, err)
	y, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{Title: "Y"})
	require.NoError(t, err)
	z, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{Title: "Z"})
	require.NoError(t, err)

	require.NoError(t, svc.MoveItem(ctx, content.CollPatientTabs, 1, content.MoveUp))

	list, err := svc.List(ctx, content.CollPatientTabs)
	require.NoError(t, err)
	assert.Equal(t, []string{y, x, z}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 0, *list[0].SortKey)
	assert.Equal(t, 1, *list[1].SortKey)
	assert.Equal(t, 2, *list[2].SortKey)
}

func TestMoveItem_OutOfRangeIsNoop(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, content.CollPatientTabs, &content.Record{Title: "only"})
	require.NoError(t, err)

	assert.NoError(t, svc.MoveItem(ctx, content.CollPatientTabs, 0, content.MoveUp))
	assert.NoError(t, svc.MoveItem(ctx, content.CollPatientTabs, 5, content.MoveDown))
}

func TestMoveItem_ClinicUpdatesNotSortable(t *testing.T) {
	svc, _, _ := newService()
	err := svc.MoveItem(context.Background(), content.CollClinicUpdates, 0, content.MoveUp)
	assert.ErrorIs(t, err, ErrNotSortable)
}
