package team

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qehclinic/portal-backend/internal/content"
)

type fakeRemover struct {
	deleted []string
	err     error
}

func (f *fakeRemover) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.err
}

func newTeamService() (*Service, *MemoryRepository, *fakeRemover) {
	repo := NewMemoryRepository()
	remover := &fakeRemover{}
	return NewService(repo, remover), repo, remover
}

func TestCreate_AssignsNextRank(t *testing.T) {
	svc, _, _ := newTeamService()
	ctx := context.Background()

	a, err := svc.Create(ctx, &Member{Name: "Dr A", Position: "Consultant"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, &Member{Name: "Nurse B"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, 0, *list[0].Rank)
	assert.Equal(t, b, list[1].ID)
	assert.Equal(t, 1, *list[1].Rank)
}

func TestCreate_SanitisesBio(t *testing.T) {
	svc, _, _ := newTeamService()
	id, err := svc.Create(context.Background(), &Member{Name: "Dr A", Bio: `<p>Surgeon</p><script>x()</script>`})
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Contains(t, list[0].Bio, "<p>Surgeon</p>")
	assert.NotContains(t, list[0].Bio, "script")
}

func TestCreate_RequiresName(t *testing.T) {
	svc, _, _ := newTeamService()
	_, err := svc.Create(context.Background(), &Member{Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestDelete_RemovesPhoto(t *testing.T) {
	svc, repo, remover := newTeamService()
	ctx := context.Background()

	id, err := repo.Create(ctx, &Member{Name: "Dr A", ImagePath: "uploads/dr-a.jpg"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))
	assert.Equal(t, []string{"uploads/dr-a.jpg"}, remover.deleted)

	// Storage failures must not resurrect the record or fail the delete.
	remover.err = errors.New("minio down")
	id, err = repo.Create(ctx, &Member{Name: "Dr B", ImagePath: "uploads/dr-b.jpg"})
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, id))
}

func TestMoveMember(t *testing.T) {
	svc, _, _ := newTeamService()
	ctx := context.Background()

	x, err := svc.Create(ctx, &Member{Name: "X"})
	require.NoError(t, err)
	y, err := svc.Create(ctx, &Member{Name: "Y"})
	require.NoError(t, err)
	z, err := svc.Create(ctx, &Member{Name: "Z"})
	require.NoError(t, err)

	require.NoError(t, svc.MoveMember(ctx, 2, content.MoveUp))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{x, z, y}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 0, *list[0].Rank)
	assert.Equal(t, 1, *list[1].Rank)
	assert.Equal(t, 2, *list[2].Rank)

	assert.NoError(t, svc.MoveMember(ctx, 0, content.MoveUp), "edge move is a no-op")
	assert.NoError(t, svc.MoveMember(ctx, 9, content.MoveDown))
}

func TestReplaceRanks_VersionConflict(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, &Member{Name: "X", Rank: intPtr(0)})
	require.NoError(t, err)

	err = repo.ReplaceRanks(ctx, []Ranked{{ID: id, Rank: 0, Version: 5}})
	assert.ErrorIs(t, err, ErrVersionConflict)
}
