package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/testdb"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

func setup(t *testing.T) (UserService, *ent.Repositories, identity.Service) {
	t.Helper()
	repos := ent.NewRepositories(testdb.Open(t))
	idSvc := identity.NewService(repos.User, utility.NewMemoryCacheService())
	return NewUserService(repos.User, repos.Album, idSvc), repos, idSvc
}

func TestGetProfile_HidesPrivateAlbums(t *testing.T) {
	svc, repos, idSvc := setup(t)
	ctx := context.Background()

	owner, err := idSvc.Sync(ctx, identity.Identity{Subject: "user_a", Email: "alice@example.com", FirstName: "Alice"})
	require.NoError(t, err)
	viewer, err := idSvc.Sync(ctx, identity.Identity{Subject: "user_b", Email: "bob@example.com"})
	require.NoError(t, err)

	now := time.Now().UTC()
	for _, a := range []*model.Album{
		{ID: idgen.NewID(), UserID: owner.ID, Title: "Open", CreatedAt: now, UpdatedAt: now},
		{ID: idgen.NewID(), UserID: owner.ID, Title: "Closed", IsPrivate: true, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, repos.Album.Create(ctx, a))
	}

	self, err := svc.GetProfile(ctx, owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, self.Albums, 2)
	assert.Equal(t, 2, self.Stats.AlbumCount)
	assert.Equal(t, "Alice", self.User.Name)

	public, err := svc.GetProfile(ctx, owner.ID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, public.Albums, 1)
	assert.Equal(t, "Open", public.Albums[0].Title)

	_, err = svc.GetProfile(ctx, idgen.NewID(), viewer.ID)
	assert.Equal(t, constant.ErrNotFound, err)
}

func TestListAndSearchUsers(t *testing.T) {
	svc, _, idSvc := setup(t)
	ctx := context.Background()

	for _, id := range []identity.Identity{
		{Subject: "s1", Email: "carol@example.com", FirstName: "Carol"},
		{Subject: "s2", Email: "dave@photos.io"},
		{Subject: "s3", Email: "erin@example.com", Username: "ErinShots"},
	} {
		_, err := idSvc.Sync(ctx, id)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	found, err := svc.Search(ctx, "EXAMPLE", 0, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Search(ctx, "shots", 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ErinShots", found[0].Username)

	_, err = svc.Search(ctx, "", 0, 0)
	assert.True(t, errors.Is(err, constant.ErrInvalidInput))

	u, err := svc.GetBySubject(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "dave", u.Username)
}
