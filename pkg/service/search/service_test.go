package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/testdb"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage/storagetest"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/album"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/cleanup"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/photo"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/user"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         Query
		wantType   string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", in: Query{Text: "x"}, wantType: "all", wantLimit: 5, wantOffset: 0},
		{name: "users page 3", in: Query{Text: "x", Type: "USERS", Limit: 10, Page: 3}, wantType: "users", wantLimit: 10, wantOffset: 20},
		{name: "photos default limit", in: Query{Text: "x", Type: "photos", Page: 2}, wantType: "photos", wantLimit: 20, wantOffset: 20},
		{name: "all ignores page", in: Query{Text: "x", Type: "all", Limit: 10, Page: 2}, wantType: "all", wantLimit: 5, wantOffset: 0},
		{name: "blank text", in: Query{Text: "  "}, wantErr: true},
		{name: "bad type", in: Query{Text: "x", Type: "tags"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, limit, offset, err := normalize(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, constant.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, q.Type)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	repos := ent.NewRepositories(testdb.Open(t))
	store := storagetest.NewFakeProvider()
	cleanupSvc := cleanup.NewService(store, repos.Orphan)
	idSvc := identity.NewService(repos.User, utility.NewMemoryCacheService())
	svc := NewService(
		user.NewUserService(repos.User, repos.Album, idSvc),
		album.NewAlbumService(repos.Album, repos.Photo, cleanupSvc),
		photo.NewPhotoService(repos.Album, repos.Photo, repos.Like, repos.Bookmark, store,
			utility.NewImageService(nil, 64), cleanupSvc),
	)

	owner, err := idSvc.Sync(ctx, identity.Identity{Subject: "s1", Email: "lake@example.com"})
	require.NoError(t, err)
	other, err := idSvc.Sync(ctx, identity.Identity{Subject: "s2", Email: "viewer@example.com"})
	require.NoError(t, err)

	now := time.Now().UTC()
	for i := 0; i < 7; i++ {
		a := &model.Album{ID: idgen.NewID(), UserID: owner.ID, Title: fmt.Sprintf("Lake %d", i), CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repos.Album.Create(ctx, a))
	}
	secret := &model.Album{ID: idgen.NewID(), UserID: owner.ID, Title: "Lake secret", IsPrivate: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Album.Create(ctx, secret))

	res, err := svc.Search(ctx, Query{Text: "lake", Requester: other.ID})
	require.NoError(t, err)
	assert.Len(t, res.Albums, 5, "all 类型每类最多 5 条")
	assert.Len(t, res.Users, 1)
	assert.Empty(t, res.Photos)

	res, err = svc.Search(ctx, Query{Text: "lake", Page: 2, Requester: other.ID})
	require.NoError(t, err)
	assert.Len(t, res.Albums, 5, "all 类型不按页偏移")

	res, err = svc.Search(ctx, Query{Text: "LAKE", Type: "albums", Requester: other.ID})
	require.NoError(t, err)
	assert.Len(t, res.Albums, 7)
	for _, a := range res.Albums {
		assert.False(t, a.IsPrivate)
	}

	res, err = svc.Search(ctx, Query{Text: "lake", Type: "albums", Requester: owner.ID})
	require.NoError(t, err)
	assert.Len(t, res.Albums, 8)

	res, err = svc.Search(ctx, Query{Text: "lake", Type: "albums", Limit: 3, Page: 3})
	require.NoError(t, err)
	assert.Len(t, res.Albums, 1)
}
