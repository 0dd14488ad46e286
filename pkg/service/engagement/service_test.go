package engagement

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
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/parser"
)

type world struct {
	svc   *Service
	repos *ent.Repositories

	owner, fan             string
	publicAlbum, privAlbum string
	publicPhoto, privPhoto string
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	repos := ent.NewRepositories(testdb.Open(t))
	w := &world{
		svc: NewService(repos.User, repos.Album, repos.Photo, repos.Like, repos.Comment,
			repos.Bookmark, repos.Follow, parser.NewService()),
		repos: repos,
	}

	now := time.Now().UTC()
	mkUser := func(name string) string {
		u := &model.User{ID: idgen.NewID(), ClerkID: "user_" + name, Username: name, Name: name,
			Email: name + "@example.com", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repos.User.Create(ctx, u))
		return u.ID
	}
	mkAlbum := func(owner string, private bool) string {
		a := &model.Album{ID: idgen.NewID(), UserID: owner, Title: "album", IsPrivate: private, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repos.Album.Create(ctx, a))
		return a.ID
	}
	mkPhoto := func(owner, album string) string {
		p := &model.Photo{ID: idgen.NewID(), UserID: owner, AlbumID: album, Title: "photo",
			URL: "u", StoragePath: "k/" + idgen.NewID(), ThumbnailURL: "t", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repos.Photo.Create(ctx, p))
		return p.ID
	}

	w.owner, w.fan = mkUser("owner"), mkUser("fan")
	w.publicAlbum, w.privAlbum = mkAlbum(w.owner, false), mkAlbum(w.owner, true)
	w.publicPhoto, w.privPhoto = mkPhoto(w.owner, w.publicAlbum), mkPhoto(w.owner, w.privAlbum)
	return w
}

func TestLikes(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	require.NoError(t, w.svc.Like(ctx, w.publicPhoto, w.fan))
	require.NoError(t, w.svc.Like(ctx, w.publicPhoto, w.fan), "重复点赞视为成功")

	n, err := w.svc.CountLikes(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	likes, err := w.svc.ListLikes(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "fan", likes[0].User.Username)

	liked, err := w.svc.IsLiked(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, w.svc.Unlike(ctx, w.publicPhoto, w.fan))
	liked, err = w.svc.IsLiked(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	assert.False(t, liked)

	assert.Equal(t, constant.ErrForbidden, w.svc.Like(ctx, w.privPhoto, w.fan))
	assert.Equal(t, constant.ErrNotFound, w.svc.Like(ctx, idgen.NewID(), w.fan))
	require.NoError(t, w.svc.Like(ctx, w.privPhoto, w.owner))

	_, err = w.svc.ListLikes(ctx, w.privPhoto, w.fan)
	assert.Equal(t, constant.ErrNotFound, err)
}

func TestComments(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	first, err := w.svc.AddComment(ctx, w.publicPhoto, w.fan, "**nice** <script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, first.ContentHTML, "<strong>nice</strong>")
	assert.NotContains(t, first.ContentHTML, "<script>")
	assert.Equal(t, "fan", first.User.Username)

	_, err = w.svc.AddComment(ctx, w.publicPhoto, w.owner, "thanks")
	require.NoError(t, err)

	comments, err := w.svc.ListComments(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)

	_, err = w.svc.AddComment(ctx, w.publicPhoto, w.fan, "   ")
	assert.True(t, errors.Is(err, constant.ErrInvalidInput))
	_, err = w.svc.AddComment(ctx, w.privPhoto, w.fan, "peek")
	assert.Equal(t, constant.ErrForbidden, err)

	// 只有作者可以删除
	assert.Equal(t, constant.ErrNotFound, w.svc.DeleteComment(ctx, first.ID, w.owner))
	require.NoError(t, w.svc.DeleteComment(ctx, first.ID, w.fan))
	comments, err = w.svc.ListComments(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestBookmarks(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	require.NoError(t, w.svc.BookmarkPhoto(ctx, w.publicPhoto, w.fan))
	require.NoError(t, w.svc.BookmarkPhoto(ctx, w.publicPhoto, w.fan))
	photos, err := w.svc.ListBookmarkedPhotos(ctx, w.fan)
	require.NoError(t, err)
	assert.Len(t, photos, 1)

	require.NoError(t, w.svc.BookmarkAlbum(ctx, w.publicAlbum, w.fan))
	ok, err := w.svc.IsAlbumBookmarked(ctx, w.publicAlbum, w.fan)
	require.NoError(t, err)
	assert.True(t, ok)
	albums, err := w.svc.ListBookmarkedAlbums(ctx, w.fan)
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	assert.Equal(t, constant.ErrForbidden, w.svc.BookmarkPhoto(ctx, w.privPhoto, w.fan))
	assert.Equal(t, constant.ErrForbidden, w.svc.BookmarkAlbum(ctx, w.privAlbum, w.fan))
	assert.Equal(t, constant.ErrNotFound, w.svc.BookmarkAlbum(ctx, idgen.NewID(), w.fan))

	require.NoError(t, w.svc.UnbookmarkPhoto(ctx, w.publicPhoto, w.fan))
	require.NoError(t, w.svc.UnbookmarkAlbum(ctx, w.publicAlbum, w.fan))
	ok, err = w.svc.IsPhotoBookmarked(ctx, w.publicPhoto, w.fan)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollows(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	err := w.svc.Follow(ctx, w.fan, w.fan)
	assert.True(t, errors.Is(err, constant.ErrInvalidOperation))
	assert.Equal(t, constant.ErrNotFound, w.svc.Follow(ctx, w.fan, idgen.NewID()))

	require.NoError(t, w.svc.Follow(ctx, w.fan, w.owner))
	require.NoError(t, w.svc.Follow(ctx, w.fan, w.owner))

	followers, err := w.svc.ListFollowers(ctx, w.owner, 0, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, w.fan, followers[0].User.ID)

	following, err := w.svc.ListFollowing(ctx, w.fan, 0, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, w.owner, following[0].User.ID)

	ok, err := w.svc.IsFollowing(ctx, w.fan, w.owner)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, w.svc.Unfollow(ctx, w.fan, w.owner))
	ok, err = w.svc.IsFollowing(ctx, w.fan, w.owner)
	require.NoError(t, err)
	assert.False(t, ok)
}
