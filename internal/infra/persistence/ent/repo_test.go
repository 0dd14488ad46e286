package ent

import (
	"context"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/testdb"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
)

var baseTime = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestDriver(t *testing.T) dialect.Driver {
	return testdb.Open(t)
}

func seedUser(t *testing.T, repo repository.UserRepository, username string, at time.Time) *model.User {
	t.Helper()
	u := &model.User{
		ID:        idgen.NewID(),
		ClerkID:   "user_" + username,
		Username:  username,
		Name:      username,
		Email:     username + "@example.com",
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedAlbum(t *testing.T, repo repository.AlbumRepository, owner *model.User, title string, private bool, at time.Time) *model.Album {
	t.Helper()
	a := &model.Album{
		ID:        idgen.NewID(),
		UserID:    owner.ID,
		Title:     title,
		IsPrivate: private,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func seedPhoto(t *testing.T, repo repository.PhotoRepository, album *model.Album, title string, at time.Time) *model.Photo {
	t.Helper()
	ratio := 1.5
	p := &model.Photo{
		ID:           idgen.NewID(),
		UserID:       album.UserID,
		AlbumID:      album.ID,
		Title:        title,
		URL:          "https://cdn.example.com/" + title + ".jpg",
		StoragePath:  album.UserID + "/" + album.ID + "/" + title + ".jpg",
		ThumbnailURL: "https://cdn.example.com/" + title + ".jpg_thumb.jpg",
		AspectRatio:  &ratio,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewEntUserRepository(newTestDriver(t))

	alice := seedUser(t, users, "alice", baseTime)
	seedUser(t, users, "bob", baseTime.Add(time.Second))

	got, err := users.FindByClerkID(ctx, "user_alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)
	assert.Nil(t, got.AvatarURL)

	missing, err := users.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	avatar := "https://img.example.com/a.png"
	alice.Name = "Alice Liddell"
	alice.AvatarURL = &avatar
	alice.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, users.Update(ctx, alice))

	got, err = users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", got.Name)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, avatar, *got.AvatarURL)

	list, err := users.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Username, "列表按创建时间倒序")

	found, err := users.Search(ctx, "LIDDELL", 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, alice.ID, found[0].ID)

	n, err := users.DeleteByClerkID(ctx, "user_bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAlbumRepository_VisibilityAndUpdate(t *testing.T) {
	ctx := context.Background()
	drv := newTestDriver(t)
	users := NewEntUserRepository(drv)
	albums := NewEntAlbumRepository(drv)
	photos := NewEntPhotoRepository(drv)

	owner := seedUser(t, users, "owner", baseTime)
	other := seedUser(t, users, "other", baseTime)

	public := seedAlbum(t, albums, owner, "Summer Trip", false, baseTime)
	private := seedAlbum(t, albums, owner, "Summer Secrets", true, baseTime.Add(time.Second))
	seedPhoto(t, photos, public, "beach", baseTime)
	seedPhoto(t, photos, public, "sunset", baseTime.Add(time.Second))

	list, err := albums.ListPublic(ctx, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, public.ID, list[0].ID)
	assert.Equal(t, 2, list[0].PhotoCount)

	anon, err := albums.Search(ctx, "summer", "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, anon, 1)

	mine, err := albums.Search(ctx, "summer", owner.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	title := "Winter"
	updated, err := albums.Update(ctx, private.ID, other.ID, repository.UpdateAlbumFields{Title: &title, UpdatedAt: baseTime.Add(time.Hour)})
	require.NoError(t, err)
	assert.Nil(t, updated, "非所有者不能更新")

	isPrivate := false
	updated, err = albums.Update(ctx, private.ID, owner.ID, repository.UpdateAlbumFields{
		Title:     &title,
		IsPrivate: &isPrivate,
		UpdatedAt: baseTime.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Winter", updated.Title)
	assert.False(t, updated.IsPrivate)

	owned, err := albums.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, private.ID, owned[0].ID)

	n, err := albums.Delete(ctx, public.ID, other.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = albums.Delete(ctx, public.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := photos.ListByAlbum(ctx, public.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "照片随相册级联删除")
}

func TestPhotoRepository_DeleteClearsCover(t *testing.T) {
	ctx := context.Background()
	drv := newTestDriver(t)
	users := NewEntUserRepository(drv)
	albums := NewEntAlbumRepository(drv)
	photos := NewEntPhotoRepository(drv)

	owner := seedUser(t, users, "owner", baseTime)
	album := seedAlbum(t, albums, owner, "Album", true, baseTime)
	photo := seedPhoto(t, photos, album, "cover", baseTime)

	_, err := albums.Update(ctx, album.ID, owner.ID, repository.UpdateAlbumFields{CoverPhotoID: &photo.ID, UpdatedAt: baseTime})
	require.NoError(t, err)

	got, err := photos.FindByID(ctx, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.AlbumPrivate)
	require.NotNil(t, got.AspectRatio)
	assert.InDelta(t, 1.5, *got.AspectRatio, 1e-9)

	deleted, err := photos.Delete(ctx, photo.ID, "someone-else")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	deleted, err = photos.Delete(ctx, photo.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, photo.StoragePath, deleted.StoragePath)

	a, err := albums.FindByID(ctx, album.ID)
	require.NoError(t, err)
	assert.Nil(t, a.CoverPhotoID)
}

func TestEngagementRepositories(t *testing.T) {
	ctx := context.Background()
	drv := newTestDriver(t)
	users := NewEntUserRepository(drv)
	albums := NewEntAlbumRepository(drv)
	photos := NewEntPhotoRepository(drv)
	likes := NewEntLikeRepository(drv)
	comments := NewEntCommentRepository(drv)
	bookmarks := NewEntBookmarkRepository(drv)
	follows := NewEntFollowRepository(drv)

	owner := seedUser(t, users, "owner", baseTime)
	fan := seedUser(t, users, "fan", baseTime)
	album := seedAlbum(t, albums, owner, "Album", false, baseTime)
	photo := seedPhoto(t, photos, album, "p1", baseTime)

	added, err := likes.Add(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = likes.Add(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	assert.False(t, added, "重复点赞不产生新行")

	liked, err := likes.Exists(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	likeList, err := likes.ListByPhoto(ctx, photo.ID, 20)
	require.NoError(t, err)
	require.Len(t, likeList, 1)
	assert.Equal(t, "fan", likeList[0].User.Username)

	for i, text := range []string{"first", "second"} {
		_, err := comments.Create(ctx, &model.Comment{
			ID:          idgen.NewID(),
			PhotoID:     photo.ID,
			UserID:      fan.ID,
			Content:     text,
			ContentHTML: "<p>" + text + "</p>",
			CreatedAt:   baseTime.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	commentList, err := comments.ListByPhoto(ctx, photo.ID, 50)
	require.NoError(t, err)
	require.Len(t, commentList, 2)
	assert.Equal(t, "first", commentList[0].Content)
	assert.Equal(t, fan.ID, commentList[0].User.ID)

	n, err := comments.Delete(ctx, commentList[0].ID, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "只有作者可以删除评论")

	stats, err := photos.Stats(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LikesCount)
	assert.Equal(t, 2, stats.CommentsCount)

	_, err = bookmarks.AddPhoto(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	_, err = bookmarks.AddAlbum(ctx, fan.ID, album.ID)
	require.NoError(t, err)

	bookmarked, err := bookmarks.ListPhotos(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, bookmarked, 1)
	bookmarkedAlbums, err := bookmarks.ListAlbums(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, bookmarkedAlbums, 1)
	assert.Equal(t, 1, bookmarkedAlbums[0].PhotoCount)

	// 相册转为私有后，其他用户的收藏列表不再返回
	private := true
	_, err = albums.Update(ctx, album.ID, owner.ID, repository.UpdateAlbumFields{IsPrivate: &private, UpdatedAt: baseTime})
	require.NoError(t, err)
	bookmarked, err = bookmarks.ListPhotos(ctx, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarked)

	_, err = follows.Add(ctx, fan.ID, owner.ID)
	require.NoError(t, err)
	followers, err := follows.ListFollowers(ctx, owner.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, fan.ID, followers[0].User.ID)
	following, err := follows.ListFollowing(ctx, fan.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, owner.ID, following[0].User.ID)

	userStats, err := users.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{AlbumCount: 1, PhotoCount: 1, FollowersCount: 1}, *userStats)

	// 删除用户后，其点赞、收藏与关注关系被级联删除
	_, err = users.DeleteByClerkID(ctx, fan.ClerkID)
	require.NoError(t, err)
	liked, err = likes.Exists(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	followers, err = follows.ListFollowers(ctx, owner.ID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestPhotoSelector_AliasesJoinedTables(t *testing.T) {
	q, p, _ := photoSelector(sql.Dialect(dialect.SQLite))
	q.Where(sql.EQ(p.C("id"), "x"))
	query, _ := q.Query()

	assert.Contains(t, query, "AS `p`")
	assert.Contains(t, query, "AS `a`")
	assert.NotContains(t, query, "`albums`.", "列引用必须使用别名")
	assert.NotContains(t, query, "`photos`.")
	assert.NotContains(t, query, "t1")
}

// 每个带 JOIN 的查询都在真实 SQLite 上执行一次
func TestJoinQueries(t *testing.T) {
	ctx := context.Background()
	drv := newTestDriver(t)
	users := NewEntUserRepository(drv)
	albums := NewEntAlbumRepository(drv)
	photos := NewEntPhotoRepository(drv)
	likes := NewEntLikeRepository(drv)
	comments := NewEntCommentRepository(drv)
	bookmarks := NewEntBookmarkRepository(drv)
	follows := NewEntFollowRepository(drv)

	owner := seedUser(t, users, "owner", baseTime)
	fan := seedUser(t, users, "fan", baseTime)
	album := seedAlbum(t, albums, owner, "Harbor", false, baseTime)
	photo := seedPhoto(t, photos, album, "lighthouse", baseTime)

	_, err := likes.Add(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	_, err = comments.Create(ctx, &model.Comment{
		ID: idgen.NewID(), PhotoID: photo.ID, UserID: fan.ID,
		Content: "nice", ContentHTML: "<p>nice</p>", CreatedAt: baseTime,
	})
	require.NoError(t, err)
	_, err = bookmarks.AddPhoto(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	_, err = bookmarks.AddAlbum(ctx, fan.ID, album.ID)
	require.NoError(t, err)
	_, err = follows.Add(ctx, fan.ID, owner.ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() (int, error)
	}{
		{"photo by id", func() (int, error) {
			p, err := photos.FindByID(ctx, photo.ID)
			if p == nil {
				return 0, err
			}
			return 1, err
		}},
		{"photos by album", func() (int, error) {
			list, err := photos.ListByAlbum(ctx, album.ID)
			return len(list), err
		}},
		{"photo search", func() (int, error) {
			list, err := photos.Search(ctx, "light", "", 10, 0)
			return len(list), err
		}},
		{"likes", func() (int, error) {
			list, err := likes.ListByPhoto(ctx, photo.ID, 10)
			return len(list), err
		}},
		{"comments", func() (int, error) {
			list, err := comments.ListByPhoto(ctx, photo.ID, 10)
			return len(list), err
		}},
		{"followers", func() (int, error) {
			list, err := follows.ListFollowers(ctx, owner.ID, 10, 0)
			return len(list), err
		}},
		{"following", func() (int, error) {
			list, err := follows.ListFollowing(ctx, fan.ID, 10, 0)
			return len(list), err
		}},
		{"bookmarked photos", func() (int, error) {
			list, err := bookmarks.ListPhotos(ctx, fan.ID)
			return len(list), err
		}},
		{"bookmarked albums", func() (int, error) {
			list, err := bookmarks.ListAlbums(ctx, fan.ID)
			return len(list), err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.run()
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestOrphanRepository(t *testing.T) {
	ctx := context.Background()
	orphans := NewEntOrphanRepository(newTestDriver(t))

	require.NoError(t, orphans.Record(ctx, "u/a/1.jpg", "timeout"))

	pending, err := orphans.ListPending(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u/a/1.jpg", pending[0].StoragePath)

	require.NoError(t, orphans.MarkFailed(ctx, pending[0].ID, "again"))
	require.NoError(t, orphans.MarkFailed(ctx, pending[0].ID, "again"))

	pending, err = orphans.ListPending(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "超过最大重试次数后不再返回")

	pending, err = orphans.ListPending(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
	require.NoError(t, orphans.Delete(ctx, pending[0].ID))
}
