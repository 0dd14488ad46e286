package photo

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/persistence/testdb"
	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage/storagetest"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/cleanup"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

// failingPhotoRepo 让 Create 总是失败，用于验证上传回滚
type failingPhotoRepo struct {
	repository.PhotoRepository
}

func (failingPhotoRepo) Create(context.Context, *model.Photo) error {
	return errors.New("disk full")
}

type fixture struct {
	svc   PhotoService
	repos *ent.Repositories
	store *storagetest.FakeProvider
}

func newFixture(t *testing.T, photoRepo func(repository.PhotoRepository) repository.PhotoRepository) *fixture {
	t.Helper()
	repos := ent.NewRepositories(testdb.Open(t))
	store := storagetest.NewFakeProvider()
	pr := repos.Photo
	if photoRepo != nil {
		pr = photoRepo(pr)
	}
	imageSvc := utility.NewImageService(utility.NewColorService(), 64)
	svc := NewPhotoService(repos.Album, pr, repos.Like, repos.Bookmark, store, imageSvc, cleanup.NewService(store, repos.Orphan))
	return &fixture{svc: svc, repos: repos, store: store}
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	now := time.Now().UTC()
	u := &model.User{
		ID: idgen.NewID(), ClerkID: "user_" + name, Username: name, Name: name,
		Email: name + "@example.com", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.repos.User.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) album(t *testing.T, ownerID, title string, private bool) string {
	t.Helper()
	now := time.Now().UTC()
	a := &model.Album{ID: idgen.NewID(), UserID: ownerID, Title: title, IsPrivate: private, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.repos.Album.Create(context.Background(), a))
	return a.ID
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 120, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func strPtr(s string) *string { return &s }

func TestUpload(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	albumID := f.album(t, owner, "Trip", false)

	p, err := f.svc.Upload(ctx, owner, UploadParams{
		AlbumID: albumID, Title: "Sunset", Filename: "sunset.PNG", Data: pngBytes(t, 200, 100),
	})
	require.NoError(t, err)

	keyPattern := regexp.MustCompile(`^` + owner + `/` + albumID + `/\d+-[a-z0-9]+\.png$`)
	assert.Regexp(t, keyPattern, p.StoragePath)
	require.NotNil(t, p.AspectRatio)
	assert.InDelta(t, 2.0, *p.AspectRatio, 0.0001)
	assert.Equal(t, f.store.PublicURL(cleanup.ThumbnailKey(p.StoragePath)), p.ThumbnailURL)
	assert.ElementsMatch(t, []string{p.StoragePath, cleanup.ThumbnailKey(p.StoragePath)}, f.store.Keys())

	got, err := f.svc.GetByID(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Sunset", got.Title)
}

func TestUpload_AlbumGuard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	other := f.user(t, "bob")
	albumID := f.album(t, owner, "Trip", false)

	_, err := f.svc.Upload(ctx, other, UploadParams{AlbumID: albumID, Title: "x", Data: []byte("data")})
	assert.Equal(t, constant.ErrNotFound, err)

	_, err = f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: " ", Data: []byte("data")})
	assert.True(t, errors.Is(err, constant.ErrInvalidInput))

	_, err = f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: "x"})
	assert.True(t, errors.Is(err, constant.ErrInvalidInput))
	assert.Empty(t, f.store.Keys())
}

func TestUpload_NonImageKeepsNilMetadata(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	albumID := f.album(t, owner, "Docs", false)

	p, err := f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: "notes", Filename: "a.txt", Data: []byte("plain text")})
	require.NoError(t, err)
	assert.Nil(t, p.AspectRatio)
	assert.Nil(t, p.DominantColor)
	assert.Nil(t, p.TakenAt)
	assert.Equal(t, p.URL, p.ThumbnailURL)
}

func TestUpload_SniffsContentType(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	albumID := f.album(t, owner, "Trip", false)

	p, err := f.svc.Upload(ctx, owner, UploadParams{
		AlbumID: albumID, Title: "Red", Filename: "red.bin", ContentType: "application/octet-stream", Data: pngBytes(t, 4, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.store.ContentType(p.StoragePath))
	assert.Equal(t, "image/jpeg", f.store.ContentType(cleanup.ThumbnailKey(p.StoragePath)))

	p, err = f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: "notes", Filename: "a.txt", Data: []byte("plain text")})
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", f.store.ContentType(p.StoragePath))
}

func TestUpload_InsertFailureRemovesObjects(t *testing.T) {
	f := newFixture(t, func(r repository.PhotoRepository) repository.PhotoRepository {
		return failingPhotoRepo{r}
	})
	ctx := context.Background()
	owner := f.user(t, "alice")
	albumID := f.album(t, owner, "Trip", false)

	_, err := f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: "x", Filename: "a.png", Data: pngBytes(t, 20, 20)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, constant.ErrUpstream))
	assert.Empty(t, f.store.Keys())
}

func TestBatchUpload(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	albumID := f.album(t, owner, "Batch", false)

	files := []UploadFile{
		{Filename: "a.bin", Data: []byte{0x00, 0x01}},
		{Filename: "b.bin", Data: []byte("not an image")},
		{Filename: "c.bin", Data: []byte{0xff, 0xd8, 0x00}},
	}
	res, err := f.svc.BatchUpload(ctx, owner, albumID, "", files)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Uploaded)
	assert.Equal(t, 0, res.Failed)
	for _, p := range res.Photos {
		assert.Equal(t, constant.DefaultPhotoTitle, p.Title)
	}

	res, err = f.svc.BatchUpload(ctx, owner, albumID, "Holiday", []UploadFile{{Filename: "ok.bin", Data: []byte("x")}, {Filename: "empty.bin"}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Uploaded+res.Failed)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, "Holiday", res.Photos[0].Title)

	_, err = f.svc.BatchUpload(ctx, f.user(t, "bob"), albumID, "", files)
	assert.Equal(t, constant.ErrNotFound, err)
}

func TestPhotoVisibilityAndUpdate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	other := f.user(t, "bob")
	privAlbum := f.album(t, owner, "Private", true)

	p, err := f.svc.Upload(ctx, owner, UploadParams{AlbumID: privAlbum, Title: "Hidden", Description: strPtr("desc"), Data: []byte("x")})
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, p.ID, other)
	assert.Equal(t, constant.ErrNotFound, err)
	_, err = f.svc.ListByAlbum(ctx, privAlbum, other)
	assert.Equal(t, constant.ErrNotFound, err)
	list, err := f.svc.ListByAlbum(ctx, privAlbum, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// 非所有者更新失败且不改变照片
	_, err = f.svc.Update(ctx, p.ID, other, UpdatePhotoParams{Title: strPtr("Hacked")})
	assert.Equal(t, constant.ErrNotFound, err)
	unchanged, err := f.svc.GetByID(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Hidden", unchanged.Title)

	updated, err := f.svc.Update(ctx, p.ID, owner, UpdatePhotoParams{Title: strPtr("Shown"), Description: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Shown", updated.Title)
	assert.Nil(t, updated.Description)

	res, err := f.svc.Search(ctx, "SHOWN", other, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res)
	res, err = f.svc.Search(ctx, "shown", owner, 0, 0)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestGetDetail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	fan := f.user(t, "bob")
	albumID := f.album(t, owner, "Public", false)

	p, err := f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: "Pic", Data: []byte("x")})
	require.NoError(t, err)
	_, err = f.repos.Like.Add(ctx, fan, p.ID)
	require.NoError(t, err)

	detail, err := f.svc.GetDetail(ctx, p.ID, fan)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Stats.LikesCount)
	assert.True(t, detail.IsLiked)
	assert.False(t, detail.IsBookmarked)

	anon, err := f.svc.GetDetail(ctx, p.ID, "")
	require.NoError(t, err)
	assert.False(t, anon.IsLiked)
}

func TestDeletePhoto(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "alice")
	other := f.user(t, "bob")
	albumID := f.album(t, owner, "Trip", false)

	p, err := f.svc.Upload(ctx, owner, UploadParams{AlbumID: albumID, Title: "x", Data: pngBytes(t, 10, 10)})
	require.NoError(t, err)

	assert.Equal(t, constant.ErrNotFound, f.svc.Delete(ctx, p.ID, other))
	assert.NotEmpty(t, f.store.Keys())

	// 对象删除失败不影响结果，只记入孤儿表
	f.store.SetFailAllDeletes(true)
	require.NoError(t, f.svc.Delete(ctx, p.ID, owner))
	_, err = f.svc.GetByID(ctx, p.ID, owner)
	assert.Equal(t, constant.ErrNotFound, err)

	pending, err := f.repos.Orphan.ListPending(ctx, cleanup.MaxAttempts, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
