package ent

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

type entBookmarkRepository struct {
	base
}

// NewEntBookmarkRepository 是照片与相册收藏仓储的构造函数
func NewEntBookmarkRepository(drv dialect.Driver) repository.BookmarkRepository {
	return &entBookmarkRepository{base{drv: drv}}
}

func (r *entBookmarkRepository) IsPhotoBookmarked(ctx context.Context, userID, photoID string) (bool, error) {
	return r.pairExists(ctx, tablePhotoBookmarks, "user_id", "photo_id", userID, photoID)
}

func (r *entBookmarkRepository) AddPhoto(ctx context.Context, userID, photoID string) (bool, error) {
	return r.addPair(ctx, tablePhotoBookmarks, "user_id", "photo_id", userID, photoID)
}

func (r *entBookmarkRepository) RemovePhoto(ctx context.Context, userID, photoID string) error {
	return r.removePair(ctx, tablePhotoBookmarks, "user_id", "photo_id", userID, photoID)
}

func (r *entBookmarkRepository) ListPhotos(ctx context.Context, userID string) ([]*model.Photo, error) {
	b := r.builder()
	pb := b.Table(tablePhotoBookmarks).As("pb")
	q, p, a := photoSelector(b)
	q.Join(pb).On(pb.C("photo_id"), p.C("id")).
		Where(sql.And(
			sql.EQ(pb.C("user_id"), userID),
			sql.Or(sql.EQ(a.C("is_private"), false), sql.EQ(p.C("user_id"), userID)),
		)).
		OrderBy(sql.Desc(pb.C("created_at")))

	var rows []photoRow
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	photos := make([]*model.Photo, 0, len(rows))
	for _, row := range rows {
		photos = append(photos, row.toDomain())
	}
	return photos, nil
}

func (r *entBookmarkRepository) IsAlbumBookmarked(ctx context.Context, userID, albumID string) (bool, error) {
	return r.pairExists(ctx, tableAlbumBookmarks, "user_id", "album_id", userID, albumID)
}

func (r *entBookmarkRepository) AddAlbum(ctx context.Context, userID, albumID string) (bool, error) {
	return r.addPair(ctx, tableAlbumBookmarks, "user_id", "album_id", userID, albumID)
}

func (r *entBookmarkRepository) RemoveAlbum(ctx context.Context, userID, albumID string) error {
	return r.removePair(ctx, tableAlbumBookmarks, "user_id", "album_id", userID, albumID)
}

func (r *entBookmarkRepository) ListAlbums(ctx context.Context, userID string) ([]*model.Album, error) {
	b := r.builder()
	ab := b.Table(tableAlbumBookmarks).As("ab")
	a := b.Table(tableAlbums).As("a")
	q := b.Select(qualified(a, albumColumns)...).
		From(ab).
		Join(a).On(ab.C("album_id"), a.C("id")).
		Where(sql.And(
			sql.EQ(ab.C("user_id"), userID),
			sql.Or(sql.EQ(a.C("is_private"), false), sql.EQ(a.C("user_id"), userID)),
		)).
		OrderBy(sql.Desc(ab.C("created_at")))

	var rows []albumRow
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	albums := make([]*model.Album, 0, len(rows))
	for _, row := range rows {
		albums = append(albums, row.toDomain())
	}
	if err := attachPhotoCounts(ctx, r.base, albums); err != nil {
		return nil, err
	}
	return albums, nil
}
