package ent

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

type entPhotoRepository struct {
	base
}

// NewEntPhotoRepository 是照片仓储的构造函数
func NewEntPhotoRepository(drv dialect.Driver) repository.PhotoRepository {
	return &entPhotoRepository{base{drv: drv}}
}

// photoSelector 构造 photos JOIN albums 的查询，额外选出相册的 is_private。
// 两张表都带显式别名，列引用必须在 Join 之前就能确定。
func photoSelector(b *sql.DialectBuilder) (*sql.Selector, *sql.SelectTable, *sql.SelectTable) {
	p := b.Table(tablePhotos).As("p")
	a := b.Table(tableAlbums).As("a")
	columns := append(qualified(p, photoColumns), sql.As(a.C("is_private"), "album_private"))
	q := b.Select(columns...).From(p).Join(a).On(p.C("album_id"), a.C("id"))
	return q, p, a
}

func (r *entPhotoRepository) selectPhotos(ctx context.Context, q *sql.Selector) ([]*model.Photo, error) {
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

func (r *entPhotoRepository) FindByID(ctx context.Context, id string) (*model.Photo, error) {
	q, p, _ := photoSelector(r.builder())
	q.Where(sql.EQ(p.C("id"), id)).Limit(1)
	photos, err := r.selectPhotos(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, nil
	}
	return photos[0], nil
}

func (r *entPhotoRepository) ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	q, p, _ := photoSelector(r.builder())
	q.Where(sql.EQ(p.C("album_id"), albumID)).OrderBy(sql.Desc(p.C("created_at")))
	return r.selectPhotos(ctx, q)
}

func (r *entPhotoRepository) Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Photo, error) {
	q, p, a := photoSelector(r.builder())
	visible := sql.EQ(a.C("is_private"), false)
	if requesterID != "" {
		visible = sql.Or(sql.EQ(a.C("is_private"), false), sql.EQ(p.C("user_id"), requesterID))
	}
	q.Where(sql.And(
		sql.Or(sql.ContainsFold(p.C("title"), query), sql.ContainsFold(p.C("description"), query)),
		visible,
	)).
		OrderBy(sql.Desc(p.C("created_at"))).
		Limit(limit).
		Offset(offset)
	return r.selectPhotos(ctx, q)
}

func (r *entPhotoRepository) Create(ctx context.Context, ph *model.Photo) error {
	var aspect, takenAt any
	if ph.AspectRatio != nil {
		aspect = *ph.AspectRatio
	}
	if ph.TakenAt != nil {
		takenAt = ph.TakenAt.UTC()
	}
	q := r.builder().Insert(tablePhotos).
		Columns(photoColumns...).
		Values(
			ph.ID, ph.UserID, ph.AlbumID, ph.Title, nullable(ph.Description), ph.URL, ph.StoragePath, ph.ThumbnailURL,
			aspect, nullable(ph.DominantColor), takenAt, ph.CreatedAt, ph.UpdatedAt,
		)
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("创建照片记录失败: %w", err)
	}
	return nil
}

func (r *entPhotoRepository) Update(ctx context.Context, id, userID string, f repository.UpdatePhotoFields) (*model.Photo, error) {
	q := r.builder().Update(tablePhotos).Set("updated_at", f.UpdatedAt)
	if f.Title != nil {
		q.Set("title", *f.Title)
	}
	switch {
	case f.ClearDescription:
		q.SetNull("description")
	case f.Description != nil:
		q.Set("description", *f.Description)
	}
	q.Where(sql.And(sql.EQ("id", id), sql.EQ("user_id", userID)))
	if _, err := r.exec(ctx, q); err != nil {
		return nil, fmt.Errorf("更新照片失败: %w", err)
	}

	photo, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo == nil || photo.UserID != userID {
		return nil, nil
	}
	return photo, nil
}

func (r *entPhotoRepository) Delete(ctx context.Context, id, userID string) (*model.Photo, error) {
	photo, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo == nil || photo.UserID != userID {
		return nil, nil
	}

	n, err := r.exec(ctx, r.builder().Delete(tablePhotos).Where(sql.And(sql.EQ("id", id), sql.EQ("user_id", userID))))
	if err != nil {
		return nil, fmt.Errorf("删除照片记录失败: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	// 被删除的照片如果是相册封面，清空封面引用
	clear := r.builder().Update(tableAlbums).SetNull("cover_photo_id").Where(sql.EQ("cover_photo_id", id))
	if _, err := r.exec(ctx, clear); err != nil {
		return nil, fmt.Errorf("清理相册封面失败: %w", err)
	}
	return photo, nil
}

func (r *entPhotoRepository) Stats(ctx context.Context, photoID string) (*model.PhotoStats, error) {
	likes, err := r.count(ctx, tablePhotoLikes, sql.EQ("photo_id", photoID))
	if err != nil {
		return nil, err
	}
	comments, err := r.count(ctx, tableComments, sql.EQ("photo_id", photoID))
	if err != nil {
		return nil, err
	}
	return &model.PhotoStats{LikesCount: likes, CommentsCount: comments}, nil
}
