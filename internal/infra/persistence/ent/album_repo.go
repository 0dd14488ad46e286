package ent

import (
	"context"
	"database/sql/driver"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

type entAlbumRepository struct {
	base
}

// NewEntAlbumRepository 是相册仓储的构造函数
func NewEntAlbumRepository(drv dialect.Driver) repository.AlbumRepository {
	return &entAlbumRepository{base{drv: drv}}
}

// selectAlbums 执行查询并为结果附加照片数量
func (r *entAlbumRepository) selectAlbums(ctx context.Context, q *sql.Selector) ([]*model.Album, error) {
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

// attachPhotoCounts 用一次分组查询统计每个相册的照片数
func attachPhotoCounts(ctx context.Context, b base, albums []*model.Album) error {
	if len(albums) == 0 {
		return nil
	}
	ids := make([]driver.Value, len(albums))
	for i, a := range albums {
		ids[i] = a.ID
	}
	bl := b.builder()
	q := bl.Select("album_id", sql.As(sql.Count("*"), "cnt")).
		From(bl.Table(tablePhotos)).
		Where(sql.InValues("album_id", ids...)).
		GroupBy("album_id")
	var rows []struct {
		AlbumID string `sql:"album_id"`
		Cnt     int    `sql:"cnt"`
	}
	if err := b.scan(ctx, q, &rows); err != nil {
		return fmt.Errorf("统计相册照片数失败: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AlbumID] = row.Cnt
	}
	for _, a := range albums {
		a.PhotoCount = counts[a.ID]
	}
	return nil
}

func (r *entAlbumRepository) FindByID(ctx context.Context, id string) (*model.Album, error) {
	b := r.builder()
	q := b.Select(albumColumns...).From(b.Table(tableAlbums)).Where(sql.EQ("id", id)).Limit(1)
	albums, err := r.selectAlbums(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		return nil, nil
	}
	return albums[0], nil
}

func (r *entAlbumRepository) ListByOwner(ctx context.Context, userID string) ([]*model.Album, error) {
	b := r.builder()
	q := b.Select(albumColumns...).From(b.Table(tableAlbums)).
		Where(sql.EQ("user_id", userID)).
		OrderBy(sql.Desc("updated_at"))
	return r.selectAlbums(ctx, q)
}

func (r *entAlbumRepository) ListPublic(ctx context.Context, limit, offset int) ([]*model.Album, error) {
	b := r.builder()
	q := b.Select(albumColumns...).From(b.Table(tableAlbums)).
		Where(sql.EQ("is_private", false)).
		OrderBy(sql.Desc("updated_at")).
		Limit(limit).
		Offset(offset)
	return r.selectAlbums(ctx, q)
}

func (r *entAlbumRepository) Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Album, error) {
	visible := sql.EQ("is_private", false)
	if requesterID != "" {
		visible = sql.Or(sql.EQ("is_private", false), sql.EQ("user_id", requesterID))
	}
	b := r.builder()
	q := b.Select(albumColumns...).From(b.Table(tableAlbums)).
		Where(sql.And(
			sql.Or(sql.ContainsFold("title", query), sql.ContainsFold("description", query)),
			visible,
		)).
		OrderBy(sql.Desc("updated_at")).
		Limit(limit).
		Offset(offset)
	return r.selectAlbums(ctx, q)
}

func (r *entAlbumRepository) Create(ctx context.Context, a *model.Album) error {
	q := r.builder().Insert(tableAlbums).
		Columns(albumColumns...).
		Values(a.ID, a.UserID, a.Title, nullable(a.Description), a.IsPrivate, nullable(a.CoverPhotoID), a.CreatedAt, a.UpdatedAt)
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("创建相册失败: %w", err)
	}
	return nil
}

func (r *entAlbumRepository) Update(ctx context.Context, id, userID string, f repository.UpdateAlbumFields) (*model.Album, error) {
	q := r.builder().Update(tableAlbums).Set("updated_at", f.UpdatedAt)
	if f.Title != nil {
		q.Set("title", *f.Title)
	}
	switch {
	case f.ClearDescription:
		q.SetNull("description")
	case f.Description != nil:
		q.Set("description", *f.Description)
	}
	if f.IsPrivate != nil {
		q.Set("is_private", *f.IsPrivate)
	}
	switch {
	case f.ClearCover:
		q.SetNull("cover_photo_id")
	case f.CoverPhotoID != nil:
		q.Set("cover_photo_id", *f.CoverPhotoID)
	}
	q.Where(sql.And(sql.EQ("id", id), sql.EQ("user_id", userID)))
	if _, err := r.exec(ctx, q); err != nil {
		return nil, fmt.Errorf("更新相册失败: %w", err)
	}

	// MySQL 在值未变化时受影响行数为 0，因此回读确认归属
	album, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if album == nil || album.UserID != userID {
		return nil, nil
	}
	return album, nil
}

func (r *entAlbumRepository) Delete(ctx context.Context, id, userID string) (int, error) {
	q := r.builder().Delete(tableAlbums).Where(sql.And(sql.EQ("id", id), sql.EQ("user_id", userID)))
	n, err := r.exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("删除相册失败: %w", err)
	}
	return n, nil
}
