/*
 * @Description: 基于 ent SQL 构建器的仓储公共方法
 * @Author: 安知鱼
 * @Date: 2025-10-03 14:22:09
 * @LastEditTime: 2025-10-10 20:31:44
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
)

const (
	tableUsers          = "users"
	tableAlbums         = "albums"
	tablePhotos         = "photos"
	tablePhotoLikes     = "photo_likes"
	tablePhotoBookmarks = "photo_bookmarks"
	tableAlbumBookmarks = "album_bookmarks"
	tableFollows        = "follows"
	tableComments       = "photo_comments"
	tableOrphans        = "storage_orphans"
)

// base 封装驱动与常用的执行、扫描逻辑，各仓储通过嵌入复用
type base struct {
	drv dialect.Driver
}

func (b base) builder() *sql.DialectBuilder {
	return sql.Dialect(b.drv.Dialect())
}

// exec 执行写语句并返回受影响行数
func (b base) exec(ctx context.Context, q sql.Querier) (int, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := b.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("读取受影响行数失败: %w", err)
	}
	return int(n), nil
}

// scan 执行查询并把结果扫描进 dest (指向切片的指针)
func (b base) scan(ctx context.Context, q sql.Querier, dest any) error {
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := b.drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	return sql.ScanSlice(rows, dest)
}

// count 统计 table 中满足 pred 的行数
func (b base) count(ctx context.Context, table string, pred *sql.Predicate) (int, error) {
	bl := b.builder()
	q := bl.Select(sql.Count("*")).From(bl.Table(table)).Where(pred)
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := b.drv.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return sql.ScanInt(rows)
}

// addPair 向 (left, right) 唯一的关联表插入一行，已存在时不报错并返回 false
func (b base) addPair(ctx context.Context, table, leftCol, rightCol, left, right string) (bool, error) {
	q := b.builder().Insert(table).
		Columns("id", leftCol, rightCol, "created_at").
		Values(idgen.NewID(), left, right, time.Now().UTC()).
		OnConflict(sql.ConflictColumns(leftCol, rightCol), sql.DoNothing())
	n, err := b.exec(ctx, q)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b base) removePair(ctx context.Context, table, leftCol, rightCol, left, right string) error {
	q := b.builder().Delete(table).Where(sql.And(sql.EQ(leftCol, left), sql.EQ(rightCol, right)))
	_, err := b.exec(ctx, q)
	return err
}

func (b base) pairExists(ctx context.Context, table, leftCol, rightCol, left, right string) (bool, error) {
	n, err := b.count(ctx, table, sql.And(sql.EQ(leftCol, left), sql.EQ(rightCol, right)))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- 行结构与领域对象转换 ---

type userRow struct {
	ID        string            `sql:"id"`
	ClerkID   string            `sql:"clerk_id"`
	Username  string            `sql:"username"`
	Name      string            `sql:"name"`
	Email     string            `sql:"email"`
	AvatarURL stdsql.NullString `sql:"avatar_url"`
	CreatedAt time.Time         `sql:"created_at"`
	UpdatedAt time.Time         `sql:"updated_at"`
}

var userColumns = []string{"id", "clerk_id", "username", "name", "email", "avatar_url", "created_at", "updated_at"}

func (r userRow) toDomain() *model.User {
	return &model.User{
		ID:        r.ID,
		ClerkID:   r.ClerkID,
		Username:  r.Username,
		Name:      r.Name,
		Email:     r.Email,
		AvatarURL: nullString(r.AvatarURL),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type albumRow struct {
	ID           string            `sql:"id"`
	UserID       string            `sql:"user_id"`
	Title        string            `sql:"title"`
	Description  stdsql.NullString `sql:"description"`
	IsPrivate    bool              `sql:"is_private"`
	CoverPhotoID stdsql.NullString `sql:"cover_photo_id"`
	CreatedAt    time.Time         `sql:"created_at"`
	UpdatedAt    time.Time         `sql:"updated_at"`
}

var albumColumns = []string{"id", "user_id", "title", "description", "is_private", "cover_photo_id", "created_at", "updated_at"}

func (r albumRow) toDomain() *model.Album {
	return &model.Album{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  nullString(r.Description),
		IsPrivate:    r.IsPrivate,
		CoverPhotoID: nullString(r.CoverPhotoID),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type photoRow struct {
	ID            string             `sql:"id"`
	UserID        string             `sql:"user_id"`
	AlbumID       string             `sql:"album_id"`
	Title         string             `sql:"title"`
	Description   stdsql.NullString  `sql:"description"`
	URL           string             `sql:"url"`
	StoragePath   string             `sql:"storage_path"`
	ThumbnailURL  string             `sql:"thumbnail_url"`
	AspectRatio   stdsql.NullFloat64 `sql:"aspect_ratio"`
	DominantColor stdsql.NullString  `sql:"dominant_color"`
	TakenAt       stdsql.NullTime    `sql:"taken_at"`
	CreatedAt     time.Time          `sql:"created_at"`
	UpdatedAt     time.Time          `sql:"updated_at"`
	AlbumPrivate  bool               `sql:"album_private"`
}

var photoColumns = []string{
	"id", "user_id", "album_id", "title", "description", "url", "storage_path", "thumbnail_url",
	"aspect_ratio", "dominant_color", "taken_at", "created_at", "updated_at",
}

func (r photoRow) toDomain() *model.Photo {
	p := &model.Photo{
		ID:            r.ID,
		UserID:        r.UserID,
		AlbumID:       r.AlbumID,
		Title:         r.Title,
		Description:   nullString(r.Description),
		URL:           r.URL,
		StoragePath:   r.StoragePath,
		ThumbnailURL:  r.ThumbnailURL,
		DominantColor: nullString(r.DominantColor),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		AlbumPrivate:  r.AlbumPrivate,
	}
	if r.AspectRatio.Valid {
		v := r.AspectRatio.Float64
		p.AspectRatio = &v
	}
	if r.TakenAt.Valid {
		v := r.TakenAt.Time
		p.TakenAt = &v
	}
	return p
}

// summaryColumns 以 summary_ 前缀选出 users 表的精简字段，避免与主表列名冲突。
// 行结构需要声明 summary_user_id、summary_username、summary_name、summary_avatar_url 四列。
func summaryColumns(u *sql.SelectTable) []string {
	return []string{
		sql.As(u.C("id"), "summary_user_id"),
		sql.As(u.C("username"), "summary_username"),
		sql.As(u.C("name"), "summary_name"),
		sql.As(u.C("avatar_url"), "summary_avatar_url"),
	}
}

func toSummary(id, username, name string, avatar stdsql.NullString) model.UserSummary {
	return model.UserSummary{
		ID:        id,
		Username:  username,
		Name:      name,
		AvatarURL: nullString(avatar),
	}
}

// qualified 返回带表名前缀的列
func qualified(t *sql.SelectTable, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = t.C(c)
	}
	return out
}

func nullString(ns stdsql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// nullable 把可空字符串转成插入时使用的值
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
