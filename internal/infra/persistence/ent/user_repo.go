package ent

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

// entUserRepository 是 UserRepository 的 ent SQL 实现
type entUserRepository struct {
	base
}

// NewEntUserRepository 是 entUserRepository 的构造函数
func NewEntUserRepository(drv dialect.Driver) repository.UserRepository {
	return &entUserRepository{base{drv: drv}}
}

func (r *entUserRepository) findOne(ctx context.Context, pred *sql.Predicate) (*model.User, error) {
	b := r.builder()
	q := b.Select(userColumns...).From(b.Table(tableUsers)).Where(pred).Limit(1)
	var rows []userRow
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (r *entUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, sql.EQ("id", id))
}

func (r *entUserRepository) FindByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	return r.findOne(ctx, sql.EQ("clerk_id", clerkID))
}

func (r *entUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, sql.EQ("username", username))
}

func (r *entUserRepository) Create(ctx context.Context, u *model.User) error {
	q := r.builder().Insert(tableUsers).
		Columns(userColumns...).
		Values(u.ID, u.ClerkID, u.Username, u.Name, u.Email, nullable(u.AvatarURL), u.CreatedAt, u.UpdatedAt)
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}

func (r *entUserRepository) Update(ctx context.Context, u *model.User) error {
	q := r.builder().Update(tableUsers).
		Set("username", u.Username).
		Set("name", u.Name).
		Set("email", u.Email).
		Set("updated_at", u.UpdatedAt)
	if u.AvatarURL != nil {
		q.Set("avatar_url", *u.AvatarURL)
	} else {
		q.SetNull("avatar_url")
	}
	q.Where(sql.EQ("id", u.ID))
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("更新用户失败: %w", err)
	}
	return nil
}

func (r *entUserRepository) DeleteByClerkID(ctx context.Context, clerkID string) (int, error) {
	n, err := r.exec(ctx, r.builder().Delete(tableUsers).Where(sql.EQ("clerk_id", clerkID)))
	if err != nil {
		return 0, fmt.Errorf("删除用户失败: %w", err)
	}
	return n, nil
}

func (r *entUserRepository) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return r.list(ctx, nil, limit, offset)
}

func (r *entUserRepository) Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error) {
	pred := sql.Or(
		sql.ContainsFold("username", query),
		sql.ContainsFold("name", query),
		sql.ContainsFold("email", query),
	)
	return r.list(ctx, pred, limit, offset)
}

func (r *entUserRepository) list(ctx context.Context, pred *sql.Predicate, limit, offset int) ([]*model.User, error) {
	b := r.builder()
	q := b.Select(userColumns...).From(b.Table(tableUsers)).
		OrderBy(sql.Desc("created_at")).
		Limit(limit).
		Offset(offset)
	if pred != nil {
		q.Where(pred)
	}
	var rows []userRow
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// Stats 统计用户的相册、照片、关注与粉丝数
func (r *entUserRepository) Stats(ctx context.Context, userID string) (*model.UserStats, error) {
	var (
		stats model.UserStats
		err   error
	)
	if stats.AlbumCount, err = r.count(ctx, tableAlbums, sql.EQ("user_id", userID)); err != nil {
		return nil, err
	}
	if stats.PhotoCount, err = r.count(ctx, tablePhotos, sql.EQ("user_id", userID)); err != nil {
		return nil, err
	}
	if stats.FollowingCount, err = r.count(ctx, tableFollows, sql.EQ("follower_id", userID)); err != nil {
		return nil, err
	}
	if stats.FollowersCount, err = r.count(ctx, tableFollows, sql.EQ("following_id", userID)); err != nil {
		return nil, err
	}
	return &stats, nil
}
