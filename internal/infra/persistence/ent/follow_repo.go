package ent

import (
	"context"
	stdsql "database/sql"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

type entFollowRepository struct {
	base
}

// NewEntFollowRepository 是关注关系仓储的构造函数
func NewEntFollowRepository(drv dialect.Driver) repository.FollowRepository {
	return &entFollowRepository{base{drv: drv}}
}

func (r *entFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	return r.pairExists(ctx, tableFollows, "follower_id", "following_id", followerID, followingID)
}

func (r *entFollowRepository) Add(ctx context.Context, followerID, followingID string) (bool, error) {
	return r.addPair(ctx, tableFollows, "follower_id", "following_id", followerID, followingID)
}

func (r *entFollowRepository) Remove(ctx context.Context, followerID, followingID string) error {
	return r.removePair(ctx, tableFollows, "follower_id", "following_id", followerID, followingID)
}

func (r *entFollowRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*model.Follow, error) {
	return r.list(ctx, "following_id", "follower_id", userID, limit, offset)
}

func (r *entFollowRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*model.Follow, error) {
	return r.list(ctx, "follower_id", "following_id", userID, limit, offset)
}

// list 以 matchCol = userID 过滤，并关联 joinCol 指向的对端用户
func (r *entFollowRepository) list(ctx context.Context, matchCol, joinCol, userID string, limit, offset int) ([]*model.Follow, error) {
	b := r.builder()
	f := b.Table(tableFollows).As("f")
	u := b.Table(tableUsers).As("u")
	q := b.Select(append([]string{f.C("id"), f.C("created_at")}, summaryColumns(u)...)...).
		From(f).
		Join(u).On(f.C(joinCol), u.C("id")).
		Where(sql.EQ(f.C(matchCol), userID)).
		OrderBy(sql.Desc(f.C("created_at"))).
		Limit(limit).
		Offset(offset)

	var rows []struct {
		ID            string            `sql:"id"`
		CreatedAt     time.Time         `sql:"created_at"`
		SummaryUserID string            `sql:"summary_user_id"`
		SummaryUser   string            `sql:"summary_username"`
		SummaryName   string            `sql:"summary_name"`
		SummaryAvatar stdsql.NullString `sql:"summary_avatar_url"`
	}
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	follows := make([]*model.Follow, 0, len(rows))
	for _, row := range rows {
		follows = append(follows, &model.Follow{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			User:      toSummary(row.SummaryUserID, row.SummaryUser, row.SummaryName, row.SummaryAvatar),
		})
	}
	return follows, nil
}
