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

type entLikeRepository struct {
	base
}

// NewEntLikeRepository 是点赞仓储的构造函数
func NewEntLikeRepository(drv dialect.Driver) repository.LikeRepository {
	return &entLikeRepository{base{drv: drv}}
}

func (r *entLikeRepository) Exists(ctx context.Context, userID, photoID string) (bool, error) {
	return r.pairExists(ctx, tablePhotoLikes, "user_id", "photo_id", userID, photoID)
}

func (r *entLikeRepository) Add(ctx context.Context, userID, photoID string) (bool, error) {
	return r.addPair(ctx, tablePhotoLikes, "user_id", "photo_id", userID, photoID)
}

func (r *entLikeRepository) Remove(ctx context.Context, userID, photoID string) error {
	return r.removePair(ctx, tablePhotoLikes, "user_id", "photo_id", userID, photoID)
}

func (r *entLikeRepository) ListByPhoto(ctx context.Context, photoID string, limit int) ([]*model.Like, error) {
	b := r.builder()
	l := b.Table(tablePhotoLikes).As("l")
	u := b.Table(tableUsers).As("u")
	q := b.Select(append([]string{l.C("id"), l.C("photo_id"), l.C("created_at")}, summaryColumns(u)...)...).
		From(l).
		Join(u).On(l.C("user_id"), u.C("id")).
		Where(sql.EQ(l.C("photo_id"), photoID)).
		OrderBy(sql.Desc(l.C("created_at"))).
		Limit(limit)

	var rows []struct {
		ID            string            `sql:"id"`
		PhotoID       string            `sql:"photo_id"`
		CreatedAt     time.Time         `sql:"created_at"`
		SummaryUserID string            `sql:"summary_user_id"`
		SummaryUser   string            `sql:"summary_username"`
		SummaryName   string            `sql:"summary_name"`
		SummaryAvatar stdsql.NullString `sql:"summary_avatar_url"`
	}
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	likes := make([]*model.Like, 0, len(rows))
	for _, row := range rows {
		likes = append(likes, &model.Like{
			ID:        row.ID,
			PhotoID:   row.PhotoID,
			CreatedAt: row.CreatedAt,
			User:      toSummary(row.SummaryUserID, row.SummaryUser, row.SummaryName, row.SummaryAvatar),
		})
	}
	return likes, nil
}
