/*
 * @Description: 照片评论仓储
 * @Author: 安知鱼
 * @Date: 2025-08-11 17:58:48
 * @LastEditTime: 2025-10-09 15:52:36
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
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

type commentRow struct {
	ID            string            `sql:"id"`
	PhotoID       string            `sql:"photo_id"`
	UserID        string            `sql:"user_id"`
	Content       string            `sql:"content"`
	ContentHTML   string            `sql:"content_html"`
	CreatedAt     time.Time         `sql:"created_at"`
	SummaryUserID string            `sql:"summary_user_id"`
	SummaryUser   string            `sql:"summary_username"`
	SummaryName   string            `sql:"summary_name"`
	SummaryAvatar stdsql.NullString `sql:"summary_avatar_url"`
}

func (r commentRow) toDomain() *model.Comment {
	return &model.Comment{
		ID:          r.ID,
		PhotoID:     r.PhotoID,
		UserID:      r.UserID,
		Content:     r.Content,
		ContentHTML: r.ContentHTML,
		CreatedAt:   r.CreatedAt,
		User:        toSummary(r.SummaryUserID, r.SummaryUser, r.SummaryName, r.SummaryAvatar),
	}
}

var commentColumns = []string{"id", "photo_id", "user_id", "content", "content_html", "created_at"}

type entCommentRepository struct {
	base
}

// NewEntCommentRepository 是评论仓储的构造函数
func NewEntCommentRepository(drv dialect.Driver) repository.CommentRepository {
	return &entCommentRepository{base{drv: drv}}
}

func (r *entCommentRepository) selectComments(ctx context.Context, pred func(c *sql.SelectTable) *sql.Predicate, limit int) ([]*model.Comment, error) {
	b := r.builder()
	c := b.Table(tableComments).As("c")
	u := b.Table(tableUsers).As("u")
	q := b.Select(append(qualified(c, commentColumns), summaryColumns(u)...)...).
		From(c).
		Join(u).On(c.C("user_id"), u.C("id")).
		Where(pred(c)).
		OrderBy(c.C("created_at"))
	if limit > 0 {
		q.Limit(limit)
	}
	var rows []commentRow
	if err := r.scan(ctx, q, &rows); err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toDomain())
	}
	return comments, nil
}

func (r *entCommentRepository) Create(ctx context.Context, cm *model.Comment) (*model.Comment, error) {
	q := r.builder().Insert(tableComments).
		Columns(commentColumns...).
		Values(cm.ID, cm.PhotoID, cm.UserID, cm.Content, cm.ContentHTML, cm.CreatedAt)
	if _, err := r.exec(ctx, q); err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}
	created, err := r.selectComments(ctx, func(c *sql.SelectTable) *sql.Predicate {
		return sql.EQ(c.C("id"), cm.ID)
	}, 1)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("创建评论后未能读取记录: %s", cm.ID)
	}
	return created[0], nil
}

func (r *entCommentRepository) ListByPhoto(ctx context.Context, photoID string, limit int) ([]*model.Comment, error) {
	return r.selectComments(ctx, func(c *sql.SelectTable) *sql.Predicate {
		return sql.EQ(c.C("photo_id"), photoID)
	}, limit)
}

func (r *entCommentRepository) Delete(ctx context.Context, id, userID string) (int, error) {
	q := r.builder().Delete(tableComments).Where(sql.And(sql.EQ("id", id), sql.EQ("user_id", userID)))
	n, err := r.exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("删除评论失败: %w", err)
	}
	return n, nil
}
