/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-08-11 17:58:48
 * @LastEditTime: 2025-10-09 15:40:12
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

// CommentRepository 定义了照片评论的持久化操作
type CommentRepository interface {
	// Create 写入评论，返回的记录包含作者的精简信息
	Create(ctx context.Context, comment *model.Comment) (*model.Comment, error)

	// ListByPhoto 按 created_at 正序返回评论，便于按时间阅读
	ListByPhoto(ctx context.Context, photoID string, limit int) ([]*model.Comment, error)

	// Delete 只删除 userID 自己的评论，返回受影响行数
	Delete(ctx context.Context, id, userID string) (int, error)
}
