/*
 * @Description: 用户仓储接口
 * @Author: 安知鱼
 * @Date: 2025-10-03 09:12:40
 * @LastEditTime: 2025-10-08 10:20:03
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

// UserRepository 定义了用户数据的持久化操作。
// 单条查询在记录不存在时返回 (nil, nil)。
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create 插入新用户，ID 与时间戳由调用方填充
	Create(ctx context.Context, user *model.User) error

	// Update 按 ID 覆盖可变字段 (username, name, email, avatar_url, updated_at)
	Update(ctx context.Context, user *model.User) error

	// DeleteByClerkID 删除身份主体对应的用户，关联数据由外键级联删除
	DeleteByClerkID(ctx context.Context, clerkID string) (int, error)

	List(ctx context.Context, limit, offset int) ([]*model.User, error)

	// Search 在 username、name、email 上做大小写不敏感的子串匹配
	Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error)

	Stats(ctx context.Context, userID string) (*model.UserStats, error)
}
