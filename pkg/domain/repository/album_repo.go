/*
 * @Description: 相册仓储接口
 * @Author: 安知鱼
 * @Date: 2025-10-03 09:30:02
 * @LastEditTime: 2025-10-08 10:21:47
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

// UpdateAlbumFields 是部分更新时需要写入的字段，nil 表示不修改。
// ClearDescription/ClearCover 为 true 时对应列被置空。
type UpdateAlbumFields struct {
	Title            *string
	Description      *string
	ClearDescription bool
	IsPrivate        *bool
	CoverPhotoID     *string
	ClearCover       bool
	UpdatedAt        time.Time
}

// AlbumRepository 定义了相册数据的持久化操作
type AlbumRepository interface {
	FindByID(ctx context.Context, id string) (*model.Album, error)

	// ListByOwner 按 updated_at 倒序返回用户的全部相册
	ListByOwner(ctx context.Context, userID string) ([]*model.Album, error)

	// ListPublic 按 updated_at 倒序分页返回公开相册
	ListPublic(ctx context.Context, limit, offset int) ([]*model.Album, error)

	// Search 匹配标题与描述，只返回公开相册或 requesterID 拥有的相册
	Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Album, error)

	Create(ctx context.Context, album *model.Album) error

	// Update 仅在 id 与 userID 同时匹配时更新，未命中返回 (nil, nil)
	Update(ctx context.Context, id, userID string, fields UpdateAlbumFields) (*model.Album, error)

	// Delete 仅删除 userID 拥有的相册，返回受影响行数
	Delete(ctx context.Context, id, userID string) (int, error)
}
