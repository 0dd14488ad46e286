/*
 * @Description: 照片仓储接口
 * @Author: 安知鱼
 * @Date: 2025-10-03 09:48:19
 * @LastEditTime: 2025-10-10 20:16:55
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"
	"time"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

// UpdatePhotoFields 是照片部分更新的字段
type UpdatePhotoFields struct {
	Title            *string
	Description      *string
	ClearDescription bool
	UpdatedAt        time.Time
}

// PhotoRepository 定义了照片数据的持久化操作。
// 查询结果中的 AlbumPrivate 取自所属相册。
type PhotoRepository interface {
	FindByID(ctx context.Context, id string) (*model.Photo, error)

	// ListByAlbum 按 created_at 倒序返回相册内的照片
	ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error)

	// Search 匹配标题与描述，所属相册需公开或属于 requesterID
	Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Photo, error)

	Create(ctx context.Context, photo *model.Photo) error

	Update(ctx context.Context, id, userID string, fields UpdatePhotoFields) (*model.Photo, error)

	// Delete 删除 userID 拥有的照片，返回被删除的记录，未命中返回 (nil, nil)
	Delete(ctx context.Context, id, userID string) (*model.Photo, error)

	Stats(ctx context.Context, photoID string) (*model.PhotoStats, error)
}
