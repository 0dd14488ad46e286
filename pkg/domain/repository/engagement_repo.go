/*
 * @Description: 点赞、收藏、关注等关联表仓储接口
 * @Author: 安知鱼
 * @Date: 2025-10-03 11:02:58
 * @LastEditTime: 2025-10-09 16:11:20
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

// Add 系列方法在记录已存在时返回 (false, nil)，由唯一索引保证不会产生重复行。

// LikeRepository 照片点赞
type LikeRepository interface {
	Exists(ctx context.Context, userID, photoID string) (bool, error)
	Add(ctx context.Context, userID, photoID string) (bool, error)
	Remove(ctx context.Context, userID, photoID string) error
	// ListByPhoto 按 created_at 倒序返回点赞记录
	ListByPhoto(ctx context.Context, photoID string, limit int) ([]*model.Like, error)
}

// BookmarkRepository 照片与相册收藏
type BookmarkRepository interface {
	IsPhotoBookmarked(ctx context.Context, userID, photoID string) (bool, error)
	AddPhoto(ctx context.Context, userID, photoID string) (bool, error)
	RemovePhoto(ctx context.Context, userID, photoID string) error
	// ListPhotos 按收藏时间倒序返回照片，已不可见的私有照片会被过滤
	ListPhotos(ctx context.Context, userID string) ([]*model.Photo, error)

	IsAlbumBookmarked(ctx context.Context, userID, albumID string) (bool, error)
	AddAlbum(ctx context.Context, userID, albumID string) (bool, error)
	RemoveAlbum(ctx context.Context, userID, albumID string) error
	ListAlbums(ctx context.Context, userID string) ([]*model.Album, error)
}

// FollowRepository 用户关注关系
type FollowRepository interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Add(ctx context.Context, followerID, followingID string) (bool, error)
	Remove(ctx context.Context, followerID, followingID string) error
	// ListFollowers 返回关注 userID 的用户
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*model.Follow, error)
	// ListFollowing 返回 userID 关注的用户
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*model.Follow, error)
}

// OrphanRepository 记录删除失败的存储对象，供定时任务重试
type OrphanRepository interface {
	Record(ctx context.Context, storagePath, lastError string) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]*model.StorageOrphan, error)
	MarkFailed(ctx context.Context, id, lastError string) error
	Delete(ctx context.Context, id string) error
}
