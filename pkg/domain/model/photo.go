/*
 * @Description: 照片领域模型
 * @Author: 安知鱼
 * @Date: 2025-10-02 16:12:50
 * @LastEditTime: 2025-10-10 20:14:03
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Photo 属于一个相册，可见性跟随所属相册
type Photo struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	AlbumID       string     `json:"album_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	URL           string     `json:"url"`
	StoragePath   string     `json:"storage_path"`
	ThumbnailURL  string     `json:"thumbnail_url"`
	AspectRatio   *float64   `json:"aspect_ratio"`
	DominantColor *string    `json:"dominant_color"`
	TakenAt       *time.Time `json:"taken_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// AlbumPrivate 是查询时一并取出的所属相册可见性
	AlbumPrivate bool `json:"-"`
}

// VisibleTo 判断照片对请求者是否可见
func (p *Photo) VisibleTo(requesterID string) bool {
	return !p.AlbumPrivate || (requesterID != "" && p.UserID == requesterID)
}

// PhotoStats 是照片详情页的互动计数
type PhotoStats struct {
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`
}
