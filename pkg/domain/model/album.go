/*
 * @Description: 相册领域模型
 * @Author: 安知鱼
 * @Date: 2025-10-02 16:08:12
 * @LastEditTime: 2025-10-08 09:46:30
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Album 是用户创建的相册，PhotoCount 在读取时由存储层聚合得到
type Album struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	IsPrivate    bool      `json:"is_private"`
	CoverPhotoID *string   `json:"cover_photo_id"`
	PhotoCount   int       `json:"photo_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VisibleTo 判断相册对请求者是否可见，requesterID 为空表示匿名访问
func (a *Album) VisibleTo(requesterID string) bool {
	return !a.IsPrivate || (requesterID != "" && a.UserID == requesterID)
}
