/*
 * @Description: 用户领域模型
 * @Author: 安知鱼
 * @Date: 2025-10-02 16:01:37
 * @LastEditTime: 2025-10-08 09:45:51
 * @LastEditors: 安知鱼
 */
package model

import "time"

// User 是本地用户记录，通过 ClerkID 与身份提供方的主体关联
type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerk_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary 是嵌入在点赞、评论、关注列表中的精简用户信息
type UserSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// Summary 返回用户的精简信息
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

// UserStats 是个人主页展示的计数
type UserStats struct {
	AlbumCount     int `json:"album_count"`
	PhotoCount     int `json:"photo_count"`
	FollowingCount int `json:"following_count"`
	FollowersCount int `json:"followers_count"`
}
