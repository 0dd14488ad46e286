/*
 * @Description: 点赞、评论、收藏、关注等互动记录
 * @Author: 安知鱼
 * @Date: 2025-10-03 10:22:16
 * @LastEditTime: 2025-10-09 15:37:40
 * @LastEditors: 安知鱼
 */
package model

import "time"

// Like 是点赞记录，附带点赞用户的精简信息
type Like struct {
	ID        string      `json:"id"`
	PhotoID   string      `json:"photo_id"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// Comment 是照片下的评论，ContentHTML 为经过清洗的渲染结果
type Comment struct {
	ID          string      `json:"id"`
	PhotoID     string      `json:"photo_id"`
	UserID      string      `json:"user_id"`
	Content     string      `json:"content"`
	ContentHTML string      `json:"content_html"`
	CreatedAt   time.Time   `json:"created_at"`
	User        UserSummary `json:"user"`
}

// Follow 是关注关系，User 为列表中展示的对端用户
type Follow struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// StorageOrphan 记录删除失败、等待重试清理的存储对象
type StorageOrphan struct {
	ID          string    `json:"id"`
	StoragePath string    `json:"storage_path"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error"`
	CreatedAt   time.Time `json:"created_at"`
}
