/*
 * @Description: 用户、相册、照片的综合搜索
 * @Author: 安知鱼
 * @Date: 2025-10-07 11:20:36
 * @LastEditTime: 2025-10-11 14:52:18
 * @LastEditors: 安知鱼
 */

package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/album"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/photo"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/user"
)

// Query 是一次搜索请求，Requester 为空表示匿名
type Query struct {
	Text      string
	Type      string
	Limit     int
	Page      int
	Requester string
}

// Result 是搜索结果，未请求的类别为空切片
type Result struct {
	Users  []*model.User  `json:"users"`
	Albums []*model.Album `json:"albums"`
	Photos []*model.Photo `json:"photos"`
	Query  string         `json:"query"`
	Type   string         `json:"type"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// Service 组合各实体服务完成搜索，可见性由各服务保证
type Service struct {
	userSvc  user.UserService
	albumSvc album.AlbumService
	photoSvc photo.PhotoService
}

func NewService(userSvc user.UserService, albumSvc album.AlbumService, photoSvc photo.PhotoService) *Service {
	return &Service{userSvc: userSvc, albumSvc: albumSvc, photoSvc: photoSvc}
}

// normalize 校验并补全查询参数，返回每个类别的 limit 与 offset
func normalize(q Query) (Query, int, int, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, 0, 0, fmt.Errorf("%w: 搜索关键字不能为空", constant.ErrInvalidInput)
	}
	q.Type = strings.ToLower(strings.TrimSpace(q.Type))
	switch q.Type {
	case "":
		q.Type = constant.SearchTypeAll
	case constant.SearchTypeAll, constant.SearchTypeUsers, constant.SearchTypeAlbums, constant.SearchTypePhotos:
	default:
		return q, 0, 0, fmt.Errorf("%w: 不支持的搜索类型 %q", constant.ErrInvalidInput, q.Type)
	}
	if q.Limit <= 0 {
		q.Limit = constant.DefaultSearchLimit
	}
	if q.Limit > constant.MaxPageLimit {
		q.Limit = constant.MaxPageLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	// all 是各类别的预览，只返回前几条，不参与分页
	if q.Type == constant.SearchTypeAll {
		return q, constant.SearchAllCategoryLimit, 0, nil
	}
	return q, q.Limit, (q.Page - 1) * q.Limit, nil
}

func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	q, limit, offset, err := normalize(q)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Users:  []*model.User{},
		Albums: []*model.Album{},
		Photos: []*model.Photo{},
		Query:  q.Text,
		Type:   q.Type,
		Page:   q.Page,
		Limit:  q.Limit,
	}
	all := q.Type == constant.SearchTypeAll

	if all || q.Type == constant.SearchTypeUsers {
		if res.Users, err = s.userSvc.Search(ctx, q.Text, limit, offset); err != nil {
			return nil, err
		}
	}
	if all || q.Type == constant.SearchTypeAlbums {
		if res.Albums, err = s.albumSvc.Search(ctx, q.Text, q.Requester, limit, offset); err != nil {
			return nil, err
		}
	}
	if all || q.Type == constant.SearchTypePhotos {
		if res.Photos, err = s.photoSvc.Search(ctx, q.Text, q.Requester, limit, offset); err != nil {
			return nil, err
		}
	}
	return res, nil
}
