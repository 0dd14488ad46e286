/*
 * @Description: 点赞、评论、收藏与关注
 * @Author: 安知鱼
 * @Date: 2025-10-06 09:41:13
 * @LastEditTime: 2025-10-11 15:08:47
 * @LastEditors: 安知鱼
 */
package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/parser"
)

// Service 互动服务的核心业务逻辑。
// 写操作针对他人私有内容返回 ErrForbidden，读操作对不可见内容返回 ErrNotFound。
type Service struct {
	userRepo     repository.UserRepository
	albumRepo    repository.AlbumRepository
	photoRepo    repository.PhotoRepository
	likeRepo     repository.LikeRepository
	commentRepo  repository.CommentRepository
	bookmarkRepo repository.BookmarkRepository
	followRepo   repository.FollowRepository
	parserSvc    *parser.Service
	now          func() time.Time
}

// NewService 创建一个新的互动服务实例。
func NewService(
	userRepo repository.UserRepository,
	albumRepo repository.AlbumRepository,
	photoRepo repository.PhotoRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	bookmarkRepo repository.BookmarkRepository,
	followRepo repository.FollowRepository,
	parserSvc *parser.Service,
) *Service {
	return &Service{
		userRepo:     userRepo,
		albumRepo:    albumRepo,
		photoRepo:    photoRepo,
		likeRepo:     likeRepo,
		commentRepo:  commentRepo,
		bookmarkRepo: bookmarkRepo,
		followRepo:   followRepo,
		parserSvc:    parserSvc,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// photoForWrite 返回可以被 userID 互动的照片
func (s *Service) photoForWrite(ctx context.Context, photoID, userID string) (*model.Photo, error) {
	photo, err := s.findPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !photo.VisibleTo(userID) {
		return nil, constant.ErrForbidden
	}
	return photo, nil
}

// photoForRead 返回对 userID 可见的照片，不可见时与不存在相同
func (s *Service) photoForRead(ctx context.Context, photoID, userID string) (*model.Photo, error) {
	photo, err := s.findPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !photo.VisibleTo(userID) {
		return nil, constant.ErrNotFound
	}
	return photo, nil
}

func (s *Service) findPhoto(ctx context.Context, photoID string) (*model.Photo, error) {
	if !idgen.IsValidID(photoID) {
		return nil, fmt.Errorf("%w: 照片ID格式错误", constant.ErrInvalidInput)
	}
	photo, err := s.photoRepo.FindByID(ctx, photoID)
	if err != nil {
		return nil, constant.WrapUpstream("查询照片失败", err)
	}
	if photo == nil {
		return nil, constant.ErrNotFound
	}
	return photo, nil
}

func (s *Service) albumForWrite(ctx context.Context, albumID, userID string) (*model.Album, error) {
	if !idgen.IsValidID(albumID) {
		return nil, fmt.Errorf("%w: 相册ID格式错误", constant.ErrInvalidInput)
	}
	album, err := s.albumRepo.FindByID(ctx, albumID)
	if err != nil {
		return nil, constant.WrapUpstream("查询相册失败", err)
	}
	if album == nil {
		return nil, constant.ErrNotFound
	}
	if !album.VisibleTo(userID) {
		return nil, constant.ErrForbidden
	}
	return album, nil
}

func (s *Service) existingUser(ctx context.Context, userID string) (*model.User, error) {
	if !idgen.IsValidID(userID) {
		return nil, fmt.Errorf("%w: 用户ID格式错误", constant.ErrInvalidInput)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, constant.WrapUpstream("查询用户失败", err)
	}
	if user == nil {
		return nil, constant.ErrNotFound
	}
	return user, nil
}

func validID(id, what string) error {
	if !idgen.IsValidID(id) {
		return fmt.Errorf("%w: %sID格式错误", constant.ErrInvalidInput, what)
	}
	return nil
}
