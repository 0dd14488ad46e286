/*
 * @Description: 用户查询与个人主页
 * @Author: 安知鱼
 * @Date: 2025-06-20 13:27:06
 * @LastEditTime: 2025-10-11 10:26:37
 * @LastEditors: 安知鱼
 */
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
)

const defaultUserListLimit = 20

// UserProfile 是个人主页的数据，其他人查看时不包含私有相册
type UserProfile struct {
	User   *model.User      `json:"user"`
	Stats  *model.UserStats `json:"stats"`
	Albums []*model.Album   `json:"albums"`
}

// UserService 定义了用户相关的业务逻辑接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error)
	GetProfile(ctx context.Context, id, requesterID string) (*UserProfile, error)
	GetStats(ctx context.Context, id string) (*model.UserStats, error)
}

// userService 是 UserService 接口的实现
type userService struct {
	userRepo    repository.UserRepository
	albumRepo   repository.AlbumRepository
	identitySvc identity.Service
}

// NewUserService 是 userService 的构造函数
func NewUserService(userRepo repository.UserRepository, albumRepo repository.AlbumRepository, identitySvc identity.Service) UserService {
	return &userService{
		userRepo:    userRepo,
		albumRepo:   albumRepo,
		identitySvc: identitySvc,
	}
}

// GetByID 实现了根据用户ID获取用户信息的业务逻辑
func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !idgen.IsValidID(id) {
		return nil, fmt.Errorf("%w: 用户ID格式错误", constant.ErrInvalidInput)
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, constant.WrapUpstream("获取用户信息时数据库出错", err)
	}
	if user == nil {
		return nil, constant.ErrNotFound
	}
	return user, nil
}

func (s *userService) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	return s.identitySvc.GetBySubject(ctx, subject)
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(defaultUserListLimit, constant.MaxPageLimit)
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("查询用户列表失败", err)
	}
	return users, nil
}

// Search 在用户名、昵称与邮箱中做大小写不敏感的匹配
func (s *userService) Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: 搜索关键字不能为空", constant.ErrInvalidInput)
	}
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(defaultUserListLimit, constant.MaxPageLimit)
	users, err := s.userRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("搜索用户失败", err)
	}
	return users, nil
}

func (s *userService) GetProfile(ctx context.Context, id, requesterID string) (*UserProfile, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.GetStats(ctx, id)
	if err != nil {
		return nil, err
	}
	albums, err := s.albumRepo.ListByOwner(ctx, id)
	if err != nil {
		return nil, constant.WrapUpstream("查询用户相册失败", err)
	}

	visible := make([]*model.Album, 0, len(albums))
	for _, a := range albums {
		if a.VisibleTo(requesterID) {
			visible = append(visible, a)
		}
	}
	return &UserProfile{User: user, Stats: stats, Albums: visible}, nil
}

func (s *userService) GetStats(ctx context.Context, id string) (*model.UserStats, error) {
	stats, err := s.userRepo.Stats(ctx, id)
	if err != nil {
		return nil, constant.WrapUpstream("统计用户数据失败", err)
	}
	return stats, nil
}
