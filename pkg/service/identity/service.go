/*
 * @Description: 身份桥接：把身份提供方的主体映射为本地用户
 * @Author: 安知鱼
 * @Date: 2025-10-04 09:18:22
 * @LastEditTime: 2025-10-11 17:45:09
 * @LastEditors: 安知鱼
 */
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

const (
	userCacheTTL       = 10 * time.Minute
	userCacheKeyPrefix = "anheyu:photos:user:subject:"
	// 用户名冲突时最多尝试的次数
	maxUsernameAttempts = 10
)

// Identity 是来自会话或 Webhook 事件的身份断言
type Identity struct {
	Subject   string
	Email     string
	Username  string
	FirstName string
	LastName  string
	AvatarURL *string
}

// Service 定义了身份桥接的业务逻辑
type Service interface {
	// Sync 返回主体对应的本地用户，不存在时创建，存在时刷新姓名、邮箱与头像
	Sync(ctx context.Context, id Identity) (*model.User, error)
	// CreateFromEvent 处理 user.created 事件，用户已存在时 created 为 false 且不做修改
	CreateFromEvent(ctx context.Context, id Identity) (user *model.User, created bool, err error)
	// UpdateFromEvent 处理 user.updated 事件，主体未知时返回 ErrNotFound
	UpdateFromEvent(ctx context.Context, id Identity) (*model.User, error)
	// DeleteBySubject 处理 user.deleted 事件，关联数据由外键级联删除
	DeleteBySubject(ctx context.Context, subject string) (bool, error)
	// GetBySubject 按主体查询本地用户（带缓存），不存在时返回 ErrNotFound
	GetBySubject(ctx context.Context, subject string) (*model.User, error)
	// GenerateUsername 生成一个未被占用的合法用户名
	GenerateUsername(ctx context.Context, preferred, email string) (string, error)
}

type service struct {
	userRepo repository.UserRepository
	cache    utility.CacheService
	now      func() time.Time
}

// NewService 是身份桥接服务的构造函数，cache 可以为 nil
func NewService(userRepo repository.UserRepository, cache utility.CacheService) Service {
	return &service{
		userRepo: userRepo,
		cache:    cache,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Sync(ctx context.Context, id Identity) (*model.User, error) {
	user, _, err := s.findOrCreate(ctx, id, true)
	return user, err
}

func (s *service) CreateFromEvent(ctx context.Context, id Identity) (*model.User, bool, error) {
	return s.findOrCreate(ctx, id, false)
}

func (s *service) findOrCreate(ctx context.Context, id Identity, refresh bool) (*model.User, bool, error) {
	if id.Subject == "" {
		return nil, false, fmt.Errorf("%w: 缺少身份主体", constant.ErrInvalidIdentity)
	}

	existing, err := s.userRepo.FindByClerkID(ctx, id.Subject)
	if err != nil {
		return nil, false, constant.WrapUpstream("查询用户失败", err)
	}
	if existing != nil {
		if refresh {
			existing, err = s.refresh(ctx, existing, id)
			if err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	}

	email := strings.TrimSpace(id.Email)
	if email == "" {
		return nil, false, constant.ErrInvalidIdentity
	}

	username, err := s.GenerateUsername(ctx, id.Username, email)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	user := &model.User{
		ID:        idgen.NewID(),
		ClerkID:   id.Subject,
		Username:  username,
		Name:      displayName(id.FirstName, id.LastName, username, constant.DefaultUserName),
		Email:     email,
		AvatarURL: id.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, constant.WrapUpstream("创建用户失败", err)
	}
	s.invalidate(ctx, id.Subject)
	zap.S().Infof("[身份服务] 新建本地用户: subject=%s, username=%s", id.Subject, username)
	return user, true, nil
}

// refresh 只在姓名、邮箱、头像确实变化时写库
func (s *service) refresh(ctx context.Context, user *model.User, id Identity) (*model.User, error) {
	changed := false
	if email := strings.TrimSpace(id.Email); email != "" && email != user.Email {
		user.Email = email
		changed = true
	}
	if id.FirstName != "" || id.LastName != "" {
		if name := displayName(id.FirstName, id.LastName, user.Username, constant.DefaultUserName); name != user.Name {
			user.Name = name
			changed = true
		}
	}
	if id.AvatarURL != nil && (user.AvatarURL == nil || *user.AvatarURL != *id.AvatarURL) {
		user.AvatarURL = id.AvatarURL
		changed = true
	}
	if !changed {
		return user, nil
	}

	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, constant.WrapUpstream("更新用户失败", err)
	}
	s.invalidate(ctx, user.ClerkID)
	return user, nil
}

func (s *service) UpdateFromEvent(ctx context.Context, id Identity) (*model.User, error) {
	user, err := s.userRepo.FindByClerkID(ctx, id.Subject)
	if err != nil {
		return nil, constant.WrapUpstream("查询用户失败", err)
	}
	if user == nil {
		return nil, constant.ErrNotFound
	}

	if email := strings.TrimSpace(id.Email); email != "" {
		user.Email = email
	}
	if id.Username != "" {
		candidate := ClampUsername(NormalizeUsername(id.Username))
		if candidate != user.Username {
			taken, err := s.userRepo.FindByUsername(ctx, candidate)
			if err != nil {
				return nil, constant.WrapUpstream("检查用户名失败", err)
			}
			if taken == nil {
				user.Username = candidate
			} else {
				zap.S().Warnf("[身份服务] 用户名 %s 已被占用，保留原用户名 %s", candidate, user.Username)
			}
		}
	}
	user.Name = displayName(id.FirstName, id.LastName, user.Username, constant.DefaultUserName)
	user.AvatarURL = id.AvatarURL
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, constant.WrapUpstream("更新用户失败", err)
	}
	s.invalidate(ctx, id.Subject)
	return user, nil
}

func (s *service) DeleteBySubject(ctx context.Context, subject string) (bool, error) {
	n, err := s.userRepo.DeleteByClerkID(ctx, subject)
	if err != nil {
		return false, constant.WrapUpstream("删除用户失败", err)
	}
	s.invalidate(ctx, subject)
	return n > 0, nil
}

func (s *service) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	key := userCacheKeyPrefix + subject
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err != nil {
			zap.S().Warnf("[身份服务] 读取用户缓存失败，回退到数据库: %v", err)
		} else if raw != "" {
			var cached model.User
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	user, err := s.userRepo.FindByClerkID(ctx, subject)
	if err != nil {
		return nil, constant.WrapUpstream("查询用户失败", err)
	}
	if user == nil {
		return nil, constant.ErrNotFound
	}

	if s.cache != nil {
		if raw, err := json.Marshal(user); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), userCacheTTL); err != nil {
				zap.S().Warnf("[身份服务] 写入用户缓存失败: %v", err)
			}
		}
	}
	return user, nil
}

func (s *service) GenerateUsername(ctx context.Context, preferred, email string) (string, error) {
	base := preferred
	if base == "" {
		base = emailLocalPart(email)
	}
	base = NormalizeUsername(base)

	candidate := ClampUsername(base)
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		existing, err := s.userRepo.FindByUsername(ctx, candidate)
		if err != nil {
			return "", constant.WrapUpstream("检查用户名失败", err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = withSuffix(base)
	}
	return "", fmt.Errorf("%w: 无法为 %s 生成唯一的用户名", constant.ErrInvalidOperation, base)
}

func (s *service) invalidate(ctx context.Context, subject string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userCacheKeyPrefix+subject); err != nil {
		zap.S().Warnf("[身份服务] 清除用户缓存失败: %v", err)
	}
}
