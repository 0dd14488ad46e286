/*
 * @Description: 身份提供方的 Webhook 事件处理
 * @Author: 安知鱼
 * @Date: 2025-10-07 15:02:41
 * @LastEditTime: 2025-10-11 18:03:27
 * @LastEditors: 安知鱼
 */
package webhook

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

const (
	replayKeyPrefix = "anheyu:photos:webhook:"
	replayTTL       = 24 * time.Hour
)

// Outcome 是事件处理结果，Message 会原样返回给调用方
type Outcome struct {
	Message string
	User    *model.User
}

// Service 校验签名、去重并把事件分发给身份桥接服务
type Service struct {
	verifier    *Verifier
	identitySvc identity.Service
	cache       utility.CacheService
}

// NewService 创建 Webhook 服务，cache 为 nil 时不做重放保护
func NewService(verifier *Verifier, identitySvc identity.Service, cache utility.CacheService) *Service {
	return &Service{verifier: verifier, identitySvc: identitySvc, cache: cache}
}

func (s *Service) Handle(ctx context.Context, header http.Header, body []byte) (*Outcome, error) {
	if err := s.verifier.Verify(header, body); err != nil {
		return nil, err
	}

	evt, err := ParseEvent(body)
	if err != nil {
		return nil, err
	}

	msgID := header.Get(HeaderID)
	first, release := s.claim(ctx, msgID)
	if !first {
		zap.S().Infof("[Webhook] 重复投递的消息 %s 已忽略", msgID)
		return &Outcome{Message: "Event already processed"}, nil
	}

	zap.S().Infof("[Webhook] 收到事件: %s", evt.Type())
	out, err := s.dispatch(ctx, evt)
	if err != nil {
		// 处理失败时释放去重标记，允许提供方重试
		release()
		return nil, err
	}
	return out, nil
}

// claim 用 SETNX 标记消息，缓存不可用时视为首次投递
func (s *Service) claim(ctx context.Context, msgID string) (bool, func()) {
	noop := func() {}
	if s.cache == nil {
		return true, noop
	}
	key := replayKeyPrefix + msgID
	ok, err := s.cache.SetNX(ctx, key, "1", replayTTL)
	if err != nil {
		zap.S().Warnf("[Webhook] 写入重放标记失败，继续处理: %v", err)
		return true, noop
	}
	if !ok {
		return false, noop
	}
	return true, func() {
		if err := s.cache.Delete(ctx, key); err != nil {
			zap.S().Warnf("[Webhook] 释放重放标记失败: %v", err)
		}
	}
}

func (s *Service) dispatch(ctx context.Context, evt Event) (*Outcome, error) {
	switch e := evt.(type) {
	case UserCreated:
		user, created, err := s.identitySvc.CreateFromEvent(ctx, e.Identity)
		if err != nil {
			return nil, err
		}
		if !created {
			return &Outcome{Message: "User already exists", User: user}, nil
		}
		return &Outcome{Message: "User created", User: user}, nil
	case UserUpdated:
		user, err := s.identitySvc.UpdateFromEvent(ctx, e.Identity)
		if err != nil {
			return nil, err
		}
		return &Outcome{Message: "User updated", User: user}, nil
	case UserDeleted:
		deleted, err := s.identitySvc.DeleteBySubject(ctx, e.Subject)
		if err != nil {
			return nil, err
		}
		if !deleted {
			zap.S().Infof("[Webhook] 待删除的用户 %s 不存在", e.Subject)
		}
		return &Outcome{Message: "User deleted"}, nil
	default:
		return &Outcome{Message: "Unhandled event type: " + evt.Type()}, nil
	}
}
