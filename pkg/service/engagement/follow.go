package engagement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

func (s *Service) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	if err := validID(targetID, "用户"); err != nil {
		return false, err
	}
	ok, err := s.followRepo.Exists(ctx, followerID, targetID)
	if err != nil {
		return false, constant.WrapUpstream("查询关注状态失败", err)
	}
	return ok, nil
}

// Follow 关注用户，不能关注自己
func (s *Service) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return fmt.Errorf("%w: 不能关注自己", constant.ErrInvalidOperation)
	}
	if _, err := s.existingUser(ctx, targetID); err != nil {
		return err
	}
	added, err := s.followRepo.Add(ctx, followerID, targetID)
	if err != nil {
		return constant.WrapUpstream("关注用户失败", err)
	}
	if added {
		zap.S().Debugf("[互动服务] 用户 %s 关注了 %s", followerID, targetID)
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) error {
	if err := validID(targetID, "用户"); err != nil {
		return err
	}
	if err := s.followRepo.Remove(ctx, followerID, targetID); err != nil {
		return constant.WrapUpstream("取消关注失败", err)
	}
	return nil
}

// ListFollowers 返回关注 userID 的用户
func (s *Service) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*model.Follow, error) {
	if _, err := s.existingUser(ctx, userID); err != nil {
		return nil, err
	}
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(constant.DefaultFollowListLimit, constant.MaxPageLimit)
	follows, err := s.followRepo.ListFollowers(ctx, userID, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("查询粉丝列表失败", err)
	}
	return follows, nil
}

// ListFollowing 返回 userID 关注的用户
func (s *Service) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*model.Follow, error) {
	if _, err := s.existingUser(ctx, userID); err != nil {
		return nil, err
	}
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(constant.DefaultFollowListLimit, constant.MaxPageLimit)
	follows, err := s.followRepo.ListFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("查询关注列表失败", err)
	}
	return follows, nil
}
