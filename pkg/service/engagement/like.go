package engagement

import (
	"context"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

func (s *Service) IsLiked(ctx context.Context, photoID, userID string) (bool, error) {
	if err := validID(photoID, "照片"); err != nil {
		return false, err
	}
	ok, err := s.likeRepo.Exists(ctx, userID, photoID)
	if err != nil {
		return false, constant.WrapUpstream("查询点赞状态失败", err)
	}
	return ok, nil
}

// Like 点赞照片，重复点赞视为成功
func (s *Service) Like(ctx context.Context, photoID, userID string) error {
	if _, err := s.photoForWrite(ctx, photoID, userID); err != nil {
		return err
	}
	added, err := s.likeRepo.Add(ctx, userID, photoID)
	if err != nil {
		return constant.WrapUpstream("点赞失败", err)
	}
	if added {
		zap.S().Debugf("[互动服务] 用户 %s 点赞了照片 %s", userID, photoID)
	}
	return nil
}

func (s *Service) Unlike(ctx context.Context, photoID, userID string) error {
	if err := validID(photoID, "照片"); err != nil {
		return err
	}
	if err := s.likeRepo.Remove(ctx, userID, photoID); err != nil {
		return constant.WrapUpstream("取消点赞失败", err)
	}
	return nil
}

// ListLikes 返回最近的点赞记录
func (s *Service) ListLikes(ctx context.Context, photoID, requesterID string) ([]*model.Like, error) {
	if _, err := s.photoForRead(ctx, photoID, requesterID); err != nil {
		return nil, err
	}
	likes, err := s.likeRepo.ListByPhoto(ctx, photoID, constant.DefaultLikeListLimit)
	if err != nil {
		return nil, constant.WrapUpstream("查询点赞列表失败", err)
	}
	return likes, nil
}

// CountLikes 返回照片当前的点赞数
func (s *Service) CountLikes(ctx context.Context, photoID, requesterID string) (int, error) {
	if _, err := s.photoForRead(ctx, photoID, requesterID); err != nil {
		return 0, err
	}
	stats, err := s.photoRepo.Stats(ctx, photoID)
	if err != nil {
		return 0, constant.WrapUpstream("统计点赞数失败", err)
	}
	return stats.LikesCount, nil
}
