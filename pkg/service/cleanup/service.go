/*
 * @Description: 存储对象的尽力删除与孤儿对象重试清理
 * @Author: 安知鱼
 * @Date: 2025-10-06 20:11:37
 * @LastEditTime: 2025-10-11 18:20:16
 * @LastEditors: 安知鱼
 */
package cleanup

import (
	"context"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

const (
	// MaxAttempts 超过该次数的孤儿对象不再重试
	MaxAttempts = 5
	sweepBatch  = 100
)

// SweepResult 是一次清理任务的统计
type SweepResult struct {
	Removed int
	Failed  int
}

// Service 定义了对象删除相关的业务逻辑
type Service interface {
	// RemovePhotoObjects 尽力删除照片原图与缩略图，失败的对象记入孤儿表，不返回错误
	RemovePhotoObjects(ctx context.Context, storagePaths ...string)
	// Sweep 重试删除孤儿表中尚未放弃的对象
	Sweep(ctx context.Context) (*SweepResult, error)
}

type cleanupService struct {
	provider   storage.IStorageProvider
	orphanRepo repository.OrphanRepository
}

func NewService(provider storage.IStorageProvider, orphanRepo repository.OrphanRepository) Service {
	return &cleanupService{provider: provider, orphanRepo: orphanRepo}
}

// ThumbnailKey 返回原图对象键对应的缩略图键
func ThumbnailKey(storagePath string) string {
	return storagePath + constant.ThumbnailSuffix
}

func (s *cleanupService) RemovePhotoObjects(ctx context.Context, storagePaths ...string) {
	for _, p := range storagePaths {
		if p == "" {
			continue
		}
		s.removeOne(ctx, p)
		s.removeOne(ctx, ThumbnailKey(p))
	}
}

func (s *cleanupService) removeOne(ctx context.Context, key string) {
	err := s.provider.Delete(ctx, key)
	if err == nil {
		return
	}
	zap.S().Warnf("[清理服务] 删除存储对象失败，已记录待重试: key=%s, err=%v", key, err)
	if recErr := s.orphanRepo.Record(ctx, key, err.Error()); recErr != nil {
		zap.S().Errorf("[清理服务] 记录孤儿对象失败: key=%s, err=%v", key, recErr)
	}
}

func (s *cleanupService) Sweep(ctx context.Context) (*SweepResult, error) {
	pending, err := s.orphanRepo.ListPending(ctx, MaxAttempts, sweepBatch)
	if err != nil {
		return nil, constant.WrapUpstream("读取孤儿对象失败", err)
	}

	result := &SweepResult{}
	for _, o := range pending {
		if err := s.provider.Delete(ctx, o.StoragePath); err != nil {
			result.Failed++
			if markErr := s.orphanRepo.MarkFailed(ctx, o.ID, err.Error()); markErr != nil {
				zap.S().Errorf("[清理服务] 更新重试次数失败: id=%s, err=%v", o.ID, markErr)
			}
			if o.Attempts+1 >= MaxAttempts {
				zap.S().Errorf("[清理服务] 对象 %s 已重试 %d 次，放弃清理: %v", o.StoragePath, MaxAttempts, err)
			}
			continue
		}
		if err := s.orphanRepo.Delete(ctx, o.ID); err != nil {
			zap.S().Errorf("[清理服务] 删除孤儿记录失败: id=%s, err=%v", o.ID, err)
		}
		result.Removed++
	}
	return result, nil
}
