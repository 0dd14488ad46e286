/*
 * @Description: 缓存服务，Redis 实现与进程内实现
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:42:07
 * @LastEditTime: 2025-10-11 16:30:45
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService 定义了缓存操作。Get 在未命中时返回 ("", nil)。
type CacheService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// SetNX 仅在键不存在时写入，返回是否写入成功
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService 是基于 Redis 的 CacheService 构造函数
func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func (s *redisCacheService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *redisCacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *redisCacheService) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

// memoryCacheService 在未配置 Redis 时使用，仅在单进程内有效
type memoryCacheService struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value    string
	expireAt time.Time
}

func NewMemoryCacheService() CacheService {
	return &memoryCacheService{items: make(map[string]memoryItem), now: time.Now}
}

// getLocked 返回未过期的条目，过期条目顺便清除
func (s *memoryCacheService) getLocked(key string) (memoryItem, bool) {
	item, ok := s.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expireAt.IsZero() && !s.now().Before(item.expireAt) {
		delete(s.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (s *memoryCacheService) expireAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *memoryCacheService) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, _ := s.getLocked(key)
	return item.value, nil
}

func (s *memoryCacheService) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memoryItem{value: value, expireAt: s.expireAt(ttl)}
	return nil
}

func (s *memoryCacheService) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
	return nil
}

func (s *memoryCacheService) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.getLocked(key); ok {
		return false, nil
	}
	s.items[key] = memoryItem{value: value, expireAt: s.expireAt(ttl)}
	return true, nil
}
