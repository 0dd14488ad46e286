/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2025-10-05 21:20:12
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/config"
)

// NewRedisClient 根据配置创建 Redis 客户端并检查连通性
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	redisAddr := cfg.GetString(config.KeyRedisAddr)
	redisPassword := cfg.GetString(config.KeyRedisPassword)
	redisDBStr := cfg.GetStringDefault(config.KeyRedisDB, "10")

	if redisAddr == "" {
		return nil, fmt.Errorf("Redis.Addr 未在配置中设置")
	}

	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("无效的 Redis.DB 值 '%s': %w", redisDBStr, err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("连接 Redis (%s, DB %d) 失败: %w", redisAddr, redisDB, err)
	}

	zap.S().Infof("成功连接到 Redis (%s, DB %d)", redisAddr, redisDB)
	return rdb, nil
}
