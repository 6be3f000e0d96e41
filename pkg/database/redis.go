package database

import (
	"context"
	"fmt"
	"time"

	"hamexam_backend/internal/config"
	"hamexam_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// InitRedis 建立 Redis 连接并用带超时的 Ping 验证可达。
// 练习映射、验证码、AI 解释缓存都走这一个客户端。
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Log.Info("Redis connection established")
	return rdb, nil
}
