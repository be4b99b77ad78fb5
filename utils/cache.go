// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"appointly/config"

	"github.com/go-redis/redis/v8"
)

// NewCacheClient connects the generic Redis cache client (slot cache).
func NewCacheClient(ctx context.Context) (*redis.Client, error) {
	return newRedisClient(ctx, config.AppConfig.RedisCacheDB)
}

// RedisQueueAddr returns the connection settings used by the reminder queue.
func RedisQueueAddr() (addr, password string, db int) {
	return config.AppConfig.RedisAddr, config.AppConfig.RedisPassword, config.AppConfig.RedisReminderQueueDB
}

func newRedisClient(ctx context.Context, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis db %d: %w", db, err)
	}
	return client, nil
}
