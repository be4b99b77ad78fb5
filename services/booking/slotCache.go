package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appointly/models"
	"appointly/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisSlotCache caches slot grids per provider, service and date. Every key
// embeds the provider's generation counter, so Invalidate is a single INCR and
// stale grids simply age out.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisSlotCache {
	if ttl <= 0 {
		ttl = utils.DefaultSlotCacheTTL
	}
	return &RedisSlotCache{client: client, ttl: ttl, logger: logger}
}

func versionKey(providerID string) string {
	return utils.SlotCacheVersionPrefix + providerID
}

func gridKey(providerID, serviceID, date string, version int64) string {
	return fmt.Sprintf("%s%s:%d:%s:%s", utils.SlotCachePrefix, providerID, version, serviceID, date)
}

// Lookup reads the provider's current generation and the grid stored under it.
// The generation is returned even on a miss so Store can file the grid computed
// afterwards under the generation that was current before the computation.
func (c *RedisSlotCache) Lookup(ctx context.Context, providerID, serviceID, date string) ([]models.Slot, int64, bool) {
	version, err := c.client.Get(ctx, versionKey(providerID)).Int64()
	if err != nil && err != redis.Nil {
		c.logger.Warn("slot cache unavailable", zap.Error(err))
		return nil, -1, false
	}
	key := gridKey(providerID, serviceID, date, version)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, version, false
	}
	if err != nil {
		c.logger.Warn("slot cache read failed", zap.String("key", key), zap.Error(err))
		return nil, -1, false
	}
	var slots []models.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("dropping corrupt slot cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, version, false
	}
	return slots, version, true
}

// Store files slots under version. A negative version means the lookup failed
// and nothing is written.
func (c *RedisSlotCache) Store(ctx context.Context, providerID, serviceID, date string, version int64, slots []models.Slot) {
	if version < 0 {
		return
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	key := gridKey(providerID, serviceID, date, version)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate bumps the provider's generation so no earlier grid is served again.
func (c *RedisSlotCache) Invalidate(ctx context.Context, providerID string) {
	if err := c.client.Incr(ctx, versionKey(providerID)).Err(); err != nil {
		c.logger.Error("slot cache invalidation failed", zap.String("providerID", providerID), zap.Error(err))
	}
}
