package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/interfaces"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

// missing marks a key the store does not have, so repeated misses stay in redis.
const missing = "\x00"

// BulkConfigStore is implemented by stores that read several keys at once.
type BulkConfigStore interface {
	FindConfigs(ctx context.Context, keys []string) (map[string]string, error)
}

// ConfigCache is a read-through redis cache in front of the configs table.
// Redis failures fall through to the store.
type ConfigCache struct {
	redis *redis.Client
	store interfaces.ConfigStore
	ttl   time.Duration
}

func NewConfigCache(redisClient *redis.Client, store interfaces.ConfigStore, ttl time.Duration) *ConfigCache {
	return &ConfigCache{redis: redisClient, store: store, ttl: ttl}
}

func cacheKey(key string) string {
	return fmt.Sprintf("config:%s", key)
}

func (c *ConfigCache) FindConfig(ctx context.Context, key string) (string, bool, error) {
	cached, err := c.redis.Get(ctx, cacheKey(key)).Result()
	switch {
	case err == nil:
		if cached == missing {
			return "", false, nil
		}
		return cached, true, nil
	case !errors.Is(err, redis.Nil):
		telemetry.Logger.Warn("Config cache read failed",
			zap.String("config_key", key),
			zap.Error(err),
		)
	}

	value, found, err := c.store.FindConfig(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.put(ctx, key, value, found)
	return value, found, nil
}

// SetConfig writes through to the store and refreshes the cached entry.
func (c *ConfigCache) SetConfig(ctx context.Context, key, value string) error {
	if err := c.store.SetConfig(ctx, key, value); err != nil {
		return err
	}
	c.put(ctx, key, value, true)
	return nil
}

// Warm loads keys into redis ahead of the first request.
func (c *ConfigCache) Warm(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	bulk, ok := c.store.(BulkConfigStore)
	if !ok {
		for _, key := range keys {
			if _, _, err := c.FindConfig(ctx, key); err != nil {
				return err
			}
		}
		return nil
	}
	values, err := bulk.FindConfigs(ctx, keys)
	if err != nil {
		return err
	}
	pipe := c.redis.Pipeline()
	for _, key := range keys {
		value, found := values[key]
		pipe.Set(ctx, cacheKey(key), encode(value, found), c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (c *ConfigCache) put(ctx context.Context, key, value string, found bool) {
	if err := c.redis.Set(ctx, cacheKey(key), encode(value, found), c.ttl).Err(); err != nil {
		telemetry.Logger.Warn("Config cache write failed",
			zap.String("config_key", key),
			zap.Error(err),
		)
	}
}

func encode(value string, found bool) string {
	if !found {
		return missing
	}
	return value
}
