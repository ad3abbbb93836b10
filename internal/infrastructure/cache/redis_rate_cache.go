package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	rateKeyPrefix        = "rate:matrix:"
	defaultScanBatchSize = 100
)

// redisRatePayload is the serialized form of a cached lookup. Found is false
// for a cached miss.
type redisRatePayload struct {
	Found bool                    `json:"found"`
	Cell  *policy.RateMatrixEntry `json:"cell,omitempty"`
}

// RedisRateCache is a read-through rate cache backed by Redis, shared across
// instances. Redis failures degrade to direct source reads rather than
// failing the lookup.
type RedisRateCache struct {
	client *redis.Client
	source policy.RateFinder
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRateCache creates a new Redis-backed rate cache over the source.
// The cache takes ownership of the client.
func NewRedisRateCache(client *redis.Client, source policy.RateFinder, ttl time.Duration, logger *zap.Logger) *RedisRateCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRateCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// FindRate returns the cached cell for the key, reading through to the
// source on a cold entry. Source misses are cached too.
func (c *RedisRateCache) FindRate(ctx context.Context, key policy.RateKey) (*policy.RateMatrixEntry, error) {
	cacheKey := rateKeyPrefix + rateCacheKey(key)

	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var payload redisRatePayload
		if unmarshalErr := json.Unmarshal(raw, &payload); unmarshalErr == nil {
			if !payload.Found {
				return nil, shared.ErrNotFound
			}
			return payload.Cell, nil
		}
		c.logger.Warn("corrupt rate cache entry, rereading from source", zap.String("key", cacheKey))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("rate cache read failed, falling back to source", zap.Error(err))
	}

	cell, err := c.source.FindRate(ctx, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c.store(ctx, cacheKey, cell)

	if cell == nil {
		return nil, shared.ErrNotFound
	}
	return cell, nil
}

func (c *RedisRateCache) store(ctx context.Context, cacheKey string, cell *policy.RateMatrixEntry) {
	payload := redisRatePayload{Found: cell != nil, Cell: cell}
	raw, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("failed to serialize rate cache entry", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("rate cache write failed", zap.Error(err))
	}
}

// InvalidatePolicy deletes every cached cell belonging to the policy,
// scanning in batches to avoid blocking Redis on large matrices
func (c *RedisRateCache) InvalidatePolicy(ctx context.Context, policyID uuid.UUID) error {
	pattern := rateKeyPrefix + rateCachePolicyPrefix(policyID) + "*"

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan rate cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete rate cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Redis client
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

var _ RateCache = (*RedisRateCache)(nil)
