package cache

import (
	"fmt"

	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the idempotency store named by the event
// configuration. The "redis" backend falls back to in-memory with a warning
// when Redis is unreachable, so a broken cache never blocks settlement
// processing on a single instance.
func NewIdempotencyStore(eventCfg config.EventConfig, redisCfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch eventCfg.IdempotencyBackend {
	case "memory":
		return NewInMemoryIdempotencyStore(), nil
	case "redis":
		store, err := NewRedisIdempotencyStore(redisCfg)
		if err == nil {
			logger.Info("using Redis idempotency store", zap.String("addr", redisCfg.Addr()))
			return store, nil
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Duplicate event delivery may be reprocessed in multi-instance deployments.",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", eventCfg.IdempotencyBackend)
	}
}
