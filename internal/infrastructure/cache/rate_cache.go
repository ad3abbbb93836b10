package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// platformScopeKey stands in for a nil scope in cache keys
const platformScopeKey = "platform"

// RateCache is a read-through cache over the rate matrix. Both hits and
// misses are cached for the configured TTL so the wildcard fallback chain
// does not hammer the table on every order. Matrix writes invalidate the
// owning policy's entries.
type RateCache interface {
	policy.RateFinder
	InvalidatePolicy(ctx context.Context, policyID uuid.UUID) error
	Close() error
}

// NewRateCache creates the rate cache named by the cache configuration,
// layered over the given source (normally the Gorm matrix repository)
func NewRateCache(cfg config.CacheConfig, redisCfg config.RedisConfig, source policy.RateFinder, logger *zap.Logger) (RateCache, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryRateCache(source, cfg.RateTTL), nil
	case "redis":
		client, err := NewRedisClient(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis rate cache: %w", err)
		}
		return NewRedisRateCache(client, source, cfg.RateTTL, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// rateCacheKey renders a matrix key as "policy:scope:carrier:bucket:period".
// The policy segment leads so invalidation can match on a policy prefix.
func rateCacheKey(key policy.RateKey) string {
	scope := platformScopeKey
	if key.ScopeCompanyID != nil {
		scope = key.ScopeCompanyID.String()
	}
	return strings.Join([]string{
		key.PolicyID.String(),
		scope,
		key.Carrier,
		strconv.FormatInt(key.PlanBucket, 10),
		strconv.Itoa(key.ContractPeriod),
	}, ":")
}

// rateCachePolicyPrefix returns the key prefix shared by every cached cell of
// a policy
func rateCachePolicyPrefix(policyID uuid.UUID) string {
	return policyID.String() + ":"
}
