package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// rateEntry caches one resolved cell. A nil cell is a cached miss.
type rateEntry struct {
	cell      *policy.RateMatrixEntry
	expiresAt time.Time
}

// MemoryRateCache is a read-through rate cache backed by a local map.
// Suitable for single-instance deployments; a multi-instance deployment
// should use the Redis backend so invalidation reaches every process.
type MemoryRateCache struct {
	source policy.RateFinder
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]rateEntry
}

// NewMemoryRateCache creates a new in-memory rate cache over the source
func NewMemoryRateCache(source policy.RateFinder, ttl time.Duration) *MemoryRateCache {
	return &MemoryRateCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]rateEntry),
	}
}

// FindRate returns the cached cell for the key, reading through to the
// source on a cold or expired entry. Source misses are cached too.
func (c *MemoryRateCache) FindRate(ctx context.Context, key policy.RateKey) (*policy.RateMatrixEntry, error) {
	cacheKey := rateCacheKey(key)

	c.mu.RLock()
	e, ok := c.entries[cacheKey]
	c.mu.RUnlock()

	if ok && time.Now().Before(e.expiresAt) {
		if e.cell == nil {
			return nil, shared.ErrNotFound
		}
		cell := *e.cell
		return &cell, nil
	}

	cell, err := c.source.FindRate(ctx, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c.mu.Lock()
	c.entries[cacheKey] = rateEntry{cell: cell, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	if cell == nil {
		return nil, shared.ErrNotFound
	}
	return cell, nil
}

// InvalidatePolicy drops every cached cell belonging to the policy
func (c *MemoryRateCache) InvalidatePolicy(ctx context.Context, policyID uuid.UUID) error {
	prefix := rateCachePolicyPrefix(policyID)

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Close releases resources. A no-op for the in-memory backend.
func (c *MemoryRateCache) Close() error {
	return nil
}

// Size returns the number of cached entries (for testing/monitoring)
func (c *MemoryRateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ RateCache = (*MemoryRateCache)(nil)
