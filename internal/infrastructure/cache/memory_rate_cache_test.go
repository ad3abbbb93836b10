package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRateSource serves a fixed set of cells and counts lookups
type stubRateSource struct {
	cells map[string]*policy.RateMatrixEntry
	calls int
}

func (s *stubRateSource) FindRate(ctx context.Context, key policy.RateKey) (*policy.RateMatrixEntry, error) {
	s.calls++
	if cell, ok := s.cells[rateCacheKey(key)]; ok {
		return cell, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRateSource) add(cell *policy.RateMatrixEntry) {
	s.cells[rateCacheKey(cell.Key())] = cell
}

func newStubRateSource() *stubRateSource {
	return &stubRateSource{cells: make(map[string]*policy.RateMatrixEntry)}
}

func mustMatrixCell(t *testing.T, policyID uuid.UUID, scope *uuid.UUID, carrier string, bucket int64, period int, amount int64) *policy.RateMatrixEntry {
	t.Helper()
	cell, err := policy.NewRateMatrixEntry(policyID, scope, carrier, bucket, period, decimal.NewFromInt(amount))
	require.NoError(t, err)
	return cell
}

func TestMemoryRateCache_ReadThrough(t *testing.T) {
	ctx := context.Background()
	policyID := uuid.New()

	source := newStubRateSource()
	source.add(mustMatrixCell(t, policyID, nil, "SKT", 55000, 24, 30000))

	cache := NewMemoryRateCache(source, time.Hour)
	defer cache.Close()

	key := policy.RateKey{PolicyID: policyID, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}

	cell, err := cache.FindRate(ctx, key)
	require.NoError(t, err)
	assert.True(t, cell.Amount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, 1, source.calls)

	cell, err = cache.FindRate(ctx, key)
	require.NoError(t, err)
	assert.True(t, cell.Amount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, 1, source.calls, "second lookup should be served from cache")
}

func TestMemoryRateCache_CachesMisses(t *testing.T) {
	ctx := context.Background()
	source := newStubRateSource()

	cache := NewMemoryRateCache(source, time.Hour)
	defer cache.Close()

	key := policy.RateKey{PolicyID: uuid.New(), Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}

	_, err := cache.FindRate(ctx, key)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = cache.FindRate(ctx, key)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 1, source.calls, "miss should be cached, not re-read")
}

func TestMemoryRateCache_InvalidatePolicy(t *testing.T) {
	ctx := context.Background()
	policyA := uuid.New()
	policyB := uuid.New()

	source := newStubRateSource()
	source.add(mustMatrixCell(t, policyA, nil, "SKT", 55000, 24, 30000))
	source.add(mustMatrixCell(t, policyB, nil, "SKT", 55000, 24, 40000))

	cache := NewMemoryRateCache(source, time.Hour)
	defer cache.Close()

	keyA := policy.RateKey{PolicyID: policyA, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}
	keyB := policy.RateKey{PolicyID: policyB, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}

	_, err := cache.FindRate(ctx, keyA)
	require.NoError(t, err)
	_, err = cache.FindRate(ctx, keyB)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)

	require.NoError(t, cache.InvalidatePolicy(ctx, policyA))
	assert.Equal(t, 1, cache.Size(), "only policy A entries should be dropped")

	// Policy A re-reads, policy B still cached
	source.add(mustMatrixCell(t, policyA, nil, "SKT", 55000, 24, 35000))
	cell, err := cache.FindRate(ctx, keyA)
	require.NoError(t, err)
	assert.True(t, cell.Amount.Equal(decimal.NewFromInt(35000)), "invalidated entry should pick up the new amount")

	_, err = cache.FindRate(ctx, keyB)
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}

func TestMemoryRateCache_ExpiredEntryRereads(t *testing.T) {
	ctx := context.Background()
	policyID := uuid.New()

	source := newStubRateSource()
	source.add(mustMatrixCell(t, policyID, nil, "SKT", 55000, 24, 30000))

	cache := NewMemoryRateCache(source, 10*time.Millisecond)
	defer cache.Close()

	key := policy.RateKey{PolicyID: policyID, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24}

	_, err := cache.FindRate(ctx, key)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = cache.FindRate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "expired entry should read through again")
}

func TestMemoryRateCache_ScopedAndPlatformKeysAreDistinct(t *testing.T) {
	ctx := context.Background()
	policyID := uuid.New()
	scope := uuid.New()

	source := newStubRateSource()
	source.add(mustMatrixCell(t, policyID, &scope, "SKT", 55000, 24, 12000))
	source.add(mustMatrixCell(t, policyID, nil, "SKT", 55000, 24, 30000))

	cache := NewMemoryRateCache(source, time.Hour)
	defer cache.Close()

	scoped, err := cache.FindRate(ctx, policy.RateKey{PolicyID: policyID, ScopeCompanyID: &scope, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24})
	require.NoError(t, err)
	assert.True(t, scoped.Amount.Equal(decimal.NewFromInt(12000)))

	platform, err := cache.FindRate(ctx, policy.RateKey{PolicyID: policyID, Carrier: "SKT", PlanBucket: 55000, ContractPeriod: 24})
	require.NoError(t, err)
	assert.True(t, platform.Amount.Equal(decimal.NewFromInt(30000)))
}
