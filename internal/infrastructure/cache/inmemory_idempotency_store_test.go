package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new event as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "event-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew, "new event should return true")
	})

	t.Run("returns false for already processed event", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "event-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "event-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "already processed event should return false")
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "event-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "event-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew, "expired event should be reprocessable")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for unprocessed event", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "unknown-event")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("returns true for processed event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "processed-event", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "processed-event")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false after expiration", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "short-lived", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "short-lived")
		require.NoError(t, err)
		assert.False(t, processed, "expired event should read as unprocessed")
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "expired", 1*time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(ctx, "live", time.Hour)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size(), "only the live entry should survive cleanup")
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
