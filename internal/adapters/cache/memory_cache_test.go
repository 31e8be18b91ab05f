package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamdetect/hybrid-scam-detector/internal/core"
)

func newEntry(identifier string, ttl time.Duration) *core.ReputationEntry {
	now := time.Now()
	return &core.ReputationEntry{
		Identifier: identifier,
		Report:     core.ReputationReport{Identifier: identifier, TotalReports: 1},
		FetchedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop(), 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("01012345678", time.Minute)))

	entry, err := c.Get(ctx, "01012345678")
	require.NoError(t, err)
	assert.Equal(t, "01012345678", entry.Identifier)
	assert.Equal(t, 1, entry.Report.TotalReports)
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop(), 0)

	_, err := c.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop(), 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("01012345678", 10*time.Millisecond)))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "01012345678")
	assert.ErrorIs(t, err, ErrExpired)

	// The expired entry no longer occupies capacity.
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop(), 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("01012345678", time.Minute)))
	require.NoError(t, c.Delete(ctx, "01012345678"))

	_, err := c.Get(ctx, "01012345678")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(3, zap.NewNop(), 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("a", time.Minute)))
	require.NoError(t, c.Set(ctx, newEntry("b", time.Minute)))
	require.NoError(t, c.Set(ctx, newEntry("c", time.Minute)))

	// Touch "a" so "b" becomes the least recently used.
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, newEntry("d", time.Minute)))

	assert.Equal(t, 3, c.Len())
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCache_CapacityBound(t *testing.T) {
	c := NewMemoryCache(100, zap.NewNop(), 0)
	ctx := context.Background()

	for i := 0; i < 101; i++ {
		require.NoError(t, c.Set(ctx, newEntry(fmt.Sprintf("id-%03d", i), time.Minute)))
	}

	assert.Equal(t, 100, c.Len())
	_, err := c.Get(ctx, "id-000")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "id-100")
	assert.NoError(t, err)
}

func TestMemoryCache_UpdateDoesNotGrow(t *testing.T) {
	c := NewMemoryCache(3, zap.NewNop(), 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("a", time.Minute)))
	updated := newEntry("a", time.Minute)
	updated.Report.TotalReports = 9
	require.NoError(t, c.Set(ctx, updated))

	assert.Equal(t, 1, c.Len())
	entry, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 9, entry.Report.TotalReports)
}

func TestMemoryCache_Cleanup(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop(), 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("stale", 5*time.Millisecond)))
	require.NoError(t, c.Set(ctx, newEntry("fresh", time.Minute)))
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, c.Cleanup(ctx))

	assert.Equal(t, 1, c.Len())
	_, err := c.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryCache_DefaultCapacity(t *testing.T) {
	c := NewMemoryCache(0, zap.NewNop(), 0)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		require.NoError(t, c.Set(ctx, newEntry(fmt.Sprintf("id-%03d", i), time.Minute)))
	}

	assert.Equal(t, 100, c.Len())
}

func TestMemoryCache_BackgroundCleanup(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop(), 10*time.Millisecond)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, newEntry("stale", 5*time.Millisecond)))

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 10*time.Millisecond)
}
