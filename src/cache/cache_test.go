package cache

import (
	"context"
	"testing"
	"time"

	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	m := NewMemoryCache()
	defer m.Close()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	q := models.MRateQuote{Pair: "EUR/USD", Rate: 1.1, FetchedAt: now}
	require.NoError(t, m.Set(ctx, q, 30*time.Second))

	got, ok := m.Get(ctx, "EUR/USD")
	require.True(t, ok)
	assert.Equal(t, q, got)

	_, ok = m.Get(ctx, "USD/JPY")
	assert.False(t, ok)

	now = now.Add(30 * time.Second)
	_, ok = m.Get(ctx, "EUR/USD")
	assert.False(t, ok)

	m.trimExpired()
	assert.Empty(t, m.items)
}

func TestMemoryCacheZeroTTLDoesNotStore(t *testing.T) {
	m := NewMemoryCache()
	defer m.Close()

	require.NoError(t, m.Set(context.Background(), models.MRateQuote{Pair: "EUR/USD", Rate: 1.1}, 0))
	_, ok := m.Get(context.Background(), "EUR/USD")
	assert.False(t, ok)

	// Close twice is harmless
	assert.NoError(t, m.Close())
}

func TestNewQuoteCacheFallsBackToMemory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := NewQuoteCache(ctx, models.MCacheConfig{Type: "redis", RedisAddr: "127.0.0.1:1"}, logger.NewNopLogger())
	defer c.Close()

	_, isMemory := c.(*MemoryCache)
	assert.True(t, isMemory)
}
