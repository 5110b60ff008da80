package cache

import (
	"context"
	"testing"
	"time"

	"fanzvault/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "fanzvault:balance:wlt_1", balanceKey("wlt_1"))
	assert.Equal(t, "a:1:b", GenerateKey("a", 1, "b"))
}

func TestLocalCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache()

	_, ok := c.Get(ctx, "wlt_1")
	assert.False(t, ok)

	c.Set(ctx, models.Balance{WalletID: "wlt_1", Available: 10, Total: 10, Version: 2})
	b, ok := c.Get(ctx, "wlt_1")
	require.True(t, ok)
	assert.Equal(t, int64(10), b.Available)

	c.Set(ctx, models.Balance{WalletID: "wlt_1", Available: 25, Total: 25, Version: 3})
	b, ok = c.Get(ctx, "wlt_1")
	require.True(t, ok)
	assert.Equal(t, int64(25), b.Available)
}

func TestLocalCacheKeepsNewerSnapshot(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache()

	c.Set(ctx, models.Balance{WalletID: "wlt_1", Available: 1000, Total: 1000, Version: 2})
	c.Set(ctx, models.Balance{WalletID: "wlt_1", Available: 0, Total: 0, Version: 1})

	b, ok := c.Get(ctx, "wlt_1")
	require.True(t, ok)
	assert.Equal(t, int64(1000), b.Available)
	assert.Equal(t, int64(2), b.Version)
}

func TestCacheServiceTreatsFailuresAsMiss(t *testing.T) {
	// Nothing listens on this port.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	s := NewCacheService(client, time.Minute, nil)
	ctx := context.Background()

	s.Set(ctx, models.Balance{WalletID: "wlt_1"})
	_, ok := s.Get(ctx, "wlt_1")
	assert.False(t, ok)
}
