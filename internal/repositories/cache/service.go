// Package cache holds the read-through balance cache. The cache is never a
// source of truth: misses and errors fall back to the store, and every
// committed balance change writes the new snapshot. Snapshots carry the
// wallet version and an older snapshot never replaces a newer one, so a
// reader that loaded a wallet before a commit cannot put it back after.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fanzvault/internal/logger"
	"fanzvault/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type BalanceCache interface {
	// Get reports a miss (false) on absence and on any cache failure.
	Get(ctx context.Context, walletID string) (*models.Balance, bool)
	// Set stores b unless the cache holds a snapshot of the same wallet at
	// a higher version.
	Set(ctx context.Context, b models.Balance)
}

// GenerateKey builds a namespaced cache key.
func GenerateKey(prefix string, parts ...interface{}) string {
	key := prefix
	for _, part := range parts {
		key += fmt.Sprintf(":%v", part)
	}
	return key
}

func balanceKey(walletID string) string {
	return GenerateKey("fanzvault:balance", walletID)
}

// setIfNotOlder writes ARGV[1] with a PX ttl of ARGV[3] unless the JSON
// value already stored has a version above ARGV[2].
var setIfNotOlder = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ok, snap = pcall(cjson.decode, cur)
	if ok and type(snap) == 'table' then
		local v = tonumber(snap['version'])
		if v and v > tonumber(ARGV[2]) then
			return 0
		end
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

const DefaultBalanceTTL = 30 * time.Second

// CacheService stores balance snapshots in Redis as JSON.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ BalanceCache = (*CacheService)(nil)

func NewCacheService(client *redis.Client, ttl time.Duration, log *zap.Logger) *CacheService {
	log = logger.OrNop(log)
	if ttl < time.Millisecond {
		ttl = DefaultBalanceTTL
	}
	return &CacheService{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (s *CacheService) Get(ctx context.Context, walletID string) (*models.Balance, bool) {
	data, err := s.client.Get(ctx, balanceKey(walletID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("balance cache read failed", zap.String("wallet_id", walletID), zap.Error(err))
		}
		return nil, false
	}
	var b models.Balance
	if err := json.Unmarshal(data, &b); err != nil {
		s.log.Warn("balance cache entry corrupt", zap.String("wallet_id", walletID), zap.Error(err))
		return nil, false
	}
	return &b, true
}

func (s *CacheService) Set(ctx context.Context, b models.Balance) {
	data, err := json.Marshal(b)
	if err != nil {
		s.log.Warn("failed to marshal cache value", zap.Error(err))
		return
	}
	key := balanceKey(b.WalletID)
	err = setIfNotOlder.Run(ctx, s.client, []string{key}, data, b.Version, s.ttl.Milliseconds()).Err()
	if err == nil {
		return
	}
	s.log.Warn("balance cache write failed", zap.String("wallet_id", b.WalletID), zap.Error(err))
	// Drop whatever is there so an older snapshot does not outlive the write.
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Warn("balance cache delete failed", zap.String("wallet_id", b.WalletID), zap.Error(err))
	}
}

// NoopCache never holds anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.Balance, bool) { return nil, false }
func (NoopCache) Set(context.Context, models.Balance) {}

// LocalCache is a process-local BalanceCache without expiry, used when no
// Redis is configured and in tests.
type LocalCache struct {
	mu   sync.RWMutex
	data map[string]models.Balance
}

func NewLocalCache() *LocalCache {
	return &LocalCache{data: make(map[string]models.Balance)}
}

func (c *LocalCache) Get(_ context.Context, walletID string) (*models.Balance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.data[walletID]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (c *LocalCache) Set(_ context.Context, b models.Balance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.data[b.WalletID]; ok && cur.Version > b.Version {
		return
	}
	c.data[b.WalletID] = b
}
