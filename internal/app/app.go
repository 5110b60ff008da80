// Package app assembles the ledger services from a store and configuration.
package app

import (
	"fanzvault/internal/config"
	"fanzvault/internal/metrics"
	"fanzvault/internal/repositories"
	"fanzvault/internal/repositories/cache"
	"fanzvault/internal/routes"
	"fanzvault/internal/services/credit"
	"fanzvault/internal/services/journal"
	"fanzvault/internal/services/revenue"
	"fanzvault/internal/services/token"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/services/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Services struct {
	Store       repositories.Store
	Redis       *redis.Client
	Wallets     wallet.Service
	Coordinator *transaction.Coordinator
	Credit      credit.Service
	Tokens      token.Service
	Revenue     revenue.Service
}

// NewServices wires every ledger service onto store. When redisClient is
// nil balances are not cached.
func NewServices(
	store repositories.Store,
	redisClient *redis.Client,
	cfg config.LedgerConfig,
	collector metrics.Collector,
	log *zap.Logger,
) *Services {
	var balances cache.BalanceCache = cache.NoopCache{}
	if redisClient != nil {
		balances = cache.NewCacheService(redisClient, cfg.BalanceCacheTTL, log)
	}

	coord := transaction.NewCoordinator(store, journal.New(store), balances, transaction.Config{
		DefaultCurrency:    cfg.DefaultCurrency,
		MaxConflictRetries: cfg.MaxConflictRetries,
	}, collector, log)

	return &Services{
		Store: store,
		Redis: redisClient,
		Wallets: wallet.NewService(store, balances, wallet.Config{
			DefaultCurrency:    cfg.DefaultCurrency,
			MaxConflictRetries: cfg.MaxConflictRetries,
		}, collector, log),
		Coordinator: coord,
		Credit:      credit.NewService(store, coord, log),
		Tokens:      token.NewService(store, coord, token.Config{Values: cfg.TokenValues}, log),
		Revenue:     revenue.NewService(store, coord, log),
	}
}

// Routes returns the HTTP dependencies for s.
func (s *Services) Routes(jwtSecret string, gatherer prometheus.Gatherer, log *zap.Logger) routes.Dependencies {
	return routes.Dependencies{
		Store:       s.Store,
		Redis:       s.Redis,
		Wallets:     s.Wallets,
		Coordinator: s.Coordinator,
		Credit:      s.Credit,
		Tokens:      s.Tokens,
		Revenue:     s.Revenue,
		JWTSecret:   jwtSecret,
		Gatherer:    gatherer,
		Log:         log,
	}
}
