package wallet

import (
	"context"
	"strings"
	"time"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/logger"
	"fanzvault/internal/metrics"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/repositories/cache"
	"fanzvault/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type service struct {
	store   repositories.Store
	cache   cache.BalanceCache
	config  Config
	metrics metrics.Collector
	log     *zap.Logger
	loads   singleflight.Group
}

// NewService creates a new wallet service
func NewService(
	store repositories.Store,
	balances cache.BalanceCache,
	config Config,
	collector metrics.Collector,
	log *zap.Logger,
) Service {
	if store == nil {
		panic("store is required")
	}
	if balances == nil {
		balances = cache.NoopCache{}
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = DefaultCurrency
	}
	log = logger.OrNop(log)
	return &service{
		store:   store,
		cache:   balances,
		config:  config,
		metrics: metrics.OrNoop(collector),
		log:     log.Named("wallet"),
	}
}

// NewWallet returns an unsaved active wallet with zero balances.
func NewWallet(userID string, walletType models.WalletType, currency string) *models.Wallet {
	now := time.Now().UTC()
	return &models.Wallet{
		ID:         utils.NewID(utils.PrefixWallet),
		UserID:     userID,
		WalletType: walletType,
		Currency:   currency,
		Status:     models.WalletStatusActive,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ValidateKey checks a (user, wallet type) pair.
func ValidateKey(userID string, walletType models.WalletType) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "user id is required")
	}
	if !walletType.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown wallet type %q", walletType)
	}
	return nil
}

func (s *service) GetOrCreateWallet(ctx context.Context, userID string, walletType models.WalletType) (*models.Wallet, error) {
	if err := ValidateKey(userID, walletType); err != nil {
		return nil, err
	}

	// Fast path: most calls hit an existing wallet.
	if w, err := s.store.FindWallet(ctx, userID, walletType); err == nil {
		return w, nil
	}

	var (
		out     *models.Wallet
		created bool
	)
	err := repositories.RetryOnConflict(ctx, s.config.MaxConflictRetries, func() error {
		return s.store.WithAtomicUnit(ctx, func(tx repositories.Tx) error {
			w, c, err := tx.GetOrCreateWallet(ctx, NewWallet(userID, walletType, s.config.DefaultCurrency))
			if err != nil {
				return err
			}
			out, created = w, c
			return nil
		})
	})
	if err != nil {
		err = repositories.TranslateError(err, apperrors.ErrWalletNotFound)
		s.metrics.RecordError("get_or_create_wallet", apperrors.CodeOf(err))
		return nil, err
	}
	if created {
		s.log.Info("wallet created",
			zap.String("wallet_id", out.ID),
			zap.String("user_id", userID),
			zap.String("wallet_type", string(walletType)))
	}
	return out, nil
}

func (s *service) GetBalance(ctx context.Context, walletID string) (*models.Balance, error) {
	if b, ok := s.cache.Get(ctx, walletID); ok {
		s.metrics.RecordCacheHit(balanceCacheName)
		return b, nil
	}
	s.metrics.RecordCacheMiss(balanceCacheName)

	v, err, _ := s.loads.Do(walletID, func() (interface{}, error) {
		w, err := s.GetWallet(ctx, walletID)
		if err != nil {
			return nil, err
		}
		b := w.Balance()
		s.cache.Set(ctx, b)
		return &b, nil
	})
	if err != nil {
		return nil, err
	}
	b := *v.(*models.Balance)
	return &b, nil
}

func (s *service) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	w, err := s.store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrWalletNotFound)
	}
	return w, nil
}

func (s *service) ListUserWallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	wallets, err := s.store.ListWallets(ctx, userID)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrWalletNotFound)
	}
	return wallets, nil
}
