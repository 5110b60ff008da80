package wallet

import (
	"context"

	"fanzvault/internal/models"
)

// Service defines the wallet store operations
type Service interface {
	GetOrCreateWallet(ctx context.Context, userID string, walletType models.WalletType) (*models.Wallet, error)
	GetBalance(ctx context.Context, walletID string) (*models.Balance, error)
	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	ListUserWallets(ctx context.Context, userID string) ([]models.Wallet, error)
}

type Config struct {
	DefaultCurrency    string
	MaxConflictRetries int
}

const (
	DefaultCurrency  = "USD"
	balanceCacheName = "balance"
)
