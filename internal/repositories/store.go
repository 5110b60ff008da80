package repositories

import (
	"context"
	"errors"
	"fmt"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	// ErrConflict means the atomic unit lost a race with a concurrent writer
	// and nothing was committed. The unit may be run again.
	ErrConflict  = errors.New("concurrent modification")
	ErrDuplicate = errors.New("duplicate record")
)

// Tx is the handle of one atomic unit. Every write made through it commits
// together or not at all. "ForUpdate" reads serialize against other units
// touching the same record.
type Tx interface {
	GetWalletForUpdate(ctx context.Context, walletID string) (*models.Wallet, error)
	// GetOrCreateWallet returns the (locked) wallet for w.UserID/w.WalletType,
	// inserting w when none exists. created reports which happened.
	GetOrCreateWallet(ctx context.Context, w *models.Wallet) (wallet *models.Wallet, created bool, err error)
	SaveWallet(ctx context.Context, w *models.Wallet) error

	FindEntry(ctx context.Context, transactionID, walletID string, direction models.EntryDirection) (*models.LedgerEntry, error)
	AppendEntry(ctx context.Context, e *models.LedgerEntry) error

	CreateCreditLine(ctx context.Context, cl *models.CreditLine) error
	GetCreditLineForUpdate(ctx context.Context, id string) (*models.CreditLine, error)
	SaveCreditLine(ctx context.Context, cl *models.CreditLine) error

	GetOrCreateTokenBalance(ctx context.Context, tb *models.TokenBalance) (balance *models.TokenBalance, created bool, err error)
	SaveTokenBalance(ctx context.Context, tb *models.TokenBalance) error

	CreateRevenueShare(ctx context.Context, rs *models.RevenueShare) error
	SaveRevenueShare(ctx context.Context, rs *models.RevenueShare) error
}

// Store is the backing store of the ledger. WithAtomicUnit is the only way to
// write; the remaining methods are committed-state reads.
type Store interface {
	// WithAtomicUnit runs fn in a transaction. If fn returns an error nothing
	// is committed and that error is returned. Lost races surface as
	// ErrConflict.
	WithAtomicUnit(ctx context.Context, fn func(tx Tx) error) error

	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	FindWallet(ctx context.Context, userID string, walletType models.WalletType) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID string) ([]models.Wallet, error)

	QueryEntries(ctx context.Context, filter models.EntryFilter) ([]models.LedgerEntry, int64, error)

	GetCreditLine(ctx context.Context, id string) (*models.CreditLine, error)
	ListCreditLines(ctx context.Context, userID string) ([]models.CreditLine, error)

	FindTokenBalance(ctx context.Context, userID string, tokenType models.TokenType) (*models.TokenBalance, error)
	ListTokenBalances(ctx context.Context, userID string) ([]models.TokenBalance, error)

	GetRevenueShare(ctx context.Context, id string) (*models.RevenueShare, error)

	Ping(ctx context.Context) error
	Close() error
}

// TranslateError maps a storage error onto the domain taxonomy. Domain errors
// pass through, ErrRecordNotFound becomes notFound and every other storage
// failure becomes TransactionFailed, keeping the cause in the chain.
func TranslateError(err error, notFound *apperrors.DomainError) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %w", apperrors.ErrTransactionFailed, err)
}
