// Package transaction is the single writer of wallets and journal entries.
// Every balance change runs inside an atomic unit opened by the Coordinator.
package transaction

import (
	"context"
	"sort"
	"time"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/logger"
	"fanzvault/internal/metrics"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/repositories/cache"
	"fanzvault/internal/services/journal"
	"fanzvault/internal/utils"

	"go.uber.org/zap"
)

type Coordinator struct {
	store   repositories.Store
	journal *journal.Journal
	cache   cache.BalanceCache
	config  Config
	metrics metrics.Collector
	log     *zap.Logger
}

func NewCoordinator(
	store repositories.Store,
	j *journal.Journal,
	balances cache.BalanceCache,
	config Config,
	collector metrics.Collector,
	log *zap.Logger,
) *Coordinator {
	if store == nil {
		panic("store is required")
	}
	if j == nil {
		j = journal.New(store)
	}
	if balances == nil {
		balances = cache.NoopCache{}
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "USD"
	}
	log = logger.OrNop(log)
	return &Coordinator{
		store:   store,
		journal: j,
		cache:   balances,
		config:  config,
		metrics: metrics.OrNoop(collector),
		log:     log.Named("coordinator"),
	}
}

// WithAtomicUnit runs fn as one all-or-nothing unit.
func (c *Coordinator) WithAtomicUnit(ctx context.Context, fn func(u *Unit) error) error {
	return c.Execute(ctx, OpAtomicUnit, fn)
}

// Execute is WithAtomicUnit with an operation name for metrics and logs.
// Lost races are retried with backoff; once retries are exhausted, or on
// any other storage failure, the result is TransactionFailed. Domain errors
// from fn are returned as they are, without retry. The cache receives the
// committed balance of every wallet the unit changed, and metrics are
// recorded, only after the commit.
func (c *Coordinator) Execute(ctx context.Context, operation string, fn func(u *Unit) error) error {
	start := time.Now()
	var (
		unit     *Unit
		attempts int
	)
	err := repositories.RetryOnConflict(ctx, c.config.MaxConflictRetries, func() error {
		if attempts > 0 {
			c.metrics.RecordConflictRetry(operation)
		}
		attempts++
		return c.store.WithAtomicUnit(ctx, func(tx repositories.Tx) error {
			unit = newUnit(c, tx)
			return fn(unit)
		})
	})
	c.metrics.RecordOperationDuration(operation, time.Since(start))

	if err != nil {
		err = repositories.TranslateError(err, apperrors.ErrNotFound)
		code := apperrors.CodeOf(err)
		c.metrics.RecordOperationResult(operation, "failure")
		c.metrics.RecordError(operation, code)
		if code == apperrors.CodeTransactionFailed {
			c.log.Error("atomic unit failed",
				zap.String("operation", operation),
				zap.Int("attempts", attempts),
				zap.Error(err))
		} else {
			c.log.Debug("atomic unit rejected",
				zap.String("operation", operation),
				zap.String("code", code),
				zap.Error(err))
		}
		return err
	}

	for _, b := range unit.snapshots {
		c.cache.Set(ctx, b)
	}
	for category, amount := range unit.volume {
		c.metrics.RecordTransactionVolume(string(category), amount)
	}
	c.metrics.RecordOperationResult(operation, "success")
	return nil
}

// RecordTransaction applies a single debit or credit in its own unit.
func (c *Coordinator) RecordTransaction(ctx context.Context, req RecordRequest) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := c.Execute(ctx, OpRecordTransaction, func(u *Unit) error {
		e, err := u.RecordTransaction(ctx, req)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("transaction recorded",
		zap.String("transaction_id", entry.TransactionID),
		zap.String("wallet_id", entry.WalletID),
		zap.String("direction", string(entry.Direction)),
		zap.String("category", string(entry.Category)),
		zap.Int64("amount", entry.Amount),
		zap.Int64("balance_after", entry.BalanceAfter))
	return entry, nil
}

// TransferFunds debits the source and credits the destination in one unit.
// Both legs share the transfer id as transaction id and reference.
func (c *Coordinator) TransferFunds(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.Amount <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "amount must be positive, got %d", req.Amount)
	}
	if req.FromWalletID == req.ToWalletID {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "cannot transfer a wallet to itself")
	}
	transferID := req.TransactionID
	if transferID == "" {
		transferID = utils.NewTransactionID()
	}

	var result *TransferResult
	err := c.Execute(ctx, OpTransfer, func(u *Unit) error {
		// Lock both wallets in id order so opposite transfers cannot deadlock.
		ids := []string{req.FromWalletID, req.ToWalletID}
		sort.Strings(ids)
		locked := make(map[string]*models.Wallet, 2)
		for _, id := range ids {
			owner := req.FromUserID
			if id == req.ToWalletID {
				owner = req.ToUserID
			}
			w, err := u.LockWallet(ctx, id, owner)
			if err != nil {
				return err
			}
			locked[id] = w
		}
		from, to := locked[req.FromWalletID], locked[req.ToWalletID]
		if from.Currency != to.Currency {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "currency mismatch %s/%s", from.Currency, to.Currency)
		}

		debit, err := u.RecordTransaction(ctx, RecordRequest{
			TransactionID: transferID,
			UserID:        from.UserID,
			WalletID:      from.ID,
			Direction:     models.DirectionDebit,
			Category:      models.CategoryTransfer,
			Amount:        req.Amount,
			ReferenceType: models.ReferenceTransfer,
			ReferenceID:   transferID,
			Description:   req.Description,
			Metadata:      transferMetadata(req.Metadata, transferID, to),
			Actor:         req.Actor,
		})
		if err != nil {
			return err
		}
		credit, err := u.RecordTransaction(ctx, RecordRequest{
			TransactionID: transferID,
			UserID:        to.UserID,
			WalletID:      to.ID,
			Direction:     models.DirectionCredit,
			Category:      models.CategoryTransfer,
			Amount:        req.Amount,
			ReferenceType: models.ReferenceTransfer,
			ReferenceID:   transferID,
			Description:   req.Description,
			Metadata:      transferMetadata(req.Metadata, transferID, from),
			Actor:         req.Actor,
		})
		if err != nil {
			return err
		}
		result = &TransferResult{TransferID: transferID, Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("transfer completed",
		zap.String("transfer_id", transferID),
		zap.String("from_wallet_id", req.FromWalletID),
		zap.String("to_wallet_id", req.ToWalletID),
		zap.Int64("amount", req.Amount))
	return result, nil
}

func transferMetadata(base models.Metadata, transferID string, counterparty *models.Wallet) models.Metadata {
	md := base.Clone()
	if md == nil {
		md = models.Metadata{}
	}
	md[models.MetaTransferID] = transferID
	md[models.MetaCounterpartyWalletID] = counterparty.ID
	md[models.MetaCounterpartyUserID] = counterparty.UserID
	return md
}

// GetTransactionHistory returns one page of journal entries, newest first.
func (c *Coordinator) GetTransactionHistory(ctx context.Context, filter models.EntryFilter, page journal.Page) ([]models.LedgerEntry, int64, error) {
	return c.journal.Query(ctx, filter, page)
}

// SetWalletStatus moves a wallet between active and frozen, or closes it.
// Only an empty wallet can be closed, and a closed wallet stays closed.
func (c *Coordinator) SetWalletStatus(ctx context.Context, walletID string, status models.WalletStatus) (*models.Wallet, error) {
	if !status.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown wallet status %q", status)
	}

	var out *models.Wallet
	err := c.Execute(ctx, OpSetWalletStatus, func(u *Unit) error {
		w, err := u.LockWallet(ctx, walletID, "")
		if err != nil {
			return err
		}
		if w.Status == status {
			out = w
			return nil
		}
		if w.Status == models.WalletStatusClosed {
			return apperrors.Wrap(apperrors.ErrInvalidState, "wallet %s is closed", w.ID)
		}
		if status == models.WalletStatusClosed && w.Total != 0 {
			return apperrors.Wrap(apperrors.ErrInvalidState, "wallet %s still holds %d", w.ID, w.Total)
		}
		w.Status = status
		w.Version++
		w.UpdatedAt = time.Now().UTC()
		if err := u.tx.SaveWallet(ctx, w); err != nil {
			return err
		}
		u.snapshots[w.ID] = w.Balance()
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("wallet status changed", zap.String("wallet_id", walletID), zap.String("status", string(status)))
	return out, nil
}
