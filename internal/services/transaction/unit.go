package transaction

import (
	"context"
	"errors"
	"math"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/services/journal"
	"fanzvault/internal/services/wallet"
	"fanzvault/internal/utils"
)

// Unit is the handle of one running atomic unit. It is only valid inside
// the callback passed to Coordinator.WithAtomicUnit. The callback may run
// more than once when the unit loses a race, so it must not have effects
// outside the unit.
type Unit struct {
	tx repositories.Tx
	c  *Coordinator

	// snapshots holds the last balance written per wallet, published to the
	// cache after commit.
	snapshots map[string]models.Balance
	volume    map[models.TransactionCategory]int64
}

func newUnit(c *Coordinator, tx repositories.Tx) *Unit {
	return &Unit{
		tx:        tx,
		c:         c,
		snapshots: make(map[string]models.Balance),
		volume:    make(map[models.TransactionCategory]int64),
	}
}

// Tx exposes the storage handle for records the coordinator does not own
// (credit lines, token balances, revenue shares).
func (u *Unit) Tx() repositories.Tx {
	return u.tx
}

// GetOrCreateWallet returns the locked wallet for (userID, walletType),
// creating an empty active one when missing.
func (u *Unit) GetOrCreateWallet(ctx context.Context, userID string, walletType models.WalletType) (*models.Wallet, error) {
	if err := wallet.ValidateKey(userID, walletType); err != nil {
		return nil, err
	}
	w, _, err := u.tx.GetOrCreateWallet(ctx, wallet.NewWallet(userID, walletType, u.c.config.DefaultCurrency))
	if err != nil {
		return nil, err
	}
	return w, nil
}

// LockWallet loads and locks a wallet. A non-empty userID must own it.
func (u *Unit) LockWallet(ctx context.Context, walletID, userID string) (*models.Wallet, error) {
	w, err := u.tx.GetWalletForUpdate(ctx, walletID)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrWalletNotFound)
	}
	if userID != "" && w.UserID != userID {
		return nil, apperrors.ErrWalletNotFound
	}
	return w, nil
}

// RecordTransaction applies one entry to its wallet: the wallet is locked,
// the new available balance computed and checked, and the entry (carrying
// that balance as its snapshot) is appended together with the wallet update.
func (u *Unit) RecordTransaction(ctx context.Context, req RecordRequest) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{
		TransactionID:  req.TransactionID,
		WalletID:       req.WalletID,
		UserID:         req.UserID,
		Direction:      req.Direction,
		Category:       req.Category,
		Amount:         req.Amount,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		Description:    req.Description,
		Metadata:       req.Metadata,
		ActorIP:        req.Actor.IP,
		ActorUserAgent: req.Actor.UserAgent,
	}
	if err := journal.Validate(entry); err != nil {
		return nil, err
	}
	if req.TransactionID != "" && !utils.IsTransactionID(req.TransactionID) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed transaction id %q", req.TransactionID)
	}

	w, err := u.LockWallet(ctx, req.WalletID, req.UserID)
	if err != nil {
		return nil, err
	}
	// Looked up under the wallet lock: a concurrent submission of the same
	// id has either committed its entry or not started writing.
	if req.TransactionID != "" {
		prior, err := u.tx.FindEntry(ctx, req.TransactionID, req.WalletID, req.Direction)
		if err == nil {
			return replay(prior, req)
		}
		if !errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, err
		}
	}
	if w.Status != models.WalletStatusActive {
		return nil, apperrors.Wrap(apperrors.ErrWalletNotActive, "wallet %s is %s", w.ID, w.Status)
	}
	if req.Direction == models.DirectionCredit && w.Total > math.MaxInt64-req.Amount {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "credit of %d overflows wallet %s", req.Amount, w.ID)
	}
	if err := w.ApplyAvailableDelta(req.Direction.Sign() * req.Amount); err != nil {
		return nil, err
	}

	entry.UserID = w.UserID
	entry.Currency = w.Currency
	entry.BalanceAfter = w.Available
	stored, err := u.c.journal.Append(ctx, u.tx, entry)
	if err != nil {
		return nil, err
	}
	if err := u.tx.SaveWallet(ctx, w); err != nil {
		return nil, err
	}

	u.snapshots[w.ID] = w.Balance()
	u.volume[req.Category] += req.Amount
	return stored, nil
}

// replay returns the entry of an already applied request. Reusing a
// transaction id for a different change is rejected.
func replay(prior *models.LedgerEntry, req RecordRequest) (*models.LedgerEntry, error) {
	if prior.Amount != req.Amount || prior.Category != req.Category {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput,
			"transaction %s was already applied to wallet %s with different parameters", req.TransactionID, req.WalletID)
	}
	return prior, nil
}
