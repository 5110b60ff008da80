package models

import (
	"time"

	apperrors "fanzvault/internal/errors"
)

type WalletType string

const (
	WalletTypeStandard WalletType = "standard"
	WalletTypeBusiness WalletType = "business"
	WalletTypeCreator  WalletType = "creator"
	WalletTypeEscrow   WalletType = "escrow"
	WalletTypeRewards  WalletType = "rewards"
)

func (t WalletType) Valid() bool {
	switch t {
	case WalletTypeStandard, WalletTypeBusiness, WalletTypeCreator, WalletTypeEscrow, WalletTypeRewards:
		return true
	}
	return false
}

type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
	WalletStatusClosed WalletStatus = "closed"
)

func (s WalletStatus) Valid() bool {
	switch s {
	case WalletStatusActive, WalletStatusFrozen, WalletStatusClosed:
		return true
	}
	return false
}

// Wallet holds one user's balances for one wallet type. All amounts are
// integer minor currency units.
type Wallet struct {
	ID         string       `gorm:"primaryKey;size:64" json:"id"`
	UserID     string       `gorm:"size:64;not null;uniqueIndex:idx_wallets_user_type" json:"user_id"`
	WalletType WalletType   `gorm:"size:16;not null;uniqueIndex:idx_wallets_user_type" json:"wallet_type"`
	Available  int64        `gorm:"not null;default:0" json:"available"`
	Pending    int64        `gorm:"not null;default:0" json:"pending"`
	Held       int64        `gorm:"not null;default:0" json:"held"`
	Total      int64        `gorm:"not null;default:0" json:"total"`
	Currency   string       `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status     WalletStatus `gorm:"size:16;not null;default:'active'" json:"status"`
	Version    int64        `gorm:"not null;default:1" json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Balance is a read-only snapshot of a wallet's buckets. Version is the
// wallet version the snapshot was taken at.
type Balance struct {
	WalletID  string `json:"wallet_id"`
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
	Held      int64  `json:"held"`
	Total     int64  `json:"total"`
	Currency  string `json:"currency"`
	Version   int64  `json:"version"`
}

func (w *Wallet) Balance() Balance {
	return Balance{
		WalletID:  w.ID,
		Available: w.Available,
		Pending:   w.Pending,
		Held:      w.Held,
		Total:     w.Total,
		Currency:  w.Currency,
		Version:   w.Version,
	}
}

// ApplyAvailableDelta moves the available (and therefore total) balance by
// delta. It is the only place a balance changes and must only be called from
// inside an atomic unit.
func (w *Wallet) ApplyAvailableDelta(delta int64) error {
	next := w.Available + delta
	if next < 0 {
		return apperrors.Wrap(apperrors.ErrInsufficientFunds,
			"wallet %s has %d available, needs %d", w.ID, w.Available, -delta)
	}
	w.Available = next
	w.Total = w.Available + w.Pending + w.Held
	w.Version++
	return nil
}
