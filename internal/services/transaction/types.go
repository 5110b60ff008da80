package transaction

import (
	"fanzvault/internal/models"
)

// Actor identifies who triggered an operation, for the audit trail.
type Actor struct {
	IP        string
	UserAgent string
}

// RecordRequest describes one debit or credit against a wallet.
// TransactionID is optional; when set, re-submitting the same request is a
// no-op that returns the stored entry.
type RecordRequest struct {
	TransactionID string
	UserID        string
	WalletID      string
	Direction     models.EntryDirection
	Category      models.TransactionCategory
	Amount        int64
	ReferenceType string
	ReferenceID   string
	Description   string
	Metadata      models.Metadata
	Actor         Actor
}

// TransferRequest moves Amount from one wallet to another. TransactionID is
// optional and doubles as the transfer id shared by both legs.
type TransferRequest struct {
	TransactionID string
	FromUserID    string
	FromWalletID  string
	ToUserID      string
	ToWalletID    string
	Amount        int64
	Description   string
	Metadata      models.Metadata
	Actor         Actor
}

type TransferResult struct {
	TransferID string              `json:"transfer_id"`
	Debit      *models.LedgerEntry `json:"debit"`
	Credit     *models.LedgerEntry `json:"credit"`
}

type Config struct {
	DefaultCurrency    string
	MaxConflictRetries int
}

// Operation names used for metrics and logs.
const (
	OpAtomicUnit        = "atomic_unit"
	OpRecordTransaction = "record_transaction"
	OpTransfer          = "transfer"
	OpSetWalletStatus   = "set_wallet_status"
)
