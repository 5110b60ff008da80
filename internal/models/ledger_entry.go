package models

import "time"

type EntryDirection string

const (
	DirectionDebit  EntryDirection = "debit"
	DirectionCredit EntryDirection = "credit"
)

func (d EntryDirection) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Sign returns +1 for credits and -1 for debits.
func (d EntryDirection) Sign() int64 {
	if d == DirectionDebit {
		return -1
	}
	return 1
}

type TransactionCategory string

const (
	CategoryTransfer      TransactionCategory = "transfer"
	CategoryPayment       TransactionCategory = "payment"
	CategoryCreditIssued  TransactionCategory = "credit_issued"
	CategoryTokenPurchase TransactionCategory = "token_purchase"
	CategoryDeposit       TransactionCategory = "deposit"
	CategoryWithdrawal    TransactionCategory = "withdrawal"
	CategoryRefund        TransactionCategory = "refund"
	CategorySubscription  TransactionCategory = "subscription"
	CategoryTip           TransactionCategory = "tip"
	CategoryAdjustment    TransactionCategory = "adjustment"
)

func (c TransactionCategory) Valid() bool {
	_, ok := AllowedMetadataKeys[c]
	return ok
}

// Reference types used by the ledger itself.
const (
	ReferenceTransfer     = "transfer"
	ReferenceCreditLine   = "credit_line"
	ReferenceTokenBalance = "token_balance"
	ReferenceRevenueShare = "revenue_share"
)

// LedgerEntry is one immutable debit or credit against a wallet.
// BalanceAfter is the wallet's available balance right after the entry.
type LedgerEntry struct {
	ID             string              `gorm:"primaryKey;size:64" json:"id"`
	TransactionID  string              `gorm:"size:64;not null;uniqueIndex:idx_entries_txn_wallet_dir" json:"transaction_id"`
	WalletID       string              `gorm:"size:64;not null;uniqueIndex:idx_entries_txn_wallet_dir;index:idx_entries_wallet_created,priority:1" json:"wallet_id"`
	UserID         string              `gorm:"size:64;not null;index:idx_entries_user_created,priority:1" json:"user_id"`
	Direction      EntryDirection      `gorm:"size:8;not null;uniqueIndex:idx_entries_txn_wallet_dir" json:"direction"`
	Category       TransactionCategory `gorm:"size:32;not null" json:"category"`
	Amount         int64               `gorm:"not null" json:"amount"`
	BalanceAfter   int64               `gorm:"not null" json:"balance_after"`
	Currency       string              `gorm:"size:3;not null" json:"currency"`
	ReferenceType  string              `gorm:"size:32;index:idx_entries_reference,priority:1" json:"reference_type,omitempty"`
	ReferenceID    string              `gorm:"size:64;index:idx_entries_reference,priority:2" json:"reference_id,omitempty"`
	Description    string              `gorm:"size:255" json:"description,omitempty"`
	Metadata       Metadata            `gorm:"type:jsonb" json:"metadata,omitempty"`
	ActorIP        string              `gorm:"size:64" json:"actor_ip,omitempty"`
	ActorUserAgent string              `gorm:"size:255" json:"actor_user_agent,omitempty"`
	CreatedAt      time.Time           `gorm:"not null;index:idx_entries_wallet_created,priority:2,sort:desc;index:idx_entries_user_created,priority:2,sort:desc" json:"created_at"`
}

// EntryFilter narrows a journal query. Zero fields are ignored.
type EntryFilter struct {
	WalletID string
	UserID   string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}
