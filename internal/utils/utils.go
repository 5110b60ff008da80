package utils

import (
	"github.com/google/uuid"
)

// Entity id prefixes.
const (
	PrefixWallet       = "wlt"
	PrefixLedgerEntry  = "le"
	PrefixCreditLine   = "cl"
	PrefixTokenBalance = "tok"
	PrefixRevenueShare = "rvs"
)

// NewID returns a time-ordered id of the form "<prefix>_<uuidv7>".
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

// NewTransactionID returns a random id shared by all legs of one logical
// ledger operation.
func NewTransactionID() string {
	return uuid.NewString()
}

// IsTransactionID reports whether s parses as a UUID.
func IsTransactionID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
