// Package errors defines the domain error taxonomy shared by every ledger
// component. Errors carry a stable code so callers can branch on the kind of
// failure without matching on message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeCreditExceeded      = "CREDIT_EXCEEDED"
	CodeInvalidState        = "INVALID_STATE"
	CodeInvalidSplit        = "INVALID_SPLIT"
	CodeTransactionFailed   = "TRANSACTION_FAILED"
)

// DomainError is a ledger failure of a known kind.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so a wallet-specific
// "not found" also satisfies errors.Is(err, ErrNotFound).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Generic kinds.
var (
	ErrNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "not found",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeInvalidAmount,
		Message: "invalid amount",
	}
	ErrInvalidInput = &DomainError{
		Code:    CodeInvalidInput,
		Message: "invalid input",
	}
	ErrInvalidState = &DomainError{
		Code:    CodeInvalidState,
		Message: "invalid state",
	}
	ErrInvalidSplit = &DomainError{
		Code:    CodeInvalidSplit,
		Message: "revenue split percentages must sum to 100",
	}
	ErrTransactionFailed = &DomainError{
		Code:    CodeTransactionFailed,
		Message: "transaction failed",
	}
)

// Wrap annotates base with detail while keeping errors.Is(err, base) true.
func Wrap(base *DomainError, format string, args ...any) error {
	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of the first DomainError in err's chain, or ""
// when err carries none.
func CodeOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the caller may safely repeat the operation.
// Only storage failures qualify; nothing was committed when they occur.
func IsRetryable(err error) bool {
	return stderrors.Is(err, ErrTransactionFailed)
}
