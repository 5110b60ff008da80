package errors

var (
	ErrWalletNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "wallet not found",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    CodeInsufficientFunds,
		Message: "insufficient funds",
	}
	ErrWalletNotActive = &DomainError{
		Code:    CodeInvalidState,
		Message: "wallet is not active",
	}
	ErrEntryNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "ledger entry not found",
	}
)
