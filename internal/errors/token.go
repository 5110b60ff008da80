package errors

var (
	ErrTokenBalanceNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "token balance not found",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    CodeInsufficientBalance,
		Message: "insufficient token balance",
	}
)
