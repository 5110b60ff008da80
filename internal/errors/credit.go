package errors

var (
	ErrCreditLineNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "credit line not found",
	}
	ErrCreditExceeded = &DomainError{
		Code:    CodeCreditExceeded,
		Message: "credit limit exceeded",
	}
	ErrCreditLineNotActive = &DomainError{
		Code:    CodeInvalidState,
		Message: "credit line is not active",
	}
	ErrCreditLineNotPending = &DomainError{
		Code:    CodeInvalidState,
		Message: "credit line is not pending approval",
	}
)
