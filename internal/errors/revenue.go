package errors

var (
	ErrRevenueShareNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "revenue share not found",
	}
)
