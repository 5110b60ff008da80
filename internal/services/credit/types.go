package credit

import (
	"context"

	"fanzvault/internal/models"
	"fanzvault/internal/services/transaction"
)

// Service defines the credit line operations
type Service interface {
	CreateCreditLine(ctx context.Context, req CreateRequest) (*models.CreditLine, error)
	ApproveCreditLine(ctx context.Context, creditLineID, approverID string) (*models.CreditLine, error)
	DrawCredit(ctx context.Context, req DrawRequest) (*DrawResult, error)
	CloseCreditLine(ctx context.Context, creditLineID string) (*models.CreditLine, error)
	GetCreditLine(ctx context.Context, creditLineID string) (*models.CreditLine, error)
	GetUserCreditLines(ctx context.Context, userID string) ([]models.CreditLine, error)
}

type CreateRequest struct {
	UserID          string
	CreditLimit     int64
	InterestRateBps int
	TrustScore      int
	RiskTier        models.RiskTier
	Collateral      string
}

// DrawRequest draws Amount from a credit line into the owner's standard
// wallet. TransactionID is optional and makes the draw idempotent.
type DrawRequest struct {
	TransactionID string
	CreditLineID  string
	UserID        string
	Amount        int64
	Description   string
	Actor         transaction.Actor
}

type DrawResult struct {
	CreditLine *models.CreditLine  `json:"credit_line"`
	Entry      *models.LedgerEntry `json:"entry"`
}

// Limits on creation input.
const (
	MaxInterestRateBps = 10000
	MaxTrustScore      = 1000
)

const (
	opCreate  = "credit_create"
	opApprove = "credit_approve"
	opDraw    = "credit_draw"
	opClose   = "credit_close"
)
