package credit

import (
	"context"
	"testing"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories/memory"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/utils"

	"github.com/stretchr/testify/suite"
)

type CreditServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	coord *transaction.Coordinator
	svc   Service
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}

func (s *CreditServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.coord = transaction.NewCoordinator(s.store, nil, nil, transaction.Config{MaxConflictRetries: 5}, nil, nil)
	s.svc = NewService(s.store, s.coord, nil)
}

func (s *CreditServiceTestSuite) activeLine(userID string, limit int64) *models.CreditLine {
	cl, err := s.svc.CreateCreditLine(s.ctx, CreateRequest{
		UserID:          userID,
		CreditLimit:     limit,
		InterestRateBps: 1299,
		TrustScore:      720,
		RiskTier:        models.RiskTierLow,
	})
	s.Require().NoError(err)
	cl, err = s.svc.ApproveCreditLine(s.ctx, cl.ID, "admin-1")
	s.Require().NoError(err)
	return cl
}

func (s *CreditServiceTestSuite) standardWallet(userID string) *models.Wallet {
	w, err := s.store.FindWallet(s.ctx, userID, models.WalletTypeStandard)
	s.Require().NoError(err)
	return w
}

func (s *CreditServiceTestSuite) TestCreateAndApprove() {
	cl, err := s.svc.CreateCreditLine(s.ctx, CreateRequest{
		UserID: "carol", CreditLimit: 10000, RiskTier: models.RiskTierMedium, Collateral: "equipment",
	})
	s.Require().NoError(err)
	s.Equal(models.CreditLineStatusPending, cl.Status)
	s.Equal(int64(10000), cl.AvailableCredit)
	s.Zero(cl.UsedCredit)

	approved, err := s.svc.ApproveCreditLine(s.ctx, cl.ID, "admin-1")
	s.Require().NoError(err)
	s.Equal(models.CreditLineStatusActive, approved.Status)
	s.Equal("admin-1", approved.ApprovedBy)
	s.NotNil(approved.ApprovedAt)

	_, err = s.svc.ApproveCreditLine(s.ctx, cl.ID, "admin-2")
	s.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = s.svc.ApproveCreditLine(s.ctx, "cl_missing", "admin-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CreditServiceTestSuite) TestCreateValidation() {
	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"missing user", CreateRequest{CreditLimit: 1, RiskTier: models.RiskTierLow}, apperrors.ErrInvalidInput},
		{"zero limit", CreateRequest{UserID: "u", RiskTier: models.RiskTierLow}, apperrors.ErrInvalidAmount},
		{"negative rate", CreateRequest{UserID: "u", CreditLimit: 1, InterestRateBps: -1, RiskTier: models.RiskTierLow}, apperrors.ErrInvalidInput},
		{"trust score too high", CreateRequest{UserID: "u", CreditLimit: 1, TrustScore: 5000, RiskTier: models.RiskTierLow}, apperrors.ErrInvalidInput},
		{"unknown tier", CreateRequest{UserID: "u", CreditLimit: 1, RiskTier: "extreme"}, apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.CreateCreditLine(s.ctx, tt.req)
			s.ErrorIs(err, tt.want)
		})
	}
}

func (s *CreditServiceTestSuite) TestDrawCredit() {
	cl := s.activeLine("carol", 10000)

	res, err := s.svc.DrawCredit(s.ctx, DrawRequest{CreditLineID: cl.ID, UserID: "carol", Amount: 4000})
	s.Require().NoError(err)
	s.Equal(int64(6000), res.CreditLine.AvailableCredit)
	s.Equal(int64(4000), res.CreditLine.UsedCredit)
	s.Equal(models.CategoryCreditIssued, res.Entry.Category)
	s.Equal(models.ReferenceCreditLine, res.Entry.ReferenceType)
	s.Equal(cl.ID, res.Entry.ReferenceID)

	w := s.standardWallet("carol")
	s.Equal(int64(4000), w.Available)
	s.Equal(w.ID, res.Entry.WalletID)

	stored, err := s.svc.GetCreditLine(s.ctx, cl.ID)
	s.Require().NoError(err)
	s.Equal(stored.CreditLimit, stored.AvailableCredit+stored.UsedCredit)
}

func (s *CreditServiceTestSuite) TestDrawRejections() {
	cl := s.activeLine("carol", 1000)
	pending, err := s.svc.CreateCreditLine(s.ctx, CreateRequest{UserID: "carol", CreditLimit: 1000, RiskTier: models.RiskTierHigh})
	s.Require().NoError(err)

	tests := []struct {
		name string
		req  DrawRequest
		want error
	}{
		{"exceeds available", DrawRequest{CreditLineID: cl.ID, Amount: 1001}, apperrors.ErrCreditExceeded},
		{"zero amount", DrawRequest{CreditLineID: cl.ID}, apperrors.ErrInvalidAmount},
		{"pending line", DrawRequest{CreditLineID: pending.ID, Amount: 10}, apperrors.ErrInvalidState},
		{"someone else's line", DrawRequest{CreditLineID: cl.ID, UserID: "dave", Amount: 10}, apperrors.ErrNotFound},
		{"unknown line", DrawRequest{CreditLineID: "cl_missing", Amount: 10}, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.DrawCredit(s.ctx, tt.req)
			s.ErrorIs(err, tt.want)
		})
	}

	stored, err := s.svc.GetCreditLine(s.ctx, cl.ID)
	s.Require().NoError(err)
	s.Equal(int64(1000), stored.AvailableCredit)
	_, err = s.store.FindWallet(s.ctx, "carol", models.WalletTypeStandard)
	s.Error(err)
}

func (s *CreditServiceTestSuite) TestDrawIntoFrozenWalletChangesNothing() {
	cl := s.activeLine("carol", 1000)
	_, err := s.svc.DrawCredit(s.ctx, DrawRequest{CreditLineID: cl.ID, Amount: 100})
	s.Require().NoError(err)
	w := s.standardWallet("carol")
	_, err = s.coord.SetWalletStatus(s.ctx, w.ID, models.WalletStatusFrozen)
	s.Require().NoError(err)

	_, err = s.svc.DrawCredit(s.ctx, DrawRequest{CreditLineID: cl.ID, Amount: 200})
	s.ErrorIs(err, apperrors.ErrInvalidState)

	stored, err := s.svc.GetCreditLine(s.ctx, cl.ID)
	s.Require().NoError(err)
	s.Equal(int64(900), stored.AvailableCredit)
	s.Equal(int64(100), s.standardWallet("carol").Available)
}

func (s *CreditServiceTestSuite) TestDrawIsIdempotentPerTransactionID() {
	cl := s.activeLine("carol", 1000)
	req := DrawRequest{TransactionID: utils.NewTransactionID(), CreditLineID: cl.ID, Amount: 250}

	first, err := s.svc.DrawCredit(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.svc.DrawCredit(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(first.Entry.ID, second.Entry.ID)
	s.Equal(int64(750), second.CreditLine.AvailableCredit)
	s.Equal(int64(250), s.standardWallet("carol").Available)

	req.Amount = 10
	_, err = s.svc.DrawCredit(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrInvalidInput)
}

func (s *CreditServiceTestSuite) TestCloseCreditLine() {
	cl := s.activeLine("carol", 1000)

	closed, err := s.svc.CloseCreditLine(s.ctx, cl.ID)
	s.Require().NoError(err)
	s.Equal(models.CreditLineStatusClosed, closed.Status)
	s.NotNil(closed.ClosedAt)

	_, err = s.svc.DrawCredit(s.ctx, DrawRequest{CreditLineID: cl.ID, Amount: 1})
	s.ErrorIs(err, apperrors.ErrInvalidState)
	_, err = s.svc.CloseCreditLine(s.ctx, cl.ID)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	_, err = s.svc.ApproveCreditLine(s.ctx, cl.ID, "admin-1")
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *CreditServiceTestSuite) TestGetUserCreditLines() {
	s.activeLine("carol", 1000)
	s.activeLine("carol", 2000)
	s.activeLine("dave", 3000)

	lines, err := s.svc.GetUserCreditLines(s.ctx, "carol")
	s.Require().NoError(err)
	s.Len(lines, 2)
	for _, cl := range lines {
		s.Equal("carol", cl.UserID)
	}
}
