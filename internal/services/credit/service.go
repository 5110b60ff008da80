// Package credit manages revolving credit lines. A line is created pending,
// becomes active on approval and can then be drawn into the owner's
// standard wallet until it is closed.
package credit

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/logger"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/utils"

	"go.uber.org/zap"
)

type service struct {
	store repositories.Store
	coord *transaction.Coordinator
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repositories.Store, coord *transaction.Coordinator, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if coord == nil {
		panic("coordinator is required")
	}
	log = logger.OrNop(log)
	return &service{
		store: store,
		coord: coord,
		log:   log.Named("credit"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validateCreate(req CreateRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "user id is required")
	}
	if req.CreditLimit <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "credit limit must be positive, got %d", req.CreditLimit)
	}
	if req.InterestRateBps < 0 || req.InterestRateBps > MaxInterestRateBps {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "interest rate %d bps out of range", req.InterestRateBps)
	}
	if req.TrustScore < 0 || req.TrustScore > MaxTrustScore {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "trust score %d out of range", req.TrustScore)
	}
	if !req.RiskTier.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown risk tier %q", req.RiskTier)
	}
	return nil
}

func (s *service) CreateCreditLine(ctx context.Context, req CreateRequest) (*models.CreditLine, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()
	cl := &models.CreditLine{
		ID:              utils.NewID(utils.PrefixCreditLine),
		UserID:          req.UserID,
		Status:          models.CreditLineStatusPending,
		CreditLimit:     req.CreditLimit,
		AvailableCredit: req.CreditLimit,
		InterestRateBps: req.InterestRateBps,
		TrustScore:      req.TrustScore,
		RiskTier:        req.RiskTier,
		Collateral:      req.Collateral,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := s.coord.Execute(ctx, opCreate, func(u *transaction.Unit) error {
		return u.Tx().CreateCreditLine(ctx, cl)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("credit line created",
		zap.String("credit_line_id", cl.ID),
		zap.String("user_id", cl.UserID),
		zap.Int64("credit_limit", cl.CreditLimit))
	return cl, nil
}

// transition locks a credit line, applies fn to it and saves it.
func (s *service) transition(ctx context.Context, op, creditLineID string, fn func(cl *models.CreditLine) error) (*models.CreditLine, error) {
	var out *models.CreditLine
	err := s.coord.Execute(ctx, op, func(u *transaction.Unit) error {
		cl, err := u.Tx().GetCreditLineForUpdate(ctx, creditLineID)
		if err != nil {
			return repositories.TranslateError(err, apperrors.ErrCreditLineNotFound)
		}
		if err := fn(cl); err != nil {
			return err
		}
		cl.Version++
		cl.UpdatedAt = s.now()
		if err := u.Tx().SaveCreditLine(ctx, cl); err != nil {
			return err
		}
		out = cl
		return nil
	})
	return out, err
}

func (s *service) ApproveCreditLine(ctx context.Context, creditLineID, approverID string) (*models.CreditLine, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "approver id is required")
	}
	cl, err := s.transition(ctx, opApprove, creditLineID, func(cl *models.CreditLine) error {
		if cl.Status != models.CreditLineStatusPending {
			return apperrors.Wrap(apperrors.ErrCreditLineNotPending, "credit line %s is %s", cl.ID, cl.Status)
		}
		approvedAt := s.now()
		cl.Status = models.CreditLineStatusActive
		cl.ApprovedBy = approverID
		cl.ApprovedAt = &approvedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("credit line approved", zap.String("credit_line_id", cl.ID), zap.String("approved_by", approverID))
	return cl, nil
}

// DrawCredit moves credit into the owner's standard wallet. The credit line
// update and the wallet credit commit together.
func (s *service) DrawCredit(ctx context.Context, req DrawRequest) (*DrawResult, error) {
	if req.Amount <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "amount must be positive, got %d", req.Amount)
	}

	var result *DrawResult
	err := s.coord.Execute(ctx, opDraw, func(u *transaction.Unit) error {
		tx := u.Tx()
		cl, err := tx.GetCreditLineForUpdate(ctx, req.CreditLineID)
		if err != nil {
			return repositories.TranslateError(err, apperrors.ErrCreditLineNotFound)
		}
		if req.UserID != "" && cl.UserID != req.UserID {
			return apperrors.ErrCreditLineNotFound
		}

		w, err := u.GetOrCreateWallet(ctx, cl.UserID, models.WalletTypeStandard)
		if err != nil {
			return err
		}

		// A replayed draw returns the entry it produced the first time.
		if req.TransactionID != "" {
			prior, err := tx.FindEntry(ctx, req.TransactionID, w.ID, models.DirectionCredit)
			switch {
			case err == nil:
				if prior.ReferenceID != cl.ID || prior.Amount != req.Amount {
					return apperrors.Wrap(apperrors.ErrInvalidInput,
						"transaction %s was already applied with different parameters", req.TransactionID)
				}
				result = &DrawResult{CreditLine: cl, Entry: prior}
				return nil
			case !errors.Is(err, repositories.ErrRecordNotFound):
				return err
			}
		}

		if cl.Status != models.CreditLineStatusActive {
			return apperrors.Wrap(apperrors.ErrCreditLineNotActive, "credit line %s is %s", cl.ID, cl.Status)
		}
		if req.Amount > cl.AvailableCredit {
			return apperrors.Wrap(apperrors.ErrCreditExceeded,
				"credit line %s has %d available, draw of %d requested", cl.ID, cl.AvailableCredit, req.Amount)
		}
		cl.AvailableCredit -= req.Amount
		cl.UsedCredit += req.Amount
		cl.Version++
		cl.UpdatedAt = s.now()
		if err := tx.SaveCreditLine(ctx, cl); err != nil {
			return err
		}

		entry, err := u.RecordTransaction(ctx, drawEntry(req, cl, w))
		if err != nil {
			return err
		}
		result = &DrawResult{CreditLine: cl, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("credit drawn",
		zap.String("credit_line_id", result.CreditLine.ID),
		zap.String("wallet_id", result.Entry.WalletID),
		zap.Int64("amount", req.Amount),
		zap.Int64("available_credit", result.CreditLine.AvailableCredit))
	return result, nil
}

func drawEntry(req DrawRequest, cl *models.CreditLine, w *models.Wallet) transaction.RecordRequest {
	return transaction.RecordRequest{
		TransactionID: req.TransactionID,
		UserID:        cl.UserID,
		WalletID:      w.ID,
		Direction:     models.DirectionCredit,
		Category:      models.CategoryCreditIssued,
		Amount:        req.Amount,
		ReferenceType: models.ReferenceCreditLine,
		ReferenceID:   cl.ID,
		Description:   req.Description,
		Metadata:      models.Metadata{models.MetaCreditLineID: cl.ID},
		Actor:         req.Actor,
	}
}

// CloseCreditLine ends an active line. Outstanding used credit stays on
// record.
func (s *service) CloseCreditLine(ctx context.Context, creditLineID string) (*models.CreditLine, error) {
	cl, err := s.transition(ctx, opClose, creditLineID, func(cl *models.CreditLine) error {
		if cl.Status != models.CreditLineStatusActive {
			return apperrors.Wrap(apperrors.ErrCreditLineNotActive, "credit line %s is %s", cl.ID, cl.Status)
		}
		closedAt := s.now()
		cl.Status = models.CreditLineStatusClosed
		cl.ClosedAt = &closedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("credit line closed", zap.String("credit_line_id", cl.ID), zap.Int64("used_credit", cl.UsedCredit))
	return cl, nil
}

func (s *service) GetCreditLine(ctx context.Context, creditLineID string) (*models.CreditLine, error) {
	cl, err := s.store.GetCreditLine(ctx, creditLineID)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrCreditLineNotFound)
	}
	return cl, nil
}

func (s *service) GetUserCreditLines(ctx context.Context, userID string) ([]models.CreditLine, error) {
	lines, err := s.store.ListCreditLines(ctx, userID)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrCreditLineNotFound)
	}
	return lines, nil
}
