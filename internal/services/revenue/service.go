// Package revenue splits one amount among several beneficiaries by
// percentage and credits each of them, all in one atomic unit.
package revenue

import (
	"context"
	"strconv"
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

// Service defines the revenue split operations
type Service interface {
	ProcessRevenueShare(ctx context.Context, req Request) (*models.RevenueShare, error)
	GetRevenueShare(ctx context.Context, id string) (*models.RevenueShare, error)
}

type Request struct {
	ReferenceType string
	ReferenceID   string
	SplitType     models.SplitType
	TotalAmount   int64
	Splits        []SplitInput
	Actor         transaction.Actor
}

const (
	opProcess    = "revenue_share"
	opMarkFailed = "revenue_share_failed"
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
		log:   log.Named("revenue"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validate(req Request) error {
	if req.TotalAmount <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "total amount must be positive, got %d", req.TotalAmount)
	}
	if strings.TrimSpace(req.ReferenceType) == "" || strings.TrimSpace(req.ReferenceID) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "reference type and id are required")
	}
	if !req.SplitType.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown split type %q", req.SplitType)
	}
	return ValidateSplits(req.Splits)
}

// ProcessRevenueShare records the share and credits every beneficiary's
// standard wallet in one unit. If the unit fails nobody is credited and
// the share is stored as failed, with the reason, in a unit of its own.
func (s *service) ProcessRevenueShare(ctx context.Context, req Request) (*models.RevenueShare, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	splits, remainder := ComputeSplits(req.TotalAmount, req.Splits)
	now := s.now()
	base := &models.RevenueShare{
		ID:              utils.NewID(utils.PrefixRevenueShare),
		ReferenceType:   req.ReferenceType,
		ReferenceID:     req.ReferenceID,
		SplitType:       req.SplitType,
		TotalAmount:     req.TotalAmount,
		RemainderAmount: remainder,
		Status:          models.RevenueShareStatusPending,
		Splits:          splits,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i := range base.Splits {
		base.Splits[i].RevenueShareID = base.ID
	}
	txnID := utils.NewTransactionID()

	var out *models.RevenueShare
	err := s.coord.Execute(ctx, opProcess, func(u *transaction.Unit) error {
		rs := base.Clone()
		if err := u.Tx().CreateRevenueShare(ctx, rs); err != nil {
			return err
		}
		for i := range rs.Splits {
			sp := &rs.Splits[i]
			if sp.Credited() == 0 {
				continue
			}
			w, err := u.GetOrCreateWallet(ctx, sp.UserID, models.WalletTypeStandard)
			if err != nil {
				return err
			}
			entry, err := u.RecordTransaction(ctx, transaction.RecordRequest{
				TransactionID: txnID,
				UserID:        sp.UserID,
				WalletID:      w.ID,
				Direction:     models.DirectionCredit,
				Category:      models.CategoryPayment,
				Amount:        sp.Credited(),
				ReferenceType: models.ReferenceRevenueShare,
				ReferenceID:   rs.ID,
				Description:   string(rs.SplitType) + " share of " + rs.ReferenceType + "/" + rs.ReferenceID,
				Metadata: models.Metadata{
					models.MetaRevenueShareID: rs.ID,
					models.MetaSplitType:      string(rs.SplitType),
					models.MetaPercentage:     strconv.FormatFloat(sp.Percentage, 'f', -1, 64),
					models.MetaRemainder:      strconv.FormatInt(sp.RemainderAmount, 10),
				},
				Actor: req.Actor,
			})
			if err != nil {
				return err
			}
			sp.EntryID = entry.ID
		}
		processedAt := s.now()
		rs.Status = models.RevenueShareStatusCompleted
		rs.ProcessedAt = &processedAt
		rs.Version++
		if err := u.Tx().SaveRevenueShare(ctx, rs); err != nil {
			return err
		}
		out = rs
		return nil
	})
	if err != nil {
		s.markFailed(ctx, base, err)
		return nil, err
	}

	s.log.Info("revenue share completed",
		zap.String("revenue_share_id", out.ID),
		zap.String("reference", out.ReferenceType+"/"+out.ReferenceID),
		zap.Int64("total_amount", out.TotalAmount),
		zap.Int("beneficiaries", len(out.Splits)),
		zap.Int64("remainder", out.RemainderAmount))
	return out, nil
}

// markFailed stores the share as failed. The original error is what the
// caller sees; a failure here is only logged.
func (s *service) markFailed(ctx context.Context, base *models.RevenueShare, cause error) {
	rs := base.Clone()
	processedAt := s.now()
	rs.Status = models.RevenueShareStatusFailed
	rs.FailureReason = truncate(cause.Error(), 255)
	rs.ProcessedAt = &processedAt
	for i := range rs.Splits {
		rs.Splits[i].EntryID = ""
	}

	err := s.coord.Execute(ctx, opMarkFailed, func(u *transaction.Unit) error {
		return u.Tx().CreateRevenueShare(ctx, rs.Clone())
	})
	if err != nil {
		s.log.Error("failed to record failed revenue share",
			zap.String("revenue_share_id", rs.ID),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return
	}
	s.log.Warn("revenue share failed",
		zap.String("revenue_share_id", rs.ID),
		zap.String("reference", rs.ReferenceType+"/"+rs.ReferenceID),
		zap.Error(cause))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (s *service) GetRevenueShare(ctx context.Context, id string) (*models.RevenueShare, error) {
	rs, err := s.store.GetRevenueShare(ctx, id)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrRevenueShareNotFound)
	}
	return rs, nil
}
