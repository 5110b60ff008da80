// Package token keeps per-user balances of the platform's non-cash tokens.
package token

import (
	"context"
	"errors"
	"math"
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

// Service defines the token ledger operations
type Service interface {
	GetOrCreateTokenBalance(ctx context.Context, userID string, tokenType models.TokenType) (*models.TokenBalance, error)
	ListUserTokenBalances(ctx context.Context, userID string) ([]models.TokenBalance, error)
	MintTokens(ctx context.Context, userID string, tokenType models.TokenType, amount int64) (*models.TokenBalance, error)
	// BurnTokens returns NOT_FOUND when the user never held tokenType.
	BurnTokens(ctx context.Context, userID string, tokenType models.TokenType, amount int64) (*models.TokenBalance, error)
	PurchaseTokens(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
}

type PurchaseRequest struct {
	TransactionID string
	UserID        string
	TokenType     models.TokenType
	TokenAmount   int64
	Actor         transaction.Actor
}

type PurchaseResult struct {
	Balance *models.TokenBalance `json:"balance"`
	Entry   *models.LedgerEntry  `json:"entry"`
	Cost    int64                `json:"cost"`
}

// Config maps a token type to its value in minor currency units.
type Config struct {
	Values       map[string]int64
	DefaultValue int64
}

const DefaultValuePerToken = 100

const (
	opGetOrCreate = "token_get_or_create"
	opMint        = "token_mint"
	opBurn        = "token_burn"
	opPurchase    = "token_purchase"
)

type service struct {
	store  repositories.Store
	coord  *transaction.Coordinator
	config Config
	log    *zap.Logger
}

func NewService(store repositories.Store, coord *transaction.Coordinator, config Config, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if coord == nil {
		panic("coordinator is required")
	}
	if config.DefaultValue <= 0 {
		config.DefaultValue = DefaultValuePerToken
	}
	log = logger.OrNop(log)
	return &service{
		store:  store,
		coord:  coord,
		config: config,
		log:    log.Named("token"),
	}
}

func (s *service) valuePerToken(t models.TokenType) int64 {
	if v, ok := s.config.Values[string(t)]; ok && v > 0 {
		return v
	}
	return s.config.DefaultValue
}

func validateKey(userID string, t models.TokenType) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "user id is required")
	}
	if !t.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown token type %q", t)
	}
	return nil
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "amount must be positive, got %d", amount)
	}
	return nil
}

// lockBalance returns the locked balance row, creating it when missing.
func (s *service) lockBalance(ctx context.Context, tx repositories.Tx, userID string, t models.TokenType) (*models.TokenBalance, bool, error) {
	now := time.Now().UTC()
	return tx.GetOrCreateTokenBalance(ctx, &models.TokenBalance{
		ID:            utils.NewID(utils.PrefixTokenBalance),
		UserID:        userID,
		TokenType:     t,
		ValuePerToken: s.valuePerToken(t),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func save(ctx context.Context, tx repositories.Tx, tb *models.TokenBalance) error {
	tb.Version++
	tb.UpdatedAt = time.Now().UTC()
	return tx.SaveTokenBalance(ctx, tb)
}

func (s *service) GetOrCreateTokenBalance(ctx context.Context, userID string, tokenType models.TokenType) (*models.TokenBalance, error) {
	if err := validateKey(userID, tokenType); err != nil {
		return nil, err
	}
	if tb, err := s.store.FindTokenBalance(ctx, userID, tokenType); err == nil {
		return tb, nil
	}

	var out *models.TokenBalance
	err := s.coord.Execute(ctx, opGetOrCreate, func(u *transaction.Unit) error {
		tb, _, err := s.lockBalance(ctx, u.Tx(), userID, tokenType)
		out = tb
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListUserTokenBalances(ctx context.Context, userID string) ([]models.TokenBalance, error) {
	balances, err := s.store.ListTokenBalances(ctx, userID)
	if err != nil {
		return nil, repositories.TranslateError(err, apperrors.ErrTokenBalanceNotFound)
	}
	return balances, nil
}

// mint adds amount to the locked balance.
func mint(tb *models.TokenBalance, amount int64) error {
	if tb.Balance > math.MaxInt64-amount {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "minting %d overflows token balance %s", amount, tb.ID)
	}
	tb.Balance += amount
	return nil
}

func (s *service) MintTokens(ctx context.Context, userID string, tokenType models.TokenType, amount int64) (*models.TokenBalance, error) {
	if err := validateKey(userID, tokenType); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var out *models.TokenBalance
	err := s.coord.Execute(ctx, opMint, func(u *transaction.Unit) error {
		tb, _, err := s.lockBalance(ctx, u.Tx(), userID, tokenType)
		if err != nil {
			return err
		}
		if err := mint(tb, amount); err != nil {
			return err
		}
		out = tb
		return save(ctx, u.Tx(), tb)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tokens minted",
		zap.String("user_id", userID),
		zap.String("token_type", string(tokenType)),
		zap.Int64("amount", amount),
		zap.Int64("balance", out.Balance))
	return out, nil
}

// BurnTokens removes tokens. Burning from a balance that was never created
// returns NOT_FOUND and creates nothing. Locked tokens cannot be burned.
func (s *service) BurnTokens(ctx context.Context, userID string, tokenType models.TokenType, amount int64) (*models.TokenBalance, error) {
	if err := validateKey(userID, tokenType); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var out *models.TokenBalance
	err := s.coord.Execute(ctx, opBurn, func(u *transaction.Unit) error {
		tb, created, err := s.lockBalance(ctx, u.Tx(), userID, tokenType)
		if err != nil {
			return err
		}
		// The row only existed inside this unit; returning an error drops it.
		if created {
			return apperrors.Wrap(apperrors.ErrTokenBalanceNotFound, "user %s holds no %s", userID, tokenType)
		}
		if amount > tb.Spendable() {
			return apperrors.Wrap(apperrors.ErrInsufficientBalance,
				"token balance %s has %d spendable, burn of %d requested", tb.ID, tb.Spendable(), amount)
		}
		tb.Balance -= amount
		out = tb
		return save(ctx, u.Tx(), tb)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tokens burned",
		zap.String("user_id", userID),
		zap.String("token_type", string(tokenType)),
		zap.Int64("amount", amount),
		zap.Int64("balance", out.Balance))
	return out, nil
}

// PurchaseTokens debits the user's standard wallet amount × value per token
// and mints the tokens, in one unit.
func (s *service) PurchaseTokens(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	if err := validateKey(req.UserID, req.TokenType); err != nil {
		return nil, err
	}
	if err := validateAmount(req.TokenAmount); err != nil {
		return nil, err
	}

	var result *PurchaseResult
	err := s.coord.Execute(ctx, opPurchase, func(u *transaction.Unit) error {
		tb, _, err := s.lockBalance(ctx, u.Tx(), req.UserID, req.TokenType)
		if err != nil {
			return err
		}
		if req.TokenAmount > math.MaxInt64/tb.ValuePerToken {
			return apperrors.Wrap(apperrors.ErrInvalidAmount,
				"cost of %d %s tokens overflows", req.TokenAmount, req.TokenType)
		}
		cost := req.TokenAmount * tb.ValuePerToken

		w, err := u.GetOrCreateWallet(ctx, req.UserID, models.WalletTypeStandard)
		if err != nil {
			return err
		}
		if req.TransactionID != "" {
			prior, err := u.Tx().FindEntry(ctx, req.TransactionID, w.ID, models.DirectionDebit)
			switch {
			case err == nil:
				if prior.ReferenceID != tb.ID || prior.Amount != cost {
					return apperrors.Wrap(apperrors.ErrInvalidInput,
						"transaction %s was already applied with different parameters", req.TransactionID)
				}
				result = &PurchaseResult{Balance: tb, Entry: prior, Cost: cost}
				return nil
			case !errors.Is(err, repositories.ErrRecordNotFound):
				return err
			}
		}
		entry, err := u.RecordTransaction(ctx, transaction.RecordRequest{
			TransactionID: req.TransactionID,
			UserID:        req.UserID,
			WalletID:      w.ID,
			Direction:     models.DirectionDebit,
			Category:      models.CategoryTokenPurchase,
			Amount:        cost,
			ReferenceType: models.ReferenceTokenBalance,
			ReferenceID:   tb.ID,
			Description:   "purchase of " + strconv.FormatInt(req.TokenAmount, 10) + " " + string(req.TokenType),
			Metadata: models.Metadata{
				models.MetaTokenType:     string(req.TokenType),
				models.MetaTokenAmount:   strconv.FormatInt(req.TokenAmount, 10),
				models.MetaValuePerToken: strconv.FormatInt(tb.ValuePerToken, 10),
			},
			Actor: req.Actor,
		})
		if err != nil {
			return err
		}
		if err := mint(tb, req.TokenAmount); err != nil {
			return err
		}
		if err := save(ctx, u.Tx(), tb); err != nil {
			return err
		}
		result = &PurchaseResult{Balance: tb, Entry: entry, Cost: cost}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tokens purchased",
		zap.String("user_id", req.UserID),
		zap.String("token_type", string(req.TokenType)),
		zap.Int64("amount", req.TokenAmount),
		zap.Int64("cost", result.Cost))
	return result, nil
}
