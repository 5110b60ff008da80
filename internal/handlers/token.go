package handlers

import (
	"fanzvault/internal/models"
	"fanzvault/internal/services/token"
	"fanzvault/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TokenHandler struct {
	tokenService token.Service
	log          *zap.Logger
}

func NewTokenHandler(tokenService token.Service, log *zap.Logger) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		log:          log.Named("token_handler"),
	}
}

// ListUserTokenBalances handles GET /users/:userId/tokens.
func (h *TokenHandler) ListUserTokenBalances(c *fiber.Ctx) error {
	balances, err := h.tokenService.ListUserTokenBalances(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"tokens": balances})
}

// GetOrCreateTokenBalance handles GET /users/:userId/tokens/:type.
func (h *TokenHandler) GetOrCreateTokenBalance(c *fiber.Ctx) error {
	tb, err := h.tokenService.GetOrCreateTokenBalance(c.UserContext(), c.Params("userId"), models.TokenType(c.Params("type")))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, tb)
}

type tokenAmountRequest struct {
	UserID    string `json:"user_id" validate:"required,max=64"`
	TokenType string `json:"token_type" validate:"required"`
	Amount    int64  `json:"amount"`
}

// MintTokens handles POST /tokens/mint. Admin only.
func (h *TokenHandler) MintTokens(c *fiber.Ctx) error {
	var req tokenAmountRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	tb, err := h.tokenService.MintTokens(c.UserContext(), req.UserID, models.TokenType(req.TokenType), req.Amount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, tb)
}

// BurnTokens handles POST /tokens/burn.
func (h *TokenHandler) BurnTokens(c *fiber.Ctx) error {
	var req tokenAmountRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	tb, err := h.tokenService.BurnTokens(c.UserContext(), req.UserID, models.TokenType(req.TokenType), req.Amount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, tb)
}

type purchaseTokensRequest struct {
	TransactionID string `json:"transaction_id" validate:"omitempty,uuid"`
	UserID        string `json:"user_id" validate:"required,max=64"`
	TokenType     string `json:"token_type" validate:"required"`
	TokenAmount   int64  `json:"token_amount"`
}

// PurchaseTokens handles POST /tokens/purchase.
func (h *TokenHandler) PurchaseTokens(c *fiber.Ctx) error {
	var req purchaseTokensRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.tokenService.PurchaseTokens(c.UserContext(), token.PurchaseRequest{
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
		TokenType:     models.TokenType(req.TokenType),
		TokenAmount:   req.TokenAmount,
		Actor:         actorOf(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, res)
}
