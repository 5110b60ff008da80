package handlers

import (
	"fanzvault/internal/middleware"
	"fanzvault/internal/models"
	"fanzvault/internal/services/credit"
	"fanzvault/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CreditHandler struct {
	creditService credit.Service
	log           *zap.Logger
}

func NewCreditHandler(creditService credit.Service, log *zap.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		log:           log.Named("credit_handler"),
	}
}

type createCreditLineRequest struct {
	UserID          string `json:"user_id" validate:"required,max=64"`
	CreditLimit     int64  `json:"credit_limit"`
	InterestRateBps int    `json:"interest_rate_bps"`
	TrustScore      int    `json:"trust_score"`
	RiskTier        string `json:"risk_tier" validate:"required"`
	Collateral      string `json:"collateral" validate:"max=255"`
}

// CreateCreditLine handles POST /credit-lines.
func (h *CreditHandler) CreateCreditLine(c *fiber.Ctx) error {
	var req createCreditLineRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	cl, err := h.creditService.CreateCreditLine(c.UserContext(), credit.CreateRequest{
		UserID:          req.UserID,
		CreditLimit:     req.CreditLimit,
		InterestRateBps: req.InterestRateBps,
		TrustScore:      req.TrustScore,
		RiskTier:        models.RiskTier(req.RiskTier),
		Collateral:      req.Collateral,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, cl)
}

// GetCreditLine handles GET /credit-lines/:id.
func (h *CreditHandler) GetCreditLine(c *fiber.Ctx) error {
	cl, err := h.creditService.GetCreditLine(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, cl)
}

// GetUserCreditLines handles GET /users/:userId/credit-lines.
func (h *CreditHandler) GetUserCreditLines(c *fiber.Ctx) error {
	lines, err := h.creditService.GetUserCreditLines(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"credit_lines": lines})
}

// ApproveCreditLine handles POST /credit-lines/:id/approve. The approver is
// the token subject.
func (h *CreditHandler) ApproveCreditLine(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	cl, err := h.creditService.ApproveCreditLine(c.UserContext(), c.Params("id"), claims.Subject)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, cl)
}

type drawCreditRequest struct {
	TransactionID string `json:"transaction_id" validate:"omitempty,uuid"`
	UserID        string `json:"user_id" validate:"required,max=64"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description" validate:"max=255"`
}

// DrawCredit handles POST /credit-lines/:id/draw.
func (h *CreditHandler) DrawCredit(c *fiber.Ctx) error {
	var req drawCreditRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.creditService.DrawCredit(c.UserContext(), credit.DrawRequest{
		TransactionID: req.TransactionID,
		CreditLineID:  c.Params("id"),
		UserID:        req.UserID,
		Amount:        req.Amount,
		Description:   req.Description,
		Actor:         actorOf(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, res)
}

// CloseCreditLine handles POST /credit-lines/:id/close.
func (h *CreditHandler) CloseCreditLine(c *fiber.Ctx) error {
	cl, err := h.creditService.CloseCreditLine(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, cl)
}
