package handlers

import (
	"fanzvault/internal/models"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/services/wallet"
	"fanzvault/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WalletHandler struct {
	walletService wallet.Service
	coordinator   *transaction.Coordinator
	log           *zap.Logger
}

func NewWalletHandler(walletService wallet.Service, coordinator *transaction.Coordinator, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		coordinator:   coordinator,
		log:           log.Named("wallet_handler"),
	}
}

type createWalletRequest struct {
	UserID     string `json:"user_id" validate:"required,max=64"`
	WalletType string `json:"wallet_type" validate:"required"`
}

// GetOrCreateWallet handles POST /wallets.
func (h *WalletHandler) GetOrCreateWallet(c *fiber.Ctx) error {
	var req createWalletRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	w, err := h.walletService.GetOrCreateWallet(c.UserContext(), req.UserID, models.WalletType(req.WalletType))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, w)
}

// GetWallet handles GET /wallets/:id.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	w, err := h.walletService.GetWallet(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, w)
}

// GetBalance handles GET /wallets/:id/balance.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	b, err := h.walletService.GetBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, b)
}

// ListUserWallets handles GET /users/:userId/wallets.
func (h *WalletHandler) ListUserWallets(c *fiber.Ctx) error {
	wallets, err := h.walletService.ListUserWallets(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"wallets": wallets})
}

type walletStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active frozen closed"`
}

// SetWalletStatus handles POST /wallets/:id/status. Admin only.
func (h *WalletHandler) SetWalletStatus(c *fiber.Ctx) error {
	var req walletStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	w, err := h.coordinator.SetWalletStatus(c.UserContext(), c.Params("id"), models.WalletStatus(req.Status))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, w)
}
