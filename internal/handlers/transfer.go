package handlers

import (
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type transferRequest struct {
	TransactionID string            `json:"transaction_id" validate:"omitempty,uuid"`
	FromUserID    string            `json:"from_user_id" validate:"required,max=64"`
	FromWalletID  string            `json:"from_wallet_id" validate:"required,max=64"`
	ToUserID      string            `json:"to_user_id" validate:"required,max=64"`
	ToWalletID    string            `json:"to_wallet_id" validate:"required,max=64"`
	Amount        int64             `json:"amount"`
	Description   string            `json:"description" validate:"max=255"`
	Metadata      map[string]string `json:"metadata"`
}

// TransferFunds handles POST /transfers.
func (h *TransactionHandler) TransferFunds(c *fiber.Ctx) error {
	var req transferRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.coordinator.TransferFunds(c.UserContext(), transaction.TransferRequest{
		TransactionID: req.TransactionID,
		FromUserID:    req.FromUserID,
		FromWalletID:  req.FromWalletID,
		ToUserID:      req.ToUserID,
		ToWalletID:    req.ToWalletID,
		Amount:        req.Amount,
		Description:   req.Description,
		Metadata:      req.Metadata,
		Actor:         actorOf(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, res)
}
