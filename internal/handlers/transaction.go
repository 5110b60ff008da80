package handlers

import (
	"time"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
	"fanzvault/internal/services/journal"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/utils"

	"github.com/ecodeclub/ekit/slice"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	coordinator *transaction.Coordinator
	log         *zap.Logger
}

func NewTransactionHandler(coordinator *transaction.Coordinator, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		coordinator: coordinator,
		log:         log.Named("transaction_handler"),
	}
}

type recordTransactionRequest struct {
	TransactionID string            `json:"transaction_id" validate:"omitempty,uuid"`
	UserID        string            `json:"user_id" validate:"required,max=64"`
	WalletID      string            `json:"wallet_id" validate:"required,max=64"`
	Direction     string            `json:"direction" validate:"required,oneof=debit credit"`
	Category      string            `json:"category" validate:"required"`
	Amount        int64             `json:"amount"`
	ReferenceType string            `json:"reference_type" validate:"max=32"`
	ReferenceID   string            `json:"reference_id" validate:"max=64"`
	Description   string            `json:"description" validate:"max=255"`
	Metadata      map[string]string `json:"metadata"`
}

// RecordTransaction handles POST /transactions.
func (h *TransactionHandler) RecordTransaction(c *fiber.Ctx) error {
	var req recordTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	entry, err := h.coordinator.RecordTransaction(c.UserContext(), transaction.RecordRequest{
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
		WalletID:      req.WalletID,
		Direction:     models.EntryDirection(req.Direction),
		Category:      models.TransactionCategory(req.Category),
		Amount:        req.Amount,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		Metadata:      req.Metadata,
		Actor:         actorOf(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, entry)
}

// entryView is a ledger entry as returned by the history endpoint.
type entryView struct {
	models.LedgerEntry
	SignedAmount int64 `json:"signed_amount"`
}

// GetTransactionHistory handles GET /transactions. Either wallet_id or
// user_id is required; from and to are RFC 3339 timestamps.
func (h *TransactionHandler) GetTransactionHistory(c *fiber.Ctx) error {
	filter := models.EntryFilter{
		WalletID: c.Query("wallet_id"),
		UserID:   c.Query("user_id"),
	}
	if filter.WalletID == "" && filter.UserID == "" {
		return respondError(c, h.log, apperrors.Wrap(apperrors.ErrInvalidInput, "wallet_id or user_id is required"))
	}
	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return respondError(c, h.log, err)
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return respondError(c, h.log, err)
	}

	pagination := utils.GetPagination(c, journal.DefaultLimit, journal.MaxLimit)
	entries, total, err := h.coordinator.GetTransactionHistory(c.UserContext(), filter, journal.Page{
		Page:  pagination.Page,
		Limit: pagination.Limit,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	pagination.SetTotal(total)

	views := slice.Map(entries, func(_ int, e models.LedgerEntry) entryView {
		return entryView{LedgerEntry: e, SignedAmount: e.Direction.Sign() * e.Amount}
	})
	return utils.Success(c, utils.NewPaginatedResponse(views, pagination))
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid timestamp %q", s)
	}
	return t.UTC(), nil
}
