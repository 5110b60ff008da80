package handlers

import (
	"fanzvault/internal/models"
	"fanzvault/internal/services/revenue"
	"fanzvault/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RevenueHandler struct {
	revenueService revenue.Service
	log            *zap.Logger
}

func NewRevenueHandler(revenueService revenue.Service, log *zap.Logger) *RevenueHandler {
	return &RevenueHandler{
		revenueService: revenueService,
		log:            log.Named("revenue_handler"),
	}
}

type revenueShareRequest struct {
	ReferenceType string               `json:"reference_type" validate:"required,max=32"`
	ReferenceID   string               `json:"reference_id" validate:"required,max=64"`
	SplitType     string               `json:"split_type" validate:"required"`
	TotalAmount   int64                `json:"total_amount"`
	Splits        []revenue.SplitInput `json:"splits" validate:"required,min=1"`
}

// ProcessRevenueShare handles POST /revenue-shares.
func (h *RevenueHandler) ProcessRevenueShare(c *fiber.Ctx) error {
	var req revenueShareRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	rs, err := h.revenueService.ProcessRevenueShare(c.UserContext(), revenue.Request{
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		SplitType:     models.SplitType(req.SplitType),
		TotalAmount:   req.TotalAmount,
		Splits:        req.Splits,
		Actor:         actorOf(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Created(c, rs)
}

// GetRevenueShare handles GET /revenue-shares/:id.
func (h *RevenueHandler) GetRevenueShare(c *fiber.Ctx) error {
	rs, err := h.revenueService.GetRevenueShare(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return utils.Success(c, rs)
}
