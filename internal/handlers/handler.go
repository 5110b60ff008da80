// Package handlers exposes the ledger operations over HTTP.
package handlers

import (
	"errors"
	"fmt"
	"strings"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/services/transaction"
	"fanzvault/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody decodes the JSON body into dst and runs its validate tags.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return apperrors.Wrap(apperrors.ErrInvalidInput, "%s", strings.Join(msgs, "; "))
		}
		return apperrors.Wrap(apperrors.ErrInvalidInput, "%v", err)
	}
	return nil
}

func actorOf(c *fiber.Ctx) transaction.Actor {
	return transaction.Actor{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// StatusFor maps a domain error code onto an HTTP status.
func StatusFor(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeInvalidAmount, apperrors.CodeInvalidInput:
		return fiber.StatusBadRequest
	case apperrors.CodeInsufficientFunds, apperrors.CodeInsufficientBalance,
		apperrors.CodeCreditExceeded, apperrors.CodeInvalidState:
		return fiber.StatusConflict
	case apperrors.CodeInvalidSplit:
		return fiber.StatusUnprocessableEntity
	case apperrors.CodeTransactionFailed:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Storage details behind a
// TRANSACTION_FAILED are logged, not returned.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	code := apperrors.CodeOf(err)
	status := StatusFor(code)
	switch {
	case code == "":
		log.Error("unclassified error", zap.String("path", c.Path()), zap.Error(err))
		return utils.InternalError(c, "internal error")
	case code == apperrors.CodeTransactionFailed:
		log.Warn("transaction failed", zap.String("path", c.Path()), zap.Error(err))
		return utils.Error(c, status, code, apperrors.ErrTransactionFailed.Message)
	}
	return utils.Error(c, status, code, err.Error())
}
