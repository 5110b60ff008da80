package revenue

import (
	"strings"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"

	"github.com/shopspring/decimal"
)

// SplitInput is one beneficiary and their percentage of the total.
type SplitInput struct {
	UserID     string  `json:"user_id"`
	Percentage float64 `json:"percentage"`
}

var (
	hundred          = decimal.NewFromInt(100)
	percentTolerance = decimal.RequireFromString("0.01")
)

// ValidateSplits checks that there is at least one split, that every
// beneficiary is listed once with a positive percentage and that the
// percentages sum to 100 within 0.01.
func ValidateSplits(splits []SplitInput) error {
	if len(splits) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidSplit, "at least one split is required")
	}
	seen := make(map[string]struct{}, len(splits))
	sum := decimal.Zero
	for _, sp := range splits {
		if strings.TrimSpace(sp.UserID) == "" {
			return apperrors.Wrap(apperrors.ErrInvalidSplit, "beneficiary user id is required")
		}
		if _, dup := seen[sp.UserID]; dup {
			return apperrors.Wrap(apperrors.ErrInvalidSplit, "beneficiary %s listed twice", sp.UserID)
		}
		seen[sp.UserID] = struct{}{}
		pct := decimal.NewFromFloat(sp.Percentage)
		if !pct.IsPositive() {
			return apperrors.Wrap(apperrors.ErrInvalidSplit, "percentage for %s must be positive", sp.UserID)
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return apperrors.Wrap(apperrors.ErrInvalidSplit, "percentages sum to %s", sum.String())
	}
	return nil
}

// ComputeSplits floors every share of total and hands the rounding
// remainder to the beneficiary with the largest percentage, the earliest
// listed one on ties. The credited amounts always add up to total.
func ComputeSplits(total int64, splits []SplitInput) ([]models.RevenueShareSplit, int64) {
	out := make([]models.RevenueShareSplit, len(splits))
	t := decimal.NewFromInt(total)
	var allocated int64
	largest := 0
	for i, sp := range splits {
		amount := t.Mul(decimal.NewFromFloat(sp.Percentage)).Div(hundred).Floor().IntPart()
		out[i] = models.RevenueShareSplit{
			Position:   i,
			UserID:     sp.UserID,
			Percentage: sp.Percentage,
			Amount:     amount,
		}
		allocated += amount
		if sp.Percentage > splits[largest].Percentage {
			largest = i
		}
	}

	// Percentages within tolerance above 100 can over-allocate by a unit;
	// take it back from the largest share.
	remainder := total - allocated
	if remainder < 0 {
		out[largest].Amount += remainder
		remainder = 0
	}
	out[largest].RemainderAmount = remainder
	return out, remainder
}
