// Package journal is the append-only ledger of balance changes.
package journal

import (
	"context"
	"strings"
	"time"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/utils"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page selects one page of a query. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// Bounds returns the effective limit and offset.
func (p Page) Bounds() (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

type Journal struct {
	store repositories.Store
	now   func() time.Time
}

func New(store repositories.Store) *Journal {
	return &Journal{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks an entry before anything is locked or written.
func Validate(e *models.LedgerEntry) error {
	if e.Amount <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "amount must be positive, got %d", e.Amount)
	}
	if !e.Direction.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown direction %q", e.Direction)
	}
	if !e.Category.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown category %q", e.Category)
	}
	if err := e.Metadata.Validate(e.Category); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "%v", err)
	}
	return nil
}

// Append stores e inside tx. The caller must already have applied the
// matching wallet change in the same unit and set BalanceAfter accordingly.
// A missing transaction id is minted; the entry id and timestamp always are.
func (j *Journal) Append(ctx context.Context, tx repositories.Tx, e *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	if strings.TrimSpace(e.WalletID) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "wallet id is required")
	}

	out := *e
	out.Metadata = e.Metadata.Clone()
	out.ID = utils.NewID(utils.PrefixLedgerEntry)
	if out.TransactionID == "" {
		out.TransactionID = utils.NewTransactionID()
	}
	out.CreatedAt = j.now()

	if err := tx.AppendEntry(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query returns one page of entries, newest first, and the total number of
// matches.
func (j *Journal) Query(ctx context.Context, filter models.EntryFilter, page Page) ([]models.LedgerEntry, int64, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, 0, apperrors.Wrap(apperrors.ErrInvalidInput, "date range ends before it starts")
	}
	filter.Limit, filter.Offset = page.Bounds()

	entries, total, err := j.store.QueryEntries(ctx, filter)
	if err != nil {
		return nil, 0, repositories.TranslateError(err, apperrors.ErrEntryNotFound)
	}
	return entries, total, nil
}
