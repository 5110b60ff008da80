package journal

import (
	"context"
	"testing"
	"time"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
	"fanzvault/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name       string
		page       Page
		wantLimit  int
		wantOffset int
	}{
		{"defaults", Page{}, 20, 0},
		{"second page", Page{Page: 2, Limit: 10}, 10, 10},
		{"capped", Page{Page: 1, Limit: 500}, 100, 0},
		{"negative page", Page{Page: -3, Limit: 5}, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.page.Bounds()
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestAppend(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	j := New(store)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	var stored *models.LedgerEntry
	err := store.WithAtomicUnit(ctx, func(tx repositories.Tx) error {
		var err error
		stored, err = j.Append(ctx, tx, &models.LedgerEntry{
			WalletID:     "wlt_1",
			UserID:       "u1",
			Direction:    models.DirectionCredit,
			Category:     models.CategoryTip,
			Amount:       250,
			BalanceAfter: 250,
			Metadata:     models.Metadata{models.MetaCreatorID: "creator-9"},
		})
		return err
	})
	require.NoError(t, err)
	assert.Regexp(t, `^le_`, stored.ID)
	assert.NotEmpty(t, stored.TransactionID)
	assert.Equal(t, fixed, stored.CreatedAt)

	entries, total, err := j.Query(ctx, models.EntryFilter{UserID: "u1"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, stored.ID, entries[0].ID)
	assert.Equal(t, "creator-9", entries[0].Metadata[models.MetaCreatorID])
}

func TestAppendRejectsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	j := New(store)

	tests := []struct {
		name  string
		entry models.LedgerEntry
		want  error
	}{
		{"zero amount", models.LedgerEntry{WalletID: "w", Direction: models.DirectionCredit, Category: models.CategoryTip}, apperrors.ErrInvalidAmount},
		{"unknown direction", models.LedgerEntry{WalletID: "w", Direction: "up", Category: models.CategoryTip, Amount: 1}, apperrors.ErrInvalidInput},
		{"unknown category", models.LedgerEntry{WalletID: "w", Direction: models.DirectionCredit, Category: "bonus", Amount: 1}, apperrors.ErrInvalidInput},
		{"metadata outside key set", models.LedgerEntry{WalletID: "w", Direction: models.DirectionCredit, Category: models.CategoryTip, Amount: 1, Metadata: models.Metadata{"color": "red"}}, apperrors.ErrInvalidInput},
		{"missing wallet", models.LedgerEntry{Direction: models.DirectionCredit, Category: models.CategoryTip, Amount: 1}, apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.WithAtomicUnit(ctx, func(tx repositories.Tx) error {
				e := tt.entry
				_, err := j.Append(ctx, tx, &e)
				return err
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQueryRejectsInvertedRange(t *testing.T) {
	j := New(memory.New())
	now := time.Now()
	_, _, err := j.Query(context.Background(), models.EntryFilter{From: now, To: now.Add(-time.Hour)}, Page{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
