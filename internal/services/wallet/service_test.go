package wallet

import (
	"context"
	"sync"
	"testing"

	apperrors "fanzvault/internal/errors"
	"fanzvault/internal/models"
	"fanzvault/internal/repositories/cache"
	"fanzvault/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, walletID string) (*models.Balance, bool) {
	args := m.Called(ctx, walletID)
	b, _ := args.Get(0).(*models.Balance)
	return b, args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, b models.Balance) {
	m.Called(ctx, b)
}

func newTestService(t *testing.T, balances cache.BalanceCache) (Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewService(store, balances, Config{MaxConflictRetries: 5}, nil, nil), store
}

func TestWalletService_GetOrCreateWallet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	w, err := svc.GetOrCreateWallet(ctx, "user-1", models.WalletTypeCreator)
	require.NoError(t, err)
	assert.Equal(t, models.WalletStatusActive, w.Status)
	assert.Equal(t, "USD", w.Currency)
	assert.Zero(t, w.Total)

	again, err := svc.GetOrCreateWallet(ctx, "user-1", models.WalletTypeCreator)
	require.NoError(t, err)
	assert.Equal(t, w.ID, again.ID)

	other, err := svc.GetOrCreateWallet(ctx, "user-1", models.WalletTypeStandard)
	require.NoError(t, err)
	assert.NotEqual(t, w.ID, other.ID)

	wallets, err := svc.ListUserWallets(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
}

func TestWalletService_GetOrCreateWalletValidation(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		walletType models.WalletType
	}{
		{name: "empty user", userID: " ", walletType: models.WalletTypeStandard},
		{name: "unknown type", userID: "user-1", walletType: "savings"},
	}

	svc, _ := newTestService(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetOrCreateWallet(context.Background(), tt.userID, tt.walletType)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestWalletService_GetOrCreateWalletConcurrent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, nil)

	var wg sync.WaitGroup
	ids := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := svc.GetOrCreateWallet(ctx, "user-1", models.WalletTypeStandard)
			if assert.NoError(t, err) {
				ids <- w.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	wallets, err := store.ListWallets(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	for id := range ids {
		assert.Equal(t, wallets[0].ID, id)
	}
}

func TestWalletService_GetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown wallet", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, err := svc.GetBalance(ctx, "wlt_missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
	})

	t.Run("miss loads from store and fills cache", func(t *testing.T) {
		mockCache := new(MockCache)
		svc, _ := newTestService(t, mockCache)
		w, err := svc.GetOrCreateWallet(ctx, "user-1", models.WalletTypeStandard)
		require.NoError(t, err)

		mockCache.On("Get", mock.Anything, w.ID).Return(nil, false).Once()
		mockCache.On("Set", mock.Anything, w.Balance()).Return().Once()

		b, err := svc.GetBalance(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, w.ID, b.WalletID)
		assert.Zero(t, b.Available)
		mockCache.AssertExpectations(t)
	})

	t.Run("hit skips store", func(t *testing.T) {
		mockCache := new(MockCache)
		svc, _ := newTestService(t, mockCache)
		cached := &models.Balance{WalletID: "wlt_cached", Available: 42, Total: 42}
		mockCache.On("Get", mock.Anything, "wlt_cached").Return(cached, true).Once()

		b, err := svc.GetBalance(ctx, "wlt_cached")
		require.NoError(t, err)
		assert.Equal(t, int64(42), b.Available)
		mockCache.AssertExpectations(t)
	})
}
