package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanzvault/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements Store on PostgreSQL. Units run at read committed
// with row locks taken by the ForUpdate reads.
type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithAtomicUnit(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postgresTx{db: tx})
	})
	return classify(err)
}

func (s *PostgresStore) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	var w models.Wallet
	if err := s.db.WithContext(ctx).First(&w, "id = ?", walletID).Error; err != nil {
		return nil, classify(err)
	}
	return &w, nil
}

func (s *PostgresStore) FindWallet(ctx context.Context, userID string, walletType models.WalletType) (*models.Wallet, error) {
	var w models.Wallet
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND wallet_type = ?", userID, walletType).
		First(&w).Error
	if err != nil {
		return nil, classify(err)
	}
	return &w, nil
}

func (s *PostgresStore) ListWallets(ctx context.Context, userID string) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (s *PostgresStore) QueryEntries(ctx context.Context, filter models.EntryFilter) ([]models.LedgerEntry, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if filter.WalletID != "" {
		q = q.Where("wallet_id = ?", filter.WalletID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	var entries []models.LedgerEntry
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	return entries, total, nil
}

func (s *PostgresStore) GetCreditLine(ctx context.Context, id string) (*models.CreditLine, error) {
	var cl models.CreditLine
	if err := s.db.WithContext(ctx).First(&cl, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &cl, nil
}

func (s *PostgresStore) ListCreditLines(ctx context.Context, userID string) ([]models.CreditLine, error) {
	var lines []models.CreditLine
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list credit lines: %w", err)
	}
	return lines, nil
}

func (s *PostgresStore) FindTokenBalance(ctx context.Context, userID string, tokenType models.TokenType) (*models.TokenBalance, error) {
	var tb models.TokenBalance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token_type = ?", userID, tokenType).
		First(&tb).Error
	if err != nil {
		return nil, classify(err)
	}
	return &tb, nil
}

func (s *PostgresStore) ListTokenBalances(ctx context.Context, userID string) ([]models.TokenBalance, error) {
	var balances []models.TokenBalance
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("token_type ASC").
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list token balances: %w", err)
	}
	return balances, nil
}

func (s *PostgresStore) GetRevenueShare(ctx context.Context, id string) (*models.RevenueShare, error) {
	var rs models.RevenueShare
	err := s.db.WithContext(ctx).
		Preload("Splits", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&rs, "id = ?", id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &rs, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type postgresTx struct {
	db *gorm.DB
}

func (t *postgresTx) locked(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *postgresTx) GetWalletForUpdate(ctx context.Context, walletID string) (*models.Wallet, error) {
	var w models.Wallet
	if err := t.locked(ctx).First(&w, "id = ?", walletID).Error; err != nil {
		return nil, classify(err)
	}
	return &w, nil
}

func (t *postgresTx) GetOrCreateWallet(ctx context.Context, w *models.Wallet) (*models.Wallet, bool, error) {
	res := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "wallet_type"}},
			DoNothing: true,
		}).
		Create(w)
	if res.Error != nil {
		return nil, false, classify(res.Error)
	}

	var out models.Wallet
	err := t.locked(ctx).
		Where("user_id = ? AND wallet_type = ?", w.UserID, w.WalletType).
		First(&out).Error
	if err != nil {
		return nil, false, classify(err)
	}
	return &out, res.RowsAffected == 1, nil
}

func (t *postgresTx) SaveWallet(ctx context.Context, w *models.Wallet) error {
	return t.db.WithContext(ctx).Save(w).Error
}

func (t *postgresTx) FindEntry(ctx context.Context, transactionID, walletID string, direction models.EntryDirection) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := t.db.WithContext(ctx).
		Where("transaction_id = ? AND wallet_id = ? AND direction = ?", transactionID, walletID, direction).
		First(&e).Error
	if err != nil {
		return nil, classify(err)
	}
	return &e, nil
}

func (t *postgresTx) AppendEntry(ctx context.Context, e *models.LedgerEntry) error {
	return classify(t.db.WithContext(ctx).Create(e).Error)
}

func (t *postgresTx) CreateCreditLine(ctx context.Context, cl *models.CreditLine) error {
	return classify(t.db.WithContext(ctx).Create(cl).Error)
}

func (t *postgresTx) GetCreditLineForUpdate(ctx context.Context, id string) (*models.CreditLine, error) {
	var cl models.CreditLine
	if err := t.locked(ctx).First(&cl, "id = ?", id).Error; err != nil {
		return nil, classify(err)
	}
	return &cl, nil
}

func (t *postgresTx) SaveCreditLine(ctx context.Context, cl *models.CreditLine) error {
	return t.db.WithContext(ctx).Save(cl).Error
}

func (t *postgresTx) GetOrCreateTokenBalance(ctx context.Context, tb *models.TokenBalance) (*models.TokenBalance, bool, error) {
	res := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token_type"}},
			DoNothing: true,
		}).
		Create(tb)
	if res.Error != nil {
		return nil, false, classify(res.Error)
	}

	var out models.TokenBalance
	err := t.locked(ctx).
		Where("user_id = ? AND token_type = ?", tb.UserID, tb.TokenType).
		First(&out).Error
	if err != nil {
		return nil, false, classify(err)
	}
	return &out, res.RowsAffected == 1, nil
}

func (t *postgresTx) SaveTokenBalance(ctx context.Context, tb *models.TokenBalance) error {
	return t.db.WithContext(ctx).Save(tb).Error
}

func (t *postgresTx) CreateRevenueShare(ctx context.Context, rs *models.RevenueShare) error {
	return classify(t.db.WithContext(ctx).Create(rs).Error)
}

func (t *postgresTx) SaveRevenueShare(ctx context.Context, rs *models.RevenueShare) error {
	rs.UpdatedAt = time.Now().UTC()
	return t.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(rs).Error
}

// PostgreSQL error codes the ledger reacts to.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// entryIdempotencyIndex is the unique index on (transaction_id, wallet_id,
// direction). Hitting it means a concurrent unit applied the same request
// first; retrying the unit replays that entry.
const entryIdempotencyIndex = "idx_entries_txn_wallet_dir"

// classify maps driver errors onto the repository sentinels and passes
// anything else (including domain errors returned by unit callbacks)
// through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		case pgUniqueViolation:
			if pgErr.ConstraintName == entryIdempotencyIndex {
				return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
			}
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
	}
	return err
}
