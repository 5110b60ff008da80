// Package memory is an in-process implementation of repositories.Store used
// by tests and local runs. Atomic units stage their writes and validate the
// versions of everything they read at commit time, so units touching
// disjoint records never block each other and a lost race surfaces as
// repositories.ErrConflict.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
)

type Store struct {
	mu sync.RWMutex

	// versions holds the commit version of every record and unique index
	// key. A missing key has version 0.
	versions map[string]uint64

	wallets     map[string]models.Wallet
	walletByKey map[string]string

	entries    []models.LedgerEntry
	entryByKey map[string]int

	creditLines map[string]models.CreditLine

	tokens     map[string]models.TokenBalance
	tokenByKey map[string]string

	shares map[string]*models.RevenueShare

	now func() time.Time
}

var _ repositories.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		versions:    make(map[string]uint64),
		wallets:     make(map[string]models.Wallet),
		walletByKey: make(map[string]string),
		entryByKey:  make(map[string]int),
		creditLines: make(map[string]models.CreditLine),
		tokens:      make(map[string]models.TokenBalance),
		tokenByKey:  make(map[string]string),
		shares:      make(map[string]*models.RevenueShare),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) WithAtomicUnit(ctx context.Context, fn func(tx repositories.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTx(s)
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, seen := range tx.reads {
		if s.versions[key] != seen {
			return repositories.ErrConflict
		}
	}

	now := s.now()
	for id, w := range tx.wallets {
		if w.CreatedAt.IsZero() {
			w.CreatedAt = now
		}
		w.UpdatedAt = now
		if _, ok := s.wallets[id]; !ok {
			s.walletByKey[walletKey(w.UserID, w.WalletType)] = id
			s.bump(walletIdx(w.UserID, w.WalletType))
		}
		s.wallets[id] = w
		s.bump(walletRec(id))
	}
	for _, e := range tx.entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		s.entries = append(s.entries, e)
		s.entryByKey[entryKey(e.TransactionID, e.WalletID, e.Direction)] = len(s.entries) - 1
		s.bump(entryIdx(e.TransactionID, e.WalletID, e.Direction))
	}
	for id, cl := range tx.creditLines {
		if cl.CreatedAt.IsZero() {
			cl.CreatedAt = now
		}
		cl.UpdatedAt = now
		s.creditLines[id] = cl
		s.bump(creditLineRec(id))
	}
	for id, tb := range tx.tokens {
		if tb.CreatedAt.IsZero() {
			tb.CreatedAt = now
		}
		tb.UpdatedAt = now
		if _, ok := s.tokens[id]; !ok {
			s.tokenByKey[tokenKey(tb.UserID, tb.TokenType)] = id
			s.bump(tokenIdx(tb.UserID, tb.TokenType))
		}
		s.tokens[id] = tb
		s.bump(tokenRec(id))
	}
	for id, rs := range tx.shares {
		if rs.CreatedAt.IsZero() {
			rs.CreatedAt = now
		}
		rs.UpdatedAt = now
		s.shares[id] = rs
		s.bump(shareRec(id))
	}
	return nil
}

// bump must be called with mu held.
func (s *Store) bump(keys ...string) {
	for _, k := range keys {
		s.versions[k]++
	}
}

func (s *Store) GetWallet(_ context.Context, walletID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &w, nil
}

func (s *Store) FindWallet(_ context.Context, userID string, walletType models.WalletType) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.walletByKey[walletKey(userID, walletType)]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	w := s.wallets[id]
	return &w, nil
}

func (s *Store) ListWallets(_ context.Context, userID string) ([]models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Wallet
	for _, w := range s.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// QueryEntries returns matches newest first. Entries committed in the same
// instant keep their commit order, newest first.
func (s *Store) QueryEntries(_ context.Context, filter models.EntryFilter) ([]models.LedgerEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.LedgerEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter.WalletID != "" && e.WalletID != filter.WalletID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if !filter.From.IsZero() && e.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.CreatedAt.Before(filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	page := make([]models.LedgerEntry, 0, end-start)
	for _, e := range matched[start:end] {
		e.Metadata = e.Metadata.Clone()
		page = append(page, e)
	}
	return page, total, nil
}

func (s *Store) GetCreditLine(_ context.Context, id string) (*models.CreditLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cl, ok := s.creditLines[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &cl, nil
}

func (s *Store) ListCreditLines(_ context.Context, userID string) ([]models.CreditLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CreditLine
	for _, cl := range s.creditLines {
		if cl.UserID == userID {
			out = append(out, cl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) FindTokenBalance(_ context.Context, userID string, tokenType models.TokenType) (*models.TokenBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokenByKey[tokenKey(userID, tokenType)]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	tb := s.tokens[id]
	return &tb, nil
}

func (s *Store) ListTokenBalances(_ context.Context, userID string) ([]models.TokenBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TokenBalance
	for _, tb := range s.tokens {
		if tb.UserID == userID {
			out = append(out, tb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenType < out[j].TokenType })
	return out, nil
}

func (s *Store) GetRevenueShare(_ context.Context, id string) (*models.RevenueShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.shares[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return rs.Clone(), nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func walletKey(userID string, t models.WalletType) string { return userID + "/" + string(t) }

func tokenKey(userID string, t models.TokenType) string { return userID + "/" + string(t) }

func entryKey(txnID, walletID string, d models.EntryDirection) string {
	return txnID + "/" + walletID + "/" + string(d)
}

// Version keys.
func walletRec(id string) string { return "wallet/" + id }
func walletIdx(userID string, t models.WalletType) string { return "wallet-idx/" + walletKey(userID, t) }
func creditLineRec(id string) string { return "credit-line/" + id }
func tokenRec(id string) string { return "token/" + id }
func tokenIdx(userID string, t models.TokenType) string { return "token-idx/" + tokenKey(userID, t) }
func shareRec(id string) string { return "revenue-share/" + id }
func entryIdx(txnID, walletID string, d models.EntryDirection) string {
	return "entry-idx/" + entryKey(txnID, walletID, d)
}
