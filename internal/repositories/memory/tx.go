package memory

import (
	"context"

	"fanzvault/internal/models"
	"fanzvault/internal/repositories"
)

// memTx stages writes for one atomic unit. Reads see the unit's own staged
// writes first and otherwise the committed state, remembering the version
// they observed.
type memTx struct {
	s *Store

	reads map[string]uint64

	wallets     map[string]models.Wallet
	walletByKey map[string]string
	entries     []models.LedgerEntry
	entryByKey  map[string]int
	creditLines map[string]models.CreditLine
	tokens      map[string]models.TokenBalance
	tokenByKey  map[string]string
	shares      map[string]*models.RevenueShare
}

var _ repositories.Tx = (*memTx)(nil)

func newTx(s *Store) *memTx {
	return &memTx{
		s:           s,
		reads:       make(map[string]uint64),
		wallets:     make(map[string]models.Wallet),
		walletByKey: make(map[string]string),
		entryByKey:  make(map[string]int),
		creditLines: make(map[string]models.CreditLine),
		tokens:      make(map[string]models.TokenBalance),
		tokenByKey:  make(map[string]string),
		shares:      make(map[string]*models.RevenueShare),
	}
}

// observe records the committed version of key the first time the unit
// looks at it. Must be called with s.mu held for reading.
func (t *memTx) observe(key string) {
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = t.s.versions[key]
	}
}

func (t *memTx) GetWalletForUpdate(_ context.Context, walletID string) (*models.Wallet, error) {
	if w, ok := t.wallets[walletID]; ok {
		return &w, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(walletRec(walletID))
	w, ok := t.s.wallets[walletID]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &w, nil
}

func (t *memTx) GetOrCreateWallet(_ context.Context, w *models.Wallet) (*models.Wallet, bool, error) {
	key := walletKey(w.UserID, w.WalletType)
	if id, ok := t.walletByKey[key]; ok {
		out := t.wallets[id]
		return &out, false, nil
	}

	t.s.mu.RLock()
	t.observe(walletIdx(w.UserID, w.WalletType))
	id, exists := t.s.walletByKey[key]
	var existing models.Wallet
	if exists {
		if staged, ok := t.wallets[id]; ok {
			existing = staged
		} else {
			t.observe(walletRec(id))
			existing = t.s.wallets[id]
		}
	}
	t.s.mu.RUnlock()

	if exists {
		return &existing, false, nil
	}
	created := *w
	t.wallets[created.ID] = created
	t.walletByKey[key] = created.ID
	t.reads[walletRec(created.ID)] = 0
	return &created, true, nil
}

func (t *memTx) SaveWallet(_ context.Context, w *models.Wallet) error {
	if _, ok := t.wallets[w.ID]; !ok {
		if _, seen := t.reads[walletRec(w.ID)]; !seen {
			return repositories.ErrRecordNotFound
		}
	}
	t.wallets[w.ID] = *w
	t.walletByKey[walletKey(w.UserID, w.WalletType)] = w.ID
	return nil
}

func (t *memTx) FindEntry(_ context.Context, transactionID, walletID string, direction models.EntryDirection) (*models.LedgerEntry, error) {
	key := entryKey(transactionID, walletID, direction)
	if i, ok := t.entryByKey[key]; ok {
		e := t.entries[i]
		e.Metadata = e.Metadata.Clone()
		return &e, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(entryIdx(transactionID, walletID, direction))
	i, ok := t.s.entryByKey[key]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	e := t.s.entries[i]
	e.Metadata = e.Metadata.Clone()
	return &e, nil
}

func (t *memTx) AppendEntry(_ context.Context, e *models.LedgerEntry) error {
	key := entryKey(e.TransactionID, e.WalletID, e.Direction)
	if _, ok := t.entryByKey[key]; ok {
		return repositories.ErrDuplicate
	}
	t.s.mu.RLock()
	t.observe(entryIdx(e.TransactionID, e.WalletID, e.Direction))
	_, exists := t.s.entryByKey[key]
	t.s.mu.RUnlock()
	if exists {
		return repositories.ErrDuplicate
	}

	staged := *e
	staged.Metadata = e.Metadata.Clone()
	t.entries = append(t.entries, staged)
	t.entryByKey[key] = len(t.entries) - 1
	return nil
}

func (t *memTx) CreateCreditLine(_ context.Context, cl *models.CreditLine) error {
	if _, ok := t.creditLines[cl.ID]; ok {
		return repositories.ErrDuplicate
	}
	t.s.mu.RLock()
	t.observe(creditLineRec(cl.ID))
	_, exists := t.s.creditLines[cl.ID]
	t.s.mu.RUnlock()
	if exists {
		return repositories.ErrDuplicate
	}
	t.creditLines[cl.ID] = *cl
	return nil
}

func (t *memTx) GetCreditLineForUpdate(_ context.Context, id string) (*models.CreditLine, error) {
	if cl, ok := t.creditLines[id]; ok {
		return &cl, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(creditLineRec(id))
	cl, ok := t.s.creditLines[id]
	if !ok {
		return nil, repositories.ErrRecordNotFound
	}
	return &cl, nil
}

func (t *memTx) SaveCreditLine(_ context.Context, cl *models.CreditLine) error {
	if _, ok := t.creditLines[cl.ID]; !ok {
		if _, seen := t.reads[creditLineRec(cl.ID)]; !seen {
			return repositories.ErrRecordNotFound
		}
	}
	t.creditLines[cl.ID] = *cl
	return nil
}

func (t *memTx) GetOrCreateTokenBalance(_ context.Context, tb *models.TokenBalance) (*models.TokenBalance, bool, error) {
	key := tokenKey(tb.UserID, tb.TokenType)
	if id, ok := t.tokenByKey[key]; ok {
		out := t.tokens[id]
		return &out, false, nil
	}

	t.s.mu.RLock()
	t.observe(tokenIdx(tb.UserID, tb.TokenType))
	id, exists := t.s.tokenByKey[key]
	var existing models.TokenBalance
	if exists {
		if staged, ok := t.tokens[id]; ok {
			existing = staged
		} else {
			t.observe(tokenRec(id))
			existing = t.s.tokens[id]
		}
	}
	t.s.mu.RUnlock()

	if exists {
		return &existing, false, nil
	}
	created := *tb
	t.tokens[created.ID] = created
	t.tokenByKey[key] = created.ID
	t.reads[tokenRec(created.ID)] = 0
	return &created, true, nil
}

func (t *memTx) SaveTokenBalance(_ context.Context, tb *models.TokenBalance) error {
	if _, ok := t.tokens[tb.ID]; !ok {
		if _, seen := t.reads[tokenRec(tb.ID)]; !seen {
			return repositories.ErrRecordNotFound
		}
	}
	t.tokens[tb.ID] = *tb
	t.tokenByKey[tokenKey(tb.UserID, tb.TokenType)] = tb.ID
	return nil
}

func (t *memTx) CreateRevenueShare(_ context.Context, rs *models.RevenueShare) error {
	if _, ok := t.shares[rs.ID]; ok {
		return repositories.ErrDuplicate
	}
	t.s.mu.RLock()
	t.observe(shareRec(rs.ID))
	_, exists := t.s.shares[rs.ID]
	t.s.mu.RUnlock()
	if exists {
		return repositories.ErrDuplicate
	}
	t.shares[rs.ID] = rs.Clone()
	return nil
}

func (t *memTx) SaveRevenueShare(_ context.Context, rs *models.RevenueShare) error {
	if _, ok := t.shares[rs.ID]; !ok {
		t.s.mu.RLock()
		t.observe(shareRec(rs.ID))
		_, exists := t.s.shares[rs.ID]
		t.s.mu.RUnlock()
		if !exists {
			return repositories.ErrRecordNotFound
		}
	}
	t.shares[rs.ID] = rs.Clone()
	return nil
}
