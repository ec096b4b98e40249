package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/accounts"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/blocks"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/profiles"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/transactions"
)

type memState struct {
	accounts map[chain.Address]models.Account
	profiles map[chain.Address]chain.Profile
	txs      map[chain.Hash]models.TxRecord
	pending  []chain.Hash
	nextSeq  int64
	blocks   []chain.Block
}

func newMemState() *memState {
	return &memState{
		accounts: map[chain.Address]models.Account{},
		profiles: map[chain.Address]chain.Profile{},
		txs:      map[chain.Hash]models.TxRecord{},
		nextSeq:  1,
	}
}

// clone copies every container. Records hold pointers to transactions and
// receipts; those are never mutated after creation, so sharing them is safe.
func (s *memState) clone() *memState {
	c := &memState{
		accounts: make(map[chain.Address]models.Account, len(s.accounts)),
		profiles: make(map[chain.Address]chain.Profile, len(s.profiles)),
		txs:      make(map[chain.Hash]models.TxRecord, len(s.txs)),
		pending:  slices.Clone(s.pending),
		nextSeq:  s.nextSeq,
		blocks:   slices.Clone(s.blocks),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	return c
}

// MemoryManager keeps the ledger in process memory. InTx runs fn against a
// copy of the state and swaps it in on success, holding the write lock
// throughout.
type MemoryManager struct {
	mu    sync.RWMutex
	state *memState
	now   func() time.Time
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{state: newMemState(), now: time.Now}
}

func (m *MemoryManager) view() memView {
	return memView{m: m, mu: &m.mu, now: m.now}
}

func (m *MemoryManager) Accounts() accounts.Repository         { return memAccounts{m.view()} }
func (m *MemoryManager) Profiles() profiles.Repository         { return memProfiles{m.view()} }
func (m *MemoryManager) Transactions() transactions.Repository { return memTransactions{m.view()} }
func (m *MemoryManager) Blocks() blocks.Repository             { return memBlocks{m.view()} }

func (m *MemoryManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := m.state.clone()
	if err := fn(ctx, memRepos{memView{st: draft, now: m.now}}); err != nil {
		return err
	}
	m.state = draft
	return nil
}

func (m *MemoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryManager) Close() error { return nil }

// memView resolves the state to operate on. Outside a transaction it reads
// the manager's current state under mu; inside one it owns a draft and does
// no locking.
type memView struct {
	m   *MemoryManager
	mu  *sync.RWMutex
	st  *memState
	now func() time.Time
}

func (v memView) read() (*memState, func()) {
	if v.mu == nil {
		return v.st, func() {}
	}
	v.mu.RLock()
	return v.m.state, v.mu.RUnlock
}

func (v memView) write() (*memState, func()) {
	if v.mu == nil {
		return v.st, func() {}
	}
	v.mu.Lock()
	return v.m.state, v.mu.Unlock
}

type memRepos struct {
	v memView
}

func (r memRepos) Accounts() accounts.Repository         { return memAccounts{r.v} }
func (r memRepos) Profiles() profiles.Repository         { return memProfiles{r.v} }
func (r memRepos) Transactions() transactions.Repository { return memTransactions{r.v} }
func (r memRepos) Blocks() blocks.Repository             { return memBlocks{r.v} }

type memAccounts struct{ v memView }

func (r memAccounts) Get(_ context.Context, address chain.Address) (*models.Account, error) {
	st, done := r.v.read()
	defer done()
	acct, ok := st.accounts[address]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &acct, nil
}

func (r memAccounts) Create(_ context.Context, acct *models.Account) (bool, error) {
	st, done := r.v.write()
	defer done()
	if _, ok := st.accounts[acct.Address]; ok {
		return false, nil
	}
	st.accounts[acct.Address] = *acct
	return true, nil
}

func (r memAccounts) Update(_ context.Context, acct *models.Account) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.accounts[acct.Address]; !ok {
		return common.ErrorNotFound
	}
	st.accounts[acct.Address] = *acct
	return nil
}

type memProfiles struct{ v memView }

func (r memProfiles) Get(_ context.Context, address chain.Address) (chain.Profile, error) {
	st, done := r.v.read()
	defer done()
	return st.profiles[address], nil
}

func (r memProfiles) Upsert(_ context.Context, address chain.Address, p chain.Profile, _ uint64) error {
	st, done := r.v.write()
	defer done()
	st.profiles[address] = p
	return nil
}

type memTransactions struct{ v memView }

func (r memTransactions) Insert(_ context.Context, tx *chain.Transaction) error {
	st, done := r.v.write()
	defer done()
	h := tx.Hash()
	if _, ok := st.txs[h]; ok {
		return common.ErrNonceConflict
	}
	st.txs[h] = models.TxRecord{Seq: st.nextSeq, Tx: tx, CreatedAt: r.v.now()}
	st.nextSeq++
	st.pending = append(st.pending, h)
	return nil
}

func (r memTransactions) Get(_ context.Context, hash chain.Hash) (*models.TxRecord, error) {
	st, done := r.v.read()
	defer done()
	rec, ok := st.txs[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (r memTransactions) ListPending(_ context.Context, limit int) ([]*models.TxRecord, error) {
	st, done := r.v.read()
	defer done()
	n := min(limit, len(st.pending))
	out := make([]*models.TxRecord, 0, n)
	for _, h := range st.pending[:n] {
		rec := st.txs[h]
		out = append(out, &rec)
	}
	return out, nil
}

func (r memTransactions) PendingStats(_ context.Context, sender chain.Address) (models.PendingStats, error) {
	st, done := r.v.read()
	defer done()
	var ps models.PendingStats
	for _, h := range st.pending {
		if rec := st.txs[h]; rec.Tx.From == sender {
			ps.Count++
			ps.Fees += rec.Tx.Fee
		}
	}
	return ps, nil
}

func (r memTransactions) SetReceipt(_ context.Context, rc *chain.Receipt) error {
	st, done := r.v.write()
	defer done()
	rec, ok := st.txs[rc.TxHash]
	if !ok || rec.Receipt != nil {
		return common.ErrorNotFound
	}
	receipt := *rc
	rec.Receipt = &receipt
	st.txs[rc.TxHash] = rec
	st.pending = slices.DeleteFunc(st.pending, func(h chain.Hash) bool { return h == rc.TxHash })
	return nil
}

type memBlocks struct{ v memView }

func (r memBlocks) Latest(context.Context) (*chain.Block, error) {
	st, done := r.v.read()
	defer done()
	if len(st.blocks) == 0 {
		return nil, common.ErrorNotFound
	}
	b := st.blocks[len(st.blocks)-1]
	return &b, nil
}

func (r memBlocks) Insert(_ context.Context, b *chain.Block) error {
	st, done := r.v.write()
	defer done()
	st.blocks = append(st.blocks, *b)
	return nil
}
