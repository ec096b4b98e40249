package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/notify"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
)

var (
	me      = chain.Address{19: 0xaa}
	ann     = chain.Profile{Name: "Ann", Age: 30, Profession: "Engineer", Bio: "Builds things"}
	annForm = state.Fields{Name: "Ann", Age: "30", Profession: "Engineer", Bio: "Builds things"}
)

// fakeStore is a record store keyed by address with last-write-wins upserts.
type fakeStore struct {
	mu       sync.Mutex
	records  map[chain.Address]chain.Profile
	reads    int
	readErr  error
	balance  uint64
	upserted []chain.Profile
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[chain.Address]chain.Profile{}, balance: 100}
}

func (s *fakeStore) Read(ctx context.Context, address chain.Address) (chain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readErr != nil {
		return chain.Profile{}, s.readErr
	}
	return s.records[address], nil
}

func (s *fakeStore) Balance(ctx context.Context, address chain.Address) (uint64, error) {
	return s.balance, nil
}

func (s *fakeStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

type fakeTransactor struct {
	store     *fakeStore
	account   chain.Address
	upsertErr error
	waitErr   error
	block     uint64
	hashes    map[chain.Hash]chain.Profile
	mu        sync.Mutex
}

func (t *fakeTransactor) Upsert(ctx context.Context, p chain.Profile) (chain.Hash, error) {
	if t.upsertErr != nil {
		return chain.Hash{}, t.upsertErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.mu.Lock()
	t.store.upserted = append(t.store.upserted, p)
	t.store.mu.Unlock()
	h := chain.Keccak256([]byte(p.Name), []byte(p.Bio), []byte{byte(len(t.hashes))})
	t.hashes[h] = p
	return h, nil
}

// Wait applies the upsert to the store, which makes confirmation order the
// order in which Wait is called.
func (t *fakeTransactor) Wait(ctx context.Context, hash chain.Hash) (*chain.Receipt, error) {
	if t.waitErr != nil {
		return nil, t.waitErr
	}
	t.mu.Lock()
	p := t.hashes[hash]
	t.block++
	block := t.block
	t.mu.Unlock()

	t.store.mu.Lock()
	t.store.records[t.account] = p
	t.store.mu.Unlock()
	return &chain.Receipt{TxHash: hash, Status: chain.ReceiptSuccess, BlockNumber: block}, nil
}

type fakeSigner struct {
	store      *fakeStore
	account    chain.Address
	requestErr error
	accounts   []chain.Address
	tr         *fakeTransactor
	disconnect int
}

func newFakeSigner() *fakeSigner {
	store := newFakeStore()
	return &fakeSigner{
		store:   store,
		account: me,
		tr:      &fakeTransactor{store: store, account: me, hashes: map[chain.Hash]chain.Profile{}},
	}
}

func (s *fakeSigner) RequestAccounts(ctx context.Context) ([]chain.Address, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	if s.accounts != nil {
		return s.accounts, nil
	}
	return []chain.Address{s.account}, nil
}

func (s *fakeSigner) Transactor(account chain.Address) (Transactor, error) {
	return s.tr, nil
}

func (s *fakeSigner) Viewer() Viewer {
	return s.store
}

func (s *fakeSigner) Disconnect(ctx context.Context) {
	s.disconnect++
}

func newTestController(t *testing.T) (*Controller, *fakeSigner) {
	t.Helper()
	signer := newFakeSigner()
	n := notify.New(time.Hour, nil)
	t.Cleanup(n.Clear)
	return NewController(NewSessionManager(signer), n, logging.Nop{}), signer
}
