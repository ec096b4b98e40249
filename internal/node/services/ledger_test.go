package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
	"github.com/dmitrijs2005/chainprofile/internal/node/repositories/transactions"
	"github.com/dmitrijs2005/chainprofile/internal/node/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ann = chain.Profile{Name: "Ann", Age: 30, Profession: "Engineer", Bio: "Hi"}

func newLedger(t *testing.T) (*LedgerService, *storage.MemoryManager, *fakeRecorder) {
	t.Helper()
	store := storage.NewMemoryManager()
	rec := &fakeRecorder{}
	return NewLedgerService(store, LedgerConfig{NetworkID: testNetwork, StoreAddress: storeAddr, Fee: 21}, rec), store, rec
}

func fund(t *testing.T, store *storage.MemoryManager, addr chain.Address, balance uint64) {
	t.Helper()
	_, err := store.Accounts().Create(context.Background(), &models.Account{Address: addr, Balance: balance})
	require.NoError(t, err)
}

func TestChainInfo(t *testing.T) {
	ctx := context.Background()
	l, store, _ := newLedger(t)

	info, err := l.ChainInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, &ChainInfo{NetworkID: testNetwork, StoreAddress: storeAddr, Fee: 21}, info)

	require.NoError(t, store.Blocks().Insert(ctx, &chain.Block{Number: 4}))
	info, err = l.ChainInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), info.BlockHeight)
}

func TestSubmit_AcceptsAndCountsPending(t *testing.T) {
	ctx := context.Background()
	l, store, rec := newLedger(t)
	key, addr := testKey(1)
	fund(t, store, addr, 100)

	tx := upsertTx(key, 0, 21, ann)
	h, err := l.Submit(ctx, addr, tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), h)

	st, err := l.Account(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), st.Balance, "fees are charged when sealed")
	assert.Equal(t, uint64(1), st.Nonce, "next nonce counts pending")

	rc, err := l.Receipt(ctx, h)
	require.NoError(t, err)
	assert.Nil(t, rc, "pending transaction has no receipt")

	assert.Equal(t, []string{"accepted"}, rec.submissions)
}

func TestSubmit_AdmissionChecks(t *testing.T) {
	key, addr := testKey(1)
	otherKey, _ := testKey(2)

	tests := []struct {
		name    string
		caller  chain.Address
		balance uint64
		tx      func() *chain.Transaction
		wantErr error
		result  string
	}{
		{
			name: "nil transaction",
			tx:   func() *chain.Transaction { return nil },
			wantErr: common.ErrInvalidArgument, result: "invalid_argument",
		},
		{
			name: "wrong network",
			tx: func() *chain.Transaction {
				tx := upsertTx(key, 0, 21, ann)
				tx.NetworkID = "mainnet"
				tx.Sign(key)
				return tx
			},
			wantErr: common.ErrInvalidArgument, result: "invalid_argument",
		},
		{
			name: "wrong contract",
			tx: func() *chain.Transaction {
				tx := upsertTx(key, 0, 21, ann)
				tx.To = chain.Address{9}
				tx.Sign(key)
				return tx
			},
			wantErr: common.ErrInvalidArgument, result: "invalid_argument",
		},
		{
			name: "unknown method",
			tx: func() *chain.Transaction {
				tx := upsertTx(key, 0, 21, ann)
				tx.Method = "delete"
				tx.Sign(key)
				return tx
			},
			wantErr: common.ErrInvalidArgument, result: "invalid_argument",
		},
		{
			name: "malformed argument",
			tx: func() *chain.Transaction {
				return upsertTx(key, 0, 21, chain.Profile{Name: string([]byte{0xff}), Age: 1})
			},
			wantErr: chain.ErrMalformedArgument, result: "invalid_argument",
		},
		{
			name: "tampered after signing",
			tx: func() *chain.Transaction {
				tx := upsertTx(key, 0, 21, ann)
				tx.Args.Bio = "changed"
				return tx
			},
			wantErr: chain.ErrBadSignature, result: "invalid_argument",
		},
		{
			name: "signed by another key",
			tx: func() *chain.Transaction {
				tx := upsertTx(key, 0, 21, ann)
				tx.Sign(otherKey)
				return tx
			},
			wantErr: chain.ErrSenderMismatch, result: "invalid_argument",
		},
		{
			name:   "session of another account",
			caller: chain.Address{7},
			tx:     func() *chain.Transaction { return upsertTx(key, 0, 21, ann) },
			wantErr: common.ErrorForbidden, result: "forbidden",
		},
		{
			name:    "fee too low",
			balance: 100,
			tx:      func() *chain.Transaction { return upsertTx(key, 0, 20, ann) },
			wantErr: common.ErrInvalidArgument, result: "invalid_argument",
		},
		{
			name:    "stale nonce",
			balance: 100,
			tx:      func() *chain.Transaction { return upsertTx(key, 3, 21, ann) },
			wantErr: common.ErrNonceConflict, result: "nonce_conflict",
		},
		{
			name:    "insufficient funds",
			balance: 20,
			tx:      func() *chain.Transaction { return upsertTx(key, 0, 21, ann) },
			wantErr: common.ErrInsufficientFunds, result: "insufficient_funds",
		},
		{
			name: "unknown account has no funds",
			tx:   func() *chain.Transaction { return upsertTx(key, 0, 21, ann) },
			wantErr: common.ErrInsufficientFunds, result: "insufficient_funds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store, rec := newLedger(t)
			if tt.balance > 0 {
				fund(t, store, addr, tt.balance)
			}
			caller := tt.caller
			if caller.IsZero() {
				caller = addr
			}

			_, err := l.Submit(context.Background(), caller, tt.tx())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.result}, rec.submissions)

			pending, err := store.Transactions().ListPending(context.Background(), 10)
			require.NoError(t, err)
			assert.Empty(t, pending, "rejected transactions never enter the pool")
		})
	}
}

func TestSubmit_PendingFeesCountAgainstBalance(t *testing.T) {
	ctx := context.Background()
	l, store, _ := newLedger(t)
	key, addr := testKey(1)
	fund(t, store, addr, 50)

	_, err := l.Submit(ctx, addr, upsertTx(key, 0, 21, ann))
	require.NoError(t, err)
	_, err = l.Submit(ctx, addr, upsertTx(key, 1, 21, ann))
	require.NoError(t, err)

	_, err = l.Submit(ctx, addr, upsertTx(key, 2, 21, ann))
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
}

func TestReceipt_Unknown(t *testing.T) {
	l, _, _ := newLedger(t)
	_, err := l.Receipt(context.Background(), chain.Hash{1})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReadProfile(t *testing.T) {
	ctx := context.Background()
	l, store, rec := newLedger(t)
	_, addr := testKey(1)

	p, err := l.ReadProfile(ctx, addr)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	require.NoError(t, store.Profiles().Upsert(ctx, addr, ann, 1))
	p, err = l.ReadProfile(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, ann, p)
	assert.Equal(t, 2, rec.reads)
}

// hookedStore runs onPending whenever a transaction reads pending pool
// totals, which lets a test act between admission's two reads.
type hookedStore struct {
	*storage.MemoryManager
	onPending func()
}

func (s *hookedStore) InTx(ctx context.Context, fn func(ctx context.Context, r storage.Repositories) error) error {
	return s.MemoryManager.InTx(ctx, func(ctx context.Context, r storage.Repositories) error {
		return fn(ctx, hookedRepos{Repositories: r, onPending: s.onPending})
	})
}

type hookedRepos struct {
	storage.Repositories
	onPending func()
}

func (r hookedRepos) Transactions() transactions.Repository {
	return hookedTxs{Repository: r.Repositories.Transactions(), onPending: r.onPending}
}

type hookedTxs struct {
	transactions.Repository
	onPending func()
}

func (t hookedTxs) PendingStats(ctx context.Context, sender chain.Address) (models.PendingStats, error) {
	if t.onPending != nil {
		t.onPending()
	}
	return t.Repository.PendingStats(ctx, sender)
}

func TestSubmit_BlockSealedDuringAdmission(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryManager()
	key, addr := testKey(1)
	fund(t, mem, addr, 100)

	store := &hookedStore{MemoryManager: mem}
	l := NewLedgerService(store, LedgerConfig{NetworkID: testNetwork, StoreAddress: storeAddr, Fee: 21}, &fakeRecorder{})
	producer := NewBlockProducer(mem, ProducerConfig{Interval: time.Hour, MaxTxs: 10}, &fakePublisher{}, &fakeArchiver{}, &fakeRecorder{}, logging.Nop{})

	first, err := l.Submit(ctx, addr, upsertTx(key, 0, 21, ann))
	require.NoError(t, err)

	var (
		once    sync.Once
		sealErr error
	)
	sealDone := make(chan struct{})
	store.onPending = func() {
		once.Do(func() {
			go func() {
				defer close(sealDone)
				_, sealErr = producer.SealBlock(ctx)
			}()
			select {
			case <-sealDone:
				t.Error("block was sealed between the account and pending pool reads")
			case <-time.After(50 * time.Millisecond):
			}
		})
	}

	second, err := l.Submit(ctx, addr, upsertTx(key, 1, 21, ann))
	require.NoError(t, err, "next nonce must be accepted while a block is being sealed")
	<-sealDone
	require.NoError(t, sealErr)

	rc, err := l.Receipt(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, rc)
	assert.Equal(t, chain.ReceiptSuccess, rc.Status)

	_, err = producer.SealBlock(ctx)
	require.NoError(t, err)
	rc, err = l.Receipt(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, rc)
	assert.Equal(t, chain.ReceiptSuccess, rc.Status)

	st, err := l.Account(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.Nonce)
	assert.Equal(t, uint64(100-2*21), st.Balance)
}
