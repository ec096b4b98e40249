package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/node/metrics"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
	"github.com/dmitrijs2005/chainprofile/internal/node/storage"
)

type LedgerConfig struct {
	NetworkID    string
	StoreAddress chain.Address
	Fee          uint64
}

type ChainInfo struct {
	NetworkID    string
	StoreAddress chain.Address
	Fee          uint64
	BlockHeight  uint64
}

// AccountState is the confirmed balance plus the nonce the next transaction
// must carry, counting pending ones.
type AccountState struct {
	Address chain.Address
	Balance uint64
	Nonce   uint64
}

// LedgerService admits transactions into the pool and serves reads.
type LedgerService struct {
	store   storage.Manager
	cfg     LedgerConfig
	metrics metrics.Recorder
	now     func() time.Time

	// admission reads the pending nonce and fees, then inserts, all in one
	// storage transaction so a block sealed meanwhile is seen entirely or not
	// at all; mu keeps two submissions from interleaving.
	mu sync.Mutex
}

func NewLedgerService(store storage.Manager, cfg LedgerConfig, m metrics.Recorder) *LedgerService {
	return &LedgerService{store: store, cfg: cfg, metrics: m, now: time.Now}
}

func (s *LedgerService) ChainInfo(ctx context.Context) (*ChainInfo, error) {
	info := &ChainInfo{NetworkID: s.cfg.NetworkID, StoreAddress: s.cfg.StoreAddress, Fee: s.cfg.Fee}

	b, err := s.store.Blocks().Latest(ctx)
	switch {
	case err == nil:
		info.BlockHeight = b.Number
	case errors.Is(err, common.ErrorNotFound):
	default:
		return nil, fmt.Errorf("latest block: %w", err)
	}
	return info, nil
}

func (s *LedgerService) Account(ctx context.Context, address chain.Address) (*AccountState, error) {
	var st *AccountState
	err := s.store.InTx(ctx, func(ctx context.Context, r storage.Repositories) error {
		acct, stats, err := accountWithPending(ctx, r, address)
		if err != nil {
			return err
		}
		st = &AccountState{Address: address, Balance: acct.Balance, Nonce: acct.Nonce + stats.Count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// accountWithPending reads the account and its pending pool totals. r must
// be bound to a transaction so both reads come from the same state.
func accountWithPending(ctx context.Context, r storage.Repositories, address chain.Address) (*models.Account, models.PendingStats, error) {
	acct, err := r.Accounts().Get(ctx, address)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, models.PendingStats{}, fmt.Errorf("load account: %w", err)
		}
		acct = &models.Account{Address: address}
	}
	stats, err := r.Transactions().PendingStats(ctx, address)
	if err != nil {
		return nil, models.PendingStats{}, fmt.Errorf("pending stats: %w", err)
	}
	return acct, stats, nil
}

// Submit runs the admission checks and adds tx to the pool. caller is the
// address the session token was issued to.
func (s *LedgerService) Submit(ctx context.Context, caller chain.Address, tx *chain.Transaction) (chain.Hash, error) {
	start := s.now()
	h, err := s.submit(ctx, caller, tx)
	s.metrics.RecordSubmission(submissionResult(err), s.now().Sub(start))
	return h, err
}

func (s *LedgerService) submit(ctx context.Context, caller chain.Address, tx *chain.Transaction) (chain.Hash, error) {
	if tx == nil {
		return chain.Hash{}, fmt.Errorf("%w: missing transaction", common.ErrInvalidArgument)
	}
	if tx.NetworkID != s.cfg.NetworkID {
		return chain.Hash{}, fmt.Errorf("%w: network id %q, node runs %q", common.ErrInvalidArgument, tx.NetworkID, s.cfg.NetworkID)
	}
	if tx.To != s.cfg.StoreAddress {
		return chain.Hash{}, fmt.Errorf("%w: unknown contract %s", common.ErrInvalidArgument, tx.To.Hex())
	}
	if tx.Method != chain.MethodUpsert {
		return chain.Hash{}, fmt.Errorf("%w: unknown method %q", common.ErrInvalidArgument, tx.Method)
	}
	if err := tx.Args.CheckArguments(); err != nil {
		return chain.Hash{}, fmt.Errorf("%w: %w", common.ErrInvalidArgument, err)
	}
	if err := tx.VerifySignature(); err != nil {
		return chain.Hash{}, fmt.Errorf("%w: %w", common.ErrInvalidArgument, err)
	}
	if tx.From != caller {
		return chain.Hash{}, fmt.Errorf("%w: session belongs to %s", common.ErrorForbidden, caller.Hex())
	}
	if tx.Fee < s.cfg.Fee {
		return chain.Hash{}, fmt.Errorf("%w: fee %d below %d", common.ErrInvalidArgument, tx.Fee, s.cfg.Fee)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.InTx(ctx, func(ctx context.Context, r storage.Repositories) error {
		acct, stats, err := accountWithPending(ctx, r, tx.From)
		if err != nil {
			return err
		}
		if want := acct.Nonce + stats.Count; tx.Nonce != want {
			return fmt.Errorf("%w: nonce %d, expected %d", common.ErrNonceConflict, tx.Nonce, want)
		}
		if acct.Balance < stats.Fees || acct.Balance-stats.Fees < tx.Fee {
			return fmt.Errorf("%w: balance %d, pending fees %d, fee %d", common.ErrInsufficientFunds, acct.Balance, stats.Fees, tx.Fee)
		}

		if err := r.Transactions().Insert(ctx, tx); err != nil {
			if errors.Is(err, common.ErrNonceConflict) {
				return err
			}
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return chain.Hash{}, err
	}
	return tx.Hash(), nil
}

// Receipt returns the receipt of hash, nil while it is pending, or
// common.ErrorNotFound for unknown hashes.
func (s *LedgerService) Receipt(ctx context.Context, hash chain.Hash) (*chain.Receipt, error) {
	rec, err := s.store.Transactions().Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	return rec.Receipt, nil
}

// ReadProfile is the record store read: the empty profile means absent.
func (s *LedgerService) ReadProfile(ctx context.Context, address chain.Address) (chain.Profile, error) {
	p, err := s.store.Profiles().Get(ctx, address)
	if err != nil {
		return chain.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	s.metrics.RecordProfileRead()
	return p, nil
}

func submissionResult(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, common.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, common.ErrorForbidden):
		return "forbidden"
	case errors.Is(err, common.ErrNonceConflict):
		return "nonce_conflict"
	case errors.Is(err, common.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "error"
	}
}
