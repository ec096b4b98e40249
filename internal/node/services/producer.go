package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/dmitrijs2005/chainprofile/internal/node/archive"
	"github.com/dmitrijs2005/chainprofile/internal/node/events"
	"github.com/dmitrijs2005/chainprofile/internal/node/metrics"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
	"github.com/dmitrijs2005/chainprofile/internal/node/storage"
)

type ProducerConfig struct {
	Interval time.Duration
	MaxTxs   int
}

// BlockProducer seals pending transactions into blocks on a fixed interval.
type BlockProducer struct {
	store     storage.Manager
	cfg       ProducerConfig
	publisher events.Publisher
	archiver  archive.Archiver
	metrics   metrics.Recorder
	logger    logging.Logger
	now       func() time.Time
}

func NewBlockProducer(store storage.Manager, cfg ProducerConfig, p events.Publisher, a archive.Archiver, m metrics.Recorder, l logging.Logger) *BlockProducer {
	return &BlockProducer{
		store:     store,
		cfg:       cfg,
		publisher: p,
		archiver:  a,
		metrics:   m,
		logger:    l.With("module", "block_producer"),
		now:       time.Now,
	}
}

// Run seals a block every interval until ctx is done. A failed round is
// logged and retried on the next tick.
func (p *BlockProducer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.logger.Info(ctx, "Starting block producer", "interval", p.cfg.Interval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "Stopping block producer...")
			return nil
		case <-ticker.C:
			if _, err := p.SealBlock(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error(ctx, "seal block failed", "error", err)
			}
		}
	}
}

type sealed struct {
	block    *chain.Block
	receipts []chain.Receipt
	events   []events.ProfileUpdated
}

// SealBlock applies up to MaxTxs pending transactions in arrival order and
// stores the resulting block. It returns nil when nothing was pending.
func (p *BlockProducer) SealBlock(ctx context.Context) (*chain.Block, error) {
	var out *sealed

	err := p.store.InTx(ctx, func(ctx context.Context, r storage.Repositories) error {
		var err error
		out, err = p.seal(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}

	p.metrics.RecordBlock(out.block.Number, len(out.receipts))
	for _, rc := range out.receipts {
		p.metrics.RecordApplied(string(rc.Status), rc.Reason)
	}
	p.logger.Info(ctx, "block sealed", "number", out.block.Number, "hash", out.block.Hash.Hex(), "txs", len(out.receipts))

	for _, ev := range out.events {
		if err := p.publisher.PublishProfileUpdated(ctx, ev); err != nil {
			p.logger.Warn(ctx, "publish event failed", "address", ev.Address.Hex(), "error", err)
		}
	}
	if err := p.archiver.ArchiveBlock(ctx, out.block, out.receipts); err != nil {
		p.logger.Warn(ctx, "archive block failed", "number", out.block.Number, "error", err)
	}

	return out.block, nil
}

func (p *BlockProducer) seal(ctx context.Context, r storage.Repositories) (*sealed, error) {
	pending, err := r.Transactions().ListPending(ctx, p.cfg.MaxTxs)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	var parent chain.Hash
	number := uint64(1)
	latest, err := r.Blocks().Latest(ctx)
	switch {
	case err == nil:
		parent = latest.Hash
		number = latest.Number + 1
	case errors.Is(err, common.ErrorNotFound):
	default:
		return nil, fmt.Errorf("latest block: %w", err)
	}

	out := &sealed{}
	hashes := make([]chain.Hash, 0, len(pending))

	for _, rec := range pending {
		rc, ev, err := p.apply(ctx, r, rec.Tx, number)
		if err != nil {
			return nil, err
		}
		if err := r.Transactions().SetReceipt(ctx, rc); err != nil {
			return nil, fmt.Errorf("store receipt %s: %w", rc.TxHash.Hex(), err)
		}
		hashes = append(hashes, rc.TxHash)
		out.receipts = append(out.receipts, *rc)
		if ev != nil {
			out.events = append(out.events, *ev)
		}
	}

	out.block = &chain.Block{
		Number:     number,
		Hash:       chain.BlockHash(number, parent, hashes),
		ParentHash: parent,
		TxHashes:   hashes,
		SealedAt:   p.now().UTC(),
	}
	if err := r.Blocks().Insert(ctx, out.block); err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	return out, nil
}

// apply executes one transaction against the state. A transaction that
// cannot be applied still gets a failed receipt; only storage errors abort
// the block.
func (p *BlockProducer) apply(ctx context.Context, r storage.Repositories, tx *chain.Transaction, number uint64) (*chain.Receipt, *events.ProfileUpdated, error) {
	rc := &chain.Receipt{TxHash: tx.Hash(), BlockNumber: number}

	acct, err := r.Accounts().Get(ctx, tx.From)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, nil, fmt.Errorf("load account: %w", err)
		}
		acct = &models.Account{Address: tx.From}
		if _, err := r.Accounts().Create(ctx, acct); err != nil {
			return nil, nil, fmt.Errorf("create account: %w", err)
		}
	}

	if acct.Nonce != tx.Nonce {
		rc.Status, rc.Reason = chain.ReceiptFailed, chain.ReasonNonceMismatch
		return rc, nil, nil
	}

	acct.Nonce++
	switch {
	case acct.Balance < tx.Fee:
		rc.Status, rc.Reason = chain.ReceiptFailed, chain.ReasonInsufficientFunds
	case tx.Args.CheckArguments() != nil:
		rc.Status, rc.Reason = chain.ReceiptFailed, chain.ReasonMalformedArgument
	default:
		acct.Balance -= tx.Fee
		rc.Status = chain.ReceiptSuccess
		rc.Logs = []chain.Log{{Event: chain.EventProfileUpdated, Address: tx.From}}
	}

	if err := r.Accounts().Update(ctx, acct); err != nil {
		return nil, nil, fmt.Errorf("update account: %w", err)
	}
	if !rc.Succeeded() {
		return rc, nil, nil
	}

	if err := r.Profiles().Upsert(ctx, tx.From, tx.Args, number); err != nil {
		return nil, nil, fmt.Errorf("upsert profile: %w", err)
	}
	ev := &events.ProfileUpdated{Address: tx.From, TxHash: rc.TxHash, BlockNumber: number, Profile: tx.Args}
	return rc, ev, nil
}
