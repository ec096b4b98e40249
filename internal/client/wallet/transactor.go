package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/client"
	"github.com/dmitrijs2005/chainprofile/internal/common"
)

// Transactor signs and submits record store calls for one account.
type Transactor struct {
	provider *Provider
	account  chain.Address
}

func (t *Transactor) Account() chain.Address {
	return t.account
}

// Upsert asks the user to approve an upsert of profile, signs it and hands it
// to the node. The returned PendingTx waits for inclusion.
func (t *Transactor) Upsert(ctx context.Context, profile chain.Profile) (*PendingTx, error) {
	p := t.provider

	info, err := p.client.ChainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain info: %w", err)
	}
	acct, err := p.client.Account(ctx, t.account)
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}

	tx := &chain.Transaction{
		NetworkID: p.opts.NetworkID,
		Nonce:     acct.Nonce,
		From:      t.account,
		To:        p.opts.StoreAddress,
		Method:    chain.MethodUpsert,
		Args:      profile,
		Fee:       info.Fee,
	}

	ok, err := p.approver.ApproveTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRejected
	}

	_, key, err := p.signer(t.account)
	if err != nil {
		return nil, err
	}
	tx.Sign(key)
	common.WipeByteArray(key)

	hash, err := p.client.SendTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	p.logger.Info(ctx, "transaction submitted", "hash", hash.Hex(), "nonce", tx.Nonce)

	return t.Pending(hash), nil
}

// Pending returns a handle for a transaction submitted earlier.
func (t *Transactor) Pending(hash chain.Hash) *PendingTx {
	p := t.provider
	return &PendingTx{
		Hash:         hash,
		client:       p.client,
		pollInterval: p.opts.ReceiptPollInterval,
		timeout:      p.opts.ConfirmationTimeout,
	}
}

// PendingTx is a submitted transaction that has not been confirmed yet.
type PendingTx struct {
	Hash chain.Hash

	client       client.Client
	pollInterval time.Duration
	timeout      time.Duration
}

// Wait polls for the receipt until it shows up or the confirmation timeout
// passes. A failed receipt is returned together with a *TxFailedError.
func (tx *PendingTx) Wait(ctx context.Context) (*chain.Receipt, error) {
	ctx, cancel := context.WithTimeoutCause(ctx, tx.timeout, ErrConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(tx.pollInterval)
	defer ticker.Stop()

	for {
		rc, err := tx.client.Receipt(ctx, tx.Hash)
		if err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return nil, cause
			}
			if !errors.Is(err, common.ErrorUnavailable) {
				return nil, err
			}
			// keep polling through transient node outages
		} else if rc != nil {
			if !rc.Succeeded() {
				return rc, &TxFailedError{Receipt: rc}
			}
			return rc, nil
		}

		select {
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		case <-ticker.C:
		}
	}
}
