// Package transactions persists the transaction pool and receipts.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
)

type Repository interface {
	// Insert adds tx to the pool as pending.
	Insert(ctx context.Context, tx *chain.Transaction) error
	// Get returns common.ErrorNotFound for unknown hashes.
	Get(ctx context.Context, hash chain.Hash) (*models.TxRecord, error)
	// ListPending returns up to limit pending transactions in arrival order.
	ListPending(ctx context.Context, limit int) ([]*models.TxRecord, error)
	PendingStats(ctx context.Context, sender chain.Address) (models.PendingStats, error)
	// SetReceipt marks the transaction r.TxHash as applied.
	SetReceipt(ctx context.Context, r *chain.Receipt) error
}
