// Package models holds the node's persisted records.
package models

import (
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

// Account is a ledger account. Nonce counts applied transactions, failed
// ones included.
type Account struct {
	Address chain.Address
	Balance uint64
	Nonce   uint64
}

// TxRecord is a submitted transaction. Receipt stays nil until the block
// producer applies it.
type TxRecord struct {
	Seq       int64
	Tx        *chain.Transaction
	Receipt   *chain.Receipt
	CreatedAt time.Time
}

func (r *TxRecord) Pending() bool {
	return r.Receipt == nil
}

// PendingStats summarises the pending transactions of one sender.
type PendingStats struct {
	Count uint64
	Fees  uint64
}
