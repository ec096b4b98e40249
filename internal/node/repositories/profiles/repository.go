// Package profiles persists the record store: one profile per address.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

type Repository interface {
	// Get returns the empty profile for addresses that never wrote one.
	Get(ctx context.Context, address chain.Address) (chain.Profile, error)
	// Upsert creates or fully replaces the record of address.
	Upsert(ctx context.Context, address chain.Address, p chain.Profile, blockNumber uint64) error
}
