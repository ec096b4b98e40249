// Package accounts persists ledger balances and nonces.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound for unknown addresses.
	Get(ctx context.Context, address chain.Address) (*models.Account, error)
	// Create inserts acct unless the address exists and reports whether it did.
	Create(ctx context.Context, acct *models.Account) (bool, error)
	Update(ctx context.Context, acct *models.Account) error
}
