// Package keys stores wallet accounts.
package keys

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
)

type Repository interface {
	Create(ctx context.Context, k *models.StoredKey) error
	// Get returns common.ErrorNotFound for unknown addresses.
	Get(ctx context.Context, address chain.Address) (*models.StoredKey, error)
	// List returns all accounts, oldest first.
	List(ctx context.Context) ([]*models.StoredKey, error)
}
