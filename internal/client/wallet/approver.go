package wallet

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
)

// Approver puts wallet decisions in front of the user.
type Approver interface {
	ApproveConnect(ctx context.Context, account *models.StoredKey) (bool, error)
	ApproveTransaction(ctx context.Context, tx *chain.Transaction) (bool, error)
	Password(ctx context.Context, account chain.Address) ([]byte, error)
}
