// Package blocks persists sealed blocks.
package blocks

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

type Repository interface {
	// Latest returns common.ErrorNotFound before the first block is sealed.
	Latest(ctx context.Context) (*chain.Block, error)
	Insert(ctx context.Context, b *chain.Block) error
}
