package wallet

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/client"
)

// Viewer performs free, unauthenticated reads.
type Viewer struct {
	client client.Client
}

// Read returns the record stored for address; an absent record comes back
// with an empty Name.
func (v *Viewer) Read(ctx context.Context, address chain.Address) (chain.Profile, error) {
	return v.client.ReadProfile(ctx, address)
}

func (v *Viewer) Balance(ctx context.Context, address chain.Address) (uint64, error) {
	acct, err := v.client.Account(ctx, address)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}
