package services

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
)

// FormController turns raw form input into a confirmed upsert.
type FormController struct{}

// Validate sanitizes fields; see PrepareProfile.
func (FormController) Validate(fields state.Fields) (chain.Profile, error) {
	return PrepareProfile(fields)
}

// Submit sends the upsert and waits for its receipt. accepted, if set, is
// called once the node has taken the transaction. Errors are classified.
func (FormController) Submit(ctx context.Context, tr Transactor, p chain.Profile, accepted func(chain.Hash)) (*chain.Receipt, error) {
	hash, err := tr.Upsert(ctx, p)
	if err != nil {
		return nil, Classify(err)
	}
	if accepted != nil {
		accepted(hash)
	}

	rc, err := tr.Wait(ctx, hash)
	if err != nil {
		return rc, Classify(err)
	}
	return rc, nil
}
