package client

import (
	"context"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
)

// Client is the node API consumed by the wallet.
type Client interface {
	Ping(ctx context.Context) error
	ChainInfo(ctx context.Context) (*rpc.ChainInfoResponse, error)
	Challenge(ctx context.Context, address chain.Address) (string, error)
	Authenticate(ctx context.Context, address chain.Address, challenge string, publicKey, signature []byte) error
	SetReauthenticator(fn func(ctx context.Context) error)
	ClearSession()
	Account(ctx context.Context, address chain.Address) (*rpc.GetAccountResponse, error)
	SendTransaction(ctx context.Context, tx *chain.Transaction) (chain.Hash, error)
	Receipt(ctx context.Context, hash chain.Hash) (*chain.Receipt, error)
	ReadProfile(ctx context.Context, address chain.Address) (chain.Profile, error)
	Close() error
}
