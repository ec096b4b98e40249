package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/wallet"
)

// Signer is the signing environment as the session manager sees it.
type Signer interface {
	RequestAccounts(ctx context.Context) ([]chain.Address, error)
	Transactor(account chain.Address) (Transactor, error)
	Viewer() Viewer
	Disconnect(ctx context.Context)
}

// Transactor submits upserts for one account and waits for them.
type Transactor interface {
	Upsert(ctx context.Context, p chain.Profile) (chain.Hash, error)
	Wait(ctx context.Context, hash chain.Hash) (*chain.Receipt, error)
}

type Viewer interface {
	Read(ctx context.Context, address chain.Address) (chain.Profile, error)
	Balance(ctx context.Context, address chain.Address) (uint64, error)
}

// Session is what a successful Connect hands out.
type Session struct {
	Account    chain.Address
	Transactor Transactor
	Viewer     Viewer
}

type SessionManager struct {
	signer Signer
}

func NewSessionManager(s Signer) *SessionManager {
	return &SessionManager{signer: s}
}

// Connect asks the signing environment for an account. Failures are
// classified, typically as ErrNoProvider or ErrUserRejected.
func (m *SessionManager) Connect(ctx context.Context) (*Session, error) {
	accounts, err := m.signer.RequestAccounts(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts returned", ErrNoProvider)
	}

	tr, err := m.signer.Transactor(accounts[0])
	if err != nil {
		return nil, Classify(err)
	}
	return &Session{
		Account:    accounts[0],
		Transactor: tr,
		Viewer:     m.signer.Viewer(),
	}, nil
}

func (m *SessionManager) Disconnect(ctx context.Context) {
	m.signer.Disconnect(ctx)
}

// WalletSigner adapts a wallet.Provider to Signer.
func WalletSigner(p *wallet.Provider) Signer {
	return walletSigner{p: p}
}

type walletSigner struct {
	p *wallet.Provider
}

func (w walletSigner) RequestAccounts(ctx context.Context) ([]chain.Address, error) {
	return w.p.RequestAccounts(ctx)
}

func (w walletSigner) Transactor(account chain.Address) (Transactor, error) {
	tr, err := w.p.Transactor(account)
	if err != nil {
		return nil, err
	}
	return walletTransactor{tr: tr}, nil
}

func (w walletSigner) Viewer() Viewer {
	return w.p.Viewer()
}

func (w walletSigner) Disconnect(ctx context.Context) {
	w.p.Disconnect(ctx)
}

type walletTransactor struct {
	tr *wallet.Transactor
}

func (w walletTransactor) Upsert(ctx context.Context, p chain.Profile) (chain.Hash, error) {
	pending, err := w.tr.Upsert(ctx, p)
	if err != nil {
		return chain.Hash{}, err
	}
	return pending.Hash, nil
}

func (w walletTransactor) Wait(ctx context.Context, hash chain.Hash) (*chain.Receipt, error) {
	return w.tr.Pending(hash).Wait(ctx)
}
