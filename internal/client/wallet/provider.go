package wallet

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/client"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
)

// Options pins a Provider to one deployment.
type Options struct {
	NetworkID           string
	StoreAddress        chain.Address
	ReceiptPollInterval time.Duration
	ConfirmationTimeout time.Duration
}

type Provider struct {
	client   client.Client
	keystore *Keystore
	approver Approver
	opts     Options
	logger   logging.Logger

	mu      sync.Mutex
	account chain.Address
	key     ed25519.PrivateKey
}

func NewProvider(c client.Client, ks *Keystore, ap Approver, opts Options, l logging.Logger) *Provider {
	return &Provider{
		client:   c,
		keystore: ks,
		approver: ap,
		opts:     opts,
		logger:   l.With("module", "wallet"),
	}
}

// RequestAccounts connects the default keystore account and returns it.
//
// Errors: ErrNoWallet when the keystore is empty, ErrNodeUnavailable and
// ErrWrongNetwork when the node cannot serve this deployment, ErrRejected
// when the user declines and ErrBadPassword when the key cannot be unlocked.
func (p *Provider) RequestAccounts(ctx context.Context) ([]chain.Address, error) {
	sk, err := p.keystore.Default(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNodeUnavailable, err)
	}
	info, err := p.client.ChainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNodeUnavailable, err)
	}
	if info.NetworkID != p.opts.NetworkID || info.StoreAddress != p.opts.StoreAddress {
		return nil, fmt.Errorf("%w: node serves %s/%s", ErrWrongNetwork, info.NetworkID, info.StoreAddress.Hex())
	}

	ok, err := p.approver.ApproveConnect(ctx, sk)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRejected
	}

	password, err := p.approver.Password(ctx, sk.Address)
	if err != nil {
		return nil, err
	}
	key, err := p.keystore.Unlock(ctx, sk, password)
	common.WipeByteArray(password)
	if err != nil {
		return nil, err
	}

	if err := p.login(ctx, sk.Address, key); err != nil {
		common.WipeByteArray(key)
		return nil, err
	}

	p.mu.Lock()
	if p.key != nil {
		common.WipeByteArray(p.key)
	}
	p.account = sk.Address
	p.key = key
	p.mu.Unlock()

	p.client.SetReauthenticator(p.reauthenticate)
	p.logger.Info(ctx, "account connected", "address", sk.Address.Hex())

	return []chain.Address{sk.Address}, nil
}

func (p *Provider) login(ctx context.Context, address chain.Address, key ed25519.PrivateKey) error {
	challenge, err := p.client.Challenge(ctx, address)
	if err != nil {
		return fmt.Errorf("challenge: %w", err)
	}
	sig := ed25519.Sign(key, chain.ChallengeMessage(challenge))
	if err := p.client.Authenticate(ctx, address, challenge, key.Public().(ed25519.PublicKey), sig); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	return nil
}

func (p *Provider) reauthenticate(ctx context.Context) error {
	address, key, err := p.signer(chain.Address{})
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)
	p.logger.Debug(ctx, "access token expired, logging in again", "address", address.Hex())
	return p.login(ctx, address, key)
}

// signer returns the connected account and a copy of its key. A non-zero
// want must match the connected account.
func (p *Provider) signer(want chain.Address) (chain.Address, ed25519.PrivateKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key == nil {
		return chain.Address{}, nil, ErrNotConnected
	}
	if !want.IsZero() && want != p.account {
		return chain.Address{}, nil, fmt.Errorf("%w: %s", ErrNotConnected, want.Hex())
	}
	return p.account, append(ed25519.PrivateKey(nil), p.key...), nil
}

// Account returns the connected account, if any.
func (p *Provider) Account() (chain.Address, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.account, p.key != nil
}

// Transactor returns a signer for account, which must be the connected one.
func (p *Provider) Transactor(account chain.Address) (*Transactor, error) {
	p.mu.Lock()
	connected := p.key != nil && account == p.account
	p.mu.Unlock()
	if !connected {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, account.Hex())
	}
	return &Transactor{provider: p, account: account}, nil
}

// Viewer needs no connection.
func (p *Provider) Viewer() *Viewer {
	return &Viewer{client: p.client}
}

// Disconnect forgets the unlocked key and the node session.
func (p *Provider) Disconnect(ctx context.Context) {
	p.mu.Lock()
	if p.key != nil {
		common.WipeByteArray(p.key)
	}
	account := p.account
	p.key = nil
	p.account = chain.Address{}
	p.mu.Unlock()

	p.client.ClearSession()
	if !account.IsZero() {
		p.logger.Info(ctx, "account disconnected", "address", account.Hex())
	}
}
