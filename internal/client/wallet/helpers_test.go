package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
	"github.com/dmitrijs2005/chainprofile/internal/client/repositories"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
	"github.com/stretchr/testify/require"
)

var storeAddr = chain.Address{0x5f, 0xbd, 0xb2}

const testNetwork = "test-net"

type fakeNode struct {
	mu sync.Mutex

	pingErr      error
	info         rpc.ChainInfoResponse
	infoErr      error
	authErr      error
	nonce        uint64
	sendErr      error
	receipts     []*chain.Receipt
	receiptErrs  []error
	profiles     map[chain.Address]chain.Profile
	sent         []*chain.Transaction
	authed       []chain.Address
	challenges   int
	cleared      int
	reauth       func(ctx context.Context) error
	receiptCalls int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		info:     rpc.ChainInfoResponse{NetworkID: testNetwork, StoreAddress: storeAddr, Fee: 21},
		profiles: map[chain.Address]chain.Profile{},
	}
}

func (f *fakeNode) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeNode) ChainInfo(ctx context.Context) (*rpc.ChainInfoResponse, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info := f.info
	return &info, nil
}

func (f *fakeNode) Challenge(ctx context.Context, address chain.Address) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenges++
	return "challenge", nil
}

func (f *fakeNode) Authenticate(ctx context.Context, address chain.Address, challenge string, publicKey, signature []byte) error {
	if f.authErr != nil {
		return f.authErr
	}
	if chain.AddressFromPublicKey(publicKey) != address {
		return errAuth
	}
	if !ed25519Verify(publicKey, chain.ChallengeMessage(challenge), signature) {
		return errAuth
	}
	f.mu.Lock()
	f.authed = append(f.authed, address)
	f.mu.Unlock()
	return nil
}

func (f *fakeNode) SetReauthenticator(fn func(ctx context.Context) error) {
	f.mu.Lock()
	f.reauth = fn
	f.mu.Unlock()
}

func (f *fakeNode) ClearSession() {
	f.mu.Lock()
	f.cleared++
	f.reauth = nil
	f.mu.Unlock()
}

func (f *fakeNode) Account(ctx context.Context, address chain.Address) (*rpc.GetAccountResponse, error) {
	return &rpc.GetAccountResponse{Address: address, Balance: 100, Nonce: f.nonce}, nil
}

func (f *fakeNode) SendTransaction(ctx context.Context, tx *chain.Transaction) (chain.Hash, error) {
	if f.sendErr != nil {
		return chain.Hash{}, f.sendErr
	}
	f.mu.Lock()
	f.sent = append(f.sent, tx)
	f.mu.Unlock()
	return tx.Hash(), nil
}

// Receipt pops scripted results in order; once they run out it reports the
// transaction as pending.
func (f *fakeNode) Receipt(ctx context.Context, hash chain.Hash) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptCalls++
	if len(f.receiptErrs) > 0 {
		err := f.receiptErrs[0]
		f.receiptErrs = f.receiptErrs[1:]
		return nil, err
	}
	if len(f.receipts) > 0 {
		rc := f.receipts[0]
		f.receipts = f.receipts[1:]
		return rc, nil
	}
	return nil, nil
}

func (f *fakeNode) ReadProfile(ctx context.Context, address chain.Address) (chain.Profile, error) {
	return f.profiles[address], nil
}

func (f *fakeNode) Close() error { return nil }

type fakeApprover struct {
	connect     bool
	sign        bool
	password    string
	err         error
	connectAsks int
	signAsks    int
	lastTx      *chain.Transaction
}

func (a *fakeApprover) ApproveConnect(ctx context.Context, account *models.StoredKey) (bool, error) {
	a.connectAsks++
	return a.connect, a.err
}

func (a *fakeApprover) ApproveTransaction(ctx context.Context, tx *chain.Transaction) (bool, error) {
	a.signAsks++
	a.lastTx = tx
	return a.sign, a.err
}

func (a *fakeApprover) Password(ctx context.Context, account chain.Address) ([]byte, error) {
	return []byte(a.password), nil
}

func newKeystore(t *testing.T) *Keystore {
	t.Helper()
	repos, err := repositories.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return NewKeystore(repos.DB())
}

type walletFixture struct {
	node     *fakeNode
	approver *fakeApprover
	keystore *Keystore
	provider *Provider
	address  chain.Address
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	ks := newKeystore(t)
	addr, err := ks.Create(context.Background(), "main", []byte("pw"))
	require.NoError(t, err)

	f := &walletFixture{
		node:     newFakeNode(),
		approver: &fakeApprover{connect: true, sign: true, password: "pw"},
		keystore: ks,
		address:  addr,
	}
	f.provider = NewProvider(f.node, ks, f.approver, Options{
		NetworkID:           testNetwork,
		StoreAddress:        storeAddr,
		ReceiptPollInterval: time.Millisecond,
		ConfirmationTimeout: time.Second,
	}, logging.Nop{})
	return f
}

func (f *walletFixture) connect(t *testing.T) {
	t.Helper()
	_, err := f.provider.RequestAccounts(context.Background())
	require.NoError(t, err)
}

var errAuth = errors.New("bad login")

func ed25519Verify(pub, msg, sig []byte) bool {
	return len(pub) == ed25519.PublicKeySize && ed25519.Verify(pub, msg, sig)
}
