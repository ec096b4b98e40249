package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAccounts_Success(t *testing.T) {
	f := newWalletFixture(t)

	accounts, err := f.provider.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []chain.Address{f.address}, accounts)
	assert.Equal(t, []chain.Address{f.address}, f.node.authed)
	assert.Equal(t, 1, f.approver.connectAsks)
	assert.NotNil(t, f.node.reauth)

	acct, ok := f.provider.Account()
	assert.True(t, ok)
	assert.Equal(t, f.address, acct)
}

func TestRequestAccounts_Failures(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(f *walletFixture)
		wantErr error
	}{
		{
			name:    "node down",
			arrange: func(f *walletFixture) { f.node.pingErr = common.ErrorUnavailable },
			wantErr: ErrNodeUnavailable,
		},
		{
			name:    "chain info fails",
			arrange: func(f *walletFixture) { f.node.infoErr = common.ErrorUnavailable },
			wantErr: ErrNodeUnavailable,
		},
		{
			name:    "other network",
			arrange: func(f *walletFixture) { f.node.info.NetworkID = "mainnet" },
			wantErr: ErrWrongNetwork,
		},
		{
			name:    "other store",
			arrange: func(f *walletFixture) { f.node.info.StoreAddress = chain.Address{0x01} },
			wantErr: ErrWrongNetwork,
		},
		{
			name:    "user declines",
			arrange: func(f *walletFixture) { f.approver.connect = false },
			wantErr: ErrRejected,
		},
		{
			name:    "wrong password",
			arrange: func(f *walletFixture) { f.approver.password = "nope" },
			wantErr: ErrBadPassword,
		},
		{
			name:    "login refused",
			arrange: func(f *walletFixture) { f.node.authErr = common.ErrorUnauthorized },
			wantErr: common.ErrorUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWalletFixture(t)
			tt.arrange(f)

			_, err := f.provider.RequestAccounts(context.Background())
			require.ErrorIs(t, err, tt.wantErr)

			_, ok := f.provider.Account()
			assert.False(t, ok)
		})
	}
}

func TestRequestAccounts_EmptyKeystore(t *testing.T) {
	node := newFakeNode()
	p := NewProvider(node, newKeystore(t), &fakeApprover{connect: true}, Options{NetworkID: testNetwork, StoreAddress: storeAddr}, logging.Nop{})

	_, err := p.RequestAccounts(context.Background())
	require.ErrorIs(t, err, ErrNoWallet)
}

func TestRequestAccounts_ApproverErrorPassesThrough(t *testing.T) {
	f := newWalletFixture(t)
	boom := errors.New("tty closed")
	f.approver.err = boom

	_, err := f.provider.RequestAccounts(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestReauthenticator_LogsInAgain(t *testing.T) {
	f := newWalletFixture(t)
	f.connect(t)

	require.NoError(t, f.node.reauth(context.Background()))
	assert.Len(t, f.node.authed, 2)
	assert.Equal(t, 2, f.node.challenges)
}

func TestDisconnect(t *testing.T) {
	f := newWalletFixture(t)
	f.connect(t)
	reauth := f.node.reauth

	f.provider.Disconnect(context.Background())

	_, ok := f.provider.Account()
	assert.False(t, ok)
	assert.Equal(t, 1, f.node.cleared)

	_, err := f.provider.Transactor(f.address)
	require.ErrorIs(t, err, ErrNotConnected)
	require.ErrorIs(t, reauth(context.Background()), ErrNotConnected)

	// idempotent
	f.provider.Disconnect(context.Background())
	assert.Equal(t, 2, f.node.cleared)
}

func TestTransactor_RequiresConnectedAccount(t *testing.T) {
	f := newWalletFixture(t)

	_, err := f.provider.Transactor(f.address)
	require.ErrorIs(t, err, ErrNotConnected)

	f.connect(t)
	_, err = f.provider.Transactor(chain.Address{0x42})
	require.ErrorIs(t, err, ErrNotConnected)

	tr, err := f.provider.Transactor(f.address)
	require.NoError(t, err)
	assert.Equal(t, f.address, tr.Account())
}

func TestViewer_WorksWithoutConnection(t *testing.T) {
	f := newWalletFixture(t)
	addr := chain.Address{0x07}
	f.node.profiles[addr] = chain.Profile{Name: "Ann", Age: 30}

	v := f.provider.Viewer()
	p, err := v.Read(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.Name)

	p, err = v.Read(context.Background(), chain.Address{0x08})
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	bal, err := v.Balance(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)
}
