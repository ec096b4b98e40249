package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/dmitrijs2005/chainprofile/internal/node/services"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeAuth struct {
	challenge string
	token     string
	expires   time.Time
	err       error
}

func (f *fakeAuth) Challenge(context.Context, chain.Address) (string, time.Time, error) {
	return f.challenge, f.expires, f.err
}

func (f *fakeAuth) Authenticate(context.Context, chain.Address, string, []byte, []byte) (string, time.Time, error) {
	return f.token, f.expires, f.err
}

type fakeLedger struct {
	info    *services.ChainInfo
	account *services.AccountState
	hash    chain.Hash
	receipt *chain.Receipt
	profile chain.Profile
	err     error

	submittedBy chain.Address
}

func (f *fakeLedger) ChainInfo(context.Context) (*services.ChainInfo, error) { return f.info, f.err }

func (f *fakeLedger) Account(context.Context, chain.Address) (*services.AccountState, error) {
	return f.account, f.err
}

func (f *fakeLedger) Submit(_ context.Context, caller chain.Address, _ *chain.Transaction) (chain.Hash, error) {
	f.submittedBy = caller
	return f.hash, f.err
}

func (f *fakeLedger) Receipt(context.Context, chain.Hash) (*chain.Receipt, error) {
	return f.receipt, f.err
}

func (f *fakeLedger) ReadProfile(context.Context, chain.Address) (chain.Profile, error) {
	return f.profile, f.err
}

func newServer(t *testing.T, a *fakeAuth, l *fakeLedger) *GRPCServer {
	t.Helper()
	s, err := NewGRPCServer("127.0.0.1:0", logging.Nop{}, a, l, "secret", RateLimit{})
	require.NoError(t, err)
	return s
}

func TestNewGRPCServer_RequiresSecret(t *testing.T) {
	_, err := NewGRPCServer(":0", logging.Nop{}, &fakeAuth{}, &fakeLedger{}, "", RateLimit{})
	assert.Error(t, err)
}

func TestChainInfo_OK(t *testing.T) {
	l := &fakeLedger{info: &services.ChainInfo{NetworkID: "n", StoreAddress: chain.Address{1}, Fee: 21, BlockHeight: 9}}
	resp, err := newServer(t, &fakeAuth{}, l).ChainInfo(context.Background(), &rpc.ChainInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, &rpc.ChainInfoResponse{NetworkID: "n", StoreAddress: chain.Address{1}, Fee: 21, BlockHeight: 9}, resp)
}

func TestChallengeAndAuthenticate_OK(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newServer(t, &fakeAuth{challenge: "c", token: "tok", expires: exp}, &fakeLedger{})

	c, err := s.Challenge(context.Background(), &rpc.ChallengeRequest{Address: chain.Address{1}})
	require.NoError(t, err)
	assert.Equal(t, "c", c.Challenge)
	assert.Equal(t, exp, c.ExpiresAt)

	a, err := s.Authenticate(context.Background(), &rpc.AuthenticateRequest{Address: chain.Address{1}, Challenge: "c"})
	require.NoError(t, err)
	assert.Equal(t, "tok", a.AccessToken)
}

func TestGetReceipt_PendingIsNotFound(t *testing.T) {
	s := newServer(t, &fakeAuth{}, &fakeLedger{})
	resp, err := s.GetReceipt(context.Background(), &rpc.GetReceiptRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Receipt)

	rc := &chain.Receipt{Status: chain.ReceiptSuccess}
	s = newServer(t, &fakeAuth{}, &fakeLedger{receipt: rc})
	resp, err = s.GetReceipt(context.Background(), &rpc.GetReceiptRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, rc, resp.Receipt)
}

func TestSendTransaction_UsesCaller(t *testing.T) {
	l := &fakeLedger{hash: chain.Hash{3}}
	s := newServer(t, &fakeAuth{}, l)

	ctx := context.WithValue(context.Background(), callerKey, chain.Address{5})
	resp, err := s.SendTransaction(ctx, &rpc.SendTransactionRequest{Transaction: &chain.Transaction{}})
	require.NoError(t, err)
	assert.Equal(t, chain.Hash{3}, resp.Hash)
	assert.Equal(t, chain.Address{5}, l.submittedBy)
}

func TestSendTransaction_MissingCaller(t *testing.T) {
	s := newServer(t, &fakeAuth{}, &fakeLedger{})
	_, err := s.SendTransaction(context.Background(), &rpc.SendTransactionRequest{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("%w: bad", common.ErrInvalidArgument), codes.InvalidArgument},
		{chain.ErrInvalidAddress, codes.InvalidArgument},
		{common.ErrorForbidden, codes.PermissionDenied},
		{common.ErrNonceConflict, codes.Aborted},
		{common.ErrInsufficientFunds, codes.FailedPrecondition},
		{common.ErrChallengeExpired, codes.Unauthenticated},
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrorNotFound, codes.NotFound},
		{common.ErrRateLimited, codes.ResourceExhausted},
		{errors.New("db down"), codes.Internal},
	}
	s := newServer(t, &fakeAuth{}, &fakeLedger{})
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(s.toStatus(context.Background(), tt.err)))
		})
	}
}

func TestToStatus_HidesInternalDetail(t *testing.T) {
	s := newServer(t, &fakeAuth{}, &fakeLedger{})
	err := s.toStatus(context.Background(), errors.New("password=hunter2"))
	assert.Equal(t, "internal error", status.Convert(err).Message())
}

func TestHandlers_PropagateErrors(t *testing.T) {
	s := newServer(t, &fakeAuth{err: common.ErrChallengeExpired}, &fakeLedger{err: common.ErrorNotFound})
	ctx := context.Background()

	_, err := s.Authenticate(ctx, &rpc.AuthenticateRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = s.GetReceipt(ctx, &rpc.GetReceiptRequest{})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = s.ReadProfile(ctx, &rpc.ReadProfileRequest{})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = s.GetAccount(ctx, &rpc.GetAccountRequest{})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = s.ChainInfo(ctx, &rpc.ChainInfoRequest{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
