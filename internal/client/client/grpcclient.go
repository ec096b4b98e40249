package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.NodeClient
	health      healthpb.HealthClient

	mu          sync.Mutex
	accessToken string
	reauth      func(ctx context.Context) error
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(rpc.AccessTokenHeader)
	if token != "" {
		md.Set(rpc.AccessTokenHeader, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	err := invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	s.mu.Lock()
	reauth := s.reauth
	s.mu.Unlock()
	if reauth == nil {
		return err
	}

	if rerr := reauth(ctx); rerr != nil {
		return rerr
	}
	return invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
}

// CallTimeout bounds every unary call made through the connection. Calls
// whose context already has an earlier deadline keep it.
func CallTimeout(d time.Duration) grpc.DialOption {
	return grpc.WithChainUnaryInterceptor(callTimeoutInterceptor(d))
}

func callTimeoutInterceptor(d time.Duration) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// NewGRPCClient prepares a connection to endpointURL. The connection is
// established lazily on the first call. opts are appended to the defaults,
// which lets tests dial an in-process listener.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewNodeClient(conn)
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

// Ping asks the standard health service whether the node service is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return common.ErrorUnavailable
	}
	return nil
}

func (s *GRPCClient) ChainInfo(ctx context.Context) (*rpc.ChainInfoResponse, error) {
	resp, err := s.client.ChainInfo(ctx, &rpc.ChainInfoRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Challenge(ctx context.Context, address chain.Address) (string, error) {
	resp, err := s.client.Challenge(ctx, &rpc.ChallengeRequest{Address: address})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Challenge, nil
}

// Authenticate exchanges a signed challenge for an access token and keeps it
// for later calls.
func (s *GRPCClient) Authenticate(ctx context.Context, address chain.Address, challenge string, publicKey, signature []byte) error {
	resp, err := s.client.Authenticate(ctx, &rpc.AuthenticateRequest{
		Address:   address,
		Challenge: challenge,
		PublicKey: publicKey,
		Signature: signature,
	})
	if err != nil {
		return s.mapError(err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) SetReauthenticator(fn func(ctx context.Context) error) {
	s.mu.Lock()
	s.reauth = fn
	s.mu.Unlock()
}

// ClearSession forgets the access token and the re-authenticator.
func (s *GRPCClient) ClearSession() {
	s.mu.Lock()
	s.accessToken = ""
	s.reauth = nil
	s.mu.Unlock()
}

func (s *GRPCClient) Account(ctx context.Context, address chain.Address) (*rpc.GetAccountResponse, error) {
	resp, err := s.client.GetAccount(ctx, &rpc.GetAccountRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) SendTransaction(ctx context.Context, tx *chain.Transaction) (chain.Hash, error) {
	resp, err := s.client.SendTransaction(ctx, &rpc.SendTransactionRequest{Transaction: tx})
	if err != nil {
		return chain.Hash{}, s.mapError(err)
	}
	return resp.Hash, nil
}

// Receipt returns nil while the transaction is pending.
func (s *GRPCClient) Receipt(ctx context.Context, hash chain.Hash) (*chain.Receipt, error) {
	resp, err := s.client.GetReceipt(ctx, &rpc.GetReceiptRequest{Hash: hash})
	if err != nil {
		return nil, s.mapError(err)
	}
	if !resp.Found {
		return nil, nil
	}
	return resp.Receipt, nil
}

func (s *GRPCClient) ReadProfile(ctx context.Context, address chain.Address) (chain.Profile, error) {
	resp, err := s.client.ReadProfile(ctx, &rpc.ReadProfileRequest{Address: address})
	if err != nil {
		return chain.Profile{}, s.mapError(err)
	}
	return resp.Profile, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated:
		sentinel = common.ErrorUnauthorized
	case codes.PermissionDenied:
		sentinel = common.ErrorForbidden
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = common.ErrorUnavailable
	case codes.InvalidArgument:
		sentinel = common.ErrInvalidArgument
	case codes.FailedPrecondition:
		sentinel = common.ErrInsufficientFunds
	case codes.Aborted:
		sentinel = common.ErrNonceConflict
	case codes.ResourceExhausted:
		sentinel = common.ErrRateLimited
	case codes.NotFound:
		sentinel = common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
