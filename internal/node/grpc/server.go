// Package grpc exposes the ledger node over gRPC.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
	"github.com/dmitrijs2005/chainprofile/internal/node/services"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type authService interface {
	Challenge(ctx context.Context, address chain.Address) (string, time.Time, error)
	Authenticate(ctx context.Context, address chain.Address, challenge string, publicKey, signature []byte) (string, time.Time, error)
}

type ledgerService interface {
	ChainInfo(ctx context.Context) (*services.ChainInfo, error)
	Account(ctx context.Context, address chain.Address) (*services.AccountState, error)
	Submit(ctx context.Context, caller chain.Address, tx *chain.Transaction) (chain.Hash, error)
	Receipt(ctx context.Context, hash chain.Hash) (*chain.Receipt, error)
	ReadProfile(ctx context.Context, address chain.Address) (chain.Profile, error)
}

// RateLimit bounds transaction submissions per account.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

type GRPCServer struct {
	rpc.UnimplementedNodeServer
	address   string
	auth      authService
	ledger    ledgerService
	logger    logging.Logger
	jwtSecret []byte
	limiter   *addressLimiter
}

func NewGRPCServer(a string, l logging.Logger, as authService, ls ledgerService, secretKey string, rl RateLimit) (*GRPCServer, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("secret key is empty")
	}
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		auth:      as,
		ledger:    ls,
		jwtSecret: []byte(secretKey),
		limiter:   newAddressLimiter(rate.Limit(rl.PerSecond), rl.Burst),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor, s.rateLimitInterceptor))

	rpc.RegisterNodeServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
