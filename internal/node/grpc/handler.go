package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) ChainInfo(ctx context.Context, _ *rpc.ChainInfoRequest) (*rpc.ChainInfoResponse, error) {
	info, err := s.ledger.ChainInfo(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ChainInfoResponse{
		NetworkID:    info.NetworkID,
		StoreAddress: info.StoreAddress,
		Fee:          info.Fee,
		BlockHeight:  info.BlockHeight,
	}, nil
}

func (s *GRPCServer) Challenge(ctx context.Context, req *rpc.ChallengeRequest) (*rpc.ChallengeResponse, error) {
	c, exp, err := s.auth.Challenge(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ChallengeResponse{Challenge: c, ExpiresAt: exp}, nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *rpc.AuthenticateRequest) (*rpc.AuthenticateResponse, error) {
	token, exp, err := s.auth.Authenticate(ctx, req.Address, req.Challenge, req.PublicKey, req.Signature)
	if err != nil {
		s.logger.Warn(ctx, "authentication failed", "address", req.Address.Hex(), "error", err)
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Authenticated", "address", req.Address.Hex())
	return &rpc.AuthenticateResponse{AccessToken: token, ExpiresAt: exp}, nil
}

func (s *GRPCServer) GetAccount(ctx context.Context, req *rpc.GetAccountRequest) (*rpc.GetAccountResponse, error) {
	st, err := s.ledger.Account(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.GetAccountResponse{Address: st.Address, Balance: st.Balance, Nonce: st.Nonce}, nil
}

func (s *GRPCServer) SendTransaction(ctx context.Context, req *rpc.SendTransactionRequest) (*rpc.SendTransactionResponse, error) {
	caller, ok := callerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Internal, "missing caller")
	}

	h, err := s.ledger.Submit(ctx, caller, req.Transaction)
	if err != nil {
		s.logger.Info(ctx, "transaction rejected", "from", caller.Hex(), "error", err)
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "transaction accepted", "from", caller.Hex(), "hash", h.Hex())
	return &rpc.SendTransactionResponse{Hash: h}, nil
}

func (s *GRPCServer) GetReceipt(ctx context.Context, req *rpc.GetReceiptRequest) (*rpc.GetReceiptResponse, error) {
	rc, err := s.ledger.Receipt(ctx, req.Hash)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.GetReceiptResponse{Found: rc != nil, Receipt: rc}, nil
}

func (s *GRPCServer) ReadProfile(ctx context.Context, req *rpc.ReadProfileRequest) (*rpc.ReadProfileResponse, error) {
	p, err := s.ledger.ReadProfile(ctx, req.Address)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.ReadProfileResponse{Profile: p}, nil
}

// toStatus maps service errors onto gRPC codes. Internal failures are logged
// and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidArgument), errors.Is(err, chain.ErrInvalidAddress):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrNonceConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, common.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrChallengeExpired), errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}
