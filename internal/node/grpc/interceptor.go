package grpc

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/node/auth"
	"github.com/dmitrijs2005/chainprofile/internal/rpc"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const callerKey ctxKey = "caller"

func callerFromContext(ctx context.Context) (chain.Address, bool) {
	a, ok := ctx.Value(callerKey).(chain.Address)
	return a, ok
}

// accessTokenInterceptor requires a session token on state-changing calls and
// stores the caller address in the context.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != rpc.MethodSendTransaction {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(rpc.AccessTokenHeader); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	subject, err := auth.SubjectFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			// clients match on this message to re-authenticate
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	caller, err := chain.ParseAddress(subject)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	return handler(context.WithValue(ctx, callerKey, caller), req)
}

// rateLimitInterceptor throttles submissions per caller. It runs after
// accessTokenInterceptor.
func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != rpc.MethodSendTransaction {
		return handler(ctx, req)
	}
	caller, ok := callerFromContext(ctx)
	if ok && !s.limiter.Allow(caller) {
		s.logger.Warn(ctx, "rate limited", "address", caller.Hex())
		return nil, status.Error(codes.ResourceExhausted, common.ErrRateLimited.Error())
	}
	return handler(ctx, req)
}

type addressLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[chain.Address]*rate.Limiter
}

// newAddressLimiter returns a limiter that admits everything when limit is
// not positive.
func newAddressLimiter(limit rate.Limit, burst int) *addressLimiter {
	return &addressLimiter{limit: limit, burst: burst, limiters: map[chain.Address]*rate.Limiter{}}
}

func (l *addressLimiter) Allow(a chain.Address) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.limiters[a]
	if !ok {
		lim = rate.NewLimiter(l.limit, max(l.burst, 1))
		l.limiters[a] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
