// Package services contains the node's business logic: account login, the
// ledger (admission and reads) and the block producer.
package services

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/common"
	"github.com/dmitrijs2005/chainprofile/internal/node/auth"
	"github.com/dmitrijs2005/chainprofile/internal/node/models"
	"github.com/dmitrijs2005/chainprofile/internal/node/storage"
	"github.com/google/uuid"
)

type AuthConfig struct {
	SecretKey      []byte
	TokenTTL       time.Duration
	ChallengeTTL   time.Duration
	GenesisBalance uint64
}

// Outstanding challenges are bounded: an address keeps its newest
// challengesPerAddress, and the node holds at most maxChallenges in total.
const challengesPerAddress = 4

var maxChallenges = 10000

type pendingChallenge struct {
	address chain.Address
	issued  time.Time
	expires time.Time
}

// AuthService runs the challenge/response login. A challenge is single-use
// and bound to the address that requested it.
type AuthService struct {
	store storage.Manager
	cfg   AuthConfig
	now   func() time.Time

	mu         sync.Mutex
	challenges map[string]pendingChallenge
}

func NewAuthService(store storage.Manager, cfg AuthConfig) *AuthService {
	return &AuthService{
		store:      store,
		cfg:        cfg,
		now:        time.Now,
		challenges: map[string]pendingChallenge{},
	}
}

// Challenge issues a fresh challenge for address. When the address already
// holds challengesPerAddress unexpired challenges the oldest is dropped; when
// the node is full it fails with common.ErrRateLimited.
func (s *AuthService) Challenge(ctx context.Context, address chain.Address) (string, time.Time, error) {
	if address.IsZero() {
		return "", time.Time{}, fmt.Errorf("%w: zero address", common.ErrInvalidArgument)
	}

	now := s.now()
	c := uuid.NewString()
	expires := now.Add(s.cfg.ChallengeTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	var (
		held   int
		oldest string
	)
	for k, pc := range s.challenges {
		if pc.address != address {
			continue
		}
		held++
		if oldest == "" || pc.issued.Before(s.challenges[oldest].issued) {
			oldest = k
		}
	}
	if held >= challengesPerAddress {
		delete(s.challenges, oldest)
	} else if len(s.challenges) >= maxChallenges {
		return "", time.Time{}, fmt.Errorf("%w: too many pending challenges", common.ErrRateLimited)
	}
	s.challenges[c] = pendingChallenge{address: address, issued: now, expires: expires}

	return c, expires, nil
}

// Authenticate checks that signature is publicKey's signature over the
// challenge message and that publicKey owns address. New accounts are
// credited with the genesis balance. It returns a session token.
func (s *AuthService) Authenticate(ctx context.Context, address chain.Address, challenge string, publicKey, signature []byte) (string, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	pc, ok := s.challenges[challenge]
	delete(s.challenges, challenge)
	s.mu.Unlock()

	if !ok || pc.address != address || now.After(pc.expires) {
		return "", time.Time{}, common.ErrChallengeExpired
	}
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return "", time.Time{}, common.ErrorUnauthorized
	}
	pub := ed25519.PublicKey(publicKey)
	if chain.AddressFromPublicKey(pub) != address {
		return "", time.Time{}, common.ErrorUnauthorized
	}
	if !ed25519.Verify(pub, chain.ChallengeMessage(challenge), signature) {
		return "", time.Time{}, common.ErrorUnauthorized
	}

	if err := s.ensureAccount(ctx, address); err != nil {
		return "", time.Time{}, err
	}

	token, expires, err := auth.GenerateToken(address.Hex(), s.cfg.SecretKey, s.cfg.TokenTTL, now)
	if err != nil {
		return "", time.Time{}, common.ErrorInternal
	}
	return token, expires, nil
}

func (s *AuthService) ensureAccount(ctx context.Context, address chain.Address) error {
	_, err := s.store.Accounts().Get(ctx, address)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("load account: %w", err)
	}
	_, err = s.store.Accounts().Create(ctx, &models.Account{Address: address, Balance: s.cfg.GenesisBalance})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *AuthService) pruneLocked(now time.Time) {
	for k, c := range s.challenges {
		if now.After(c.expires) {
			delete(s.challenges, k)
		}
	}
}
