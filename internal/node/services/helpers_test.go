package services

import (
	"context"
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/node/events"
)

var storeAddr = chain.Address{0x5f, 0xbd, 0xb2, 0x31, 0x56, 0x78, 0xaf, 0xec, 0xb3, 0x67, 0xf0, 0x32, 0xd9, 0x3f, 0x64, 0x2f, 0x64, 0x18, 0x0a, 0xa3}

const testNetwork = "test-net"

func testKey(seed byte) (ed25519.PrivateKey, chain.Address) {
	s := make([]byte, ed25519.SeedSize)
	s[0] = seed
	key := ed25519.NewKeyFromSeed(s)
	return key, chain.AddressFromPublicKey(key.Public().(ed25519.PublicKey))
}

func upsertTx(key ed25519.PrivateKey, nonce, fee uint64, p chain.Profile) *chain.Transaction {
	tx := &chain.Transaction{
		NetworkID: testNetwork,
		Nonce:     nonce,
		From:      chain.AddressFromPublicKey(key.Public().(ed25519.PublicKey)),
		To:        storeAddr,
		Method:    chain.MethodUpsert,
		Args:      p,
		Fee:       fee,
	}
	tx.Sign(key)
	return tx
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeRecorder struct {
	mu          sync.Mutex
	submissions []string
	applied     []string
	blocks      []uint64
	reads       int
}

func (f *fakeRecorder) RecordSubmission(result string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, result)
}

func (f *fakeRecorder) RecordApplied(status, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, status+":"+reason)
}

func (f *fakeRecorder) RecordBlock(number uint64, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = append(f.blocks, number)
}

func (f *fakeRecorder) RecordProfileRead() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
}

type fakePublisher struct {
	events []events.ProfileUpdated
	err    error
}

func (f *fakePublisher) PublishProfileUpdated(_ context.Context, ev events.ProfileUpdated) error {
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeArchiver struct {
	blocks []*chain.Block
	err    error
}

func (f *fakeArchiver) ArchiveBlock(_ context.Context, b *chain.Block, _ []chain.Receipt) error {
	f.blocks = append(f.blocks, b)
	return f.err
}

func sign(key ed25519.PrivateKey, challenge string) []byte {
	return ed25519.Sign(key, chain.ChallengeMessage(challenge))
}

func pub(key ed25519.PrivateKey) []byte {
	return []byte(key.Public().(ed25519.PublicKey))
}
