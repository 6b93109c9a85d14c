package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

// testWallet is a keypair playing the role of a user's wallet: it can sign
// a byte message, which is the only capability the flows need from it.
type testWallet struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newTestWallet(t *testing.T) *testWallet {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &testWallet{pub: pub, priv: priv}
}

func (w *testWallet) address() string {
	return base58.Encode(w.pub)
}

func (w *testWallet) sign(message []byte) []byte {
	return ed25519.Sign(w.priv, message)
}

func (w *testWallet) signB58(message []byte) string {
	return base58.Encode(w.sign(message))
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu          sync.Mutex
	logins      []string // addresses
	delegations []string // "owner endpoint" or "owner -" for removals
}

func (p *recordingPublisher) PublishLogin(ctx context.Context, address, localpart, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, address)
	return nil
}

func (p *recordingPublisher) PublishDelegationChanged(ctx context.Context, owner, endpoint string, removed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if removed {
		endpoint = "-"
	}
	p.delegations = append(p.delegations, owner+" "+endpoint)
	return nil
}

func (p *recordingPublisher) loginCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.logins)
}

func testSignKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}
