package ports

import (
	"context"

	"github.com/fedwallet/walletgate/core"
)

// NonceStore tracks outstanding authentication challenges. Each challenge
// is keyed by (address, nonce) and can be consumed exactly once.
type NonceStore interface {
	// Issue creates a fresh challenge for the address.
	Issue(ctx context.Context, address string) (*core.Challenge, error)

	// Consume atomically looks up and burns the challenge. Fails with
	// core.ErrNonceNotFound, core.ErrNonceExpired or core.ErrNonceAlreadyUsed;
	// a failed consume never mutates the store.
	Consume(ctx context.Context, address, nonce string) (*core.Challenge, error)
}
