package ports

import (
	"context"

	"github.com/fedwallet/walletgate/core"
)

// Provisioner is the messaging protocol's login/account interface. It
// provisions the account on first sight of a localpart and mints the
// session credential.
type Provisioner interface {
	// MintSession ensures an account exists for localpart and returns a
	// fresh session. displayName is advisory (the base58 address, so users
	// see the familiar wallet format).
	MintSession(ctx context.Context, localpart, displayName string) (*core.Session, error)

	// VerifySession validates an access token and returns the session it
	// belongs to.
	VerifySession(ctx context.Context, accessToken string) (*core.Session, error)
}
