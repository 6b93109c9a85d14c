package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fedwallet/walletgate/adapters/nonce"
	"github.com/fedwallet/walletgate/adapters/provisioner"
	"github.com/fedwallet/walletgate/address"
	"github.com/fedwallet/walletgate/core"
)

const serverName = "chat.example.com"

func newAuthService(t *testing.T, enabled bool) (*AuthService, *recordingPublisher) {
	t.Helper()
	events := &recordingPublisher{}
	svc := NewAuthService(
		nonce.NewMemoryStore(serverName),
		provisioner.NewLocalProvisioner(testSignKey(t), serverName),
		events,
		nil,
		enabled,
	)
	return svc, events
}

func TestLoginFlow(t *testing.T) {
	svc, events := newAuthService(t, true)
	wallet := newTestWallet(t)
	ctx := context.Background()

	challenge, err := svc.RequestChallenge(ctx, wallet.address())
	require.NoError(t, err)
	require.Contains(t, challenge.Message, serverName)
	require.Contains(t, challenge.Message, challenge.Nonce)

	signature := wallet.signB58([]byte(challenge.Message))
	session, err := svc.Login(ctx, LoginType, wallet.address(), signature, challenge.Nonce)
	require.NoError(t, err)

	localpart, err := address.ToLocalpart(wallet.address())
	require.NoError(t, err)
	require.Equal(t, "@"+localpart+":"+serverName, session.UserID)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.DeviceID)
	require.Equal(t, 1, events.loginCount())

	// Replaying the exact same proof must fail: the nonce is burned.
	_, err = svc.Login(ctx, LoginType, wallet.address(), signature, challenge.Nonce)
	require.ErrorIs(t, err, core.ErrNonceAlreadyUsed)
	require.Equal(t, 1, events.loginCount())
}

func TestLoginBurnsNonceOnBadSignature(t *testing.T) {
	svc, _ := newAuthService(t, true)
	wallet := newTestWallet(t)
	intruder := newTestWallet(t)
	ctx := context.Background()

	challenge, err := svc.RequestChallenge(ctx, wallet.address())
	require.NoError(t, err)

	// A signature by a different key consumes the nonce and fails.
	badSignature := intruder.signB58([]byte(challenge.Message))
	_, err = svc.Login(ctx, LoginType, wallet.address(), badSignature, challenge.Nonce)
	require.ErrorIs(t, err, core.ErrInvalidSignature)

	// Even the correct signature cannot reuse the burned nonce.
	goodSignature := wallet.signB58([]byte(challenge.Message))
	_, err = svc.Login(ctx, LoginType, wallet.address(), goodSignature, challenge.Nonce)
	require.ErrorIs(t, err, core.ErrNonceAlreadyUsed)
}

func TestLoginRejectsUnknownType(t *testing.T) {
	svc, _ := newAuthService(t, true)
	wallet := newTestWallet(t)
	ctx := context.Background()

	challenge, err := svc.RequestChallenge(ctx, wallet.address())
	require.NoError(t, err)

	signature := wallet.signB58([]byte(challenge.Message))
	_, err = svc.Login(ctx, "m.login.password", wallet.address(), signature, challenge.Nonce)
	require.ErrorIs(t, err, core.ErrUnknownLoginType)
}

func TestLoginRejectsMalformedInput(t *testing.T) {
	svc, _ := newAuthService(t, true)
	wallet := newTestWallet(t)
	ctx := context.Background()

	_, err := svc.RequestChallenge(ctx, "not-a-wallet")
	require.ErrorIs(t, err, core.ErrMalformedAddress)

	challenge, err := svc.RequestChallenge(ctx, wallet.address())
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginType, "not-a-wallet", wallet.signB58([]byte(challenge.Message)), challenge.Nonce)
	require.ErrorIs(t, err, core.ErrMalformedAddress)

	_, err = svc.Login(ctx, LoginType, wallet.address(), "!!!", challenge.Nonce)
	require.ErrorIs(t, err, core.ErrInvalidSignature)

	_, err = svc.Login(ctx, LoginType, wallet.address(), wallet.signB58([]byte("short"))[:20], challenge.Nonce)
	require.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestLoginUnknownNonce(t *testing.T) {
	svc, _ := newAuthService(t, true)
	wallet := newTestWallet(t)

	signature := wallet.signB58([]byte("anything"))
	_, err := svc.Login(context.Background(), LoginType, wallet.address(), signature, strings.Repeat("ab", 32))
	require.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestDisabledGate(t *testing.T) {
	svc, _ := newAuthService(t, false)
	wallet := newTestWallet(t)
	ctx := context.Background()

	_, err := svc.RequestChallenge(ctx, wallet.address())
	require.ErrorIs(t, err, core.ErrFeatureDisabled)

	_, err = svc.Login(ctx, LoginType, wallet.address(), wallet.signB58([]byte("x")), "00")
	require.ErrorIs(t, err, core.ErrFeatureDisabled)
}

func TestWhoami(t *testing.T) {
	svc, _ := newAuthService(t, true)
	wallet := newTestWallet(t)
	ctx := context.Background()

	challenge, err := svc.RequestChallenge(ctx, wallet.address())
	require.NoError(t, err)

	session, err := svc.Login(ctx, LoginType, wallet.address(), wallet.signB58([]byte(challenge.Message)), challenge.Nonce)
	require.NoError(t, err)

	resolved, err := svc.Whoami(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.UserID, resolved.UserID)
	require.Equal(t, session.DeviceID, resolved.DeviceID)

	_, err = svc.Whoami(ctx, "garbage")
	require.Error(t, err)
}
