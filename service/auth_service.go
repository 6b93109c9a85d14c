package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mr-tron/base58"

	"github.com/fedwallet/walletgate/address"
	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/ports"
	"github.com/fedwallet/walletgate/sig"
)

// LoginType is the custom login type tag clients send to select wallet
// signature authentication.
const LoginType = "m.login.wallet.signature"

// AuthService handles wallet authentication business logic: challenge
// issuance, proof verification, and session minting. It holds no per-user
// state of its own; the only cross-request state is the nonce store entry.
type AuthService struct {
	nonces      ports.NonceStore
	provisioner ports.Provisioner
	eventPub    ports.EventPublisher
	logger      *slog.Logger

	enabled bool
}

// NewAuthService creates a new authentication service
func NewAuthService(
	nonces ports.NonceStore,
	provisioner ports.Provisioner,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
	enabled bool,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		nonces:      nonces,
		provisioner: provisioner,
		eventPub:    eventPub,
		logger:      logger,
		enabled:     enabled,
	}
}

// Enabled reports whether wallet authentication is administratively on.
func (s *AuthService) Enabled() bool { return s.enabled }

// RequestChallenge validates the address and issues a challenge for it.
func (s *AuthService) RequestChallenge(ctx context.Context, addr string) (*core.Challenge, error) {
	if !s.enabled {
		return nil, core.ErrFeatureDisabled
	}
	if _, err := address.Decode(addr); err != nil {
		return nil, err
	}

	challenge, err := s.nonces.Issue(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to issue challenge: %w", err)
	}
	return challenge, nil
}

// Login verifies a signed challenge and mints a session.
//
// The nonce is consumed before the signature is checked, and a failed
// verification does not reinstate it: each challenge buys exactly one
// guess.
func (s *AuthService) Login(ctx context.Context, loginType, addr, signatureB58, nonce string) (*core.Session, error) {
	if !s.enabled {
		return nil, core.ErrFeatureDisabled
	}
	if loginType != LoginType {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownLoginType, loginType)
	}

	key, err := address.Decode(addr)
	if err != nil {
		return nil, err
	}

	signature, err := base58.Decode(signatureB58)
	if err != nil {
		return nil, fmt.Errorf("%w: signature is not valid base58", core.ErrInvalidSignature)
	}
	if len(signature) != core.SignatureSize {
		return nil, fmt.Errorf("%w: signature is %d bytes, want %d", core.ErrInvalidSignature, len(signature), core.SignatureSize)
	}

	challenge, err := s.nonces.Consume(ctx, addr, nonce)
	if err != nil {
		return nil, err
	}

	if !sig.Verify(key[:], []byte(challenge.Message), signature) {
		return nil, core.ErrInvalidSignature
	}

	localpart, err := address.ToLocalpart(addr)
	if err != nil {
		return nil, err
	}

	session, err := s.provisioner.MintSession(ctx, localpart, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session: %w", err)
	}

	s.logger.Info("wallet login verified",
		"address", addr,
		"localpart", localpart,
		"user_id", session.UserID,
	)

	if err := s.eventPub.PublishLogin(ctx, addr, localpart, session.UserID); err != nil {
		// The session is already minted; event delivery is best-effort.
		s.logger.Warn("failed to publish login event", "error", err)
	}

	return session, nil
}

// Whoami resolves an access token back to its session.
func (s *AuthService) Whoami(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.provisioner.VerifySession(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return session, nil
}
