// Package provisioner contains the built-in homeserver account provisioner.
// Deployments bridging to an external homeserver replace this adapter with
// one that talks to that server's login API.
package provisioner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/ports"
)

// AudienceAccess tags access tokens minted by this provisioner.
const AudienceAccess = "wallet:access"

// DefaultAccessTTL is the lifetime of a minted access token.
const DefaultAccessTTL = 24 * time.Hour

// LocalProvisioner provisions accounts in-process and mints ES256 JWT
// access tokens. Accounts are created on first login (auto-provision).
type LocalProvisioner struct {
	signKey    *ecdsa.PrivateKey
	serverName string
	accessTTL  time.Duration
	now        func() time.Time

	// autoJoinRoom is accepted from configuration but intentionally inert;
	// the room-join behavior is reserved.
	autoJoinRoom string

	mu       sync.Mutex
	accounts map[string]string // localpart -> display name
}

// Option configures a LocalProvisioner.
type Option func(*LocalProvisioner)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(p *LocalProvisioner) { p.accessTTL = ttl }
}

// WithAutoJoinRoom records the reserved auto-join room setting.
func WithAutoJoinRoom(room string) Option {
	return func(p *LocalProvisioner) { p.autoJoinRoom = room }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *LocalProvisioner) { p.now = now }
}

// NewLocalProvisioner creates a provisioner that signs tokens with signKey.
func NewLocalProvisioner(signKey *ecdsa.PrivateKey, serverName string, opts ...Option) *LocalProvisioner {
	p := &LocalProvisioner{
		signKey:    signKey,
		serverName: serverName,
		accessTTL:  DefaultAccessTTL,
		now:        time.Now,
		accounts:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type accessClaims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"device_id"`
}

// MintSession ensures an account exists for localpart and returns a fresh
// session with a signed access token and a new device id.
func (p *LocalProvisioner) MintSession(ctx context.Context, localpart, displayName string) (*core.Session, error) {
	p.mu.Lock()
	if _, ok := p.accounts[localpart]; !ok {
		p.accounts[localpart] = displayName
	}
	p.mu.Unlock()

	now := p.now()
	userID := fmt.Sprintf("@%s:%s", localpart, p.serverName)
	deviceID := uuid.New().String()

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessTTL)),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		DeviceID: deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signedToken, err := token.SignedString(p.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &core.Session{
		UserID:      userID,
		Localpart:   localpart,
		AccessToken: signedToken,
		DeviceID:    deviceID,
		IssuedAt:    now,
	}, nil
}

// VerifySession validates an access token and reconstructs its session.
func (p *LocalProvisioner) VerifySession(ctx context.Context, accessToken string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(accessToken, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &p.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceAccess), jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}

	localpart, _, _ := parseUserID(claims.Subject)

	return &core.Session{
		UserID:      claims.Subject,
		Localpart:   localpart,
		AccessToken: accessToken,
		DeviceID:    claims.DeviceID,
		IssuedAt:    claims.IssuedAt.Time,
	}, nil
}

// DisplayName reports the display name recorded for a localpart.
func (p *LocalProvisioner) DisplayName(localpart string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.accounts[localpart]
	return name, ok
}

func parseUserID(userID string) (localpart, server string, ok bool) {
	if len(userID) < 2 || userID[0] != '@' {
		return "", "", false
	}
	for i := 1; i < len(userID); i++ {
		if userID[i] == ':' {
			return userID[1:i], userID[i+1:], true
		}
	}
	return "", "", false
}

var _ ports.Provisioner = (*LocalProvisioner)(nil)
