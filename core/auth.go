package core

import "time"

// PublicKeySize is the length of a raw wallet public key in bytes.
const PublicKeySize = 32

// SignatureSize is the length of a wallet signature in bytes.
const SignatureSize = 64

// Challenge represents an outstanding authentication challenge
type Challenge struct {
	Address   string    // Base58 wallet address the challenge was issued to
	Nonce     string    // Random hex nonce to be signed
	Message   string    // Exact text the wallet must sign
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
	Consumed  bool      // Set once, on successful consume
}

// Session represents a minted session for an authenticated wallet
type Session struct {
	UserID      string    // Canonical identifier, e.g. "@<localpart>:<server>"
	Localpart   string    // Lowercase identifier derived from the public key
	AccessToken string    // Opaque credential issued by the homeserver
	DeviceID    string    // Device identifier bound to the token
	IssuedAt    time.Time // When the session was created
}
