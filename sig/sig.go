// Package sig verifies wallet signatures.
package sig

import (
	"crypto/ed25519"

	"github.com/fedwallet/walletgate/core"
)

// Verify reports whether signature is a valid ed25519 signature by
// publicKey over message. Malformed input never panics or errors; it
// simply verifies false.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != core.PublicKeySize {
		return false
	}
	if len(signature) != core.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
