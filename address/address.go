// Package address converts between the three representations of a wallet
// identity: the raw 32-byte public key, its base58 address, and the
// lowercase localpart used inside the messaging protocol's namespace.
//
// The localpart is lowercase hex rather than base58 because base58 is
// case-sensitive: folding it to satisfy a lowercase-only namespace would
// map distinct addresses onto the same name. Hex has only digits and a-f,
// so the encoding stays collision-free.
package address

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/fedwallet/walletgate/core"
)

// NamespaceTag prefixes every wallet-derived localpart. It keeps wallet
// accounts out of the namespace of ordinary usernames and leaves room for
// other key encodings later.
const NamespaceTag = "sol_"

// hexLen is the localpart body length: 32 bytes, hex-encoded.
const hexLen = 2 * core.PublicKeySize

// Decode parses a base58 wallet address into a raw public key.
func Decode(addr string) ([core.PublicKeySize]byte, error) {
	var key [core.PublicKeySize]byte

	raw, err := base58.Decode(addr)
	if err != nil {
		return key, fmt.Errorf("%w: not valid base58", core.ErrMalformedAddress)
	}
	if len(raw) != core.PublicKeySize {
		return key, fmt.Errorf("%w: decodes to %d bytes, want %d", core.ErrMalformedAddress, len(raw), core.PublicKeySize)
	}

	copy(key[:], raw)
	return key, nil
}

// Encode renders a raw public key as a base58 wallet address.
func Encode(key [core.PublicKeySize]byte) string {
	return base58.Encode(key[:])
}

// ToLocalpart converts a base58 wallet address to its namespaced localpart:
// the namespace tag followed by 64 lowercase hex characters.
func ToLocalpart(addr string) (string, error) {
	key, err := Decode(addr)
	if err != nil {
		return "", err
	}
	return NamespaceTag + hex.EncodeToString(key[:]), nil
}

// FromLocalpart converts a namespaced localpart back to the base58 address.
func FromLocalpart(localpart string) (string, error) {
	body, ok := strings.CutPrefix(localpart, NamespaceTag)
	if !ok {
		return "", fmt.Errorf("%w: missing %q prefix", core.ErrUnknownNamespace, NamespaceTag)
	}
	if len(body) != hexLen {
		return "", fmt.Errorf("%w: body is %d characters, want %d", core.ErrMalformedIdentifier, len(body), hexLen)
	}
	// hex.DecodeString accepts uppercase; the namespace is lowercase-only.
	if body != strings.ToLower(body) {
		return "", fmt.Errorf("%w: uppercase hex", core.ErrMalformedIdentifier)
	}

	raw, err := hex.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: not valid hex", core.ErrMalformedIdentifier)
	}

	return base58.Encode(raw), nil
}
