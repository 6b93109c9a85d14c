package core

import "time"

// MaxEndpointLen caps the delegated endpoint at the maximum DNS name length.
const MaxEndpointLen = 253

// DelegationRecord maps a wallet to the service endpoint it has delegated
// itself to. One record per owner; the record's ledger address is derived
// from the owner key, never stored.
type DelegationRecord struct {
	Owner     [PublicKeySize]byte // Wallet that owns this delegation
	Endpoint  string              // Delegated endpoint, e.g. "chat.example.com"
	UpdatedAt time.Time           // When the record was created or last updated
	Bump      uint8               // Derivation bump seed for re-derivation
}
