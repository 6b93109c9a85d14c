// Package ledger provides account substrates for the delegation directory.
package ledger

import (
	"context"
	"sync"

	"github.com/fedwallet/walletgate/ports"
)

// MemoryLedger is an in-memory implementation of the Ledger interface.
// A single mutex serializes mutations, which trivially satisfies the
// per-address total ordering the directory relies on.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[[32]byte][]byte
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[[32]byte][]byte),
	}
}

// Fetch reads the account at addr.
func (l *MemoryLedger) Fetch(ctx context.Context, addr [32]byte) ([]byte, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, ok := l.accounts[addr]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Mutate applies fn to the account at addr atomically. An error from fn
// aborts with no state change; a nil result deletes the account.
func (l *MemoryLedger) Mutate(ctx context.Context, addr [32]byte, fn func(data []byte, exists bool) ([]byte, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists := l.accounts[addr]
	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	if next == nil {
		delete(l.accounts, addr)
		return nil
	}
	l.accounts[addr] = next
	return nil
}

var _ ports.Ledger = (*MemoryLedger)(nil)
