// Package nonce provides the challenge stores backing wallet authentication.
package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/ports"
)

const (
	// DefaultTTL is how long a challenge stays valid after issuance.
	DefaultTTL = 5 * time.Minute

	// DefaultCapacity caps the total number of live challenges.
	DefaultCapacity = 10_000

	// nonceBytes of entropy per nonce; the nonce is the sole capability
	// needed to attempt a login, so it must be unguessable within the TTL.
	nonceBytes = 32
)

// MemoryStore is an in-memory implementation of the NonceStore interface.
// Challenges are keyed by (address, nonce); consumed entries are retained
// until expiry so a replay reports "already used" rather than "not found".
type MemoryStore struct {
	serverName string
	ttl        time.Duration
	capacity   int
	now        func() time.Time
	onEvict    func(n int)

	mu      sync.Mutex
	entries map[string]*core.Challenge
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL overrides the challenge TTL.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// WithCapacity overrides the live-entry cap.
func WithCapacity(n int) MemoryOption {
	return func(s *MemoryStore) { s.capacity = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithEvictionHook registers a callback invoked with the number of entries
// removed by each prune pass.
func WithEvictionHook(fn func(n int)) MemoryOption {
	return func(s *MemoryStore) { s.onEvict = fn }
}

// NewMemoryStore creates an in-memory nonce store. serverName is embedded
// in every challenge message so signatures cannot be replayed elsewhere.
func NewMemoryStore(serverName string, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		serverName: serverName,
		ttl:        DefaultTTL,
		capacity:   DefaultCapacity,
		now:        time.Now,
		entries:    make(map[string]*core.Challenge),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the challenge lifetime.
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

func entryKey(address, nonce string) string {
	return address + "\x00" + nonce
}

// Issue creates a fresh challenge for the address.
func (s *MemoryStore) Issue(ctx context.Context, address string) (*core.Challenge, error) {
	raw := make([]byte, nonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(raw)

	now := s.now()
	challenge := &core.Challenge{
		Address:   address,
		Nonce:     nonce,
		Message:   core.FormatSignMessage(s.serverName, nonce),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.capacity {
		s.pruneLocked(now)
	}
	s.entries[entryKey(address, nonce)] = challenge

	out := *challenge
	return &out, nil
}

// Consume atomically burns the challenge. Failures leave the store untouched.
func (s *MemoryStore) Consume(ctx context.Context, address, nonce string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.entries[entryKey(address, nonce)]
	if !ok {
		return nil, core.ErrNonceNotFound
	}
	if challenge.Consumed {
		return nil, core.ErrNonceAlreadyUsed
	}
	if s.now().After(challenge.ExpiresAt) {
		return nil, core.ErrNonceExpired
	}

	challenge.Consumed = true
	out := *challenge
	return &out, nil
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// pruneLocked removes every expired entry, then, if still at or over
// capacity, evicts the oldest-issued entries until one slot is free.
// Caller holds s.mu.
func (s *MemoryStore) pruneLocked(now time.Time) {
	evicted := 0
	for key, challenge := range s.entries {
		if now.After(challenge.ExpiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}

	if len(s.entries) >= s.capacity {
		type aged struct {
			key      string
			issuedAt time.Time
		}
		oldest := make([]aged, 0, len(s.entries))
		for key, challenge := range s.entries {
			oldest = append(oldest, aged{key, challenge.IssuedAt})
		}
		slices.SortFunc(oldest, func(a, b aged) int {
			return a.issuedAt.Compare(b.issuedAt)
		})
		for _, entry := range oldest {
			if len(s.entries) < s.capacity {
				break
			}
			delete(s.entries, entry.key)
			evicted++
		}
	}

	if evicted > 0 && s.onEvict != nil {
		s.onEvict(evicted)
	}
}

var _ ports.NonceStore = (*MemoryStore)(nil)
