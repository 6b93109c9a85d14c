package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fedwallet/walletgate/core"
	"github.com/fedwallet/walletgate/ports"
)

// consumeRetries bounds the optimistic-lock retry loop when concurrent
// consumers race on the same key.
const consumeRetries = 3

// RedisStore is a Redis implementation of the NonceStore interface for
// multi-instance deployments. Capacity is enforced by key expiry rather
// than a global cap: every entry carries a TTL of twice the challenge
// lifetime, the extra window letting a late consume distinguish "expired"
// from "never existed".
type RedisStore struct {
	client     *redis.Client
	serverName string
	ttl        time.Duration
	prefix     string
	now        func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTTL overrides the challenge TTL.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithRedisClock overrides the time source.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) { s.now = now }
}

// NewRedisStore creates a Redis-backed nonce store.
func NewRedisStore(client *redis.Client, serverName string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:     client,
		serverName: serverName,
		ttl:        DefaultTTL,
		prefix:     "walletgate:nonce:",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the challenge lifetime.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

func (s *RedisStore) key(address, nonce string) string {
	return s.prefix + address + ":" + nonce
}

// Issue creates a fresh challenge for the address.
func (s *RedisStore) Issue(ctx context.Context, address string) (*core.Challenge, error) {
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

	payload, err := json.Marshal(challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.key(address, nonce), payload, 2*s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge, nil
}

// Consume atomically burns the challenge using an optimistic WATCH
// transaction so two concurrent consumers cannot both succeed.
func (s *RedisStore) Consume(ctx context.Context, address, nonce string) (*core.Challenge, error) {
	key := s.key(address, nonce)

	var consumed *core.Challenge
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrNonceNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read challenge: %w", err)
		}

		var challenge core.Challenge
		if err := json.Unmarshal(data, &challenge); err != nil {
			return fmt.Errorf("failed to unmarshal challenge: %w", err)
		}
		if challenge.Consumed {
			return core.ErrNonceAlreadyUsed
		}
		if s.now().After(challenge.ExpiresAt) {
			return core.ErrNonceExpired
		}

		challenge.Consumed = true
		payload, err := json.Marshal(&challenge)
		if err != nil {
			return fmt.Errorf("failed to marshal challenge: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		consumed = &challenge
		return nil
	}

	for i := 0; i < consumeRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return consumed, nil
	}

	// A racing consumer won every retry; from this caller's view the
	// nonce is gone.
	return nil, core.ErrNonceNotFound
}

var _ ports.NonceStore = (*RedisStore)(nil)
