package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/redis/go-redis/v9"

	"github.com/fedwallet/walletgate/ports"
)

// mutateRetries bounds the optimistic-lock retry loop.
const mutateRetries = 5

// RedisLedger is a Redis implementation of the Ledger interface.
// Per-address atomicity comes from a WATCH transaction on the account key.
type RedisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger creates a Redis-backed ledger.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{
		client: client,
		prefix: "walletgate:ledger:",
	}
}

func (l *RedisLedger) key(addr [32]byte) string {
	return l.prefix + base58.Encode(addr[:])
}

// Fetch reads the account at addr.
func (l *RedisLedger) Fetch(ctx context.Context, addr [32]byte) ([]byte, bool, error) {
	data, err := l.client.Get(ctx, l.key(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch account: %w", err)
	}
	return data, true, nil
}

// Mutate applies fn to the account at addr under a WATCH transaction,
// retrying when a concurrent writer invalidates the read.
func (l *RedisLedger) Mutate(ctx context.Context, addr [32]byte, fn func(data []byte, exists bool) ([]byte, error)) error {
	key := l.key(addr)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			data, exists = nil, false
		} else if err != nil {
			return fmt.Errorf("failed to read account: %w", err)
		}

		next, err := fn(data, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, next, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < mutateRetries; i++ {
		err := l.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("account mutation kept losing races at %s", key)
}

var _ ports.Ledger = (*RedisLedger)(nil)
