package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

// lockKeyspace namespaces lock keys so they never collide with task
// queue keys in a shared Redis instance.
const lockKeyspace = "parley:lock:"

// ErrLockNotHeld is returned by Extend when the lock expired or belongs
// to another holder.
var ErrLockNotHeld = errors.New("lock not held")

// Both scripts compare the stored holder token before touching the key,
// so a worker that lost its lock to expiry cannot release or extend a
// lock that a sibling has since acquired.
var (
	releaseLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`)
	extendLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// Lock serialises document ingestion across worker replicas. Each
// instance holds a random token as the lock value; release and extend
// are fenced on that token so replicas cannot step on each other.
type Lock struct {
	client *redis.Client
	holder string
}

// NewLock creates a Redis-backed lock with a fresh holder token.
func NewLock(client *redis.Client) *Lock {
	return &Lock{
		client: client,
		holder: uuid.NewString(),
	}
}

// Acquire takes the named lock for at most ttl. It returns false
// without error when another holder (or this one) already has it.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyspace+name, l.holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Release drops the named lock if this instance holds it. Calling it
// after expiry, or without holding the lock, is a no-op.
func (l *Lock) Release(ctx context.Context, name string) error {
	_, err := releaseLockScript.Run(ctx, l.client, []string{lockKeyspace + name}, l.holder).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Extend pushes the TTL of a held lock out to ttl from now, for
// holders whose work may outlive the original lease.
func (l *Lock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	res, err := extendLockScript.Run(ctx, l.client, []string{lockKeyspace + name}, l.holder, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if n, _ := res.(int64); n == 0 {
		return fmt.Errorf("extend lock %s: %w", name, ErrLockNotHeld)
	}
	return nil
}

// Ping reports whether the Redis backend is reachable.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Holder returns this instance's lock token, mainly for log lines.
func (l *Lock) Holder() string {
	return l.holder
}
