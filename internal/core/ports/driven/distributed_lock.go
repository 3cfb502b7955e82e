package driven

import (
	"context"
	"time"
)

// DistributedLock keeps two worker replicas from ingesting the same
// document at once. Locks are leases: they expire after their TTL, so
// a crashed holder never wedges ingestion.
type DistributedLock interface {
	// Acquire takes the named lock for at most ttl. False without
	// error means another holder has it; the caller should defer the
	// work rather than fail it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release gives the lock up early. Best-effort and safe to call
	// after expiry; the TTL reclaims the lock either way.
	Release(ctx context.Context, name string) error

	// Extend renews the lease on a held lock. Errors when this
	// instance no longer holds it.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping reports whether the lock backend is reachable.
	Ping(ctx context.Context) error
}
