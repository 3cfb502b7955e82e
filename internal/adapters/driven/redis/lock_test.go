package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestLock starts a miniredis and returns a lock bound to it.
func setupTestLock(t *testing.T) (*Lock, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLock(client), mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestLock_HolderTokensAreUnique(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()

	other := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	if lock.Holder() == "" {
		t.Fatal("expected a non-empty holder token")
	}
	if lock.Holder() == other.Holder() {
		t.Errorf("two instances share holder token %s", lock.Holder())
	}
}

func TestLock_AcquireSerialisesDocumentIngest(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()

	sibling := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "ingest:faq.txt", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Fatal("expected first worker to take the ingest lock")
	}

	// A second replica must be turned away while the document is locked.
	acquired, err = sibling.Acquire(ctx, "ingest:faq.txt", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected sibling replica to be refused the lock")
	}

	// A different document is independent.
	acquired, err = sibling.Acquire(ctx, "ingest:menu.pdf", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected lock on a different document to succeed")
	}
}

func TestLock_AcquireIsNotReentrant(t *testing.T) {
	lock, _, cleanup := setupTestLock(t)
	defer cleanup()
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:faq.txt", time.Minute); !ok {
		t.Fatal("expected to take the lock")
	}
	ok, err := lock.Acquire(ctx, "ingest:faq.txt", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second acquire by the same instance to fail")
	}
}

func TestLock_ReleaseFreesTheDocument(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()

	sibling := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:faq.txt", time.Minute); !ok {
		t.Fatal("expected to take the lock")
	}
	if err := lock.Release(ctx, "ingest:faq.txt"); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}

	acquired, err := sibling.Acquire(ctx, "ingest:faq.txt", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected released document to be lockable again")
	}
}

func TestLock_ReleaseWithoutHoldingIsNoop(t *testing.T) {
	lock, _, cleanup := setupTestLock(t)
	defer cleanup()

	if err := lock.Release(context.Background(), "ingest:faq.txt"); err != nil {
		t.Errorf("unexpected error releasing unheld lock: %v", err)
	}
}

func TestLock_ReleaseIsFencedOnHolder(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()

	sibling := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:faq.txt", time.Minute); !ok {
		t.Fatal("expected to take the lock")
	}

	// A replica that never held the lock must not be able to free it.
	if err := sibling.Release(ctx, "ingest:faq.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acquired, err := sibling.Acquire(ctx, "ingest:faq.txt", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected the original holder to still own the lock")
	}
}

func TestLock_ExtendKeepsLongIngestAlive(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:policies.pdf", 2*time.Second); !ok {
		t.Fatal("expected to take the lock")
	}
	if err := lock.Extend(ctx, "ingest:policies.pdf", time.Minute); err != nil {
		t.Fatalf("unexpected extend error: %v", err)
	}

	// The original TTL would have expired here; the extension must not.
	mr.FastForward(5 * time.Second)
	sibling := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	acquired, err := sibling.Acquire(ctx, "ingest:policies.pdf", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected the extended lock to still be held")
	}
}

func TestLock_ExtendExpiredLockFails(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:faq.txt", time.Second); !ok {
		t.Fatal("expected to take the lock")
	}
	mr.FastForward(2 * time.Second)

	err := lock.Extend(ctx, "ingest:faq.txt", time.Minute)
	if !errors.Is(err, ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld, got %v", err)
	}
}

func TestLock_ExtendIsFencedOnHolder(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()

	sibling := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:faq.txt", time.Minute); !ok {
		t.Fatal("expected to take the lock")
	}
	err := sibling.Extend(ctx, "ingest:faq.txt", time.Minute)
	if !errors.Is(err, ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld for non-holder, got %v", err)
	}
}

func TestLock_ExpiryHandsOverToNextReplica(t *testing.T) {
	lock, mr, cleanup := setupTestLock(t)
	defer cleanup()

	sibling := NewLock(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if ok, _ := lock.Acquire(ctx, "ingest:faq.txt", time.Second); !ok {
		t.Fatal("expected to take the lock")
	}
	mr.FastForward(2 * time.Second)

	acquired, err := sibling.Acquire(ctx, "ingest:faq.txt", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected expired lock to be acquirable by another replica")
	}

	// The stale holder must not free the sibling's lock.
	if err := lock.Release(ctx, "ingest:faq.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mr.Exists(lockKeyspace + "ingest:faq.txt") {
		t.Error("stale holder released a lock it no longer owned")
	}
}

func TestLock_Ping(t *testing.T) {
	lock, _, cleanup := setupTestLock(t)
	defer cleanup()

	if err := lock.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}
