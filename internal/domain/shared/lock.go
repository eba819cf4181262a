package shared

import (
	"context"
	"time"
)

// ErrLockHeld is returned by Locker.TryLock when another holder owns the key
var ErrLockHeld = NewDomainError("LOCK_HELD", "Lock is held by another process")

// Locker grants exclusive, expiring leases on named keys. A lease that is
// never released expires after its TTL.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock. Release only frees the key if this lease still owns it.
type Lease interface {
	Release(ctx context.Context) error
}
