package ecommerce

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// ThrottleWait computes how long to wait before the next request from the
// cost extension of the last response: ceil((requested - available) / restore)
// seconds when the bucket cannot cover the requested cost, zero otherwise.
// A missing extension, or one without a usable restore rate, yields fallback.
func ThrottleWait(cost *integration.CostExtension, fallback time.Duration) time.Duration {
	if cost == nil || cost.ThrottleStatus.RestoreRate <= 0 {
		return fallback
	}
	deficit := cost.RequestedQueryCost - cost.ThrottleStatus.CurrentlyAvailable
	if deficit <= 0 {
		return 0
	}
	seconds := math.Ceil(deficit / cost.ThrottleStatus.RestoreRate)
	return time.Duration(seconds) * time.Second
}

// throttleTracker holds the earliest time the next request may be issued.
// The server's numbers are the only input; no local bucket is simulated.
type throttleTracker struct {
	mu        sync.Mutex
	notBefore time.Time
	fallback  time.Duration
	now       func() time.Time
}

func newThrottleTracker(fallback time.Duration, now func() time.Time) *throttleTracker {
	return &throttleTracker{fallback: fallback, now: now}
}

// observe records the wait implied by a response and returns it
func (t *throttleTracker) observe(cost *integration.CostExtension) time.Duration {
	wait := ThrottleWait(cost, t.fallback)
	if wait <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.now().Add(wait)
	if next.After(t.notBefore) {
		t.notBefore = next
	}
	return wait
}

// pending returns how long the caller must still wait before issuing a request
func (t *throttleTracker) pending() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.notBefore.Sub(t.now())
	if d < 0 {
		return 0
	}
	return d
}

// sleepContext blocks for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
