package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryLocker implements shared.Locker within one process.
// It does not coordinate separate instances.
type InMemoryLocker struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	now     func() time.Time
}

// NewInMemoryLocker creates an empty in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		entries: make(map[string]lockEntry),
		now:     time.Now,
	}
}

// TryLock acquires key for ttl or returns shared.ErrLockHeld. An expired
// entry is taken over.
func (l *InMemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (shared.Lease, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive, got %s", ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.entries[key]; ok && now.Before(e.expiresAt) {
		return nil, shared.ErrLockHeld
	}

	token := uuid.NewString()
	l.entries[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return &memoryLease{locker: l, key: key, token: token}, nil
}

// Held reports whether key is currently locked (for testing/monitoring)
func (l *InMemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	return ok && l.now().Before(e.expiresAt)
}

func (l *InMemoryLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok && e.token == token {
		delete(l.entries, key)
	}
}

type memoryLease struct {
	locker *InMemoryLocker
	key    string
	token  string
	once   sync.Once
}

func (m *memoryLease) Release(context.Context) error {
	m.once.Do(func() { m.locker.release(m.key, m.token) })
	return nil
}

// Ensure InMemoryLocker implements Locker
var _ shared.Locker = (*InMemoryLocker)(nil)
