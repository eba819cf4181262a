package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "cdl:lock:"

// releaseScript deletes the key only if it still holds the caller's token,
// so a lease that expired and was re-acquired elsewhere is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements shared.Locker with SET NX PX and a token-checked release.
// Suitable when several processes may run reconciliation against one database.
type RedisLocker struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLocker connects to Redis and verifies the connection
func NewRedisLocker(ctx context.Context, cfg RedisConfig) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLocker{client: client, keyPrefix: defaultLockPrefix}, nil
}

// NewRedisLockerWithClient creates a locker over an existing client
func NewRedisLockerWithClient(client redis.UniversalClient, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

// TryLock acquires key for ttl or returns shared.ErrLockHeld without waiting
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (shared.Lease, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive, got %s", ttl)
	}

	token := uuid.NewString()
	fullKey := l.keyPrefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}
	if !ok {
		return nil, shared.ErrLockHeld
	}

	return &redisLease{client: l.client, key: fullKey, token: token}, nil
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (r *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.key}, r.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Ensure RedisLocker implements Locker
var _ shared.Locker = (*RedisLocker)(nil)
