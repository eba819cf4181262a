package cache

import (
	"context"
	"fmt"

	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// an in-memory locker. Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when Redis is enabled and reachable,
// otherwise an in-memory locker if fallback is allowed. The returned close
// function releases the Redis client.
func (f *LockerFactory) CreateLocker(ctx context.Context) (shared.Locker, func() error, error) {
	noop := func() error { return nil }

	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory reconciliation lock")
		return NewInMemoryLocker(), noop, nil
	}

	locker, err := NewRedisLocker(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis reconciliation lock", zap.String("addr", f.redisConfig.Addr()))
		return locker, locker.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("Redis required for reconciliation lock but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory reconciliation lock. "+
		"Concurrent passes from other instances will not be excluded.",
		zap.Error(err),
	)
	return NewInMemoryLocker(), noop, nil
}
