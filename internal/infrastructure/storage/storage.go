// Package storage provides durable key to blob storage for bulk export
// archives, reports and intake sheets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	infraconfig "github.com/nemean-dev/cdl-admin/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Storage drivers
const (
	DriverS3     = "s3"
	DriverBucket = "bucket"
)

var (
	// ErrObjectNotFound is returned when no object exists under a key
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrKeyRequired is returned for an empty storage key
	ErrKeyRequired = errors.New("storage: storage key is required")
)

// BlobStore is a flat key to blob store. It does not assume a filesystem.
type BlobStore interface {
	// Put writes the object, replacing any existing one
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// Get opens the object for reading; it returns ErrObjectNotFound if absent
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether an object exists under key
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the object; deleting a missing object is not an error
	Delete(ctx context.Context, key string) error
	// Close releases the underlying client
	Close() error
}

// Open builds the blob store selected by cfg.Driver
func Open(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (BlobStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case DriverS3:
		store, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case DriverBucket, "":
		return OpenBucketStorage(ctx, cfg.URL, WithBucketLogger(logger))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
