package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// driver
	_ "gocloud.dev/blob/memblob"  // mem:// driver
	"gocloud.dev/gcerrors"
)

var _ BlobStore = (*BucketStorage)(nil)

// BucketStorage implements BlobStore on a portable gocloud.dev bucket.
// Used with file:// for local deployments and mem:// in tests.
type BucketStorage struct {
	bucket *blob.Bucket
	logger *zap.Logger
}

// BucketOption is a functional option for configuring BucketStorage
type BucketOption func(*BucketStorage)

// WithBucketLogger sets a custom logger for BucketStorage
func WithBucketLogger(logger *zap.Logger) BucketOption {
	return func(s *BucketStorage) {
		s.logger = logger
	}
}

// OpenBucketStorage opens the bucket addressed by a gocloud URL
func OpenBucketStorage(ctx context.Context, bucketURL string, opts ...BucketOption) (*BucketStorage, error) {
	if bucketURL == "" {
		return nil, fmt.Errorf("storage bucket url is required")
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	return NewBucketStorage(bucket, opts...), nil
}

// NewBucketStorage wraps an already opened bucket
func NewBucketStorage(bucket *blob.Bucket, opts ...BucketOption) *BucketStorage {
	s := &BucketStorage{
		bucket: bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put streams r into the object under key
func (s *BucketStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}

	// Canceling the writer context before Close discards a partial object
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", key, err)
	}

	s.logger.Debug("Uploaded object", zap.String("key", key))
	return nil
}

// Get opens the object for reading
func (s *BucketStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("open reader for %s: %w", key, err)
	}
	return r, nil
}

// Exists checks if an object exists in the bucket
func (s *BucketStorage) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	return s.bucket.Exists(ctx, key)
}

// Delete removes the object under key
func (s *BucketStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Close releases the bucket connection
func (s *BucketStorage) Close() error {
	if s.bucket != nil {
		return s.bucket.Close()
	}
	return nil
}
