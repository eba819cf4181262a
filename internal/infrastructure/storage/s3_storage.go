package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	infraconfig "github.com/nemean-dev/cdl-admin/internal/infrastructure/config"
)

var _ BlobStore = (*S3ObjectStorage)(nil)

// S3ObjectStorage implements BlobStore on any S3-compatible service
// (AWS S3, MinIO, RustFS).
type S3ObjectStorage struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3ObjectStorageOption is a functional option for configuring S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

// WithLogger sets a custom logger for S3ObjectStorage
func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// NewS3ObjectStorage creates a new S3ObjectStorage from configuration
func NewS3ObjectStorage(cfg *infraconfig.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint, err := s3Endpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	storage := &S3ObjectStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}

	return storage, nil
}

// s3Endpoint returns the custom endpoint with a scheme, or "" for AWS itself
func s3Endpoint(raw string, useSSL bool) (string, error) {
	if raw == "" {
		return "", nil
	}
	endpoint := raw
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket on first start. A bucket that already
// exists, or that another writer creates concurrently, is fine.
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isS3NotFound(err) {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3ObjectStorage) object(key string) (bucket, objectKey *string, err error) {
	if key == "" {
		return nil, nil, ErrKeyRequired
	}
	return aws.String(s.bucket), aws.String(key), nil
}

// Put uploads r under key. The SDK signs the payload length, so a reader
// that cannot seek is buffered first.
func (s *S3ObjectStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	bucket, objKey, err := s.object(key)
	if err != nil {
		return err
	}
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("buffer %s: %w", key, err)
		}
		body = bytes.NewReader(data)
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      bucket,
		Key:         objKey,
		Body:        body,
		ContentType: aws.String(contentType),
	}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Debug("Object stored", zap.String("bucket", s.bucket), zap.String("key", key))
	return nil
}

// Get opens key for reading; the caller closes the body
func (s *S3ObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket, objKey, err := s.object(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: objKey})
	switch {
	case err == nil:
		return out.Body, nil
	case isS3NotFound(err):
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	default:
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
}

// Exists reports whether key is present
func (s *S3ObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	bucket, objKey, err := s.object(key)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: bucket, Key: objKey})
	switch {
	case err == nil:
		return true, nil
	case isS3NotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("head %s: %w", key, err)
	}
}

// Delete removes key. S3 reports success for a missing key.
func (s *S3ObjectStorage) Delete(ctx context.Context, key string) error {
	bucket, objKey, err := s.object(key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: objKey}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources to release
func (s *S3ObjectStorage) Close() error {
	return nil
}

// Bucket returns the bucket name
func (s *S3ObjectStorage) Bucket() string {
	return s.bucket
}

// isS3NotFound matches typed errors and, for S3-compatible services that
// return untyped errors, the API error code. HEAD responses carry no body,
// so their code is the bare "NotFound".
func isS3NotFound(err error) bool {
	var (
		notFound *types.NotFound
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
		apiErr   smithy.APIError
	)
	if errors.As(err, &notFound) || errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return true
	}
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
