package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nemean-dev/cdl-admin/internal/infrastructure/config"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config creates storage", func(t *testing.T) {
		storage, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:       "cdl-archive",
			AccessKey:    "test-key",
			SecretKey:    "test-secret",
			Endpoint:     "localhost:9000",
			UsePathStyle: true,
		}, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "cdl-archive", storage.Bucket())
		assert.NoError(t, storage.Close())
	})
}

func TestS3Endpoint(t *testing.T) {
	tests := []struct {
		raw    string
		useSSL bool
		want   string
	}{
		{"", false, ""},
		{"localhost:9000", false, "http://localhost:9000"},
		{"minio.internal:9000", true, "https://minio.internal:9000"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := s3Endpoint(tt.raw, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NoSuchKey{}))
	assert.True(t, isS3NotFound(&types.NotFound{}))
	assert.True(t, isS3NotFound(&types.NoSuchBucket{}))
	assert.True(t, isS3NotFound(fmt.Errorf("head: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("access denied")))
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	storage, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket: "b", AccessKey: "k", SecretKey: "s", Endpoint: "localhost:9000",
	})
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, storage.Put(ctx, "", strings.NewReader("x"), ContentTypeText), ErrKeyRequired)
	_, err = storage.Get(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = storage.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	assert.ErrorIs(t, storage.Delete(ctx, ""), ErrKeyRequired)
}

// newIntegrationStorage needs an S3-compatible server on localhost:9000
func newIntegrationStorage(t *testing.T) *S3ObjectStorage {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=1 and run MinIO on localhost:9000 to enable.")
	}

	storage, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "cdl-integration",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBucket(context.Background()))
	return storage
}

func TestIntegration_S3RoundTrip(t *testing.T) {
	storage := newIntegrationStorage(t)
	svc := NewService(storage, nil)
	ctx := context.Background()
	key := "integration-test/round-trip.txt"

	require.NoError(t, svc.UploadText(ctx, key, "hola"))
	text, err := svc.DownloadText(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hola", text)

	require.NoError(t, storage.Delete(ctx, key))
	_, err = storage.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
