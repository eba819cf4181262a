package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	csvimport "github.com/nemean-dev/cdl-admin/internal/infrastructure/import"
	"go.uber.org/zap"
)

// Content types written by Service
const (
	ContentTypeText  = "text/plain; charset=utf-8"
	ContentTypeJSON  = "application/json"
	ContentTypeCSV   = "text/csv; charset=utf-8"
	ContentTypeJSONL = "application/jsonl"
	ContentTypeZstd  = "application/zstd"
)

// Service adds text, JSON and CSV conveniences over a BlobStore
type Service struct {
	store  BlobStore
	logger *zap.Logger
}

// NewService creates a storage service
func NewService(store BlobStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Store returns the underlying blob store
func (s *Service) Store() BlobStore {
	return s.store
}

// UploadText stores text under key
func (s *Service) UploadText(ctx context.Context, key, text string) error {
	return s.store.Put(ctx, key, strings.NewReader(text), ContentTypeText)
}

// DownloadText reads the object under key as text. It returns
// ErrObjectNotFound if nothing is stored there.
func (s *Service) DownloadText(ctx context.Context, key string) (string, error) {
	r, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}
	return string(data), nil
}

// UploadJSON stores v encoded as indented JSON
func (s *Service) UploadJSON(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.store.Put(ctx, key, bytes.NewReader(data), ContentTypeJSON)
}

// UploadCSV stores records as a CSV sheet with the given header
func (s *Service) UploadCSV(ctx context.Context, key string, header []string, records []map[string]string) error {
	var buf bytes.Buffer
	if err := csvimport.WriteRecords(&buf, header, records); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, &buf, ContentTypeCSV); err != nil {
		return err
	}
	s.logger.Info("Uploaded CSV",
		zap.String("key", key),
		zap.Int("rows", len(records)),
	)
	return nil
}

// DownloadCSV reads the sheet under key, skipping blank rows. Header names
// are folded to lower case.
func (s *Service) DownloadCSV(ctx context.Context, key string, required ...string) ([]*csvimport.Row, error) {
	r, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	parser, err := csvimport.NewCSVParser(r,
		csvimport.WithLowercaseHeaders(),
		csvimport.WithRequiredHeaders(required...),
	)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return parser.ReadAllRows()
}
