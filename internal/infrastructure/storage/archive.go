package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CompressedSuffix is appended to a key for its zstd copy
const CompressedSuffix = ".zst"

// ArchiveResult describes what Archive.Write stored
type ArchiveResult struct {
	Key           string `json:"key"`
	CompressedKey string `json:"compressed_key"`
	Bytes         int64  `json:"bytes"`
}

// Archive keeps raw payloads for audit and replay. Each payload is stored
// as-is under its key and zstd-compressed under key + ".zst", both written
// from a single pass over the source.
type Archive struct {
	store  BlobStore
	logger *zap.Logger
}

// NewArchive creates an archive over store
func NewArchive(store BlobStore, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{store: store, logger: logger}
}

// Write streams src into both copies
func (a *Archive) Write(ctx context.Context, key, contentType string, src io.Reader) (*ArchiveResult, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	compressedKey := key + CompressedSuffix

	rawR, rawW := io.Pipe()
	zR, zW := io.Pipe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.store.Put(gctx, key, rawR, contentType)
		rawR.CloseWithError(orClosed(err))
		return err
	})
	g.Go(func() error {
		err := a.store.Put(gctx, compressedKey, zR, ContentTypeZstd)
		zR.CloseWithError(orClosed(err))
		return err
	})

	var written int64
	g.Go(func() error {
		enc, err := zstd.NewWriter(zW, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			rawW.CloseWithError(err)
			zW.CloseWithError(err)
			return fmt.Errorf("create zstd encoder: %w", err)
		}

		written, err = io.Copy(io.MultiWriter(rawW, enc), src)
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
		rawW.CloseWithError(err)
		zW.CloseWithError(err)
		if err != nil {
			return fmt.Errorf("archive %s: %w", key, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Info("Archived payload",
		zap.String("key", key),
		zap.String("compressed_key", compressedKey),
		zap.Int64("bytes", written),
	)
	return &ArchiveResult{Key: key, CompressedKey: compressedKey, Bytes: written}, nil
}

// Open reads an archived payload. It falls back to decompressing the zstd
// copy when the raw object is gone.
func (a *Archive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := a.store.Get(ctx, key)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrObjectNotFound) {
		return nil, err
	}

	zr, err := a.store.Get(ctx, key+CompressedSuffix)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(zr, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = zr.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	a.logger.Warn("Raw archive missing, reading compressed copy", zap.String("key", key))
	return &zstdReadCloser{dec: dec, src: zr}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	src io.ReadCloser
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.src.Close()
}

// orClosed turns a clean Put into a closed pipe so a writer still holding
// data does not block forever
func orClosed(err error) error {
	if err == nil {
		return io.ErrClosedPipe
	}
	return err
}
