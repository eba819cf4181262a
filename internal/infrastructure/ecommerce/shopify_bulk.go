package ecommerce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// Ensure ShopifyBulkGateway implements BulkOperationGateway
var _ integration.BulkOperationGateway = (*ShopifyBulkGateway)(nil)

// Errors for bulk operations
var (
	ErrShopifyBulkOperationNotFound = errors.New("shopify: bulk operation not found")
	ErrShopifyBulkResultEmpty       = errors.New("shopify: completed bulk operation has no result file")
)

// ShopifyBulkGateway starts, polls and downloads bulk operations
type ShopifyBulkGateway struct {
	executor       integration.QueryExecutor
	downloadClient *http.Client
	logger         *zap.Logger
}

// ShopifyBulkGatewayOption is a functional option for ShopifyBulkGateway
type ShopifyBulkGatewayOption func(*ShopifyBulkGateway)

// WithBulkLogger sets the logger
func WithBulkLogger(logger *zap.Logger) ShopifyBulkGatewayOption {
	return func(g *ShopifyBulkGateway) {
		g.logger = logger
	}
}

// WithBulkDownloadClient sets the HTTP client used for result downloads
func WithBulkDownloadClient(client *http.Client) ShopifyBulkGatewayOption {
	return func(g *ShopifyBulkGateway) {
		g.downloadClient = client
	}
}

// NewShopifyBulkGateway creates a bulk gateway on top of an executor
func NewShopifyBulkGateway(executor integration.QueryExecutor, opts ...ShopifyBulkGatewayOption) *ShopifyBulkGateway {
	g := &ShopifyBulkGateway{
		executor: executor,
		// No overall timeout: result files can take minutes to stream.
		downloadClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start submits a bulk query and returns the operation id
func (g *ShopifyBulkGateway) Start(ctx context.Context, query string) (string, error) {
	resp, err := g.executor.Execute(ctx, integration.Request{
		Query:     shopifyBulkOperationRunQuery,
		Variables: map[string]any{"query": query},
	})
	if err != nil {
		return "", err
	}
	if err := CheckUserErrors(resp, shopifyFieldBulkOperationRunQuery); err != nil {
		g.logger.Warn("Bulk operation rejected", zap.Error(err))
		return "", err
	}

	var payload shopifyBulkRunPayload
	if err := resp.Decode(&payload); err != nil {
		return "", err
	}
	op := payload.BulkOperationRunQuery.BulkOperation
	if op == nil || op.ID == "" {
		return "", fmt.Errorf("%w: bulkOperationRunQuery returned no operation", integration.ErrInvalidPayload)
	}

	g.logger.Info("Started bulk operation",
		zap.String("operation_id", op.ID),
		zap.String("status", op.Status),
	)
	return op.ID, nil
}

// Status returns the current snapshot of an operation
func (g *ShopifyBulkGateway) Status(ctx context.Context, operationID string) (*integration.BulkOperationReport, error) {
	if operationID == "" {
		return nil, fmt.Errorf("%w: empty operation id", ErrShopifyBulkOperationNotFound)
	}

	resp, err := g.executor.Execute(ctx, integration.Request{
		Query:     shopifyBulkOperationStatusQuery,
		Variables: map[string]any{"id": operationID},
	})
	if err != nil {
		return nil, err
	}

	var payload shopifyBulkStatusPayload
	if err := resp.Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Node == nil || payload.Node.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrShopifyBulkOperationNotFound, operationID)
	}
	if !payload.Node.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown bulk operation status %q", integration.ErrInvalidPayload, payload.Node.Status)
	}
	return payload.Node, nil
}

// Poll returns the result URL once the operation completed, "" while it is
// CREATED or RUNNING, and *integration.BulkOperationError once it failed
func (g *ShopifyBulkGateway) Poll(ctx context.Context, operationID string) (string, error) {
	report, err := g.Status(ctx, operationID)
	if err != nil {
		return "", err
	}
	return resultURL(report)
}

// resultURL applies the poll contract to a snapshot
func resultURL(report *integration.BulkOperationReport) (string, error) {
	switch {
	case report.Status == integration.BulkOperationCompleted:
		if report.URL == "" {
			return "", fmt.Errorf("%w: %s", ErrShopifyBulkResultEmpty, report.ID)
		}
		return report.URL, nil
	case report.Status.IsPending():
		return "", nil
	default:
		return "", &integration.BulkOperationError{
			OperationID: report.ID,
			Status:      report.Status,
			ErrorCode:   report.ErrorCode,
		}
	}
}

// Download streams a result file. The caller closes the reader.
func (g *ShopifyBulkGateway) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create download request: %w", err)
	}

	resp, err := g.downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrTransientNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: download returned HTTP %d", integration.ErrClientRequest, resp.StatusCode)
	}

	g.logger.Info("Downloading bulk operation result", zap.Int64("content_length", resp.ContentLength))
	return resp.Body, nil
}
