package integration

import (
	"context"
	"io"
	"time"
)

// BulkOperationStatus is the remote status of a bulk operation
type BulkOperationStatus string

const (
	BulkOperationCreated   BulkOperationStatus = "CREATED"
	BulkOperationRunning   BulkOperationStatus = "RUNNING"
	BulkOperationCompleted BulkOperationStatus = "COMPLETED"
	BulkOperationCanceling BulkOperationStatus = "CANCELING"
	BulkOperationCanceled  BulkOperationStatus = "CANCELED"
	BulkOperationFailed    BulkOperationStatus = "FAILED"
	BulkOperationExpired   BulkOperationStatus = "EXPIRED"
)

// IsValid returns true if the status is a known remote status
func (s BulkOperationStatus) IsValid() bool {
	switch s {
	case BulkOperationCreated, BulkOperationRunning, BulkOperationCompleted,
		BulkOperationCanceling, BulkOperationCanceled, BulkOperationFailed, BulkOperationExpired:
		return true
	}
	return false
}

// IsPending returns true while the remote side is still working
func (s BulkOperationStatus) IsPending() bool {
	return s == BulkOperationCreated || s == BulkOperationRunning
}

// IsFailure returns true for terminal statuses without a usable result
func (s BulkOperationStatus) IsFailure() bool {
	switch s {
	case BulkOperationCanceling, BulkOperationCanceled, BulkOperationFailed, BulkOperationExpired:
		return true
	}
	return false
}

// String returns the string representation
func (s BulkOperationStatus) String() string {
	return string(s)
}

// BulkOperationReport is a point-in-time snapshot of a remote bulk operation
type BulkOperationReport struct {
	ID             string              `json:"id"`
	Status         BulkOperationStatus `json:"status"`
	ErrorCode      string              `json:"errorCode,omitempty"`
	CreatedAt      *time.Time          `json:"createdAt,omitempty"`
	CompletedAt    *time.Time          `json:"completedAt,omitempty"`
	ObjectCount    int64               `json:"objectCount,string"`
	FileSize       int64               `json:"fileSize,string"`
	URL            string              `json:"url,omitempty"`
	PartialDataURL string              `json:"partialDataUrl,omitempty"`
}

// BulkOperationGateway starts and observes server-side bulk queries
type BulkOperationGateway interface {
	// Start submits the bulk query and returns the opaque operation id
	Start(ctx context.Context, query string) (string, error)
	// Status returns the current snapshot of the operation
	Status(ctx context.Context, operationID string) (*BulkOperationReport, error)
	// Poll returns the result URL once completed, "" while pending, and a
	// *BulkOperationError for failing terminal statuses
	Poll(ctx context.Context, operationID string) (string, error)
	// Download streams the result file
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
