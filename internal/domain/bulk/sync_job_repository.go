package bulk

import (
	"context"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// SyncJobRepository defines the interface for bulk sync job persistence
type SyncJobRepository interface {
	// FindByID finds a job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SyncJob, error)

	// FindAll returns jobs, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]*SyncJob, int64, error)

	// FindActive finds all non-terminal jobs (for resuming after restart)
	FindActive(ctx context.Context) ([]*SyncJob, error)

	// Save saves a job (create or update)
	Save(ctx context.Context, job *SyncJob) error
}
