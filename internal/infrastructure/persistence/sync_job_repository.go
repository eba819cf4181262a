package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var _ bulk.SyncJobRepository = (*GormSyncJobRepository)(nil)

var activeJobStatuses = []bulk.JobStatus{bulk.JobStatusStarted, bulk.JobStatusPolling}

// GormSyncJobRepository implements bulk.SyncJobRepository using GORM
type GormSyncJobRepository struct {
	db *gorm.DB
}

// NewGormSyncJobRepository creates a new GormSyncJobRepository
func NewGormSyncJobRepository(db *gorm.DB) *GormSyncJobRepository {
	return &GormSyncJobRepository{db: db}
}

// FindByID finds a job by ID
func (r *GormSyncJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.SyncJob, error) {
	var model models.SyncJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns jobs, newest first unless the filter orders otherwise
func (r *GormSyncJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*bulk.SyncJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SyncJobModel{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SyncJobModel
	if err := query.
		Order(syncJobSort.clause(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(pageSize(filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return toSyncJobs(rows), total, nil
}

// FindActive finds all non-terminal jobs, oldest first
func (r *GormSyncJobRepository) FindActive(ctx context.Context) ([]*bulk.SyncJob, error) {
	var rows []models.SyncJobModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", activeJobStatuses).
		Order("started_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSyncJobs(rows), nil
}

// Save creates or updates a job
func (r *GormSyncJobRepository) Save(ctx context.Context, job *bulk.SyncJob) error {
	model, err := models.SyncJobModelFromDomain(job)
	if err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

func toSyncJobs(rows []models.SyncJobModel) []*bulk.SyncJob {
	jobs := make([]*bulk.SyncJob, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].ToDomain())
	}
	return jobs
}
