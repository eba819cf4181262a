package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncJob(t *testing.T, opID string, startedAt time.Time) *bulk.SyncJob {
	t.Helper()
	job, err := bulk.NewSyncJob(bulk.SyncKindProducts, opID, 2*time.Hour, startedAt)
	require.NoError(t, err)
	return job
}

func TestGormSyncJobRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSyncJobRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	job := newTestSyncJob(t, "gid://shopify/BulkOperation/100", start)
	require.NoError(t, repo.Save(ctx, job))

	require.NoError(t, job.RecordPoll("RUNNING", 250, start.Add(time.Minute)))
	require.NoError(t, repo.Save(ctx, job))

	summary := bulk.SyncSummary{Products: 10, Variants: 31, VendorsCreated: 2, SkippedProducts: 1}
	require.NoError(t, job.Complete("https://storage.example/result.jsonl", "bulk/100.jsonl", summary, start.Add(3*time.Minute)))
	require.NoError(t, repo.Save(ctx, job))

	got, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusCompleted, got.Status)
	assert.Equal(t, 1, got.PollCount)
	assert.Equal(t, int64(250), got.ObjectCount)
	assert.Equal(t, "bulk/100.jsonl", got.ArchiveKey)
	require.NotNil(t, got.Summary)
	assert.Equal(t, summary, *got.Summary)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(start.Add(3*time.Minute)))

	var count int64
	require.NoError(t, db.Table("bulk_sync_jobs").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormSyncJobRepository_FindActive(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSyncJobRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	later := newTestSyncJob(t, "gid://shopify/BulkOperation/2", start.Add(time.Hour))
	earlier := newTestSyncJob(t, "gid://shopify/BulkOperation/1", start)
	require.NoError(t, earlier.RecordPoll("RUNNING", 0, start.Add(time.Minute)))
	done := newTestSyncJob(t, "gid://shopify/BulkOperation/3", start)
	require.NoError(t, done.Fail("ACCESS_DENIED", start.Add(time.Minute)))

	for _, j := range []*bulk.SyncJob{later, earlier, done} {
		require.NoError(t, repo.Save(ctx, j))
	}

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, earlier.ID, active[0].ID)
	assert.Equal(t, bulk.JobStatusPolling, active[0].Status)
	assert.Equal(t, later.ID, active[1].ID)
}

func TestGormSyncJobRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSyncJobRepository(db)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := range 3 {
		job := newTestSyncJob(t, "gid://shopify/BulkOperation/"+uuid.NewString(), start.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Save(ctx, job))
	}

	jobs, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].StartedAt.After(jobs[1].StartedAt), "newest first by default")

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
