package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/dto"
)

func newTestJob(t *testing.T) *bulk.SyncJob {
	t.Helper()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job, err := bulk.NewSyncJob(bulk.SyncKindProducts, "gid://shopify/BulkOperation/77", 2*time.Hour, started)
	require.NoError(t, err)
	return job
}

func TestBulkSyncHandler_Trigger(t *testing.T) {
	svc := new(MockBulkSyncService)
	job := newTestJob(t)
	svc.On("Trigger", mock.Anything).Return(job, nil)

	engine := newEngine(NewBulkSyncHandler(svc).Routes())
	w, env := doRequest(t, engine, http.MethodPost, "/api/v1/bulk-syncs", nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, env.Success)

	var got dto.SyncJobResponse
	decodeData(t, env, &got)
	assert.Equal(t, job.ID.String(), got.ID)
	assert.Equal(t, "started", got.Status)
	assert.Equal(t, "gid://shopify/BulkOperation/77", got.OperationID)
	assert.True(t, job.Deadline.Equal(got.Deadline))
	svc.AssertExpectations(t)
}

func TestBulkSyncHandler_Trigger_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"throttled", integration.ErrRateLimited, http.StatusTooManyRequests},
		{"bulk already running", &integration.UserErrorsError{
			Mutation: "bulkOperationRunQuery",
			Errors:   []integration.UserError{{Message: "A bulk query operation for this app and shop is already in progress"}},
		}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBulkSyncService)
			svc.On("Trigger", mock.Anything).Return(nil, tt.err)

			w, env := doRequest(t, newEngine(NewBulkSyncHandler(svc).Routes()), http.MethodPost, "/api/v1/bulk-syncs", nil)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestBulkSyncHandler_Get(t *testing.T) {
	job := newTestJob(t)
	require.NoError(t, job.Complete("https://storage.example/result.jsonl", "bulk-syncs/result.jsonl.gz",
		bulk.SyncSummary{Products: 120, Variants: 340, VendorsCreated: 4}, job.StartedAt.Add(3*time.Minute)))

	t.Run("found", func(t *testing.T) {
		svc := new(MockBulkSyncService)
		svc.On("Get", mock.Anything, job.ID).Return(job, nil)

		w, env := doRequest(t, newEngine(NewBulkSyncHandler(svc).Routes()), http.MethodGet, "/api/v1/bulk-syncs/"+job.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got dto.SyncJobResponse
		decodeData(t, env, &got)
		assert.Equal(t, "completed", got.Status)
		require.NotNil(t, got.Summary)
		assert.Equal(t, 340, got.Summary.Variants)
		assert.Equal(t, "bulk-syncs/result.jsonl.gz", got.ArchiveKey)
		assert.NotContains(t, string(env.Data), "storage.example")
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockBulkSyncService)
		id := uuid.New()
		svc.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w, env := doRequest(t, newEngine(NewBulkSyncHandler(svc).Routes()), http.MethodGet, "/api/v1/bulk-syncs/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := new(MockBulkSyncService)

		w, env := doRequest(t, newEngine(NewBulkSyncHandler(svc).Routes()), http.MethodGet, "/api/v1/bulk-syncs/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestBulkSyncHandler_List(t *testing.T) {
	svc := new(MockBulkSyncService)
	jobs := []*bulk.SyncJob{newTestJob(t), newTestJob(t)}
	svc.On("List", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 1 && f.OrderBy == "started_at" && f.OrderDir == "desc"
	})).Return(jobs[:1], int64(2), nil)

	w, env := doRequest(t, newEngine(NewBulkSyncHandler(svc).Routes()), http.MethodGet, "/api/v1/bulk-syncs?page=2&page_size=1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(2), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)

	var got []dto.SyncJobResponse
	decodeData(t, env, &got)
	assert.Len(t, got, 1)
	svc.AssertExpectations(t)
}

func TestBulkSyncHandler_List_InvalidQuery(t *testing.T) {
	svc := new(MockBulkSyncService)

	w, env := doRequest(t, newEngine(NewBulkSyncHandler(svc).Routes()), http.MethodGet, "/api/v1/bulk-syncs?order_dir=sideways", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "order_dir", env.Error.Details[0].Field)
}
