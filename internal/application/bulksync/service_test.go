package bulksync

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gocloud.dev/blob/memblob"
	"gorm.io/driver/sqlite"

	"github.com/nemean-dev/cdl-admin/internal/application/reconciliation"
	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/cache"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/ecommerce"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/persistence"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/storage"
)

const testOperationID = "gid://shopify/BulkOperation/7001"

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Start(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Status(ctx context.Context, id string) (*integration.BulkOperationReport, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*integration.BulkOperationReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) Poll(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeSubmitter struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (f *fakeSubmitter) Submit(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingMetrics struct {
	mu       sync.Mutex
	polls    []string
	finished []string
}

func (r *recordingMetrics) RecordBulkPoll(_ context.Context, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls = append(r.polls, status)
}

func (r *recordingMetrics) RecordSyncFinished(_ context.Context, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, status)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	svc       *Service
	gateway   *mockGateway
	jobs      *persistence.GormSyncJobRepository
	vendors   *persistence.GormVendorRepository
	store     storage.BlobStore
	locker    *cache.InMemoryLocker
	submitter *fakeSubmitter
	clock     *fakeClock
	metrics   *recordingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := persistence.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db.DB))
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewBucketStorage(memblob.OpenBucket(nil))
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		gateway:   new(mockGateway),
		jobs:      persistence.NewGormSyncJobRepository(db.DB),
		vendors:   persistence.NewGormVendorRepository(db.DB),
		store:     store,
		locker:    cache.NewInMemoryLocker(),
		submitter: &fakeSubmitter{},
		clock:     &fakeClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
		metrics:   &recordingMetrics{},
	}

	engine := reconciliation.NewEngine(
		f.vendors,
		persistence.NewGormStateRepository(db.DB),
		persistence.NewGormTownRepository(db.DB),
		f.locker,
		reconciliation.WithLogger(logger),
	)

	f.svc = NewService(
		Config{MaxDuration: time.Hour},
		f.gateway,
		f.jobs,
		storage.NewArchive(store, logger),
		storage.NewService(store, logger),
		engine,
		WithLogger(logger),
		WithMetrics(f.metrics),
		WithClock(f.clock.Now),
	)
	f.svc.SetSubmitter(f.submitter)
	return f
}

// createJob persists a started job without going through the gateway
func (f *fixture) createJob(t *testing.T) *bulk.SyncJob {
	t.Helper()
	job, err := bulk.NewSyncJob(bulk.SyncKindProducts, testOperationID, time.Hour, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.jobs.Save(context.Background(), job))
	return job
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *bulk.SyncJob {
	t.Helper()
	job, err := f.jobs.FindByID(context.Background(), id)
	require.NoError(t, err)
	return job
}

const exportJSONL = `{"id":"gid://shopify/Product/1","title":"Jarrón","vendor":"Juan Pérez"}
{"namespace":"custom","key":"pueblo","value":"Tonalá","__parentId":"gid://shopify/Product/1"}
{"namespace":"custom","key":"estado","value":"Jalisco","__parentId":"gid://shopify/Product/1"}
{"id":"gid://shopify/ProductVariant/11","sku":"JAR-01","__parentId":"gid://shopify/Product/1"}
{"id":"gid://shopify/Product/2","title":"Plato","vendor":"  juan   perez"}
{"id":"gid://shopify/ProductVariant/21","sku":"PLA-01","__parentId":"gid://shopify/Product/2"}
{"id":"gid://shopify/ProductVariant/22","sku":"PLA-02","__parentId":"gid://shopify/Product/2"}
{"id":"gid://shopify/Product/3","title":"Rebozo","vendor":"Taller Ruiz"}
`

func completedReport(url string) *integration.BulkOperationReport {
	return &integration.BulkOperationReport{
		ID:          testOperationID,
		Status:      integration.BulkOperationCompleted,
		ObjectCount: 8,
		URL:         url,
	}
}

// ---------------------------------------------------------------------------
// Trigger
// ---------------------------------------------------------------------------

func TestService_Trigger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.gateway.On("Start", mock.Anything, ecommerce.ShopifyProductsExportQuery).Return(testOperationID, nil).Once()

	job, err := f.svc.Trigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, testOperationID, job.OperationID)
	assert.Equal(t, bulk.JobStatusStarted, job.Status)
	assert.Equal(t, f.clock.Now().Add(time.Hour), job.Deadline)
	assert.Equal(t, []uuid.UUID{job.ID}, f.submitter.ids)

	stored := f.reload(t, job.ID)
	assert.Equal(t, testOperationID, stored.OperationID)
	f.gateway.AssertExpectations(t)
}

func TestService_Trigger_StartFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.gateway.On("Start", mock.Anything, mock.Anything).
		Return("", &integration.UserErrorsError{
			Mutation: "bulkOperationRunQuery",
			Errors:   []integration.UserError{{Message: "A bulk query operation for this app and shop is already in progress"}},
		}).Once()

	_, err := f.svc.Trigger(ctx)
	assert.ErrorIs(t, err, integration.ErrDomainValidation)

	_, total, err := f.svc.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, f.submitter.ids)
}

func TestService_Trigger_QueueFullKeepsJob(t *testing.T) {
	f := newFixture(t)
	f.submitter.err = assert.AnError
	f.gateway.On("Start", mock.Anything, mock.Anything).Return(testOperationID, nil).Once()

	job, err := f.svc.Trigger(context.Background())
	require.NoError(t, err)

	ids, err := f.svc.ActiveJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{job.ID}, ids)
}

// ---------------------------------------------------------------------------
// Advance
// ---------------------------------------------------------------------------

func TestService_Advance_Pending(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)

	f.gateway.On("Status", mock.Anything, testOperationID).Return(&integration.BulkOperationReport{
		ID:          testOperationID,
		Status:      integration.BulkOperationRunning,
		ObjectCount: 1200,
	}, nil).Twice()

	for i := 0; i < 2; i++ {
		f.clock.Advance(5 * time.Second)
		done, err := f.svc.Advance(context.Background(), job.ID)
		require.NoError(t, err)
		assert.False(t, done)
	}

	stored := f.reload(t, job.ID)
	assert.Equal(t, bulk.JobStatusPolling, stored.Status)
	assert.Equal(t, "RUNNING", stored.RemoteStatus)
	assert.Equal(t, int64(1200), stored.ObjectCount)
	assert.Equal(t, 2, stored.PollCount)
	assert.Equal(t, []string{"RUNNING", "RUNNING"}, f.metrics.polls)
	f.gateway.AssertExpectations(t)
}

func TestService_Advance_Completed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t)
	url := "https://storage.example.com/bulk/7001.jsonl"

	f.gateway.On("Status", mock.Anything, testOperationID).Return(completedReport(url), nil).Once()
	f.gateway.On("Download", mock.Anything, url).Return(io.NopCloser(strings.NewReader(exportJSONL)), nil).Once()

	done, err := f.svc.Advance(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, done)

	stored := f.reload(t, job.ID)
	assert.Equal(t, bulk.JobStatusCompleted, stored.Status)
	assert.Equal(t, url, stored.ResultURL)
	archiveKey := "jsonl/" + job.ID.String() + ".jsonl"
	assert.Equal(t, archiveKey, stored.ArchiveKey)
	require.NotNil(t, stored.Summary)
	assert.Equal(t, 3, stored.Summary.Products)
	assert.Equal(t, 3, stored.Summary.Variants)
	assert.Equal(t, 2, stored.Summary.VendorsCreated)
	assert.Equal(t, 3, stored.Summary.SourceNamesAdded)

	vendor, err := f.vendors.FindByNormalizedKey(ctx, "juan perez")
	require.NoError(t, err)
	assert.Equal(t, 2, vendor.TotalProducts)
	assert.Equal(t, 3, vendor.TotalVariants)

	for _, key := range []string{archiveKey, archiveKey + storage.CompressedSuffix, DefaultVendorReportKey} {
		ok, err := f.store.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}

	rows, err := storage.NewService(f.store, nil).DownloadCSV(ctx, DefaultVendorReportKey, reconciliation.VendorReportHeader...)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "juan perez", rows[0].Get("normalized_key"))
	assert.Equal(t, "Tonalá", rows[0].Get("town"))
	assert.Equal(t, "Taller Ruiz", rows[1].Get("display_name"))

	assert.Equal(t, []string{"completed"}, f.metrics.finished)
	f.gateway.AssertExpectations(t)
}

func TestService_Advance_ArchivesEachJobSeparately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	url := "https://storage.example.com/bulk/7001.jsonl"

	f.gateway.On("Status", mock.Anything, testOperationID).Return(completedReport(url), nil).Twice()
	f.gateway.On("Download", mock.Anything, url).
		Return(io.NopCloser(strings.NewReader(exportJSONL)), nil).Once()
	f.gateway.On("Download", mock.Anything, url).
		Return(io.NopCloser(strings.NewReader(exportJSONL[:strings.Index(exportJSONL, "\n")+1])), nil).Once()

	first, second := f.createJob(t), f.createJob(t)
	for _, job := range []*bulk.SyncJob{first, second} {
		done, err := f.svc.Advance(ctx, job.ID)
		require.NoError(t, err)
		assert.True(t, done)
	}

	firstKey, secondKey := f.reload(t, first.ID).ArchiveKey, f.reload(t, second.ID).ArchiveKey
	assert.NotEqual(t, firstKey, secondKey)

	r, err := f.store.Get(ctx, firstKey)
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, exportJSONL, string(body), "a later job leaves the earlier archive intact")
	f.gateway.AssertExpectations(t)
}

func TestArchiveKeyFor(t *testing.T) {
	id := uuid.MustParse("0b6f0f3e-6a3a-4bb8-9f55-0d3c4f1e2a10")
	tests := []struct {
		pattern string
		want    string
	}{
		{DefaultArchiveKey, "jsonl/0b6f0f3e-6a3a-4bb8-9f55-0d3c4f1e2a10.jsonl"},
		{"exports/{job_id}/products.jsonl", "exports/0b6f0f3e-6a3a-4bb8-9f55-0d3c4f1e2a10/products.jsonl"},
		{"jsonl/products.jsonl", "jsonl/products-0b6f0f3e-6a3a-4bb8-9f55-0d3c4f1e2a10.jsonl"},
		{"products", "products-0b6f0f3e-6a3a-4bb8-9f55-0d3c4f1e2a10"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveKeyFor(tt.pattern, id))
		})
	}
}

func TestService_Advance_CompletedWithoutResult(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)

	f.gateway.On("Status", mock.Anything, testOperationID).Return(completedReport(""), nil).Once()

	done, err := f.svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, done)

	stored := f.reload(t, job.ID)
	assert.Equal(t, bulk.JobStatusCompleted, stored.Status)
	require.NotNil(t, stored.Summary)
	assert.Zero(t, stored.Summary.Products)
	f.gateway.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestService_Advance_RemoteFailure(t *testing.T) {
	for _, status := range []integration.BulkOperationStatus{
		integration.BulkOperationFailed,
		integration.BulkOperationCanceled,
		integration.BulkOperationExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			job := f.createJob(t)

			f.gateway.On("Status", mock.Anything, testOperationID).Return(&integration.BulkOperationReport{
				ID:        testOperationID,
				Status:    status,
				ErrorCode: "INTERNAL_SERVER_ERROR",
			}, nil).Once()

			done, err := f.svc.Advance(context.Background(), job.ID)
			require.NoError(t, err)
			assert.True(t, done)

			stored := f.reload(t, job.ID)
			assert.Equal(t, bulk.JobStatusFailed, stored.Status)
			assert.Contains(t, stored.ErrorMessage, "INTERNAL_SERVER_ERROR")
			assert.Contains(t, stored.ErrorMessage, string(status))
		})
	}
}

func TestService_Advance_Expired(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)
	f.clock.Advance(time.Hour + time.Second)

	done, err := f.svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, done)

	stored := f.reload(t, job.ID)
	assert.Equal(t, bulk.JobStatusExpired, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
	f.gateway.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"expired"}, f.metrics.finished)
}

func TestService_Advance_TerminalJob(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)
	require.NoError(t, job.Fail("boom", f.clock.Now()))
	require.NoError(t, f.jobs.Save(context.Background(), job))

	done, err := f.svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, done)
	f.gateway.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
}

func TestService_Advance_UnknownJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Advance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Advance_TransientPollErrorKeepsJobActive(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)

	f.gateway.On("Status", mock.Anything, testOperationID).
		Return(nil, &integration.QueryError{Class: integration.FailureRateLimited, Attempts: 5}).Once()

	done, err := f.svc.Advance(context.Background(), job.ID)
	assert.ErrorIs(t, err, integration.ErrRateLimited)
	assert.False(t, done)
	assert.True(t, f.reload(t, job.ID).IsActive())
}

func TestService_Advance_OperationNotFound(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)

	f.gateway.On("Status", mock.Anything, testOperationID).
		Return(nil, fmt.Errorf("%w: %s", ecommerce.ErrShopifyBulkOperationNotFound, testOperationID)).Once()

	done, err := f.svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, bulk.JobStatusFailed, f.reload(t, job.ID).Status)
}

func TestService_Advance_MalformedExportFailsJob(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)
	url := "https://storage.example.com/bulk/bad.jsonl"

	f.gateway.On("Status", mock.Anything, testOperationID).Return(completedReport(url), nil).Once()
	f.gateway.On("Download", mock.Anything, url).
		Return(io.NopCloser(strings.NewReader("{\"id\":\"P1\",\"vendor\":\"A\"}\n{broken\n")), nil).Once()

	done, err := f.svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, done)

	stored := f.reload(t, job.ID)
	assert.Equal(t, bulk.JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "line 2")
}

func TestService_Advance_DownloadErrorRetries(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t)
	url := "https://storage.example.com/bulk/7001.jsonl"

	f.gateway.On("Status", mock.Anything, testOperationID).Return(completedReport(url), nil).Twice()
	f.gateway.On("Download", mock.Anything, url).Return(nil, integration.ErrTransientNetwork).Once()
	f.gateway.On("Download", mock.Anything, url).Return(io.NopCloser(strings.NewReader(exportJSONL)), nil).Once()

	done, err := f.svc.Advance(context.Background(), job.ID)
	assert.ErrorIs(t, err, integration.ErrTransientNetwork)
	assert.False(t, done)

	done, err = f.svc.Advance(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, bulk.JobStatusCompleted, f.reload(t, job.ID).Status)
}

func TestService_Advance_ReconciliationInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.createJob(t)
	url := "https://storage.example.com/bulk/7001.jsonl"

	lease, err := f.locker.TryLock(ctx, reconciliation.LockKey, time.Minute)
	require.NoError(t, err)
	defer func() { _ = lease.Release(ctx) }()

	f.gateway.On("Status", mock.Anything, testOperationID).Return(completedReport(url), nil).Once()
	f.gateway.On("Download", mock.Anything, url).Return(io.NopCloser(strings.NewReader(exportJSONL)), nil).Once()

	done, err := f.svc.Advance(ctx, job.ID)
	assert.ErrorIs(t, err, integration.ErrReconciliationInProgress)
	assert.False(t, done)
	assert.True(t, f.reload(t, job.ID).IsActive())
}

func TestService_ActiveJobsAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.createJob(t)
	finished := f.createJob(t)
	require.NoError(t, finished.Complete("", "", bulk.SyncSummary{}, f.clock.Now()))
	require.NoError(t, f.jobs.Save(ctx, finished))

	ids, err := f.svc.ActiveJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{active.ID}, ids)

	got, err := f.svc.Get(ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, bulk.JobStatusCompleted, got.Status)

	jobs, total, err := f.svc.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, jobs, 2)
}
