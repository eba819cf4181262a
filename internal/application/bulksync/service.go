// Package bulksync drives product bulk exports from trigger to reconciliation.
package bulksync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/application/reconciliation"
	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/ecommerce"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/scheduler"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/storage"
)

// Ensure Service can drive the background worker
var _ scheduler.JobAdvancer = (*Service)(nil)

// Defaults for Config
const (
	DefaultMaxDuration     = 2 * time.Hour
	DefaultArchiveKey      = "jsonl/" + JobIDPlaceholder + ".jsonl"
	DefaultVendorReportKey = "csv/vendors.csv"
	contentTypeJSONL       = "application/jsonl"
)

// JobIDPlaceholder in an archive key is replaced by the job id
const JobIDPlaceholder = "{job_id}"

// Submitter queues a job for background polling
type Submitter interface {
	Submit(jobID uuid.UUID) error
}

// Reconciler merges exported products into canonical vendors
type Reconciler interface {
	Reconcile(ctx context.Context, products []catalog.ExportedProduct) (*reconciliation.Result, error)
	VendorReport(ctx context.Context, res *reconciliation.Result) ([]map[string]string, error)
}

// Archiver stores raw exports and reads them back
type Archiver interface {
	Write(ctx context.Context, key, contentType string, src io.Reader) (*storage.ArchiveResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ReportUploader writes CSV reports to storage
type ReportUploader interface {
	UploadCSV(ctx context.Context, key string, header []string, records []map[string]string) error
}

// Metrics receives job measurements
type Metrics interface {
	RecordBulkPoll(ctx context.Context, remoteStatus string)
	RecordSyncFinished(ctx context.Context, status string, d time.Duration)
}

// Config holds sync settings
type Config struct {
	MaxDuration time.Duration
	// ArchiveKey is the key pattern of raw exports, one object per job
	ArchiveKey      string
	VendorReportKey string
}

// ArchiveKeyFor returns the archive key of one job. A pattern without
// JobIDPlaceholder gets the id appended to its base name.
func ArchiveKeyFor(pattern string, jobID uuid.UUID) string {
	id := jobID.String()
	if strings.Contains(pattern, JobIDPlaceholder) {
		return strings.ReplaceAll(pattern, JobIDPlaceholder, id)
	}
	ext := path.Ext(pattern)
	return strings.TrimSuffix(pattern, ext) + "-" + id + ext
}

func (c *Config) applyDefaults() {
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	if c.ArchiveKey == "" {
		c.ArchiveKey = DefaultArchiveKey
	}
	if c.VendorReportKey == "" {
		c.VendorReportKey = DefaultVendorReportKey
	}
}

// Service triggers bulk exports and advances them one step at a time
type Service struct {
	config     Config
	gateway    integration.BulkOperationGateway
	jobs       bulk.SyncJobRepository
	archive    Archiver
	reports    ReportUploader
	reconciler Reconciler
	submitter  Submitter
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// Option is a functional option for Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a bulk sync service
func NewService(
	config Config,
	gateway integration.BulkOperationGateway,
	jobs bulk.SyncJobRepository,
	archive Archiver,
	reports ReportUploader,
	reconciler Reconciler,
	opts ...Option,
) *Service {
	config.applyDefaults()
	s := &Service{
		config:     config,
		gateway:    gateway,
		jobs:       jobs,
		archive:    archive,
		reports:    reports,
		reconciler: reconciler,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSubmitter attaches the worker; the worker itself needs the service, so
// it is wired after construction
func (s *Service) SetSubmitter(submitter Submitter) {
	s.submitter = submitter
}

// Trigger starts a product export and returns the persisted job. Completion
// happens in the background.
func (s *Service) Trigger(ctx context.Context) (*bulk.SyncJob, error) {
	opID, err := s.gateway.Start(ctx, ecommerce.ShopifyProductsExportQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to start bulk export: %w", err)
	}

	job, err := bulk.NewSyncJob(bulk.SyncKindProducts, opID, s.config.MaxDuration, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save sync job: %w", err)
	}

	log := s.logger.With(zap.String("job_id", job.ID.String()), zap.String("operation_id", opID))
	log.Info("Bulk export triggered", zap.Time("deadline", job.Deadline))

	if s.submitter != nil {
		if err := s.submitter.Submit(job.ID); err != nil {
			// The job stays active and is picked up again on the next resume.
			log.Warn("Failed to queue sync job", zap.Error(err))
		}
	}
	return job, nil
}

// Get returns a job by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*bulk.SyncJob, error) {
	return s.jobs.FindByID(ctx, id)
}

// List returns jobs, newest first
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]*bulk.SyncJob, int64, error) {
	return s.jobs.FindAll(ctx, filter)
}

// ActiveJobs returns the ids of jobs still needing polling
func (s *Service) ActiveJobs(ctx context.Context) ([]uuid.UUID, error) {
	jobs, err := s.jobs.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

// Advance performs one step of a job. It returns true once the job is
// terminal. An error leaves the job active for the next attempt.
func (s *Service) Advance(ctx context.Context, jobID uuid.UUID) (bool, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return false, err
	}
	if !job.IsActive() {
		return true, nil
	}

	log := s.logger.With(zap.String("job_id", job.ID.String()), zap.String("operation_id", job.OperationID))
	now := s.now()

	if job.IsExpired(now) {
		if err := job.Expire(now); err != nil {
			return false, err
		}
		log.Warn("Bulk export exceeded max duration", zap.Duration("max_duration", job.Deadline.Sub(job.StartedAt)))
		return s.finish(ctx, job)
	}

	report, err := s.gateway.Status(ctx, job.OperationID)
	if err != nil {
		if errors.Is(err, ecommerce.ErrShopifyBulkOperationNotFound) {
			if ferr := job.Fail(err.Error(), now); ferr != nil {
				return false, ferr
			}
			log.Error("Bulk operation no longer exists", zap.Error(err))
			return s.finish(ctx, job)
		}
		return false, fmt.Errorf("failed to poll bulk operation: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordBulkPoll(ctx, report.Status.String())
	}

	switch {
	case report.Status.IsPending():
		if err := job.RecordPoll(report.Status.String(), report.ObjectCount, now); err != nil {
			return false, err
		}
		log.Debug("Bulk export still running",
			zap.String("status", report.Status.String()),
			zap.Int64("object_count", report.ObjectCount),
		)
		if err := s.jobs.Save(ctx, job); err != nil {
			return false, err
		}
		return false, nil

	case report.Status == integration.BulkOperationCompleted:
		return s.complete(ctx, job, report, log)

	default:
		opErr := &integration.BulkOperationError{
			OperationID: report.ID,
			Status:      report.Status,
			ErrorCode:   report.ErrorCode,
		}
		if err := job.Fail(opErr.Error(), now); err != nil {
			return false, err
		}
		log.Error("Bulk export failed",
			zap.String("status", report.Status.String()),
			zap.String("error_code", report.ErrorCode),
		)
		return s.finish(ctx, job)
	}
}

// complete archives, parses and reconciles a finished export
func (s *Service) complete(ctx context.Context, job *bulk.SyncJob, report *integration.BulkOperationReport, log *zap.Logger) (bool, error) {
	if report.URL == "" {
		// An export that matched nothing has no result file.
		log.Info("Bulk export completed without a result file", zap.Int64("object_count", report.ObjectCount))
		if err := job.Complete("", "", bulk.SyncSummary{}, s.now()); err != nil {
			return false, err
		}
		return s.finish(ctx, job)
	}

	archived, err := s.download(ctx, report.URL, ArchiveKeyFor(s.config.ArchiveKey, job.ID))
	if err != nil {
		return false, err
	}
	log.Info("Bulk export archived",
		zap.String("key", archived.Key),
		zap.String("compressed_key", archived.CompressedKey),
		zap.Int64("bytes", archived.Bytes),
	)

	parsed, err := s.parseArchive(ctx, archived.Key)
	if err != nil {
		if errors.Is(err, ErrMalformedExport) {
			if ferr := job.Fail(err.Error(), s.now()); ferr != nil {
				return false, ferr
			}
			log.Error("Bulk export is not valid JSONL", zap.Error(err))
			return s.finish(ctx, job)
		}
		return false, err
	}
	if parsed.Orphans > 0 {
		log.Warn("Bulk export had records without a preceding parent", zap.Int("orphans", parsed.Orphans))
	}

	res, err := s.reconciler.Reconcile(ctx, parsed.Products)
	if err != nil {
		return false, fmt.Errorf("reconciliation failed: %w", err)
	}

	rows, err := s.reconciler.VendorReport(ctx, res)
	if err != nil {
		return false, fmt.Errorf("failed to build vendor report: %w", err)
	}
	if err := s.reports.UploadCSV(ctx, s.config.VendorReportKey, reconciliation.VendorReportHeader, rows); err != nil {
		return false, fmt.Errorf("failed to upload vendor report: %w", err)
	}

	if err := job.Complete(report.URL, archived.Key, res.Summary(), s.now()); err != nil {
		return false, err
	}
	return s.finish(ctx, job)
}

func (s *Service) download(ctx context.Context, url, key string) (*storage.ArchiveResult, error) {
	body, err := s.gateway.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download bulk result: %w", err)
	}
	defer body.Close()

	archived, err := s.archive.Write(ctx, key, contentTypeJSONL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to archive bulk result: %w", err)
	}
	return archived, nil
}

func (s *Service) parseArchive(ctx context.Context, key string) (*ParseResult, error) {
	r, err := s.archive.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open archived bulk result: %w", err)
	}
	defer r.Close()

	return Parse(ctx, r)
}

// finish persists a terminal job
func (s *Service) finish(ctx context.Context, job *bulk.SyncJob) (bool, error) {
	if err := s.jobs.Save(ctx, job); err != nil {
		return false, fmt.Errorf("failed to save sync job: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordSyncFinished(ctx, string(job.Status), job.Duration(s.now()))
	}

	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("status", string(job.Status)),
		zap.Int("polls", job.PollCount),
		zap.Duration("duration", job.Duration(s.now())),
	}
	if job.Summary != nil {
		fields = append(fields,
			zap.Int("products", job.Summary.Products),
			zap.Int("vendors_created", job.Summary.VendorsCreated),
			zap.Int("vendors_updated", job.Summary.VendorsUpdated),
		)
	}
	s.logger.Info("Bulk sync job finished", fields...)
	return true, nil
}
