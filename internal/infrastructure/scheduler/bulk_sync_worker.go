package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// JobAdvancer
// ---------------------------------------------------------------------------

// JobAdvancer moves persisted bulk sync jobs forward one poll at a time
type JobAdvancer interface {
	// Advance polls the job's remote operation once and returns true when the
	// job reached a terminal state. An error leaves the job for the next tick.
	Advance(ctx context.Context, jobID uuid.UUID) (bool, error)
	// ActiveJobs lists the ids of non-terminal jobs, oldest first
	ActiveJobs(ctx context.Context) ([]uuid.UUID, error)
}

// ---------------------------------------------------------------------------
// BulkSyncWorkerConfig
// ---------------------------------------------------------------------------

// BulkSyncWorkerConfig holds configuration for the bulk sync worker
type BulkSyncWorkerConfig struct {
	// Workers is the number of jobs polled concurrently
	Workers int
	// QueueSize bounds jobs waiting for a free worker
	QueueSize int
	// PollInterval is the wait between two polls of the same job
	PollInterval time.Duration
	// StepTimeout bounds a single Advance call, including download and reconcile
	StepTimeout time.Duration
}

// DefaultBulkSyncWorkerConfig returns default configuration
func DefaultBulkSyncWorkerConfig() BulkSyncWorkerConfig {
	return BulkSyncWorkerConfig{
		Workers:      2,
		QueueSize:    16,
		PollInterval: 5 * time.Second,
		StepTimeout:  30 * time.Minute,
	}
}

// Validate validates the configuration
func (c *BulkSyncWorkerConfig) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidWorkerConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidWorkerConfig)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidWorkerConfig)
	case c.StepTimeout <= 0:
		return fmt.Errorf("%w: step timeout must be positive", ErrInvalidWorkerConfig)
	}
	return nil
}

// ---------------------------------------------------------------------------
// BulkSyncWorker
// ---------------------------------------------------------------------------

// BulkSyncWorker polls bulk sync jobs in the background until each reaches a
// terminal state. Jobs are identified by id only; their state lives in the
// repository, so a restart resumes them through ActiveJobs.
type BulkSyncWorker struct {
	config   BulkSyncWorkerConfig
	advancer JobAdvancer
	logger   *zap.Logger

	jobs      chan uuid.UUID
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inflight  map[uuid.UUID]struct{}
}

// NewBulkSyncWorker creates a new bulk sync worker
func NewBulkSyncWorker(config BulkSyncWorkerConfig, advancer JobAdvancer, logger *zap.Logger) (*BulkSyncWorker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BulkSyncWorker{
		config:   config,
		advancer: advancer,
		logger:   logger,
		inflight: make(map[uuid.UUID]struct{}),
	}, nil
}

// Start starts the worker pool and resubmits every unfinished job
func (w *BulkSyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = true
	jobs := make(chan uuid.UUID, w.config.QueueSize)
	w.jobs = jobs
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for i := 0; i < w.config.Workers; i++ {
		w.wg.Add(1)
		go w.worker(ctx, jobs, i)
	}

	w.logger.Info("Bulk sync worker started",
		zap.Int("workers", w.config.Workers),
		zap.Duration("poll_interval", w.config.PollInterval),
	)

	w.resume(ctx)
	return nil
}

func (w *BulkSyncWorker) resume(ctx context.Context) {
	ids, err := w.advancer.ActiveJobs(ctx)
	if err != nil {
		w.logger.Error("Failed to load active bulk sync jobs", zap.Error(err))
		return
	}
	for _, id := range ids {
		if err := w.Submit(id); err != nil {
			w.logger.Warn("Failed to resume bulk sync job",
				zap.String("job_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		w.logger.Info("Resumed bulk sync job", zap.String("job_id", id.String()))
	}
}

// Stop cancels in-progress polls and waits for workers to exit
func (w *BulkSyncWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	close(w.jobs)
	clear(w.inflight)
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Bulk sync worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Bulk sync worker stop timed out")
		return ctx.Err()
	}
}

// Submit queues a job for polling. A job already queued or being polled is
// accepted without queueing it twice.
func (w *BulkSyncWorker) Submit(jobID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return ErrWorkerStopped
	}
	if _, ok := w.inflight[jobID]; ok {
		return nil
	}

	select {
	case w.jobs <- jobID:
		w.inflight[jobID] = struct{}{}
		w.logger.Debug("Bulk sync job submitted", zap.String("job_id", jobID.String()))
		return nil
	default:
		return ErrQueueFull
	}
}

// InFlight returns the number of jobs queued or being polled
func (w *BulkSyncWorker) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.inflight)
}

func (w *BulkSyncWorker) worker(ctx context.Context, jobs <-chan uuid.UUID, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case jobID, ok := <-jobs:
			if !ok {
				return
			}
			w.run(ctx, jobID, workerID)
			w.mu.Lock()
			delete(w.inflight, jobID)
			w.mu.Unlock()
		}
	}
}

// run polls one job until it is terminal or the worker is stopped
func (w *BulkSyncWorker) run(ctx context.Context, jobID uuid.UUID, workerID int) {
	log := w.logger.With(zap.String("job_id", jobID.String()), zap.Int("worker_id", workerID))
	log.Info("Polling bulk sync job")

	for {
		done, err := w.step(ctx, jobID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			log.Warn("Bulk sync job disappeared, dropping it")
			return
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			log.Warn("Bulk sync poll failed, retrying next tick", zap.Error(err))
		case done:
			log.Info("Bulk sync job finished")
			return
		}

		timer := time.NewTimer(w.config.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (w *BulkSyncWorker) step(ctx context.Context, jobID uuid.UUID) (bool, error) {
	stepCtx, cancel := context.WithTimeout(ctx, w.config.StepTimeout)
	defer cancel()
	return w.advancer.Advance(stepCtx, jobID)
}
