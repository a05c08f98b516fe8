package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/uloader/internal/core"
	"github.com/markdave123-py/uloader/internal/core/batch_engine"
	"github.com/markdave123-py/uloader/internal/models"
)

// SubmitOptions tune one submitted batch run. TempFiles are removed once the
// run finishes (uploaded payloads the caller hands off to the job).
type SubmitOptions struct {
	MaxWorkers      int
	ContinueOnError bool
	TempFiles       []string
}

// submission is one queued batch run.
type submission struct {
	ctx         context.Context
	jobID       string
	descriptors []models.SourceDescriptor
	cfg         models.ProcessingConfig
	opts        batch_engine.Options
	tempFiles   []string
}

// Manager wraps the batch orchestrator in the asynchronous job lifecycle:
// submissions go onto a bounded queue, worker goroutines drain it, results
// are persisted to the artifact store and a reaper sweeps expired jobs.
type Manager struct {
	store          *Store
	engine         *batch_engine.Engine
	artifacts      core.ArtifactStore
	queue          chan submission
	retention      time.Duration
	reaperInterval time.Duration
	logger         *zap.Logger

	mu      sync.Mutex
	baseCtx context.Context
	cancels map[string]context.CancelFunc
}

// NewManager constructs the manager with a bounded submission queue (64).
func NewManager(store *Store, engine *batch_engine.Engine, artifacts core.ArtifactStore, retention, reaperInterval time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:          store,
		engine:         engine,
		artifacts:      artifacts,
		queue:          make(chan submission, 64),
		retention:      retention,
		reaperInterval: reaperInterval,
		logger:         logger,
		baseCtx:        context.Background(),
		cancels:        make(map[string]context.CancelFunc),
	}
}

// Start runs the worker goroutines draining the submission queue, plus the
// retention reaper. ctx stopping shuts everything down.
func (m *Manager) Start(ctx context.Context, numWorkers int) {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					m.logger.Info("job worker shutting down", zap.Int("worker", w))
					return
				case sub := <-m.queue:
					m.logger.Info("job picked up",
						zap.String("job_id", sub.jobID), zap.Int("worker", w))
					m.runJob(sub)
				}
			}
		}(w)
	}

	if m.retention > 0 && m.reaperInterval > 0 {
		go m.reap(ctx)
	}
}

// Submit registers a pending job and schedules the batch run without waiting
// for it. If the queue is full, this call blocks until space frees up.
func (m *Manager) Submit(descriptors []models.SourceDescriptor, cfg models.ProcessingConfig, opts SubmitOptions) (models.Job, error) {
	if len(descriptors) == 0 {
		return models.Job{}, fmt.Errorf("at least one source is required")
	}

	// Config validation happens inside the batch run: invalid combinations
	// fail the job pre-flight with zero items attempted.
	job := m.store.Create()

	m.mu.Lock()
	jobCtx, cancel := context.WithCancel(m.baseCtx)
	m.cancels[job.ID] = cancel
	m.mu.Unlock()

	m.queue <- submission{
		ctx:         jobCtx,
		jobID:       job.ID,
		descriptors: descriptors,
		cfg:         cfg,
		opts: batch_engine.Options{
			MaxWorkers:      opts.MaxWorkers,
			ContinueOnError: opts.ContinueOnError,
			BatchID:         job.ID,
		},
		tempFiles: opts.TempFiles,
	}
	return job, nil
}

func (m *Manager) runJob(sub submission) {
	defer m.dropCancel(sub.jobID)
	defer m.removeTempFiles(sub.tempFiles)

	if err := m.store.MarkProcessing(sub.jobID); err != nil {
		// Deleted while still queued; nothing to run.
		m.logger.Warn("skipping queued job", zap.String("job_id", sub.jobID), zap.Error(err))
		return
	}

	result, err := m.engine.RunBatch(sub.ctx, sub.descriptors, sub.cfg, sub.opts)
	if err != nil {
		if ferr := m.store.Fail(sub.jobID, err.Error()); ferr != nil {
			m.logger.Warn("could not record job failure",
				zap.String("job_id", sub.jobID), zap.Error(ferr))
		}
		m.logger.Warn("job failed", zap.String("job_id", sub.jobID), zap.Error(err))
		return
	}

	if payload, merr := json.Marshal(result); merr == nil {
		if serr := m.artifacts.Save(context.Background(), sub.jobID, payload); serr != nil {
			m.logger.Warn("could not persist result artifact",
				zap.String("job_id", sub.jobID), zap.Error(serr))
		}
	}

	if cerr := m.store.Complete(sub.jobID, result); cerr != nil {
		m.logger.Warn("could not record job completion",
			zap.String("job_id", sub.jobID), zap.Error(cerr))
		return
	}
	m.logger.Info("job completed",
		zap.String("job_id", sub.jobID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
}

// GetStatus returns a snapshot of the job.
func (m *Manager) GetStatus(jobID string) (models.Job, error) {
	return m.store.Get(jobID)
}

// GetResult returns the batch result of a completed job. Pending or
// processing jobs return ErrNotReady; failed jobs return a FailedError.
func (m *Manager) GetResult(jobID string) (*models.BatchResult, error) {
	job, err := m.store.Get(jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case models.StatusPending, models.StatusProcessing:
		return nil, ErrNotReady
	case models.StatusFailed:
		return nil, &FailedError{Reason: job.Error}
	}
	if job.Result != nil {
		return job.Result, nil
	}

	// Fall back to the persisted artifact.
	payload, err := m.artifacts.Load(context.Background(), jobID)
	if err != nil {
		return nil, fmt.Errorf("load result artifact: %w", err)
	}
	var result models.BatchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode result artifact: %w", err)
	}
	return &result, nil
}

// Cancel stops an in-flight job: no new items are launched, items already
// dispatched finish as cancelled failures and the job completes with the
// partial result. Cancelling a terminal job is a no-op.
func (m *Manager) Cancel(jobID string) error {
	if _, err := m.store.Get(jobID); err != nil {
		return err
	}
	m.mu.Lock()
	cancel, ok := m.cancels[jobID]
	m.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// Delete removes the job and its backing artifacts, cancelling it first if
// it is still running.
func (m *Manager) Delete(jobID string) error {
	m.mu.Lock()
	if cancel, ok := m.cancels[jobID]; ok {
		cancel()
		delete(m.cancels, jobID)
	}
	m.mu.Unlock()

	if err := m.store.Delete(jobID); err != nil {
		return err
	}
	if err := m.artifacts.Delete(context.Background(), jobID); err != nil {
		m.logger.Warn("could not delete result artifact",
			zap.String("job_id", jobID), zap.Error(err))
	}
	return nil
}

// removeTempFiles drops uploaded payloads once the run no longer needs them.
func (m *Manager) removeTempFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("could not remove uploaded file", zap.String("path", p), zap.Error(err))
		}
	}
}

func (m *Manager) dropCancel(jobID string) {
	m.mu.Lock()
	if cancel, ok := m.cancels[jobID]; ok {
		cancel()
		delete(m.cancels, jobID)
	}
	m.mu.Unlock()
}

// reap periodically deletes jobs past the retention window. Best-effort
// cleanup: callers cannot rely on results surviving the window.
func (m *Manager) reap(ctx context.Context) {
	ticker := time.NewTicker(m.reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range m.store.Sweep(m.retention) {
				if err := m.artifacts.Delete(context.Background(), id); err != nil {
					m.logger.Warn("reaper: could not delete artifact",
						zap.String("job_id", id), zap.Error(err))
				}
				m.logger.Info("reaped expired job", zap.String("job_id", id))
			}
		}
	}
}
