package batch_engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/uloader/internal/models"
)

// Options tune one batch run. MaxWorkers is a hard ceiling on concurrently
// executing items, per batch.
type Options struct {
	MaxWorkers      int
	ContinueOnError bool
	BatchID         string
}

// Engine is the batch orchestrator: it expands descriptors into a flat work
// list, fans items out across a bounded pool and assembles the aggregate
// result in resolution order.
type Engine struct {
	processor *Processor
	logger    *zap.Logger
}

func NewEngine(processor *Processor, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{processor: processor, logger: logger}
}

// task is one slot in the flattened resolution order: either a result that
// is already known (resolution failure) or an item still to be processed.
type task struct {
	ready *models.SourceResult
	work  *workItem
}

// RunBatch processes all descriptors and returns the aggregated result.
// A returned error means the orchestration itself could not run (invalid
// configuration, no sources); zero items were attempted in that case.
// Item-level failures never surface here: they live inside the BatchResult.
func (e *Engine) RunBatch(ctx context.Context, descriptors []models.SourceDescriptor, cfg models.ProcessingConfig, opts Options) (*models.BatchResult, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	if opts.MaxWorkers <= 0 {
		return nil, fmt.Errorf("max_workers must be positive, got %d", opts.MaxWorkers)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processing config: %w", err)
	}

	// Pre-flight: every descriptor and every per-source override must be
	// structurally valid before any work starts.
	merged := make([]models.ProcessingConfig, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		m, err := cfg.Merged(d.CustomConfig)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("source %d: invalid custom_config: %w", i, err)
		}
		merged[i] = m
	}

	tasks := e.resolveAll(descriptors, merged, opts)

	results := make([]*models.SourceResult, len(tasks))
	var stopped atomic.Bool

	pool := new(errgroup.Group)
	pool.SetLimit(opts.MaxWorkers)

	for i, t := range tasks {
		if t.ready != nil {
			results[i] = t.ready
			if t.ready.Failure != nil && !opts.ContinueOnError {
				stopped.Store(true)
			}
			continue
		}

		// Stop launching once a failure was seen with continue_on_error
		// off, or once the run is cancelled. In-flight items drain.
		if stopped.Load() || ctx.Err() != nil {
			continue
		}

		slot, w := i, t.work
		pool.Go(func() error {
			// Re-check at execution time: pool.Go blocks the dispatch
			// loop while all slots are busy, so a sibling may have
			// tripped the stop flag between scheduling and running.
			// A slot left nil means the item was never attempted.
			if stopped.Load() || ctx.Err() != nil {
				return nil
			}
			res := e.processor.Process(ctx, w)
			results[slot] = &res
			if res.Failure != nil {
				e.logger.Warn("item failed",
					zap.String("source", res.Source),
					zap.String("kind", string(res.Failure.Kind)),
					zap.String("reason", res.Failure.Message))
				if !opts.ContinueOnError {
					stopped.Store(true)
				}
			}
			return nil
		})
	}

	_ = pool.Wait()

	// Assemble in resolution order; slots that were never launched are
	// skipped, not counted as attempted.
	format := cfg.OutputFormat
	if format == "" {
		format = models.FormatDocuments
	}
	batch := &models.BatchResult{
		Format: format,
		Items:  make([]models.SourceResult, 0, len(results)),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		batch.Items = append(batch.Items, *r)
		batch.TotalItems++
		if r.Succeeded() {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	e.logger.Info("batch finished",
		zap.String("batch_id", opts.BatchID),
		zap.Int("total", batch.TotalItems),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed))
	return batch, nil
}

// resolveAll expands descriptors in submission order into a flat task list.
// A descriptor that fails to resolve becomes one failed slot; with
// continue_on_error off it also halts resolution of later descriptors.
func (e *Engine) resolveAll(descriptors []models.SourceDescriptor, merged []models.ProcessingConfig, opts Options) []task {
	var tasks []task
	for i := range descriptors {
		d := &descriptors[i]
		items, err := Resolve(d)
		if err != nil {
			tasks = append(tasks, task{ready: &models.SourceResult{
				Source:       d.Location,
				OutputPrefix: d.OutputPrefix,
				Failure: &models.FailureInfo{
					Kind:    models.FailInvalidSource,
					Message: err.Error(),
				},
			}})
			if !opts.ContinueOnError {
				break
			}
			continue
		}
		for _, item := range items {
			tasks = append(tasks, task{work: &workItem{
				item:    item,
				prefix:  d.OutputPrefix,
				batchID: opts.BatchID,
				cfg:     merged[i],
			}})
		}
	}
	return tasks
}
