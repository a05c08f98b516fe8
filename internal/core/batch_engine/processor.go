package batch_engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markdave123-py/uloader/internal/core"
	"github.com/markdave123-py/uloader/internal/core/loader"
	"github.com/markdave123-py/uloader/internal/models"
)

// workItem is one dispatchable unit: a resolved item plus its inherited
// labels and effective (already merged) config.
type workItem struct {
	item    ResolvedItem
	prefix  string
	batchID string
	cfg     models.ProcessingConfig
}

// Processor runs the partition -> normalize -> filter -> chunk pipeline for
// one item. Every collaborator error is absorbed into a typed failure; no
// error or panic crosses this boundary into the orchestrator.
type Processor struct {
	partitioner core.Partitioner
	itemTimeout time.Duration
}

func NewProcessor(partitioner core.Partitioner, itemTimeout time.Duration) *Processor {
	return &Processor{partitioner: partitioner, itemTimeout: itemTimeout}
}

// Process returns the SourceResult for one item. It never returns an error:
// failures are encoded in the result so one item can never abort siblings.
func (p *Processor) Process(ctx context.Context, w *workItem) (result models.SourceResult) {
	result = models.SourceResult{Source: w.item.Location, OutputPrefix: w.prefix}

	defer func() {
		if r := recover(); r != nil {
			result.Documents = nil
			result.Failure = &models.FailureInfo{
				Kind:    models.FailProcessingError,
				Message: fmt.Sprintf("panic during processing: %v", r),
			}
		}
	}()

	if !w.item.IsURL && !loader.Supported(w.item.Location) {
		result.Failure = &models.FailureInfo{
			Kind:    models.FailUnsupportedFormat,
			Message: fmt.Sprintf("unsupported file type: %s", w.item.Location),
		}
		return result
	}

	itemCtx := ctx
	if p.itemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, p.itemTimeout)
		defer cancel()
	}

	var elems []core.RawElement
	var err error
	if w.item.IsURL {
		elems, err = p.partitioner.PartitionURL(itemCtx, w.item.Location)
	} else {
		elems, err = p.partitioner.PartitionFile(itemCtx, w.item.Location)
	}
	if err != nil {
		result.Failure = classifyError(ctx, itemCtx, err)
		return result
	}

	sourceType := "file"
	if w.item.IsURL {
		sourceType = "url"
	}

	// Normalize with metadata attached even when the caller excluded it:
	// the chunking strategies read element_type and page_number. Metadata is
	// stripped at the end if the config says so.
	normCfg := w.cfg
	normCfg.IncludeMetadata = nil
	docs := loader.Normalize(elems, loader.NormalizeOptions{
		Source:       w.item.Location,
		SourceType:   sourceType,
		OutputPrefix: w.prefix,
	}, &normCfg)

	if w.batchID != "" {
		for i := range docs {
			docs[i].Metadata["batch_id"] = w.batchID
		}
	}

	if w.cfg.ChunkingEnabled {
		docs = applyChunking(docs, &w.cfg)
	}

	if !w.cfg.MetadataIncluded() {
		for i := range docs {
			docs[i].Metadata = map[string]any{}
		}
	}

	// An empty document list is a valid success (everything filtered out).
	result.Documents = docs
	return result
}

// classifyError maps a collaborator error onto the failure taxonomy. A blown
// per-item deadline is a Timeout; a cancelled parent context (job cancel,
// shutdown) is Cancelled; anything else is a ProcessingError.
func classifyError(parent, itemCtx context.Context, err error) *models.FailureInfo {
	switch {
	case parent.Err() != nil && errors.Is(err, context.Canceled):
		return &models.FailureInfo{Kind: models.FailCancelled, Message: "processing cancelled"}
	case errors.Is(err, context.DeadlineExceeded) || itemCtx.Err() == context.DeadlineExceeded:
		return &models.FailureInfo{Kind: models.FailTimeout, Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return &models.FailureInfo{Kind: models.FailCancelled, Message: "processing cancelled"}
	default:
		return &models.FailureInfo{Kind: models.FailProcessingError, Message: err.Error()}
	}
}
