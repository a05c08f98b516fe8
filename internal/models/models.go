package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceKind identifies what a SourceDescriptor points at.
type SourceKind string

const (
	SourceFile      SourceKind = "file"
	SourceDirectory SourceKind = "directory"
	SourceURL       SourceKind = "url"
	SourceURLList   SourceKind = "url_list"
)

// SourceDescriptor declares one unit of batch input before expansion.
// Field names follow the batch config wire format ("type"/"path").
// Immutable once submitted.
type SourceDescriptor struct {
	Kind            SourceKind      `json:"type"`
	Location        string          `json:"path"`
	Recursive       bool            `json:"recursive,omitempty"`
	IncludePatterns []string        `json:"include_patterns,omitempty"`
	ExcludePatterns []string        `json:"exclude_patterns,omitempty"`
	OutputPrefix    string          `json:"output_prefix,omitempty"`
	CustomConfig    json.RawMessage `json:"custom_config,omitempty"`
}

func (d *SourceDescriptor) Validate() error {
	switch d.Kind {
	case SourceFile, SourceDirectory, SourceURL, SourceURLList:
	case "":
		return fmt.Errorf("source type is required")
	default:
		return fmt.Errorf("unknown source type: %s", d.Kind)
	}
	if d.Location == "" {
		return fmt.Errorf("source path is required")
	}
	return nil
}

// OutputFormat selects the serialization shape of completed results.
type OutputFormat string

const (
	FormatDocuments OutputFormat = "documents"
	FormatJSON      OutputFormat = "json"
	FormatText      OutputFormat = "text"
	FormatElements  OutputFormat = "elements"
)

// ChunkingStrategy selects how records are regrouped into chunks.
type ChunkingStrategy string

const (
	ChunkBasic   ChunkingStrategy = "basic"
	ChunkByTitle ChunkingStrategy = "by_title"
	ChunkByPage  ChunkingStrategy = "by_page"
)

// ProcessingConfig carries the per-batch processing options. A copy is made
// per item when a descriptor declares custom_config overrides; the shared
// batch config is never mutated.
type ProcessingConfig struct {
	OutputFormat         OutputFormat     `json:"output_format,omitempty"`
	ChunkingEnabled      bool             `json:"enable_chunking,omitempty"`
	ChunkingStrategy     ChunkingStrategy `json:"chunking_strategy,omitempty"`
	MaxChunkSize         int              `json:"max_chunk_size,omitempty"`
	ChunkOverlap         int              `json:"chunk_overlap,omitempty"`
	IncludeMetadata      *bool            `json:"include_metadata,omitempty"`
	MinTextLength        int              `json:"min_text_length,omitempty"`
	RemoveHeadersFooters bool             `json:"remove_headers_footers,omitempty"`
	OCRLanguages         []string         `json:"ocr_languages,omitempty"`
}

// DefaultProcessingConfig mirrors the defaults of the reference deployment.
func DefaultProcessingConfig() ProcessingConfig {
	include := true
	return ProcessingConfig{
		OutputFormat:         FormatDocuments,
		IncludeMetadata:      &include,
		MinTextLength:        10,
		RemoveHeadersFooters: true,
		OCRLanguages:         []string{"eng"},
	}
}

// MetadataIncluded resolves the tri-state include_metadata flag (absent means true).
func (c *ProcessingConfig) MetadataIncluded() bool {
	return c.IncludeMetadata == nil || *c.IncludeMetadata
}

// Validate checks cross-field rules. Invalid combinations fail the whole
// batch before any item is attempted.
func (c *ProcessingConfig) Validate() error {
	switch c.OutputFormat {
	case "", FormatDocuments, FormatJSON, FormatText, FormatElements:
	default:
		return fmt.Errorf("unknown output_format: %s", c.OutputFormat)
	}
	if c.ChunkingEnabled {
		switch c.ChunkingStrategy {
		case ChunkBasic, ChunkByTitle, ChunkByPage:
		case "":
			return fmt.Errorf("chunking_strategy is required when enable_chunking=true")
		default:
			return fmt.Errorf("unknown chunking_strategy: %s", c.ChunkingStrategy)
		}
		if c.MaxChunkSize <= 0 {
			return fmt.Errorf("max_chunk_size is required when enable_chunking=true")
		}
		if c.ChunkOverlap < 0 {
			return fmt.Errorf("chunk_overlap must be non-negative")
		}
		if c.ChunkOverlap > c.MaxChunkSize {
			return fmt.Errorf("chunk_overlap (%d) must not exceed max_chunk_size (%d)", c.ChunkOverlap, c.MaxChunkSize)
		}
	} else if c.ChunkingStrategy != "" {
		switch c.ChunkingStrategy {
		case ChunkBasic, ChunkByTitle, ChunkByPage:
		default:
			return fmt.Errorf("unknown chunking_strategy: %s", c.ChunkingStrategy)
		}
	}
	if c.MinTextLength < 0 {
		return fmt.Errorf("min_text_length must be non-negative")
	}
	return nil
}

// Merged returns a copy of the config with the raw JSON overrides applied on
// top. The receiver is left untouched.
func (c ProcessingConfig) Merged(override json.RawMessage) (ProcessingConfig, error) {
	if len(override) == 0 {
		return c, nil
	}
	merged := c
	if err := json.Unmarshal(override, &merged); err != nil {
		return c, fmt.Errorf("invalid custom_config: %w", err)
	}
	return merged, nil
}

// Document is one normalized unit of extracted content, shaped for
// LangChain-style consumers.
type Document struct {
	PageContent string         `json:"page_content"`
	Metadata    map[string]any `json:"metadata"`
}

// FailureKind classifies per-item failures.
type FailureKind string

const (
	FailInvalidSource     FailureKind = "invalid_source"
	FailProcessingError   FailureKind = "processing_error"
	FailUnsupportedFormat FailureKind = "unsupported_format"
	FailTimeout           FailureKind = "timeout"
	FailCancelled         FailureKind = "cancelled"
)

// FailureInfo describes why a single item failed. Item failures never abort
// sibling items.
type FailureInfo struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// SourceResult is the outcome of processing one resolved item: either a
// document sequence or a typed failure, always carrying the item identity.
type SourceResult struct {
	Source       string      `json:"source"`
	OutputPrefix string      `json:"output_prefix,omitempty"`
	Documents    []Document  `json:"documents,omitempty"`
	Failure      *FailureInfo `json:"failure,omitempty"`
}

func (r *SourceResult) Succeeded() bool { return r.Failure == nil }

// BatchResult aggregates one batch run. Items are ordered by resolution
// order, not completion order, so output is deterministic.
type BatchResult struct {
	TotalItems int            `json:"total_items"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Format     OutputFormat   `json:"output_format,omitempty"`
	Items      []SourceResult `json:"items"`
}

// AllDocuments flattens the per-item document sequences in item order.
func (b *BatchResult) AllDocuments() []Document {
	var docs []Document
	for _, item := range b.Items {
		docs = append(docs, item.Documents...)
	}
	return docs
}

// JobStatus is the lifecycle state of an asynchronous job. Transitions are
// monotonic: pending -> processing -> completed|failed, never backwards.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the lifecycle wrapper around one batch run.
//
// Result is non-nil iff Status == completed; Error is set only when the
// orchestration itself failed (distinct from item failures inside a
// completed result).
type Job struct {
	ID          string       `json:"job_id"`
	Status      JobStatus    `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Error       string       `json:"error,omitempty"`
	Result      *BatchResult `json:"-"`
}
