package core

import (
	"context"
)

// RawElement is one typed content element produced by the partitioning
// collaborator before normalization.
type RawElement struct {
	Text        string
	ElementType string
	Page        int
}

// Element type tags attached by the partitioner.
const (
	ElementTitle         = "Title"
	ElementNarrativeText = "NarrativeText"
	ElementHeader        = "Header"
	ElementFooter        = "Footer"
)

// Partitioner is the external document-partitioning collaborator: raw source
// in, typed content elements out. Its OCR/format-detection internals are a
// black box to the rest of the system.
type Partitioner interface {
	PartitionFile(ctx context.Context, path string) ([]RawElement, error)
	PartitionURL(ctx context.Context, url string) ([]RawElement, error)
}

// ArtifactStore persists completed batch result payloads so they survive
// between job completion and result retrieval.
// It's abstract so the local disk store can be swapped for S3, MinIO, etc.
type ArtifactStore interface {
	Save(ctx context.Context, jobID string, payload []byte) error
	Load(ctx context.Context, jobID string) ([]byte, error)
	Delete(ctx context.Context, jobID string) error
}
