package loader

import (
	"strings"
	"time"

	"github.com/markdave123-py/uloader/internal/core"
	"github.com/markdave123-py/uloader/internal/models"
)

// NormalizeOptions carries the item identity attached to every record.
type NormalizeOptions struct {
	Source       string
	SourceType   string
	OutputPrefix string
}

// Normalize converts raw partitioned elements into documents, attaching
// source identity and positional metadata and applying the content filters
// from the processing config. The returned slice may be empty; that is a
// valid outcome, not an error.
func Normalize(elems []core.RawElement, opts NormalizeOptions, cfg *models.ProcessingConfig) []models.Document {
	processedAt := time.Now().UTC().Format(time.RFC3339)

	docs := make([]models.Document, 0, len(elems))
	for _, el := range elems {
		text := strings.TrimSpace(el.Text)
		if len(text) < cfg.MinTextLength {
			continue
		}
		if cfg.RemoveHeadersFooters &&
			(el.ElementType == core.ElementHeader || el.ElementType == core.ElementFooter) {
			continue
		}

		doc := models.Document{PageContent: text, Metadata: map[string]any{}}
		if cfg.MetadataIncluded() {
			doc.Metadata["source"] = opts.Source
			doc.Metadata["source_type"] = opts.SourceType
			doc.Metadata["element_type"] = el.ElementType
			doc.Metadata["processed_at"] = processedAt
			if el.Page > 0 {
				doc.Metadata["page_number"] = el.Page
			}
			if opts.OutputPrefix != "" {
				doc.Metadata["output_prefix"] = opts.OutputPrefix
			}
			if len(cfg.OCRLanguages) > 0 {
				doc.Metadata["languages"] = append([]string(nil), cfg.OCRLanguages...)
			}
		}
		docs = append(docs, doc)
	}
	return docs
}
