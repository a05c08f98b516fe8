package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/uloader/internal/core"
	"github.com/markdave123-py/uloader/internal/models"
)

func TestNormalizeAttachesMetadata(t *testing.T) {
	cfg := models.DefaultProcessingConfig()
	elems := []core.RawElement{
		{Text: "  A narrative paragraph with surrounding space.  ", ElementType: core.ElementNarrativeText, Page: 3},
	}

	docs := Normalize(elems, NormalizeOptions{
		Source:       "/data/report.pdf",
		SourceType:   "file",
		OutputPrefix: "reports",
	}, &cfg)

	require.Len(t, docs, 1)
	assert.Equal(t, "A narrative paragraph with surrounding space.", docs[0].PageContent)

	meta := docs[0].Metadata
	assert.Equal(t, "/data/report.pdf", meta["source"])
	assert.Equal(t, "file", meta["source_type"])
	assert.Equal(t, core.ElementNarrativeText, meta["element_type"])
	assert.Equal(t, 3, meta["page_number"])
	assert.Equal(t, "reports", meta["output_prefix"])
	assert.Equal(t, []string{"eng"}, meta["languages"])

	processedAt, ok := meta["processed_at"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, processedAt)
	assert.NoError(t, err)
}

func TestNormalizeDropsShortText(t *testing.T) {
	cfg := models.DefaultProcessingConfig()
	cfg.MinTextLength = 20

	docs := Normalize([]core.RawElement{
		{Text: "too short", ElementType: core.ElementNarrativeText},
		{Text: "this one is long enough to survive", ElementType: core.ElementNarrativeText},
	}, NormalizeOptions{Source: "s", SourceType: "file"}, &cfg)

	require.Len(t, docs, 1)
	assert.Equal(t, "this one is long enough to survive", docs[0].PageContent)
}

func TestNormalizeHeaderFooterFiltering(t *testing.T) {
	elems := []core.RawElement{
		{Text: "Running header text here", ElementType: core.ElementHeader, Page: 1},
		{Text: "Body paragraph text here", ElementType: core.ElementNarrativeText, Page: 1},
		{Text: "Running footer text here", ElementType: core.ElementFooter, Page: 1},
	}

	strict := models.DefaultProcessingConfig()
	docs := Normalize(elems, NormalizeOptions{Source: "s", SourceType: "file"}, &strict)
	require.Len(t, docs, 1)
	assert.Equal(t, "Body paragraph text here", docs[0].PageContent)

	lenient := models.DefaultProcessingConfig()
	lenient.RemoveHeadersFooters = false
	docs = Normalize(elems, NormalizeOptions{Source: "s", SourceType: "file"}, &lenient)
	assert.Len(t, docs, 3)
}

func TestNormalizeExcludeMetadata(t *testing.T) {
	cfg := models.DefaultProcessingConfig()
	exclude := false
	cfg.IncludeMetadata = &exclude

	docs := Normalize([]core.RawElement{
		{Text: "content long enough to keep", ElementType: core.ElementNarrativeText, Page: 1},
	}, NormalizeOptions{Source: "s", SourceType: "file"}, &cfg)

	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Metadata)
}

func TestNormalizeOmitsPageNumberForUnpaginatedSource(t *testing.T) {
	cfg := models.DefaultProcessingConfig()
	docs := Normalize([]core.RawElement{
		{Text: "unpaginated content here", ElementType: core.ElementNarrativeText, Page: 0},
	}, NormalizeOptions{Source: "s", SourceType: "url"}, &cfg)

	require.Len(t, docs, 1)
	_, ok := docs[0].Metadata["page_number"]
	assert.False(t, ok)
}

func TestNormalizeEmptyResultIsValid(t *testing.T) {
	cfg := models.DefaultProcessingConfig()
	cfg.MinTextLength = 1000

	docs := Normalize([]core.RawElement{
		{Text: "short", ElementType: core.ElementNarrativeText},
	}, NormalizeOptions{Source: "s", SourceType: "file"}, &cfg)
	assert.Empty(t, docs)
}
