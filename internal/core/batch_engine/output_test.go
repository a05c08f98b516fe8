package batch_engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/uloader/internal/models"
)

func sampleResult() *models.BatchResult {
	return &models.BatchResult{
		TotalItems: 3,
		Succeeded:  2,
		Failed:     1,
		Items: []models.SourceResult{
			{
				Source:       "/data/report.pdf",
				OutputPrefix: "reports",
				Documents:    []models.Document{{PageContent: "report body", Metadata: map[string]any{}}},
			},
			{
				Source:  "/data/broken.pdf",
				Failure: &models.FailureInfo{Kind: models.FailProcessingError, Message: "corrupt"},
			},
			{
				Source:    "https://example.com/page?id=7",
				Documents: []models.Document{{PageContent: "web body", Metadata: map[string]any{}}},
			},
		},
	}
}

func TestWriteOutputsSeparateBySource(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteOutputs(sampleResult(), &OutputSettings{
		BasePath:         dir,
		SeparateBySource: true,
	}, "batch_x")
	require.NoError(t, err)

	// Failed items produce no file; names come from the prefix when set,
	// otherwise from the sanitized source.
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, "reports_0.json"), written[0])
	assert.Equal(t, filepath.Join(dir, "page_id_7_2.json"), written[1])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "report body", docs[0].PageContent)
}

func TestWriteOutputsMerged(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteOutputs(sampleResult(), &OutputSettings{
		BasePath: dir,
		MergeAll: true,
	}, "batch_20240101_120000")
	require.NoError(t, err)

	require.Len(t, written, 1)
	assert.Equal(t, filepath.Join(dir, "batch_20240101_120000_merged.json"), written[0])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(data, &docs))
	assert.Len(t, docs, 2, "merged output flattens all succeeded documents")
}

func TestWriteOutputsNoSettingsIsNoOp(t *testing.T) {
	written, err := WriteOutputs(sampleResult(), nil, "batch_x")
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "report", sanitizeName("/data/sub dir/report.pdf"))
	assert.Equal(t, "page", sanitizeName("https://example.com/docs/page.html"))
	assert.Equal(t, "source", sanitizeName(""))
	assert.Equal(t, "we_rd_name", sanitizeName("we%rd name.txt"))
}
