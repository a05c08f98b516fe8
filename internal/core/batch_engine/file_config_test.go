package batch_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/uloader/internal/models"
)

func TestParseBatchFileRequiresSources(t *testing.T) {
	_, err := ParseBatchFile([]byte(`{"max_workers": 4}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sources")
}

func TestParseBatchFileSources(t *testing.T) {
	bf, err := ParseBatchFile([]byte(`{
		"sources": [
			{"type": "directory", "path": "/data/docs", "recursive": true, "include_patterns": ["*.pdf"]},
			{"type": "url", "path": "https://example.com/doc", "output_prefix": "web"}
		],
		"max_workers": 5,
		"continue_on_error": false
	}`))
	require.NoError(t, err)
	require.Len(t, bf.Sources, 2)
	assert.Equal(t, models.SourceDirectory, bf.Sources[0].Kind)
	assert.True(t, bf.Sources[0].Recursive)
	assert.Equal(t, "web", bf.Sources[1].OutputPrefix)

	opts := bf.Options(3, "batch_x")
	assert.Equal(t, 5, opts.MaxWorkers)
	assert.False(t, opts.ContinueOnError)
	assert.Equal(t, "batch_x", opts.BatchID)
}

func TestBatchFileOptionDefaults(t *testing.T) {
	bf, err := ParseBatchFile([]byte(`{"sources": [{"type": "url", "path": "https://x.example"}]}`))
	require.NoError(t, err)

	opts := bf.Options(3, "")
	assert.Equal(t, 3, opts.MaxWorkers, "falls back to deployment default")
	assert.True(t, opts.ContinueOnError, "continue_on_error defaults to true")
}

func TestBatchFileProcessingConfigOverlaysDefaults(t *testing.T) {
	bf, err := ParseBatchFile([]byte(`{
		"sources": [{"type": "url", "path": "https://x.example"}],
		"processing": {"enable_chunking": true, "chunking_strategy": "by_title", "max_chunk_size": 800}
	}`))
	require.NoError(t, err)

	cfg, err := bf.ProcessingConfig()
	require.NoError(t, err)
	assert.True(t, cfg.ChunkingEnabled)
	assert.Equal(t, models.ChunkByTitle, cfg.ChunkingStrategy)
	assert.Equal(t, 800, cfg.MaxChunkSize)
	assert.Equal(t, 10, cfg.MinTextLength, "untouched fields keep defaults")
	assert.Equal(t, models.FormatDocuments, cfg.OutputFormat)
}

func TestBatchFileLoaderConfigAliasWins(t *testing.T) {
	bf, err := ParseBatchFile([]byte(`{
		"sources": [{"type": "url", "path": "https://x.example"}],
		"loader_config": {"min_text_length": 42},
		"processing": {"min_text_length": 7}
	}`))
	require.NoError(t, err)

	cfg, err := bf.ProcessingConfig()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.MinTextLength)
}
