package batch_engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/markdave123-py/uloader/internal/models"
)

// OutputSettings controls how an offline run writes its result files.
type OutputSettings struct {
	BasePath         string `json:"base_path"`
	SeparateBySource bool   `json:"separate_by_source"`
	MergeAll         bool   `json:"merge_all"`
}

// BatchFile is the JSON batch configuration consumed by the CLI and the
// batch endpoint. Both "loader_config" and "processing" are accepted for the
// processing section, matching the existing configuration templates.
type BatchFile struct {
	Sources         []models.SourceDescriptor `json:"sources"`
	LoaderConfig    json.RawMessage           `json:"loader_config,omitempty"`
	Processing      json.RawMessage           `json:"processing,omitempty"`
	Output          *OutputSettings           `json:"output,omitempty"`
	MaxWorkers      int                       `json:"max_workers,omitempty"`
	ContinueOnError *bool                     `json:"continue_on_error,omitempty"`
}

// LoadBatchFile reads and parses a batch configuration file.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch config %s: %w", path, err)
	}
	return ParseBatchFile(data)
}

// ParseBatchFile parses a batch configuration document.
func ParseBatchFile(data []byte) (*BatchFile, error) {
	var bf BatchFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse batch config: %w", err)
	}
	if len(bf.Sources) == 0 {
		return nil, fmt.Errorf("batch config declares no sources")
	}
	return &bf, nil
}

// ProcessingConfig resolves the processing section over the deployment
// defaults. "loader_config" wins over "processing" when both are present.
func (bf *BatchFile) ProcessingConfig() (models.ProcessingConfig, error) {
	cfg := models.DefaultProcessingConfig()
	section := bf.LoaderConfig
	if len(section) == 0 {
		section = bf.Processing
	}
	if len(section) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(section, &cfg); err != nil {
		return cfg, fmt.Errorf("parse processing config: %w", err)
	}
	return cfg, nil
}

// Options resolves the run options, falling back to the given worker count
// when the file does not set one. continue_on_error defaults to true as in
// the reference configuration templates.
func (bf *BatchFile) Options(defaultWorkers int, batchID string) Options {
	workers := bf.MaxWorkers
	if workers <= 0 {
		workers = defaultWorkers
	}
	cont := true
	if bf.ContinueOnError != nil {
		cont = *bf.ContinueOnError
	}
	return Options{MaxWorkers: workers, ContinueOnError: cont, BatchID: batchID}
}
