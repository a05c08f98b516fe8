package batch_engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/markdave123-py/uloader/internal/models"
)

// WriteOutputs materializes a batch result under the output settings:
// optionally one file per source and/or one merged file across all sources.
// Returns the written paths in a stable order.
func WriteOutputs(result *models.BatchResult, settings *OutputSettings, batchID string) ([]string, error) {
	if settings == nil || settings.BasePath == "" {
		return nil, nil
	}
	if err := os.MkdirAll(settings.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", settings.BasePath, err)
	}

	var written []string

	if settings.SeparateBySource {
		for i, item := range result.Items {
			if !item.Succeeded() {
				continue
			}
			name := item.OutputPrefix
			if name == "" {
				name = sanitizeName(item.Source)
			}
			path := filepath.Join(settings.BasePath, fmt.Sprintf("%s_%d.json", name, i))
			if err := writeJSON(path, item.Documents); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	if settings.MergeAll {
		path := filepath.Join(settings.BasePath, fmt.Sprintf("%s_merged.json", batchID))
		if err := writeJSON(path, result.AllDocuments()); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sanitizeName turns a path or URL into a filesystem-safe output name.
func sanitizeName(source string) string {
	name := source
	if strings.Contains(name, "://") {
		name = strings.SplitN(name, "://", 2)[1]
	}
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "source"
	}
	return b.String()
}
