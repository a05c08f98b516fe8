package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/markdave123-py/uloader/internal/core"
)

var _ core.ArtifactStore = (*LocalStore)(nil)

// LocalStore persists result payloads as JSON files under a base directory,
// one file per job.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) path(jobID string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_result.json", jobID))
}

func (s *LocalStore) Save(_ context.Context, jobID string, payload []byte) error {
	if err := os.WriteFile(s.path(jobID), payload, 0o644); err != nil {
		return fmt.Errorf("write result for %s: %w", jobID, err)
	}
	return nil
}

func (s *LocalStore) Load(_ context.Context, jobID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(jobID))
	if err != nil {
		return nil, fmt.Errorf("read result for %s: %w", jobID, err)
	}
	return data, nil
}

// Delete removes the artifact; a missing file is not an error so deletes
// stay idempotent.
func (s *LocalStore) Delete(_ context.Context, jobID string) error {
	if err := os.Remove(s.path(jobID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete result for %s: %w", jobID, err)
	}
	return nil
}
