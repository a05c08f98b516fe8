package jobs

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/uloader/internal/models"
)

var (
	// ErrNotFound means the job id is unknown (or already deleted).
	ErrNotFound = errors.New("job not found")
	// ErrNotReady means the job exists but has not completed yet.
	ErrNotReady = errors.New("job not ready")
)

// FailedError reports that a job's orchestration itself failed; the reason
// is the job's error string.
type FailedError struct {
	Reason string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("job failed: %s", e.Reason)
}

// Store is the in-process job map. It is the only structure mutated from
// multiple goroutines; all access goes through the mutex so a job's state
// transition can never race its own deletion. Status transitions are
// monotonic: pending -> processing -> completed|failed, and terminal states
// only leave the map through Delete.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*models.Job)}
}

// newJobID builds an opaque id unique for the process lifetime; ids are
// never reused even after deletion.
func newJobID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("job_%s_%d", hex[:8], time.Now().Unix())
}

// Create registers a new pending job and returns a snapshot of it.
func (s *Store) Create() models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &models.Job{
		ID:        newJobID(),
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	s.jobs[job.ID] = job
	return *job
}

// Get returns a snapshot of the job.
func (s *Store) Get(jobID string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return *job, nil
}

// MarkProcessing transitions pending -> processing.
func (s *Store) MarkProcessing(jobID string) error {
	return s.transition(jobID, models.StatusPending, func(job *models.Job) {
		job.Status = models.StatusProcessing
	})
}

// Complete attaches the result and transitions processing -> completed.
func (s *Store) Complete(jobID string, result *models.BatchResult) error {
	return s.transition(jobID, models.StatusProcessing, func(job *models.Job) {
		now := time.Now().UTC()
		job.Status = models.StatusCompleted
		job.Result = result
		job.CompletedAt = &now
	})
}

// Fail records an orchestration-level error and transitions to failed.
// Jobs that never started (cancelled while pending) may fail from pending.
func (s *Store) Fail(jobID string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s already %s", jobID, job.Status)
	}
	now := time.Now().UTC()
	job.Status = models.StatusFailed
	job.Error = reason
	job.CompletedAt = &now
	return nil
}

func (s *Store) transition(jobID string, from models.JobStatus, mutate func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	if job.Status != from {
		return fmt.Errorf("job %s is %s, cannot transition from %s", jobID, job.Status, from)
	}
	mutate(job)
	return nil
}

// Delete removes the job. Deleting an unknown id returns ErrNotFound without
// touching the rest of the map.
func (s *Store) Delete(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, jobID)
	return nil
}

// Sweep removes jobs past the retention window and returns their ids so the
// caller can clean up backing artifacts. Terminal jobs age from completion;
// non-terminal jobs age from creation so stuck jobs are reclaimed too.
func (s *Store) Sweep(retention time.Duration) []string {
	cutoff := time.Now().UTC().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, job := range s.jobs {
		ref := job.CreatedAt
		if job.CompletedAt != nil {
			ref = *job.CompletedAt
		}
		if ref.Before(cutoff) {
			delete(s.jobs, id)
			removed = append(removed, id)
		}
	}
	return removed
}
