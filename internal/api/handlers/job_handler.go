package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markdave123-py/uloader/internal/config"
	"github.com/markdave123-py/uloader/internal/core/batch_engine"
	"github.com/markdave123-py/uloader/internal/jobs"
	"github.com/markdave123-py/uloader/internal/models"
)

type JobHandler struct {
	manager *jobs.Manager
	cfg     *config.Config
}

func NewJobHandler(manager *jobs.Manager, cfg *config.Config) *JobHandler {
	return &JobHandler{manager: manager, cfg: cfg}
}

// ProcessFile handles a single uploaded file: the payload is parked under the
// upload dir, a one-descriptor batch is scheduled and 202 returned.
func (h *JobHandler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cfg := models.DefaultProcessingConfig()
	if raw := r.FormValue("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			http.Error(w, fmt.Sprintf("invalid config: %v", err), http.StatusBadRequest)
			return
		}
	}

	// Sanitize the filename so the stored path stays inside the upload dir.
	cleanName := filepath.Base(header.Filename)
	dest := filepath.Join(h.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), cleanName))

	if err := saveUpload(dest, file); err != nil {
		http.Error(w, fmt.Sprintf("could not store upload: %v", err), http.StatusInternalServerError)
		return
	}

	job, err := h.manager.Submit(
		[]models.SourceDescriptor{{Kind: models.SourceFile, Location: dest}},
		cfg,
		jobs.SubmitOptions{
			MaxWorkers:      1,
			ContinueOnError: true,
			TempFiles:       []string{dest},
		},
	)
	if err != nil {
		os.Remove(dest)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, jobCreated(job))
}

type urlRequest struct {
	URL string `json:"url"`
	models.ProcessingConfig
}

// ProcessURL schedules a one-descriptor batch for a single URL.
func (h *JobHandler) ProcessURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	job, err := h.manager.Submit(
		[]models.SourceDescriptor{{Kind: models.SourceURL, Location: req.URL}},
		req.ProcessingConfig,
		jobs.SubmitOptions{MaxWorkers: 1, ContinueOnError: true},
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, jobCreated(job))
}

// ProcessBatch schedules a batch of mixed sources from the batch config wire
// format (sources + loader_config + max_workers + continue_on_error).
func (h *JobHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	bf, err := batch_engine.ParseBatchFile(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := bf.ProcessingConfig()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := bf.Options(h.cfg.DefaultWorkers, "")
	job, err := h.manager.Submit(bf.Sources, cfg, jobs.SubmitOptions{
		MaxWorkers:      opts.MaxWorkers,
		ContinueOnError: opts.ContinueOnError,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, jobCreated(job))
}

// GetStatus returns the lifecycle snapshot of a job.
func (h *JobHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.manager.GetStatus(chi.URLParam(r, "jobID"))
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// GetResult returns the completed documents. While the job is still pending
// or processing the status payload comes back with 202 instead.
func (h *JobHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.manager.GetStatus(jobID)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if job.Status != models.StatusCompleted {
		status := http.StatusAccepted
		if job.Status == models.StatusFailed {
			status = http.StatusConflict
		}
		writeJSON(w, status, job)
		return
	}

	result, err := h.manager.GetResult(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":      jobID,
		"total_items": result.TotalItems,
		"succeeded":   result.Succeeded,
		"failed":      result.Failed,
		"documents":   serializeDocuments(result.AllDocuments(), result.Format),
		"items":       result.Items,
	})
}

// Cancel stops an in-flight job; the job completes with its partial result.
func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := h.manager.Cancel(jobID); err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	job, err := h.manager.GetStatus(jobID)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// Delete removes the job and its backing artifacts.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(chi.URLParam(r, "jobID")); err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// serializeDocuments shapes the flattened document list per output_format.
func serializeDocuments(docs []models.Document, format models.OutputFormat) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		switch format {
		case models.FormatText:
			out = append(out, map[string]any{"text": d.PageContent})
		case models.FormatElements:
			out = append(out, map[string]any{
				"text":         d.PageContent,
				"element_type": d.Metadata["element_type"],
				"page_number":  d.Metadata["page_number"],
				"metadata":     d.Metadata,
			})
		default: // documents, json
			out = append(out, d)
		}
	}
	return out
}

func jobCreated(job models.Job) map[string]any {
	return map[string]any{
		"job_id": job.ID,
		"status": job.Status,
		"links": []map[string]string{
			{"rel": "status", "href": fmt.Sprintf("/api/v1/jobs/%s", job.ID)},
			{"rel": "result", "href": fmt.Sprintf("/api/v1/jobs/%s/result", job.ID)},
		},
	}
}

func saveUpload(dest string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, src); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
