package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrossi/gestionale/internal/api/middleware"
	"github.com/mrossi/gestionale/internal/gcs"
	"github.com/mrossi/gestionale/internal/jobs"
)

// DocumentsHandler handles document upload and extraction endpoints.
type DocumentsHandler struct {
	store     gcs.DocumentStore
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	log       zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(store gcs.DocumentStore, publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		store:     store,
		publisher: publisher,
		jobStore:  jobStore,
		log:       log,
	}
}

// Upload handles POST /api/documents/upload?filename=fattura.pdf
// The request body is streamed to the document bucket.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename := filepath.Base(r.URL.Query().Get("filename"))
	if filename == "" || filename == "." {
		middleware.WriteError(w, http.StatusBadRequest, "filename is required")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	objectName := fmt.Sprintf("uploads/%s/%s-%s",
		time.Now().Format("2006/01/02"), uuid.New().String(), filename)

	uri, err := h.store.Put(ctx, objectName, contentType, r.Body)
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to upload document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	h.log.Info().Str("gcs_uri", uri).Msg("Document uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"gcs_uri": uri,
		"status":  "uploaded",
	})
}

// EnqueueExtraction handles POST /api/documents/extract
func (h *DocumentsHandler) EnqueueExtraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceURIs []string `json:"source_uris"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.SourceURIs) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "source_uris is required")
		return
	}

	ctx := r.Context()

	job := &jobs.ExtractDraftsJob{
		SourceURIs: req.SourceURIs,
	}

	if err := h.publisher.PublishExtractDrafts(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Int("sources", len(req.SourceURIs)).Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}. A completed job carries the
// extracted draft batch for review.
func (h *DocumentsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.jobStore.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *DocumentsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.jobStore.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
