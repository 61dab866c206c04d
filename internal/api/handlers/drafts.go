package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mrossi/gestionale/internal/api/middleware"
	"github.com/mrossi/gestionale/internal/confirm"
	"github.com/mrossi/gestionale/internal/draft"
	"github.com/mrossi/gestionale/internal/workspace"
)

// DraftsHandler handles draft review: validation and confirmation.
type DraftsHandler struct {
	loader  workspace.Loader
	creator confirm.RecordCreator
	log     zerolog.Logger
}

// NewDraftsHandler creates a new drafts handler.
func NewDraftsHandler(loader workspace.Loader, creator confirm.RecordCreator, log zerolog.Logger) *DraftsHandler {
	return &DraftsHandler{
		loader:  loader,
		creator: creator,
		log:     log,
	}
}

// recordValidation is the per-draft validation verdict.
type recordValidation struct {
	Ref     string   `json:"ref"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
}

// Validate handles POST /api/drafts/validate. Every draft in the batch
// is checked against the current workspace and all blocking reasons are
// reported, so the operator can fix a draft in one pass.
func (h *DraftsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var batch draft.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot, err := h.loader.LoadSnapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load workspace snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load workspace")
		return
	}

	batch = draft.NormalizeBatch(batch)

	results := make([]recordValidation, 0, len(batch.Records))
	valid := true
	for _, rec := range batch.Records {
		missing := draft.ValidationErrors(rec, snapshot)
		if len(missing) > 0 {
			valid = false
		}
		results = append(results, recordValidation{
			Ref:     rec.Ref(),
			Valid:   len(missing) == 0,
			Missing: missing,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   valid,
		"records": results,
	})
}

// Confirm handles POST /api/drafts/confirm. Drafts are persisted
// strictly in batch order; the first invalid draft aborts the batch
// with a 422 carrying the partial report of records already created.
func (h *DraftsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var batch draft.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := confirm.Confirm(ctx, batch, h.creator)
	if err != nil {
		var invalid *confirm.InvalidRecordError
		if errors.As(err, &invalid) {
			h.log.Warn().
				Str("record", invalid.Ref).
				Strs("missing", invalid.Missing).
				Int("created", len(report)).
				Msg("Confirmation aborted on invalid draft")
			middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   invalid.Error(),
				"record":  invalid.Ref,
				"missing": invalid.Missing,
				"created": report,
			})
			return
		}

		h.log.Error().Err(err).Int("created", len(report)).Msg("Confirmation failed mid-batch")
		middleware.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":   "Failed to persist record",
			"created": report,
		})
		return
	}

	h.log.Info().Int("created", len(report)).Msg("Batch confirmed")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"created": report,
		"count":   len(report),
	})
}
