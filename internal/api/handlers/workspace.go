package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mrossi/gestionale/internal/api/middleware"
	"github.com/mrossi/gestionale/internal/workspace"
)

// WorkspaceHandler serves the client and project registries the review
// UI needs to resolve identifiers.
type WorkspaceHandler struct {
	loader workspace.Loader
	log    zerolog.Logger
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(loader workspace.Loader, log zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{loader: loader, log: log}
}

// Get handles GET /api/workspace
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.loader.LoadSnapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load workspace snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load workspace")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, snapshot)
}
