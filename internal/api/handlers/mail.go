package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mrossi/gestionale/internal/api/middleware"
	"github.com/mrossi/gestionale/internal/mailer"
)

// MailHandler handles outbound email endpoints.
type MailHandler struct {
	mailer *mailer.Mailer
	log    zerolog.Logger
}

// NewMailHandler creates a new mail handler.
func NewMailHandler(m *mailer.Mailer, log zerolog.Logger) *MailHandler {
	return &MailHandler{mailer: m, log: log}
}

// Send handles POST /api/mail/send. A payload rejected by the send
// guard gets a 422 with the blocking reason; a transport failure gets
// a 502.
func (h *MailHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload mailer.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := mailer.ValidateSendPayload(payload); err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.mailer.Send(ctx, payload); err != nil {
		h.log.Error().Err(err).Str("to", payload.To).Msg("Failed to deliver email")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to deliver email")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"status": "sent",
	})
}
