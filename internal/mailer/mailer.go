package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// DocumentID identifies the document an email is about. Upstream
// systems emit it as either a JSON string or a number; both decode to
// the string form, and anything else collapses to empty rather than
// failing the whole payload. The field is optional, so a missing or
// malformed id never blocks a send on its own.
type DocumentID string

func (d *DocumentID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		*d = ""
		return nil
	}
	switch x := v.(type) {
	case string:
		*d = DocumentID(x)
	case json.Number:
		*d = DocumentID(x.String())
	default:
		*d = ""
	}
	return nil
}

// Payload is a transactional email ready for delivery. Automatic marks
// sends triggered by the system rather than a person;
// HasNonTaxableServices reports whether the underlying computation
// involved at least one non-taxable line.
type Payload struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	HTMLBody   string `json:"html_body"`
	TextBody   string `json:"text_body"`
	TemplateID string `json:"template_id"`
	Status     string `json:"status"`
	DocumentID DocumentID `json:"document_id,omitempty"`

	Automatic             bool `json:"automatic"`
	HasNonTaxableServices bool `json:"has_non_taxable_services,omitempty"`
}

// Guard failures. Each message corresponds to one user-facing reason,
// so the checks are fail-fast: the first failing one wins.
var (
	ErrMissingRecipient = errors.New("destinatario mancante")
	ErrMissingSubject   = errors.New("oggetto mancante")
	ErrMissingHTMLBody  = errors.New("contenuto HTML mancante")
	ErrMissingTextBody  = errors.New("contenuto testuale mancante")
	ErrMissingTemplate  = errors.New("template mancante")
	ErrMissingStatus    = errors.New("stato documento mancante")

	// ErrNonTaxableAutomaticSend blocks automatic sends whose underlying
	// computation contains a non-taxable service line: the amount due is
	// legally ambiguous there, and only a human may decide to send.
	ErrNonTaxableAutomaticSend = errors.New(
		"invio automatico bloccato: il documento contiene servizi non imponibili")
)

// ValidateSendPayload gates a payload before it reaches the transport.
// It returns nil when sending is allowed, otherwise the single reason
// the send is blocked. A human-triggered send is allowed even with
// non-taxable services present.
func ValidateSendPayload(p Payload) error {
	switch {
	case strings.TrimSpace(p.To) == "":
		return ErrMissingRecipient
	case strings.TrimSpace(p.Subject) == "":
		return ErrMissingSubject
	case strings.TrimSpace(p.HTMLBody) == "":
		return ErrMissingHTMLBody
	case strings.TrimSpace(p.TextBody) == "":
		return ErrMissingTextBody
	case strings.TrimSpace(p.TemplateID) == "":
		return ErrMissingTemplate
	case strings.TrimSpace(p.Status) == "":
		return ErrMissingStatus
	}
	if p.Automatic && p.HasNonTaxableServices {
		return ErrNonTaxableAutomaticSend
	}
	return nil
}

// Transport delivers a payload that already passed the guard. The
// mailer makes no delivery guarantee beyond what the transport offers.
type Transport interface {
	Send(ctx context.Context, p Payload) error
}

// Mailer gates every outbound email through ValidateSendPayload before
// handing it to the transport.
type Mailer struct {
	transport Transport
	log       zerolog.Logger
}

// New creates a Mailer over the given transport.
func New(transport Transport, log zerolog.Logger) *Mailer {
	return &Mailer{transport: transport, log: log}
}

// Send validates the payload and delivers it. A guard failure is
// returned as-is and the transport is never reached.
func (m *Mailer) Send(ctx context.Context, p Payload) error {
	if err := ValidateSendPayload(p); err != nil {
		m.log.Warn().
			Err(err).
			Str("to", p.To).
			Str("template_id", p.TemplateID).
			Bool("automatic", p.Automatic).
			Msg("Outbound email blocked")
		return err
	}

	if err := m.transport.Send(ctx, p); err != nil {
		return err
	}

	m.log.Info().
		Str("to", p.To).
		Str("template_id", p.TemplateID).
		Bool("automatic", p.Automatic).
		Msg("Outbound email sent")
	return nil
}

// LogTransport is a development transport that only logs the payload.
type LogTransport struct {
	Log zerolog.Logger
}

// Send implements Transport.
func (t *LogTransport) Send(ctx context.Context, p Payload) error {
	t.Log.Info().
		Str("to", p.To).
		Str("subject", p.Subject).
		Str("template_id", p.TemplateID).
		Msg("LogTransport: email not actually delivered")
	return nil
}
