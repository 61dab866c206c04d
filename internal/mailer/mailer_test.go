package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func validPayload() Payload {
	return Payload{
		To:         "cliente@example.com",
		Subject:    "Riepilogo pagamenti",
		HTMLBody:   "<p>Gentile cliente</p>",
		TextBody:   "Gentile cliente",
		TemplateID: "payment-summary",
		Status:     "inviato",
	}
}

func TestDocumentIDDecode(t *testing.T) {
	tests := []struct {
		name string
		json string
		want DocumentID
	}{
		{name: "string id", json: `{"document_id": "doc-42"}`, want: "doc-42"},
		{name: "numeric id", json: `{"document_id": 42}`, want: "42"},
		{name: "large numeric id keeps digits", json: `{"document_id": 9007199254740993}`, want: "9007199254740993"},
		{name: "null id", json: `{"document_id": null}`, want: ""},
		{name: "absent id", json: `{}`, want: ""},
		{name: "object id collapses to empty", json: `{"document_id": {"v": 1}}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Payload
			if err := json.Unmarshal([]byte(tt.json), &p); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if p.DocumentID != tt.want {
				t.Errorf("DocumentID = %q, want %q", p.DocumentID, tt.want)
			}
		})
	}
}

func TestValidateSendPayload(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Payload)
		want   error
	}{
		{name: "valid payload", mutate: func(p *Payload) {}, want: nil},
		{name: "missing recipient", mutate: func(p *Payload) { p.To = "" }, want: ErrMissingRecipient},
		{name: "blank recipient", mutate: func(p *Payload) { p.To = "   " }, want: ErrMissingRecipient},
		{name: "missing subject", mutate: func(p *Payload) { p.Subject = "" }, want: ErrMissingSubject},
		{name: "missing html body", mutate: func(p *Payload) { p.HTMLBody = "" }, want: ErrMissingHTMLBody},
		{name: "missing text body", mutate: func(p *Payload) { p.TextBody = "" }, want: ErrMissingTextBody},
		{name: "missing template", mutate: func(p *Payload) { p.TemplateID = "" }, want: ErrMissingTemplate},
		{name: "missing status", mutate: func(p *Payload) { p.Status = "" }, want: ErrMissingStatus},
		{
			name: "automatic send with non-taxable services is blocked",
			mutate: func(p *Payload) {
				p.Automatic = true
				p.HasNonTaxableServices = true
			},
			want: ErrNonTaxableAutomaticSend,
		},
		{
			name: "human send with non-taxable services is allowed",
			mutate: func(p *Payload) {
				p.Automatic = false
				p.HasNonTaxableServices = true
			},
			want: nil,
		},
		{
			name: "automatic send without non-taxable services is allowed",
			mutate: func(p *Payload) { p.Automatic = true },
			want: nil,
		},
		{
			name: "structural checks win over the semantic rule",
			mutate: func(p *Payload) {
				p.To = ""
				p.Automatic = true
				p.HasNonTaxableServices = true
			},
			want: ErrMissingRecipient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			if got := ValidateSendPayload(p); !errors.Is(got, tt.want) {
				t.Errorf("ValidateSendPayload() = %v, want %v", got, tt.want)
			}
		})
	}
}

// mockTransport records deliveries for assertions.
type mockTransport struct {
	SendFunc func(ctx context.Context, p Payload) error
	sent     []Payload
}

func (m *mockTransport) Send(ctx context.Context, p Payload) error {
	m.sent = append(m.sent, p)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, p)
	}
	return nil
}

func TestMailerSendBlockedPayloadNeverReachesTransport(t *testing.T) {
	transport := &mockTransport{}
	m := New(transport, zerolog.New(&bytes.Buffer{}))

	p := validPayload()
	p.Automatic = true
	p.HasNonTaxableServices = true

	err := m.Send(context.Background(), p)
	if !errors.Is(err, ErrNonTaxableAutomaticSend) {
		t.Fatalf("Send() = %v, want guard error", err)
	}
	if len(transport.sent) != 0 {
		t.Errorf("transport received %d payloads, want 0", len(transport.sent))
	}
}

func TestMailerSendDeliversValidPayload(t *testing.T) {
	transport := &mockTransport{}
	m := New(transport, zerolog.New(&bytes.Buffer{}))

	if err := m.Send(context.Background(), validPayload()); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("transport received %d payloads, want 1", len(transport.sent))
	}
}

func TestMailerSendTransportErrorPropagates(t *testing.T) {
	transportErr := errors.New("smtp unavailable")
	transport := &mockTransport{
		SendFunc: func(ctx context.Context, p Payload) error { return transportErr },
	}
	m := New(transport, zerolog.New(&bytes.Buffer{}))

	if err := m.Send(context.Background(), validPayload()); !errors.Is(err, transportErr) {
		t.Errorf("Send() = %v, want transport error unchanged", err)
	}
}
