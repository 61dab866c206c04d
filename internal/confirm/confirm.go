package confirm

import (
	"context"
	"strings"

	"github.com/mrossi/gestionale/internal/draft"
)

// RecordCreator is the injected storage capability: one creation call
// per confirmed draft. Implementations must return a stable identifier
// on success and an error otherwise, never a partial result.
type RecordCreator interface {
	Create(ctx context.Context, resource string, data map[string]any) (string, error)
}

// CreatedRecord is one entry of the confirmation report.
type CreatedRecord struct {
	Resource   draft.Resource `json:"resource"`
	ID         string         `json:"id"`
	InvoiceRef string         `json:"invoice_ref,omitempty"`
	Amount     float64        `json:"amount"`
}

// Report lists the created records in the order their drafts were
// processed.
type Report []CreatedRecord

// Confirm turns a batch of drafts into persisted records. The batch is
// normalized first, then each record is processed strictly in sequence:
// re-validated without a workspace (cross-reference checks are the
// caller's pre-check concern), turned into a write payload, and created
// exactly once via creator. Creation is never retried here; a creator
// error propagates unchanged.
//
// On the first invalid record Confirm stops and returns an
// *InvalidRecordError naming it. Records created earlier in the same
// call are not rolled back; they are returned in the partial report so
// the caller can reconcile the aborted batch.
func Confirm(ctx context.Context, batch draft.Batch, creator RecordCreator) (Report, error) {
	batch = draft.NormalizeBatch(batch)
	report := make(Report, 0, len(batch.Records))

	for _, rec := range batch.Records {
		if missing := draft.ValidationErrors(rec, nil); len(missing) > 0 {
			return report, &InvalidRecordError{Ref: rec.Ref(), Missing: missing}
		}

		var data map[string]any
		switch rec.Resource {
		case draft.ResourceExpenses:
			data = expenseData(rec)
		default:
			data = paymentData(rec)
		}

		id, err := creator.Create(ctx, string(rec.Resource), data)
		if err != nil {
			return report, err
		}

		report = append(report, CreatedRecord{
			Resource:   rec.Resource,
			ID:         id,
			InvoiceRef: rec.InvoiceRef,
			Amount:     rec.Amount.Float64(),
		})
	}

	return report, nil
}

// paymentData builds the write payload for a payments draft. The client
// id is guaranteed non-blank by the validation step above.
func paymentData(r draft.Record) map[string]any {
	paymentDate := r.PaymentDate
	if paymentDate == "" {
		paymentDate = r.DocumentDate
	}
	return map[string]any{
		"client_id":      r.ClientID,
		"project_id":     nilIfBlank(r.ProjectID),
		"payment_date":   paymentDate,
		"payment_type":   r.PaymentType,
		"amount":         r.Amount.Float64(),
		"payment_method": nilIfBlank(r.PaymentMethod),
		"invoice_ref":    nilIfBlank(r.InvoiceRef),
		"payment_status": r.PaymentStatus,
		"notes":          draft.BuildNotes(r),
	}
}

// expenseData builds the write payload for an expenses draft. The
// description falls back from the extracted description to the
// counterparty name to the composed notes.
func expenseData(r draft.Record) map[string]any {
	description := strings.TrimSpace(r.Description)
	if description == "" {
		description = strings.TrimSpace(r.Counterparty)
	}
	if description == "" {
		description = draft.BuildNotes(r)
	}
	return map[string]any{
		"client_id":    nilIfBlank(r.ClientID),
		"project_id":   nilIfBlank(r.ProjectID),
		"expense_date": r.DocumentDate,
		"expense_type": r.ExpenseType,
		"amount":       r.Amount.Float64(),
		"invoice_ref":  nilIfBlank(r.InvoiceRef),
		"description":  description,
	}
}

func nilIfBlank(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
