package confirm_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mrossi/gestionale/internal/confirm"
	"github.com/mrossi/gestionale/internal/draft"
)

// recordedCall captures one Create invocation for assertions.
type recordedCall struct {
	Resource string
	Data     map[string]any
}

// MockRecordCreator is a mock implementation of RecordCreator for testing.
type MockRecordCreator struct {
	CreateFunc func(ctx context.Context, resource string, data map[string]any) (string, error)
	Calls      []recordedCall
}

func (m *MockRecordCreator) Create(ctx context.Context, resource string, data map[string]any) (string, error) {
	m.Calls = append(m.Calls, recordedCall{Resource: resource, Data: data})
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, resource, data)
	}
	return fmt.Sprintf("id-%d", len(m.Calls)), nil
}

func validBatch() draft.Batch {
	return draft.Batch{
		Records: []draft.Record{
			{
				ID:           "draft-1",
				Resource:     draft.ResourcePayments,
				Amount:       draft.AmountOf(1200),
				ClientID:     "client-1",
				DocumentDate: "2026-02-20",
				InvoiceRef:   "FAT-1",
			},
			{
				ID:           "draft-2",
				Resource:     draft.ResourceExpenses,
				Amount:       draft.AmountOf(300),
				DocumentDate: "2026-02-21",
				ExpenseType:  "noleggio",
				InvoiceRef:   "SUP-9",
			},
		},
	}
}

func TestConfirmOrderingAndReport(t *testing.T) {
	creator := &MockRecordCreator{}

	report, err := confirm.Confirm(context.Background(), validBatch(), creator)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	if len(creator.Calls) != 2 {
		t.Fatalf("Create called %d times, want 2", len(creator.Calls))
	}
	if creator.Calls[0].Resource != "payments" || creator.Calls[1].Resource != "expenses" {
		t.Errorf("call order = %s, %s; want payments, expenses",
			creator.Calls[0].Resource, creator.Calls[1].Resource)
	}

	want := confirm.Report{
		{Resource: draft.ResourcePayments, ID: "id-1", InvoiceRef: "FAT-1", Amount: 1200},
		{Resource: draft.ResourceExpenses, ID: "id-2", InvoiceRef: "SUP-9", Amount: 300},
	}
	if !reflect.DeepEqual(report, want) {
		t.Errorf("report = %+v, want %+v", report, want)
	}
}

func TestConfirmPaymentPayload(t *testing.T) {
	creator := &MockRecordCreator{}

	batch := validBatch()
	batch.Records = batch.Records[:1]
	batch.Records[0].ProjectID = "project-1"
	batch.Records[0].Notes = "saldo lavori"
	batch.Records[0].DueDate = "2026-03-20"

	if _, err := confirm.Confirm(context.Background(), batch, creator); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	data := creator.Calls[0].Data
	if data["client_id"] != "client-1" {
		t.Errorf("client_id = %v, want client-1", data["client_id"])
	}
	if data["project_id"] != "project-1" {
		t.Errorf("project_id = %v, want project-1", data["project_id"])
	}
	if data["payment_date"] != "2026-02-20" {
		t.Errorf("payment_date = %v, want document date fallback", data["payment_date"])
	}
	if data["payment_type"] != "saldo" || data["payment_status"] != "in_attesa" {
		t.Errorf("normalized defaults missing: type=%v status=%v", data["payment_type"], data["payment_status"])
	}
	if data["amount"] != 1200.0 {
		t.Errorf("amount = %v, want 1200", data["amount"])
	}
	if data["invoice_ref"] != "FAT-1" {
		t.Errorf("invoice_ref = %v, want FAT-1", data["invoice_ref"])
	}
	wantNotes := "saldo lavori\nScadenza documento: 2026-03-20\nImportato dalla chat AI fatture"
	if data["notes"] != wantNotes {
		t.Errorf("notes = %q, want %q", data["notes"], wantNotes)
	}
}

func TestConfirmPaymentDatePrefersExplicitDate(t *testing.T) {
	creator := &MockRecordCreator{}

	batch := validBatch()
	batch.Records = batch.Records[:1]
	batch.Records[0].PaymentDate = "2026-02-25"

	if _, err := confirm.Confirm(context.Background(), batch, creator); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if got := creator.Calls[0].Data["payment_date"]; got != "2026-02-25" {
		t.Errorf("payment_date = %v, want explicit payment date", got)
	}
}

func TestConfirmExpensePayload(t *testing.T) {
	tests := []struct {
		name            string
		description     string
		counterparty    string
		wantDescription string
	}{
		{
			name:            "explicit description wins",
			description:     "  noleggio gru  ",
			counterparty:    "Edilnoleggi SRL",
			wantDescription: "noleggio gru",
		},
		{
			name:            "counterparty fallback",
			counterparty:    " Edilnoleggi SRL ",
			wantDescription: "Edilnoleggi SRL",
		},
		{
			name:            "composed notes fallback",
			wantDescription: "Importato dalla chat AI fatture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &MockRecordCreator{}
			batch := validBatch()
			batch.Records = batch.Records[1:]
			batch.Records[0].Description = tt.description
			batch.Records[0].Counterparty = tt.counterparty

			if _, err := confirm.Confirm(context.Background(), batch, creator); err != nil {
				t.Fatalf("Confirm returned error: %v", err)
			}

			data := creator.Calls[0].Data
			if data["description"] != tt.wantDescription {
				t.Errorf("description = %q, want %q", data["description"], tt.wantDescription)
			}
			if data["expense_date"] != "2026-02-21" {
				t.Errorf("expense_date = %v, want document date", data["expense_date"])
			}
			if data["expense_type"] != "noleggio" {
				t.Errorf("expense_type = %v, want noleggio", data["expense_type"])
			}
			if data["client_id"] != nil {
				t.Errorf("client_id = %v, want nil", data["client_id"])
			}
		})
	}
}

func TestConfirmFailFastOnInvalidRecord(t *testing.T) {
	creator := &MockRecordCreator{}

	batch := validBatch()
	batch.Records[1].Amount = draft.Amount{} // second record has no amount
	batch.Records = append(batch.Records, draft.Record{
		ID:           "draft-3",
		Resource:     draft.ResourcePayments,
		Amount:       draft.AmountOf(10),
		ClientID:     "client-1",
		DocumentDate: "2026-02-22",
	})

	report, err := confirm.Confirm(context.Background(), batch, creator)

	var invalid *confirm.InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidRecordError", err)
	}
	if invalid.Ref != "SUP-9" {
		t.Errorf("Ref = %q, want the second record's invoice reference", invalid.Ref)
	}
	if !reflect.DeepEqual(invalid.Missing, []string{"importo valido"}) {
		t.Errorf("Missing = %v, want [importo valido]", invalid.Missing)
	}

	// The first record was created and reported; nothing after the
	// invalid one was attempted.
	if len(creator.Calls) != 1 {
		t.Errorf("Create called %d times, want 1", len(creator.Calls))
	}
	if len(report) != 1 || report[0].InvoiceRef != "FAT-1" {
		t.Errorf("partial report = %+v, want the first record only", report)
	}
}

func TestConfirmRejectsUnrecognizedResource(t *testing.T) {
	// The resource tag names the target table; a hallucinated value must
	// never reach the creator, however complete the rest of the draft.
	creator := &MockRecordCreator{}
	batch := draft.Batch{
		Records: []draft.Record{{
			ID:           "draft-1",
			Resource:     draft.Resource("ledger"),
			Amount:       draft.AmountOf(100),
			DocumentDate: "2026-02-20",
			ClientID:     "client-1",
		}},
	}

	report, err := confirm.Confirm(context.Background(), batch, creator)

	var invalid *confirm.InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidRecordError", err)
	}
	if !reflect.DeepEqual(invalid.Missing, []string{"tipo record"}) {
		t.Errorf("Missing = %v, want [tipo record]", invalid.Missing)
	}
	if len(creator.Calls) != 0 {
		t.Errorf("Create called %d times for unrecognized resource", len(creator.Calls))
	}
	if len(report) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestConfirmInvalidRecordFallsBackToID(t *testing.T) {
	batch := draft.Batch{
		Records: []draft.Record{{ID: "draft-9", Resource: draft.ResourceExpenses}},
	}

	_, err := confirm.Confirm(context.Background(), batch, &MockRecordCreator{})

	var invalid *confirm.InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidRecordError", err)
	}
	if invalid.Ref != "draft-9" {
		t.Errorf("Ref = %q, want draft identifier fallback", invalid.Ref)
	}
}

func TestConfirmCreatorErrorPropagates(t *testing.T) {
	storageErr := errors.New("insert failed")
	creator := &MockRecordCreator{
		CreateFunc: func(ctx context.Context, resource string, data map[string]any) (string, error) {
			if resource == "expenses" {
				return "", storageErr
			}
			return "id-1", nil
		},
	}

	report, err := confirm.Confirm(context.Background(), validBatch(), creator)
	if !errors.Is(err, storageErr) {
		t.Fatalf("error = %v, want the creator error unchanged", err)
	}
	// No retry: exactly one call per record up to the failure.
	if len(creator.Calls) != 2 {
		t.Errorf("Create called %d times, want 2", len(creator.Calls))
	}
	if len(report) != 1 {
		t.Errorf("partial report has %d records, want 1", len(report))
	}
}

func TestConfirmEmptyBatch(t *testing.T) {
	creator := &MockRecordCreator{}
	report, err := confirm.Confirm(context.Background(), draft.Batch{}, creator)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if len(report) != 0 || len(creator.Calls) != 0 {
		t.Errorf("empty batch produced report=%v calls=%d", report, len(creator.Calls))
	}
}
