package draft

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	got := Normalize(Record{ID: "d-1", Resource: ResourcePayments})

	if got.PaymentType != "saldo" {
		t.Errorf("PaymentType = %q, want saldo", got.PaymentType)
	}
	if got.PaymentMethod != "bonifico" {
		t.Errorf("PaymentMethod = %q, want bonifico", got.PaymentMethod)
	}
	if got.PaymentStatus != "in_attesa" {
		t.Errorf("PaymentStatus = %q, want in_attesa", got.PaymentStatus)
	}
	// Both default sets are merged regardless of resource kind.
	if got.ExpenseType != "acquisto_materiale" {
		t.Errorf("ExpenseType = %q, want acquisto_materiale", got.ExpenseType)
	}
	if got.Confidence != ConfidenceMedium {
		t.Errorf("Confidence = %q, want medium", got.Confidence)
	}
	if got.DocumentType != DocTypeUnknown {
		t.Errorf("DocumentType = %q, want unknown", got.DocumentType)
	}
	if got.SourceFiles == nil {
		t.Error("SourceFiles = nil, want empty slice")
	}
}

func TestNormalizeKeepsExtractedValues(t *testing.T) {
	in := Record{
		Resource:      ResourceExpenses,
		Confidence:    ConfidenceHigh,
		DocumentType:  DocTypeReceipt,
		PaymentType:   "acconto",
		PaymentStatus: "pagato",
		ExpenseType:   "noleggio",
		SourceFiles:   []string{"ricevuta.pdf"},
	}
	got := Normalize(in)

	if got.PaymentType != "acconto" || got.PaymentStatus != "pagato" {
		t.Errorf("extracted payment fields overwritten: %q/%q", got.PaymentType, got.PaymentStatus)
	}
	if got.ExpenseType != "noleggio" {
		t.Errorf("ExpenseType = %q, want noleggio", got.ExpenseType)
	}
	if got.Confidence != ConfidenceHigh || got.DocumentType != DocTypeReceipt {
		t.Errorf("confidence/document type overwritten: %q/%q", got.Confidence, got.DocumentType)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	records := []Record{
		{},
		{ID: "d-1", Resource: ResourcePayments, Amount: AmountOf(1200)},
		{ID: "d-2", Resource: ResourceExpenses, Notes: "materiale cantiere", DueDate: "2026-03-01"},
	}

	for _, r := range records {
		once := Normalize(r)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %+v:\nonce:  %+v\ntwice: %+v", r, once, twice)
		}
	}
}

func TestNormalizeNeverFabricatesAmount(t *testing.T) {
	tests := []struct {
		name string
		in   Amount
	}{
		{name: "null", in: Amount{}},
		{name: "nan", in: Amount{value: math.NaN(), valid: true}},
		{name: "positive infinity", in: Amount{value: math.Inf(1), valid: true}},
		{name: "negative infinity", in: Amount{value: math.Inf(-1), valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(Record{Amount: tt.in})
			if got.Amount.Valid() {
				t.Errorf("Amount = %v, want null", got.Amount.Float64())
			}
			if got.Amount.Float64() != 0 {
				t.Errorf("null amount carries value %v", got.Amount.Float64())
			}
		})
	}
}

func TestNormalizeBatch(t *testing.T) {
	b := NormalizeBatch(Batch{
		Records: []Record{{ID: "d-1"}, {ID: "d-2", PaymentType: "acconto"}},
	})

	if b.Warnings == nil {
		t.Error("Warnings = nil, want empty slice")
	}
	if b.Records[0].PaymentType != "saldo" {
		t.Errorf("record 0 not normalized: PaymentType = %q", b.Records[0].PaymentType)
	}
	if b.Records[1].PaymentType != "acconto" {
		t.Errorf("record 1 extracted value overwritten: %q", b.Records[1].PaymentType)
	}
}
