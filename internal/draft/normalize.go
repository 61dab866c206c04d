package draft

// Default field values applied to drafts before validation. Both the
// payment and the expense defaults are merged into every record
// regardless of its resource kind: the normalizer stays resource
// agnostic and cheap, and the validator is what enforces the
// resource-specific requirements.
const (
	DefaultPaymentType   = "saldo"
	DefaultPaymentMethod = "bonifico"
	DefaultPaymentStatus = "in_attesa"
	DefaultExpenseType   = "acquisto_materiale"
)

// paymentDefaults and expenseDefaults are the two explicit default sets
// unioned into a record; fields already set by extraction always win.
var paymentDefaults = Record{
	PaymentType:   DefaultPaymentType,
	PaymentMethod: DefaultPaymentMethod,
	PaymentStatus: DefaultPaymentStatus,
}

var expenseDefaults = Record{
	ExpenseType: DefaultExpenseType,
}

// Normalize fills structurally-required defaults on a single draft
// record and collapses a non-finite amount to null. It is pure and
// idempotent: normalizing an already-normalized record yields the same
// record.
func Normalize(r Record) Record {
	if r.SourceFiles == nil {
		r.SourceFiles = []string{}
	}
	if r.Confidence == "" {
		r.Confidence = ConfidenceMedium
	}
	if r.DocumentType == "" {
		r.DocumentType = DocTypeUnknown
	}

	if r.PaymentType == "" {
		r.PaymentType = paymentDefaults.PaymentType
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = paymentDefaults.PaymentMethod
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = paymentDefaults.PaymentStatus
	}
	if r.ExpenseType == "" {
		r.ExpenseType = expenseDefaults.ExpenseType
	}

	// Amount is either a finite number or null, never a fabricated 0.
	if r.Amount.Valid() {
		r.Amount = AmountOf(r.Amount.Float64())
	}

	return r
}

// NormalizeBatch applies Normalize to every record and defaults the
// batch warnings to an empty list.
func NormalizeBatch(b Batch) Batch {
	if b.Warnings == nil {
		b.Warnings = []string{}
	}
	records := make([]Record, len(b.Records))
	for i, r := range b.Records {
		records[i] = Normalize(r)
	}
	b.Records = records
	return b
}
