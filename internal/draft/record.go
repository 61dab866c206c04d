package draft

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Resource is the target record kind a draft will be confirmed into.
type Resource string

const (
	ResourcePayments Resource = "payments"
	ResourceExpenses Resource = "expenses"
)

// Confidence levels reported by the extraction model.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Document types recognized by the extraction model.
const (
	DocTypeCustomerInvoice = "customer_invoice"
	DocTypeSupplierInvoice = "supplier_invoice"
	DocTypeReceipt         = "receipt"
	DocTypeUnknown         = "unknown"
)

// Amount is a monetary value extracted from a document. The zero value
// is the null state. JSON null, a missing key, or a non-numeric value
// all decode to null; an absent amount is never turned into 0.
type Amount struct {
	value float64
	valid bool
}

// AmountOf returns a non-null Amount. Non-finite inputs collapse to null.
func AmountOf(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Amount{value: v, valid: true}
}

// Valid reports whether the amount carries a number.
func (a Amount) Valid() bool { return a.valid }

// Float64 returns the numeric value; 0 with Valid()==false means null.
func (a Amount) Float64() float64 { return a.value }

// UnmarshalJSON coerces numbers and numeric strings; everything else
// becomes null rather than an error, because drafts are untrusted input
// and a bad amount must surface as a validation failure, not a decode
// failure.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*a = Amount{}
			return nil
		}
		str = strings.ReplaceAll(strings.TrimSpace(str), ",", ".")
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			*a = Amount{}
			return nil
		}
		*a = AmountOf(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*a = Amount{}
		return nil
	}
	*a = AmountOf(v)
	return nil
}

// MarshalJSON encodes null or the plain number.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// Record is one extracted interpretation of a source document, not yet
// persisted. Dates are kept as YYYY-MM-DD strings: drafts are untrusted
// and a malformed date must be reportable, not a decode error.
type Record struct {
	ID           string   `json:"id"`
	SourceFiles  []string `json:"source_files"`
	Resource     Resource `json:"resource"`
	Confidence   string   `json:"confidence"`
	DocumentType string   `json:"document_type"`

	Rationale    string `json:"rationale,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	InvoiceRef   string `json:"invoice_ref,omitempty"`

	Amount       Amount `json:"amount"`
	Currency     string `json:"currency,omitempty"`
	DocumentDate string `json:"document_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	PaymentDate  string `json:"payment_date,omitempty"`
	Notes        string `json:"notes,omitempty"`

	ClientID  string `json:"client_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`

	PaymentType   string `json:"payment_type,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`

	ExpenseType string `json:"expense_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Ref identifies the record to a human operator: the invoice reference
// when present, the draft identifier otherwise.
func (r Record) Ref() string {
	if r.InvoiceRef != "" {
		return r.InvoiceRef
	}
	return r.ID
}

// Batch is an ordered set of draft records produced by one extraction
// run. Order is meaningful only for display; confirmation processes
// records independently.
type Batch struct {
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     string    `json:"summary,omitempty"`
	Warnings    []string  `json:"warnings"`
	Records     []Record  `json:"records"`
}
