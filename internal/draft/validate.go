package draft

import (
	"strings"

	"github.com/mrossi/gestionale/internal/workspace"
)

// Field labels returned by ValidationErrors. The wording and ordering
// are part of the observable contract: the UI shows them verbatim and
// in this order.
const (
	FieldAmount           = "importo valido"
	FieldDocumentDate     = "data documento"
	FieldResource         = "tipo record"
	FieldClient           = "cliente"
	FieldPaymentType      = "tipo pagamento"
	FieldPaymentStatus    = "stato pagamento"
	FieldExpenseType      = "tipo spesa"
	FieldProject          = "progetto valido"
	FieldClientProject    = "cliente/progetto coerenti"
)

// ValidationErrors returns every blocking field of a draft record, in a
// fixed order: amount, document date, resource-specific fields, then
// cross-reference checks. An empty result means the record is
// confirmable. The input is normalized first; the validator never
// trusts the caller to have done so. A nil snapshot skips the
// cross-reference checks entirely and is never itself a failure.
func ValidationErrors(r Record, ws *workspace.Snapshot) []string {
	r = Normalize(r)
	missing := []string{}

	if !r.Amount.Valid() || r.Amount.Float64() <= 0 {
		missing = append(missing, FieldAmount)
	}
	if blank(r.DocumentDate) {
		missing = append(missing, FieldDocumentDate)
	}

	switch r.Resource {
	case ResourcePayments:
		if blank(r.ClientID) {
			missing = append(missing, FieldClient)
		}
		// Unreachable after a successful Normalize, but the validator
		// must not assume normalization succeeded.
		if blank(r.PaymentType) {
			missing = append(missing, FieldPaymentType)
		}
		if blank(r.PaymentStatus) {
			missing = append(missing, FieldPaymentStatus)
		}
	case ResourceExpenses:
		if blank(r.ExpenseType) {
			missing = append(missing, FieldExpenseType)
		}
	default:
		// The resource tag comes from untrusted model output; anything
		// but the two known kinds blocks the record. It also names the
		// target table downstream, so it must never pass unchecked.
		missing = append(missing, FieldResource)
	}

	if ws != nil && !blank(r.ProjectID) {
		project, found := ws.ProjectByID(r.ProjectID)
		if !found {
			missing = append(missing, FieldProject)
		} else if !blank(r.ClientID) && r.ClientID != project.ClientID {
			missing = append(missing, FieldClientProject)
		}
	}

	return missing
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
