package confirm

import (
	"fmt"
	"strings"
)

// InvalidRecordError halts a confirmation: one draft in the batch is
// missing blocking fields. Ref identifies the record by invoice
// reference when present, draft identifier otherwise, so the operator
// can act without re-deriving the cause.
type InvalidRecordError struct {
	Ref     string
	Missing []string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("record %q non confermabile, campi mancanti: %s",
		e.Ref, strings.Join(e.Missing, ", "))
}
