package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/mrossi/gestionale/internal/draft"
)

// StoredRecord is a confirmed record read back from the store, used by
// the Notion mirror.
type StoredRecord struct {
	ID         string
	Resource   draft.Resource
	InvoiceRef string
	Amount     float64
	Date       civil.Date
	Detail     string
	CreatedTS  time.Time
}

type storedRow struct {
	ID         string              `bigquery:"id"`
	InvoiceRef bigquery.NullString `bigquery:"invoice_ref"`
	Amount     float64             `bigquery:"amount"`
	Date       bigquery.NullDate   `bigquery:"record_date"`
	Detail     bigquery.NullString `bigquery:"detail"`
	CreatedTS  time.Time           `bigquery:"created_ts"`
}

// ListCreatedSince returns records of one resource created at or after
// the given instant, oldest first.
func (r *Repository) ListCreatedSince(ctx context.Context, resource draft.Resource, since time.Time) ([]StoredRecord, error) {
	dateCol, detailCol := "payment_date", "notes"
	if resource == draft.ResourceExpenses {
		dateCol, detailCol = "expense_date", "description"
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT id, invoice_ref, amount, %s AS record_date, %s AS detail, created_ts
		FROM %s.%s
		WHERE created_ts >= @since
		ORDER BY created_ts
	`, dateCol, detailCol, r.dataset, resource))
	q.Parameters = []bigquery.QueryParameter{{Name: "since", Value: since}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCreatedSince: query %s: %w", resource, err)
	}

	var records []StoredRecord
	for {
		var row storedRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCreatedSince: read row: %w", err)
		}
		rec := StoredRecord{
			ID:        row.ID,
			Resource:  resource,
			Amount:    row.Amount,
			CreatedTS: row.CreatedTS,
		}
		if row.InvoiceRef.Valid {
			rec.InvoiceRef = row.InvoiceRef.StringVal
		}
		if row.Date.Valid {
			rec.Date = row.Date.Date
		}
		if row.Detail.Valid {
			rec.Detail = row.Detail.StringVal
		}
		records = append(records, rec)
	}

	return records, nil
}
