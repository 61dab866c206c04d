package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Repository is the BigQuery-backed record store. It implements the
// storage capability the confirmation orchestrator is injected with:
// one Create call per confirmed draft, one row per call.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository creates a repository for the given project and dataset.
// It assumes Application Default Credentials are configured.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

// dateColumns are payload keys stored as DATE rather than STRING.
var dateColumns = map[string]bool{
	"payment_date": true,
	"expense_date": true,
}

// Create inserts one row into the table named by resource and returns
// its generated identifier. Nil payload values are skipped (NULL
// columns); date strings are converted to civil dates. A failed insert
// returns an error and never a partial identifier.
func (r *Repository) Create(ctx context.Context, resource string, data map[string]any) (string, error) {
	id := uuid.NewString()

	values := map[string]bigquery.Value{
		"id":         id,
		"created_ts": time.Now(),
	}
	for col, v := range data {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && dateColumns[col] {
			d, err := civil.ParseDate(s)
			if err != nil {
				return "", fmt.Errorf("Create: invalid date %q for column %s: %w", s, col, err)
			}
			values[col] = d
			continue
		}
		values[col] = v
	}

	inserter := r.client.Dataset(r.dataset).Table(resource).Inserter()
	if err := inserter.Put(ctx, rowSaver{insertID: id, values: values}); err != nil {
		return "", fmt.Errorf("Create: inserting into %s.%s: %w", r.dataset, resource, err)
	}

	return id, nil
}

// rowSaver adapts a generic column map to the inserter. The insert id
// doubles as a best-effort dedup key on streaming retries.
type rowSaver struct {
	insertID string
	values   map[string]bigquery.Value
}

func (s rowSaver) Save() (map[string]bigquery.Value, string, error) {
	return s.values, s.insertID, nil
}
