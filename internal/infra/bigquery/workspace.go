package bigquery

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"

	"github.com/mrossi/gestionale/internal/workspace"
)

// ClientRow mirrors the clients table.
type ClientRow struct {
	ClientID string `bigquery:"client_id"`
	Name     string `bigquery:"name"`
	Email    string `bigquery:"email"`
}

// ProjectRow mirrors the projects table.
type ProjectRow struct {
	ProjectID string `bigquery:"project_id"`
	Name      string `bigquery:"name"`
	ClientID  string `bigquery:"client_id"`
}

// LoadSnapshot reads the current clients and projects into a read-only
// workspace snapshot for cross-reference validation.
func (r *Repository) LoadSnapshot(ctx context.Context) (*workspace.Snapshot, error) {
	snapshot := &workspace.Snapshot{}

	q := r.client.Query(fmt.Sprintf(
		"SELECT client_id, name, email FROM %s.clients ORDER BY name", r.dataset))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: query clients: %w", err)
	}
	for {
		var row ClientRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LoadSnapshot: read client row: %w", err)
		}
		snapshot.Clients = append(snapshot.Clients, workspace.Client{
			ID:    row.ClientID,
			Name:  row.Name,
			Email: row.Email,
		})
	}

	q = r.client.Query(fmt.Sprintf(
		"SELECT project_id, name, client_id FROM %s.projects ORDER BY name", r.dataset))
	it, err = q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: query projects: %w", err)
	}
	for {
		var row ProjectRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LoadSnapshot: read project row: %w", err)
		}
		snapshot.Projects = append(snapshot.Projects, workspace.Project{
			ID:       row.ProjectID,
			Name:     row.Name,
			ClientID: row.ClientID,
		})
	}

	return snapshot, nil
}

// Ensure Repository satisfies the workspace loader contract.
var _ workspace.Loader = (*Repository)(nil)
