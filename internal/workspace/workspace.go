package workspace

import "context"

// Client is an existing client known to the workspace.
type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Project is an existing project known to the workspace, owned by one client.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
}

// Snapshot is a read-only view of the reference entities used for
// cross-reference checks on draft records. A nil *Snapshot is a legal
// input everywhere and means "no cross-reference checks possible".
type Snapshot struct {
	Clients  []Client  `json:"clients"`
	Projects []Project `json:"projects"`
}

// ProjectByID looks up a project in the snapshot.
func (s *Snapshot) ProjectByID(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ClientByID looks up a client in the snapshot.
func (s *Snapshot) ClientByID(id string) (Client, bool) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// Loader supplies the current snapshot. Implemented by the record store;
// mocked in tests.
type Loader interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}
