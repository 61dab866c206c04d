package jobs

import (
	"context"
	"time"

	"github.com/mrossi/gestionale/internal/draft"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExtractDrafts represents an AI draft-extraction job.
	JobTypeExtractDrafts JobType = "extract_drafts"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ExtractDraftsJob asks a worker to run AI extraction over a set of
// uploaded source documents. The resulting draft batch stays on the
// job until the operator reviews and confirms it; drafts are never
// persisted on their own.
type ExtractDraftsJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// SourceURIs are the gs:// URIs of the documents to interpret.
	SourceURIs []string `json:"source_uris"`

	// Batch holds the extraction result once the job completes.
	Batch *draft.Batch `json:"batch,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ExtractDraftsJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ExtractDraftsJob) GetType() JobType {
	return JobTypeExtractDrafts
}

// GetStatus implements the Job interface.
func (j *ExtractDraftsJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishExtractDrafts publishes a draft-extraction job.
	PublishExtractDrafts(ctx context.Context, job *ExtractDraftsJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status,
// so operators can poll extraction progress and collect results.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExtractDraftsJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExtractDraftsJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractDraftsJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
