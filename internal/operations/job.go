package operations

import (
	"time"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the job has finished
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// Job is the history record of one pipeline run
type Job struct {
	ID          string       `json:"id"`
	Trigger     string       `json:"trigger,omitempty"`
	Step        string       `json:"step,omitempty"`
	Status      JobStatus    `json:"status"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Steps       []JobStepRun `json:"steps,omitempty"`
}

// JobStepRun is the outcome of one step inside a job
type JobStepRun struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   StepStatus             `json:"status"`
	Attempts int                    `json:"attempts"`
	Message  string                 `json:"message,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Duration string                 `json:"duration,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// JobStore interface for job persistence
type JobStore interface {
	CreateJob(job *Job) error
	GetJob(id string) (*Job, error)
	UpdateJob(job *Job) error
	ListJobs(filter JobFilter) ([]*Job, error)
	DeleteJob(id string) error
}

// JobFilter for querying jobs
type JobFilter struct {
	Status JobStatus
	Since  time.Time
	Limit  int
}

func jobStatusFor(status OperationStatusValue) JobStatus {
	switch status {
	case OperationStatusRunning:
		return JobStatusRunning
	case OperationStatusCompleted:
		return JobStatusCompleted
	case OperationStatusFailed:
		return JobStatusFailed
	case OperationStatusCancelled:
		return JobStatusCancelled
	default:
		return JobStatusPending
	}
}
