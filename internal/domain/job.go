package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a single job run
type JobStatus string

const (
	JobStatusScheduled JobStatus = "SCHEDULED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusStuck     JobStatus = "STUCK"
)

// JobRun is the persisted record of one batch job execution.
// A run left RUNNING past the expected completion window is classified STUCK
// by the JobExecutionRepository; this core never computes the window itself.
type JobRun struct {
	ID         uuid.UUID
	JobName    string
	Status     JobStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	ErrorLog   string
}
