package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InstructionRepository defines the interface for standing instruction persistence operations
type InstructionRepository interface {
	// ListActive retrieves all instructions with the given status
	ListActive(ctx context.Context, status InstructionStatus) ([]*StandingInstruction, error)

	// UpdateLastRunDate records the business date of the latest successful transfer
	UpdateLastRunDate(ctx context.Context, id uuid.UUID, runDate time.Time) error
}

// TransferExecutor executes fund transfers between accounts.
// Transfer runs as a single atomic unit of work: a failure mid-transfer
// leaves no partial ledger state. Failures are returned as *TransferError.
type TransferExecutor interface {
	// Transfer moves funds per the request and returns a receipt identifying
	// the created ledger artifacts
	Transfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error)

	// Reverse voids a completed transfer and compensates both account
	// balances. Reversing an already-reversed transfer is a no-op.
	Reverse(ctx context.Context, transferID uuid.UUID) error
}

// InstructionHistoryRepository is the audit log for transfer attempts.
// One row is appended per attempted instruction per run, success or failure.
type InstructionHistoryRepository interface {
	// Append records the outcome of one transfer attempt
	Append(ctx context.Context, outcome TransferOutcome) error

	// ListByInstruction retrieves all recorded attempts for an instruction,
	// most recent first
	ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]TransferOutcome, error)
}

// JobRunRepository defines the interface for job run persistence operations
type JobRunRepository interface {
	// Create persists a new job run record
	Create(ctx context.Context, run *JobRun) error

	// GetByID retrieves a job run by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*JobRun, error)

	// Finalize transitions a run to its terminal status
	Finalize(ctx context.Context, id uuid.UUID, status JobStatus, finishedAt time.Time, errorLog string) error

	// MarkRunning transitions a run back to RUNNING for a restart
	MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error
}

// JobExecutionRepository classifies job runs that were left incomplete.
// The repository owns the expected-completion-window computation; callers
// only consume its STUCK classification.
type JobExecutionRepository interface {
	// StuckJobCount returns the number of runs currently classified STUCK
	// for the named job
	StuckJobCount(ctx context.Context, jobName string) (int, error)

	// StuckJobIDs returns the run ids currently classified STUCK for the
	// named job
	StuckJobIDs(ctx context.Context, jobName string) ([]uuid.UUID, error)
}

// JobOperator issues control commands against job runs
type JobOperator interface {
	// Restart re-executes the job run with the given id
	Restart(ctx context.Context, runID uuid.UUID) error
}
