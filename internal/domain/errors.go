package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrTransferNotFound is returned when a transfer id does not resolve to a
// persisted account transfer transaction.
var ErrTransferNotFound = errors.New("account transfer not found")

// TransferFailureKind classifies why a transfer attempt failed
type TransferFailureKind string

const (
	TransferFailureValidation          TransferFailureKind = "VALIDATION"
	TransferFailureInsufficientBalance TransferFailureKind = "INSUFFICIENT_BALANCE"
	TransferFailureServiceUnavailable  TransferFailureKind = "SERVICE_UNAVAILABLE"
	TransferFailureUnclassified        TransferFailureKind = "UNCLASSIFIED"
)

// TransferError is the failure result of a TransferExecutor call. Executors
// return it instead of panicking or leaking driver errors so the batch loop
// can classify outcomes without a recover-based isolation mechanism.
type TransferError struct {
	Kind   TransferFailureKind
	Detail string
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// NewTransferError builds a classified transfer failure
func NewTransferError(kind TransferFailureKind, detail string, err error) *TransferError {
	return &TransferError{Kind: kind, Detail: detail, Err: err}
}

// UnsupportedJobTypeError signals an attempt to resume a partitioned job.
// Partitioned execution is not supported; the resume path fails fast instead
// of silently skipping so the caller knows no restart was attempted.
type UnsupportedJobTypeError struct {
	JobName string
}

func (e *UnsupportedJobTypeError) Error() string {
	return fmt.Sprintf("partitioned jobs are not supported, cannot resume job %q", e.JobName)
}

// JobRestartError wraps a failed restart command for a stuck job run.
// Restart failures are fatal for the resume invocation: the first one aborts
// the remaining restart attempts.
type JobRestartError struct {
	RunID uuid.UUID
	Err   error
}

func (e *JobRestartError) Error() string {
	return fmt.Sprintf("failed to restart stuck job run %s: %v", e.RunID, e.Err)
}

func (e *JobRestartError) Unwrap() error {
	return e.Err
}
