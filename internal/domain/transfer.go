package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeStatus is the recorded result of one transfer attempt
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// TransferRequest carries everything the transfer executor needs to move
// funds between two accounts. IsRegularTransaction and WaiveBalanceCheck are
// fixed to true/false respectively by the standing-instruction batch.
type TransferRequest struct {
	FromAccountID        uuid.UUID
	ToAccountID          uuid.UUID
	Amount               decimal.Decimal
	Date                 time.Time
	Description          string
	TransferTypeCode     string
	IsRegularTransaction bool
	WaiveBalanceCheck    bool
}

// TransferReceipt identifies the ledger artifacts created by a completed transfer
type TransferReceipt struct {
	TransferID        uuid.UUID
	WithdrawalEntryID uuid.UUID
	DepositEntryID    uuid.UUID
	Amount            decimal.Decimal
}

// TransferOutcome is the per-instruction, per-run result of a transfer attempt.
// ErrorLog is the short text written to the audit history (empty on success);
// Err carries the full failure for batch-level aggregation (nil on success).
type TransferOutcome struct {
	InstructionID uuid.UUID
	Status        OutcomeStatus
	Amount        decimal.Decimal
	ExecutedAt    time.Time
	ErrorLog      string
	Err           error
}

// AccountTransferTransaction is the persisted ledger record of a completed
// transfer. It links the withdrawal-side and deposit-side account entries and
// is never deleted; a reversal only flags it as void for balance purposes.
type AccountTransferTransaction struct {
	ID                uuid.UUID
	WithdrawalEntryID uuid.UUID
	DepositEntryID    uuid.UUID
	Reversed          bool
	Date              time.Time
	CurrencyCode      string
	Amount            decimal.Decimal
	Description       string
}

// Reverse marks the transfer as voided for subsequent balance computations.
// Reversing an already-reversed transfer is a no-op.
func (t *AccountTransferTransaction) Reverse() {
	t.Reversed = true
}

// IsReversed reports whether the transfer has been voided
func (t *AccountTransferTransaction) IsReversed() bool {
	return t.Reversed
}
