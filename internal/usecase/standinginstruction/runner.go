package standinginstruction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// AttemptRunner executes a single standing-instruction transfer and folds
// every possible failure into a structured outcome. An attempt never returns
// an error: failures are classified and carried inside the outcome so the
// batch loop can aggregate them without catch-style isolation.
type AttemptRunner struct {
	executor domain.TransferExecutor
	log      zerolog.Logger
}

// NewAttemptRunner creates a new AttemptRunner instance
func NewAttemptRunner(executor domain.TransferExecutor, log zerolog.Logger) *AttemptRunner {
	return &AttemptRunner{
		executor: executor,
		log:      log.With().Str("component", "transfer_attempt").Logger(),
	}
}

// Attempt builds the transfer request for the instruction and executes it on
// the given transaction date. Standing instruction transfers are always
// regular transactions and never waive the balance-sufficiency check.
func (r *AttemptRunner) Attempt(ctx context.Context, instruction *domain.StandingInstruction, transactionDate time.Time) domain.TransferOutcome {
	req := domain.TransferRequest{
		FromAccountID:        instruction.FromAccountID,
		ToAccountID:          instruction.ToAccountID,
		Amount:               instruction.Amount,
		Date:                 transactionDate,
		Description:          instruction.Name + " Standing instruction transfer",
		TransferTypeCode:     instruction.TransferTypeCode,
		IsRegularTransaction: true,
		WaiveBalanceCheck:    false,
	}

	receipt, err := r.executor.Transfer(ctx, req)
	executedAt := time.Now()

	if err != nil {
		errorLog, wrapped := r.classifyFailure(err, instruction)
		r.log.Error().
			Err(err).
			Str("instruction_id", instruction.ID.String()).
			Msg("Standing instruction transfer failed")

		return domain.TransferOutcome{
			InstructionID: instruction.ID,
			Status:        domain.OutcomeFailed,
			Amount:        instruction.Amount,
			ExecutedAt:    executedAt,
			ErrorLog:      errorLog,
			Err:           wrapped,
		}
	}

	return domain.TransferOutcome{
		InstructionID: instruction.ID,
		Status:        domain.OutcomeSuccess,
		Amount:        receipt.Amount,
		ExecutedAt:    executedAt,
	}
}

// classifyFailure maps an executor failure to the short audit-log text and
// the full error surfaced in the batch aggregate. Anything that is not a
// *TransferError counts as unclassified.
func (r *AttemptRunner) classifyFailure(err error, instruction *domain.StandingInstruction) (string, error) {
	kind := domain.TransferFailureUnclassified
	detail := err.Error()

	var terr *domain.TransferError
	if errors.As(err, &terr) {
		kind = terr.Kind
		detail = terr.Detail
	}

	var errorLog string
	switch kind {
	case domain.TransferFailureValidation:
		errorLog = "validation failure while transferring funds: " + detail
	case domain.TransferFailureInsufficientBalance:
		errorLog = "insufficient account balance: " + detail
	case domain.TransferFailureServiceUnavailable:
		errorLog = "transfer service unavailable: " + detail
	default:
		errorLog = "unhandled failure while transferring funds: " + detail
	}

	wrapped := fmt.Errorf("%s failure while transferring funds for standing instruction %s from account %s to account %s: %w",
		kind, instruction.ID, instruction.FromAccountID, instruction.ToAccountID, err)

	return errorLog, wrapped
}
