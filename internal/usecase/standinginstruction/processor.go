// Package standinginstruction executes due standing instructions as a batch:
// due-ness evaluation, isolated transfer attempts, audit recording, and
// batch-level error aggregation.
package standinginstruction

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
	"github.com/rpfaria/fundpulse-backend/internal/usecase/recurrence"
)

// JobName identifies the standing instruction batch in job-run records
const JobName = "execute-standing-instructions"

// BatchReport summarizes one batch run. Attempted counts only instructions
// whose transfer was actually executed; Skipped counts unsupported
// account-kind pairings.
type BatchReport struct {
	AsOfDate  time.Time
	Evaluated int
	Skipped   int
	Attempted int
	Succeeded int
	Failed    int
}

// Processor iterates all active standing instructions, executes the ones due
// on the business date, and records each attempt in the history log.
type Processor struct {
	instructions domain.InstructionRepository
	history      domain.InstructionHistoryRepository
	runner       *AttemptRunner
	log          zerolog.Logger
}

// NewProcessor creates a new Processor instance
func NewProcessor(
	instructions domain.InstructionRepository,
	history domain.InstructionHistoryRepository,
	runner *AttemptRunner,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		instructions: instructions,
		history:      history,
		runner:       runner,
		log:          log.With().Str("component", "standing_instruction_batch").Logger(),
	}
}

// Run processes every active instruction against asOfDate.
//
// An individual instruction's failure never halts the loop: its error is
// aggregated and processing continues. The returned error is non-nil iff at
// least one instruction failed, and then carries the full list of failures.
// Transfers that succeeded stay committed even when the run as a whole is
// reported failed; each instruction is an independent unit of work.
func (p *Processor) Run(ctx context.Context, asOfDate time.Time) (BatchReport, error) {
	report := BatchReport{AsOfDate: asOfDate}

	active, err := p.instructions.ListActive(ctx, domain.InstructionStatusActive)
	if err != nil {
		return report, fmt.Errorf("failed to list active standing instructions: %w", err)
	}

	var errs *multierror.Error

	for _, instruction := range active {
		report.Evaluated++

		// Only savings-to-savings transfers are supported. Other pairings
		// are a scope restriction, not a failure.
		if !instruction.IsSavingsToSavings() {
			p.log.Warn().
				Str("instruction_id", instruction.ID.String()).
				Msg("Skipping standing instruction: only savings-to-savings transfers are supported")
			report.Skipped++
			continue
		}

		due := false
		if instruction.RecurrenceType == domain.RecurrenceTypePeriodic {
			due = recurrence.IsDue(instruction.Recurrence, asOfDate)
		}

		if !due || !instruction.HasTransferableAmount() {
			continue
		}

		outcome := p.runner.Attempt(ctx, instruction, asOfDate)
		report.Attempted++

		if appendErr := p.history.Append(ctx, outcome); appendErr != nil {
			p.log.Error().
				Err(appendErr).
				Str("instruction_id", instruction.ID.String()).
				Msg("Failed to append standing instruction history")
			errs = multierror.Append(errs, fmt.Errorf("failed to record history for standing instruction %s: %w",
				instruction.ID, appendErr))
		}

		if outcome.Status != domain.OutcomeSuccess {
			report.Failed++
			errs = multierror.Append(errs, outcome.Err)
			continue
		}

		report.Succeeded++
		if updateErr := p.instructions.UpdateLastRunDate(ctx, instruction.ID, asOfDate); updateErr != nil {
			p.log.Error().
				Err(updateErr).
				Str("instruction_id", instruction.ID.String()).
				Msg("Failed to update last run date")
			errs = multierror.Append(errs, fmt.Errorf("failed to update last run date for standing instruction %s: %w",
				instruction.ID, updateErr))
		}
	}

	p.log.Info().
		Time("as_of_date", asOfDate).
		Int("evaluated", report.Evaluated).
		Int("skipped", report.Skipped).
		Int("attempted", report.Attempted).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Standing instruction batch finished")

	return report, errs.ErrorOrNil()
}
