package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// instructionRepository implements domain.InstructionRepository
type instructionRepository struct {
	db *DB
}

// NewInstructionRepository creates a new standing instruction repository
func NewInstructionRepository(db *DB) domain.InstructionRepository {
	return &instructionRepository{db: db}
}

// ListActive retrieves all instructions with the given status
func (r *instructionRepository) ListActive(ctx context.Context, status domain.InstructionStatus) ([]*domain.StandingInstruction, error) {
	query := `
		SELECT id, name, status, from_account_id, from_account_kind,
		       to_account_id, to_account_kind, amount, recurrence_type,
		       recurrence_frequency, recurrence_interval, recurrence_on_day,
		       recurrence_on_month, valid_from, transfer_type_code, last_run_date
		FROM standing_instructions
		WHERE status = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query standing instructions: %w", err)
	}
	defer rows.Close()

	instructions := make([]*domain.StandingInstruction, 0)
	for rows.Next() {
		instruction, err := scanInstruction(rows)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instruction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate standing instructions: %w", err)
	}

	return instructions, nil
}

// UpdateLastRunDate records the business date of the latest successful transfer
func (r *instructionRepository) UpdateLastRunDate(ctx context.Context, id uuid.UUID, runDate time.Time) error {
	query := `UPDATE standing_instructions SET last_run_date = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, runDate, id)
	if err != nil {
		return fmt.Errorf("failed to update last run date: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("standing instruction %s not found", id)
	}

	return nil
}

func scanInstruction(rows *sql.Rows) (*domain.StandingInstruction, error) {
	var (
		instruction domain.StandingInstruction
		interval    sql.NullInt64
		onDay       sql.NullInt64
		onMonth     sql.NullInt64
		validFrom   sql.NullTime
		lastRun     sql.NullTime
	)

	err := rows.Scan(
		&instruction.ID,
		&instruction.Name,
		&instruction.Status,
		&instruction.FromAccountID,
		&instruction.FromAccountKind,
		&instruction.ToAccountID,
		&instruction.ToAccountKind,
		&instruction.Amount,
		&instruction.RecurrenceType,
		&instruction.Recurrence.Frequency,
		&interval,
		&onDay,
		&onMonth,
		&validFrom,
		&instruction.TransferTypeCode,
		&lastRun,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan standing instruction: %w", err)
	}

	// Nullable schedule columns map to zero values, which the recurrence
	// evaluator treats as "never due"
	instruction.Recurrence.Interval = int(interval.Int64)
	instruction.Recurrence.OnDay = int(onDay.Int64)
	instruction.Recurrence.OnMonth = time.Month(onMonth.Int64)
	if validFrom.Valid {
		instruction.Recurrence.ValidFrom = validFrom.Time
	}
	if lastRun.Valid {
		t := lastRun.Time
		instruction.LastRunDate = &t
	}

	return &instruction, nil
}
