package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// historyRepository implements domain.InstructionHistoryRepository
type historyRepository struct {
	db *DB
}

// NewHistoryRepository creates a new standing instruction history repository
func NewHistoryRepository(db *DB) domain.InstructionHistoryRepository {
	return &historyRepository{db: db}
}

// Append records the outcome of one transfer attempt
func (r *historyRepository) Append(ctx context.Context, outcome domain.TransferOutcome) error {
	query := `
		INSERT INTO standing_instruction_history (standing_instruction_id, status, amount, execution_time, error_log)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		outcome.InstructionID,
		string(outcome.Status),
		outcome.Amount,
		outcome.ExecutedAt,
		outcome.ErrorLog,
	)
	if err != nil {
		return fmt.Errorf("failed to insert standing instruction history: %w", err)
	}

	return nil
}

// ListByInstruction retrieves all recorded attempts for an instruction, most recent first
func (r *historyRepository) ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]domain.TransferOutcome, error) {
	query := `
		SELECT standing_instruction_id, status, amount, execution_time, error_log
		FROM standing_instruction_history
		WHERE standing_instruction_id = $1
		ORDER BY execution_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, instructionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standing instruction history: %w", err)
	}
	defer rows.Close()

	outcomes := make([]domain.TransferOutcome, 0)
	for rows.Next() {
		var outcome domain.TransferOutcome
		err := rows.Scan(
			&outcome.InstructionID,
			&outcome.Status,
			&outcome.Amount,
			&outcome.ExecutedAt,
			&outcome.ErrorLog,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing instruction history: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate standing instruction history: %w", err)
	}

	return outcomes, nil
}
