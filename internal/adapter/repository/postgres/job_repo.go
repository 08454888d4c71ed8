package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// JobRunRepository implements domain.JobRunRepository and
// domain.JobExecutionRepository. The stuck classification lives here: a run
// is STUCK when it has stayed RUNNING longer than stuckAfter.
type JobRunRepository struct {
	db         *DB
	stuckAfter time.Duration
}

// NewJobRunRepository creates a new job run repository. stuckAfter is the
// expected completion window after which a RUNNING job counts as stuck.
func NewJobRunRepository(db *DB, stuckAfter time.Duration) *JobRunRepository {
	return &JobRunRepository{db: db, stuckAfter: stuckAfter}
}

// Create persists a new job run record
func (r *JobRunRepository) Create(ctx context.Context, run *domain.JobRun) error {
	query := `
		INSERT INTO job_runs (id, job_name, status, started_at, finished_at, error_log)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.JobName, string(run.Status), run.StartedAt, run.FinishedAt, run.ErrorLog)
	if err != nil {
		return fmt.Errorf("failed to insert job run: %w", err)
	}
	return nil
}

// GetByID retrieves a job run by its ID
func (r *JobRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobRun, error) {
	query := `
		SELECT id, job_name, status, started_at, finished_at, error_log
		FROM job_runs
		WHERE id = $1
	`

	var (
		run      domain.JobRun
		finished sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.JobName, &run.Status, &run.StartedAt, &finished, &run.ErrorLog)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job run %s: %w", id, err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}

	return &run, nil
}

// Finalize transitions a run to its terminal status
func (r *JobRunRepository) Finalize(ctx context.Context, id uuid.UUID, status domain.JobStatus, finishedAt time.Time, errorLog string) error {
	query := `UPDATE job_runs SET status = $1, finished_at = $2, error_log = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, string(status), finishedAt, errorLog, id)
	if err != nil {
		return fmt.Errorf("failed to finalize job run: %w", err)
	}
	return requireRowAffected(result, id)
}

// MarkRunning transitions a run back to RUNNING for a restart
func (r *JobRunRepository) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	query := `UPDATE job_runs SET status = $1, started_at = $2, finished_at = NULL, error_log = '' WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, string(domain.JobStatusRunning), startedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark job run running: %w", err)
	}
	return requireRowAffected(result, id)
}

// StuckJobCount returns the number of runs currently classified STUCK for the named job
func (r *JobRunRepository) StuckJobCount(ctx context.Context, jobName string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM job_runs
		WHERE job_name = $1 AND status = $2 AND started_at < $3
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, jobName, string(domain.JobStatusRunning), r.stuckCutoff()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count stuck runs for job %q: %w", jobName, err)
	}
	return count, nil
}

// StuckJobIDs returns the run ids currently classified STUCK for the named job
func (r *JobRunRepository) StuckJobIDs(ctx context.Context, jobName string) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM job_runs
		WHERE job_name = $1 AND status = $2 AND started_at < $3
		ORDER BY started_at
	`

	rows, err := r.db.QueryContext(ctx, query, jobName, string(domain.JobStatusRunning), r.stuckCutoff())
	if err != nil {
		return nil, fmt.Errorf("failed to query stuck runs for job %q: %w", jobName, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stuck run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stuck run ids: %w", err)
	}

	return ids, nil
}

func (r *JobRunRepository) stuckCutoff() time.Time {
	return time.Now().Add(-r.stuckAfter)
}

func requireRowAffected(result sql.Result, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job run %s not found", id)
	}
	return nil
}
