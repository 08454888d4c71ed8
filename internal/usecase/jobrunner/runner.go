// Package jobrunner records job-run lifecycle around registered batch jobs.
// Every execution leaves a JobRun row behind (RUNNING, then COMPLETED or
// FAILED), which is what makes stuck-run detection possible.
package jobrunner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// ErrUnknownJob is returned when a job name has no registered function
var ErrUnknownJob = errors.New("unknown job")

// JobFunc is a batch job body. asOfDate is the business date of the run.
type JobFunc func(ctx context.Context, asOfDate time.Time) error

// Runner executes registered jobs and maintains their run records. It also
// implements domain.JobOperator so stuck runs can be restarted through it.
type Runner struct {
	runs domain.JobRunRepository
	jobs map[string]JobFunc
	now  func() time.Time
	log  zerolog.Logger
}

// NewRunner creates a new Runner instance
func NewRunner(runs domain.JobRunRepository, log zerolog.Logger) *Runner {
	return &Runner{
		runs: runs,
		jobs: make(map[string]JobFunc),
		now:  time.Now,
		log:  log.With().Str("component", "job_runner").Logger(),
	}
}

// Register adds a named job. Registering the same name twice replaces the
// previous function.
func (r *Runner) Register(name string, fn JobFunc) {
	r.jobs[name] = fn
}

// RunNow executes the named job once against the current business date and
// returns the id of the recorded run. The run record is finalized COMPLETED
// or FAILED before RunNow returns; the job's own error is passed through.
func (r *Runner) RunNow(ctx context.Context, name string) (uuid.UUID, error) {
	fn, ok := r.jobs[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	started := r.now()
	run := &domain.JobRun{
		ID:        uuid.New(),
		JobName:   name,
		Status:    domain.JobStatusRunning,
		StartedAt: started,
	}
	if err := r.runs.Create(ctx, run); err != nil {
		return uuid.Nil, fmt.Errorf("failed to record job run for %q: %w", name, err)
	}

	return run.ID, r.execute(ctx, run.ID, name, fn)
}

// Restart re-executes a previously recorded run, implementing
// domain.JobOperator for the stuck-job recovery service.
func (r *Runner) Restart(ctx context.Context, runID uuid.UUID) error {
	run, err := r.runs.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load job run %s: %w", runID, err)
	}

	fn, ok := r.jobs[run.JobName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, run.JobName)
	}

	if err := r.runs.MarkRunning(ctx, runID, r.now()); err != nil {
		return fmt.Errorf("failed to mark job run %s running: %w", runID, err)
	}

	return r.execute(ctx, runID, run.JobName, fn)
}

func (r *Runner) execute(ctx context.Context, runID uuid.UUID, name string, fn JobFunc) error {
	r.log.Info().
		Str("job", name).
		Str("run_id", runID.String()).
		Msg("Executing job")

	jobErr := fn(ctx, businessDate(r.now()))
	finished := r.now()

	status := domain.JobStatusCompleted
	errorLog := ""
	if jobErr != nil {
		status = domain.JobStatusFailed
		errorLog = jobErr.Error()
	}

	if err := r.runs.Finalize(ctx, runID, status, finished, errorLog); err != nil {
		r.log.Error().
			Err(err).
			Str("job", name).
			Str("run_id", runID.String()).
			Msg("Failed to finalize job run record")
		if jobErr == nil {
			return fmt.Errorf("failed to finalize job run %s: %w", runID, err)
		}
	}

	if jobErr != nil {
		r.log.Error().
			Err(jobErr).
			Str("job", name).
			Str("run_id", runID.String()).
			Msg("Job failed")
		return jobErr
	}

	r.log.Info().
		Str("job", name).
		Str("run_id", runID.String()).
		Msg("Job completed")
	return nil
}

// businessDate truncates a timestamp to the UTC calendar date jobs run
// against.
func businessDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
