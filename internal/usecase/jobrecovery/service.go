// Package jobrecovery detects and resumes batch jobs that were left in a
// RUNNING state past their expected completion window.
package jobrecovery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// Service resumes stuck job runs. Only single-unit (simple) jobs can be
// resumed; partitioned fan-out jobs fail fast with an unsupported error. The
// partitioned registry is kept so the interface survives if fan-out jobs
// come back.
type Service struct {
	executions  domain.JobExecutionRepository
	operator    domain.JobOperator
	partitioned map[string]struct{}
	log         zerolog.Logger
}

// NewService creates a new Service instance
func NewService(executions domain.JobExecutionRepository, operator domain.JobOperator, log zerolog.Logger) *Service {
	return &Service{
		executions:  executions,
		operator:    operator,
		partitioned: make(map[string]struct{}),
		log:         log.With().Str("component", "job_recovery").Logger(),
	}
}

// MarkPartitioned registers a job name as partitioned. No partitioned jobs
// exist today; resuming one fails with UnsupportedJobTypeError.
func (s *Service) MarkPartitioned(jobName string) {
	s.partitioned[jobName] = struct{}{}
}

// ResumeStuckJob restarts every run of jobName currently classified STUCK.
//
// Restart failures are not isolated per run: the first failing restart
// aborts the remaining attempts and propagates as a JobRestartError. This is
// deliberately stricter than the transfer batch's per-instruction isolation.
func (s *Service) ResumeStuckJob(ctx context.Context, jobName string) error {
	stuckIDs, err := s.executions.StuckJobIDs(ctx, jobName)
	if err != nil {
		return fmt.Errorf("failed to list stuck runs for job %q: %w", jobName, err)
	}

	if s.isPartitionedJob(jobName) {
		count, err := s.executions.StuckJobCount(ctx, jobName)
		if err != nil {
			return fmt.Errorf("failed to count stuck runs for job %q: %w", jobName, err)
		}
		if count > 0 {
			s.log.Warn().
				Str("job", jobName).
				Msg("Partitioned job restart requested, but partitioned jobs are not supported")
			return &domain.UnsupportedJobTypeError{JobName: jobName}
		}
	}

	for _, runID := range stuckIDs {
		s.log.Info().
			Str("job", jobName).
			Str("run_id", runID.String()).
			Msg("Restarting stuck job run")

		if err := s.operator.Restart(ctx, runID); err != nil {
			return &domain.JobRestartError{RunID: runID, Err: err}
		}
	}

	return nil
}

func (s *Service) isPartitionedJob(jobName string) bool {
	_, ok := s.partitioned[jobName]
	return ok
}
