package jobrunner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// MockJobRunRepository is a mock implementation of JobRunRepository for testing
type MockJobRunRepository struct {
	mock.Mock
}

func (m *MockJobRunRepository) Create(ctx context.Context, run *domain.JobRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockJobRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobRun), args.Error(1)
}

func (m *MockJobRunRepository) Finalize(ctx context.Context, id uuid.UUID, status domain.JobStatus, finishedAt time.Time, errorLog string) error {
	args := m.Called(ctx, id, status, finishedAt, errorLog)
	return args.Error(0)
}

func (m *MockJobRunRepository) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	args := m.Called(ctx, id, startedAt)
	return args.Error(0)
}

func TestRunNow_RecordsCompletedRun(t *testing.T) {
	ctx := context.Background()
	runs := new(MockJobRunRepository)

	var executedAsOf time.Time
	runner := NewRunner(runs, zerolog.Nop())
	runner.Register("nightly-batch", func(ctx context.Context, asOfDate time.Time) error {
		executedAsOf = asOfDate
		return nil
	})

	runs.On("Create", ctx, mock.MatchedBy(func(run *domain.JobRun) bool {
		return run.JobName == "nightly-batch" && run.Status == domain.JobStatusRunning
	})).Return(nil)
	runs.On("Finalize", ctx, mock.AnythingOfType("uuid.UUID"), domain.JobStatusCompleted, mock.AnythingOfType("time.Time"), "").
		Return(nil)

	runID, err := runner.RunNow(ctx, "nightly-batch")

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, runID)
	// The job body receives a UTC calendar date
	assert.Equal(t, executedAsOf, executedAsOf.Truncate(24*time.Hour))
	runs.AssertExpectations(t)
}

func TestRunNow_JobErrorMarksRunFailed(t *testing.T) {
	ctx := context.Background()
	runs := new(MockJobRunRepository)
	jobErr := errors.New("two instructions failed")

	runner := NewRunner(runs, zerolog.Nop())
	runner.Register("nightly-batch", func(ctx context.Context, asOfDate time.Time) error {
		return jobErr
	})

	runs.On("Create", ctx, mock.AnythingOfType("*domain.JobRun")).Return(nil)
	runs.On("Finalize", ctx, mock.AnythingOfType("uuid.UUID"), domain.JobStatusFailed, mock.AnythingOfType("time.Time"), jobErr.Error()).
		Return(nil)

	_, err := runner.RunNow(ctx, "nightly-batch")

	assert.ErrorIs(t, err, jobErr)
	runs.AssertExpectations(t)
}

func TestRunNow_UnknownJob(t *testing.T) {
	runner := NewRunner(new(MockJobRunRepository), zerolog.Nop())

	_, err := runner.RunNow(context.Background(), "no-such-job")

	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRestart_ReExecutesRecordedRun(t *testing.T) {
	ctx := context.Background()
	runs := new(MockJobRunRepository)
	runID := uuid.New()

	executions := 0
	runner := NewRunner(runs, zerolog.Nop())
	runner.Register("nightly-batch", func(ctx context.Context, asOfDate time.Time) error {
		executions++
		return nil
	})

	runs.On("GetByID", ctx, runID).Return(&domain.JobRun{
		ID:      runID,
		JobName: "nightly-batch",
		Status:  domain.JobStatusStuck,
	}, nil)
	runs.On("MarkRunning", ctx, runID, mock.AnythingOfType("time.Time")).Return(nil)
	runs.On("Finalize", ctx, runID, domain.JobStatusCompleted, mock.AnythingOfType("time.Time"), "").Return(nil)

	err := runner.Restart(ctx, runID)

	assert.NoError(t, err)
	assert.Equal(t, 1, executions)
	runs.AssertExpectations(t)
}

func TestRestart_RunForUnregisteredJob(t *testing.T) {
	ctx := context.Background()
	runs := new(MockJobRunRepository)
	runID := uuid.New()

	runs.On("GetByID", ctx, runID).Return(&domain.JobRun{
		ID:      runID,
		JobName: "decommissioned-job",
		Status:  domain.JobStatusStuck,
	}, nil)

	err := NewRunner(runs, zerolog.Nop()).Restart(ctx, runID)

	assert.ErrorIs(t, err, ErrUnknownJob)
}
