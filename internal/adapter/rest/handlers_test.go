package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// MockJobRunner is a mock implementation of JobRunner for testing
type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) RunNow(ctx context.Context, name string) (uuid.UUID, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockStuckJobResumer is a mock implementation of StuckJobResumer for testing
type MockStuckJobResumer struct {
	mock.Mock
}

func (m *MockStuckJobResumer) ResumeStuckJob(ctx context.Context, jobName string) error {
	args := m.Called(ctx, jobName)
	return args.Error(0)
}

// MockTransferReverser is a mock implementation of TransferReverser for testing
type MockTransferReverser struct {
	mock.Mock
}

func (m *MockTransferReverser) Reverse(ctx context.Context, transferID uuid.UUID) error {
	args := m.Called(ctx, transferID)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of InstructionHistoryRepository for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, outcome domain.TransferOutcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByInstruction(ctx context.Context, instructionID uuid.UUID) ([]domain.TransferOutcome, error) {
	args := m.Called(ctx, instructionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferOutcome), args.Error(1)
}

func newTestServer(runner *MockJobRunner, resumer *MockStuckJobResumer, reverser *MockTransferReverser, history *MockHistoryRepository) *Server {
	return New(0, zerolog.Nop(), runner, resumer, reverser, history)
}

func TestHandleRunJob_Completed(t *testing.T) {
	runner := new(MockJobRunner)
	runID := uuid.New()
	runner.On("RunNow", mock.Anything, "execute-standing-instructions").Return(runID, nil)

	server := newTestServer(runner, new(MockStuckJobResumer), new(MockTransferReverser), new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/execute-standing-instructions/run", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), runID.String())
	assert.Contains(t, rec.Body.String(), string(domain.JobStatusCompleted))
}

func TestHandleRunJob_BatchFailureCarriesRunIDAndError(t *testing.T) {
	runner := new(MockJobRunner)
	runID := uuid.New()
	runner.On("RunNow", mock.Anything, "execute-standing-instructions").
		Return(runID, assert.AnError)

	server := newTestServer(runner, new(MockStuckJobResumer), new(MockTransferReverser), new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/execute-standing-instructions/run", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), runID.String())
	assert.Contains(t, rec.Body.String(), string(domain.JobStatusFailed))
}

func TestHandleResumeJob_PartitionedJobReportsNotImplemented(t *testing.T) {
	resumer := new(MockStuckJobResumer)
	resumer.On("ResumeStuckJob", mock.Anything, "close-of-business").
		Return(&domain.UnsupportedJobTypeError{JobName: "close-of-business"})

	server := newTestServer(new(MockJobRunner), resumer, new(MockTransferReverser), new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/close-of-business/resume", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHandleResumeJob_Success(t *testing.T) {
	resumer := new(MockStuckJobResumer)
	resumer.On("ResumeStuckJob", mock.Anything, "execute-standing-instructions").Return(nil)

	server := newTestServer(new(MockJobRunner), resumer, new(MockTransferReverser), new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/execute-standing-instructions/resume", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleReverseTransfer_NotFound(t *testing.T) {
	reverser := new(MockTransferReverser)
	transferID := uuid.New()
	reverser.On("Reverse", mock.Anything, transferID).Return(domain.ErrTransferNotFound)

	server := newTestServer(new(MockJobRunner), new(MockStuckJobResumer), reverser, new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodPost, "/api/transfers/"+transferID.String()+"/reverse", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleInstructionHistory_InvalidID(t *testing.T) {
	server := newTestServer(new(MockJobRunner), new(MockStuckJobResumer), new(MockTransferReverser), new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/instructions/not-a-uuid/history", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
