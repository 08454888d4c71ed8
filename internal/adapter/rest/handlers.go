package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
	"github.com/rpfaria/fundpulse-backend/internal/usecase/jobrunner"
)

type runJobResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type historyEntry struct {
	InstructionID string          `json:"instructionId"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	ExecutedAt    time.Time       `json:"executedAt"`
	ErrorLog      string          `json:"errorLog,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRunJob executes the named job immediately. A run that finishes with
// per-instruction failures is still a recorded run, so the response carries
// the run id alongside the aggregated error text.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	runID, err := s.runner.RunNow(r.Context(), name)
	if err != nil {
		if errors.Is(err, jobrunner.ErrUnknownJob) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if runID == uuid.Nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusInternalServerError, runJobResponse{
			RunID:  runID.String(),
			Status: string(domain.JobStatusFailed),
			Error:  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, runJobResponse{
		RunID:  runID.String(),
		Status: string(domain.JobStatusCompleted),
	})
}

func (s *Server) handleResumeJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.resumer.ResumeStuckJob(r.Context(), name)
	if err != nil {
		var unsupported *domain.UnsupportedJobTypeError
		if errors.As(err, &unsupported) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInstructionHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instruction id")
		return
	}

	outcomes, err := s.history.ListByInstruction(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("instruction_id", id.String()).Msg("Failed to list instruction history")
		writeError(w, http.StatusInternalServerError, "failed to list instruction history")
		return
	}

	entries := make([]historyEntry, 0, len(outcomes))
	for _, outcome := range outcomes {
		entries = append(entries, historyEntry{
			InstructionID: outcome.InstructionID.String(),
			Status:        string(outcome.Status),
			Amount:        outcome.Amount,
			ExecutedAt:    outcome.ExecutedAt,
			ErrorLog:      outcome.ErrorLog,
		})
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleReverseTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer id")
		return
	}

	if err := s.reverser.Reverse(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTransferNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.Error().Err(err).Str("transfer_id", id.String()).Msg("Failed to reverse transfer")
		writeError(w, http.StatusInternalServerError, "failed to reverse transfer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
