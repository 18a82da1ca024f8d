package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/service"
	"github.com/osint-works/veracity/internal/store"
)

type VerificationHandler struct {
	agent         *service.VerificationAgent
	reclassifier  *service.Reclassifier
	verifications domain.VerificationStore
}

func NewVerificationHandler(agent *service.VerificationAgent, reclassifier *service.Reclassifier, verifications domain.VerificationStore) *VerificationHandler {
	return &VerificationHandler{agent: agent, reclassifier: reclassifier, verifications: verifications}
}

// VerifyFact runs the verification loop for a single fact.
func (h *VerificationHandler) VerifyFact(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}
	factID := chi.URLParam(r, "factID")

	result, err := h.agent.VerifyFact(r.Context(), investigationID, factID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "verification failed")
		return
	}
	if result == nil {
		writeError(w, http.StatusUnprocessableEntity, "fact is not in the verification queue")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// VerifyInvestigation drains the priority queue for an investigation in
// concurrent batches and returns the run stats.
func (h *VerificationHandler) VerifyInvestigation(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	stats, err := h.agent.VerifyInvestigation(r.Context(), investigationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "verification sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Results lists verification results, optionally filtered by ?status=.
func (h *VerificationHandler) Results(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var (
		results []domain.VerificationResult
		err     error
	)
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.VerificationStatus(statusParam)
		switch status {
		case domain.StatusPending, domain.StatusInProgress, domain.StatusConfirmed,
			domain.StatusRefuted, domain.StatusUnverifiable, domain.StatusSuperseded:
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		results, err = h.verifications.GetByStatus(r.Context(), investigationID, status)
	} else {
		results, err = h.verifications.GetAllResults(r.Context(), investigationID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list verification results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (h *VerificationHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}
	factID := chi.URLParam(r, "factID")

	result, err := h.verifications.GetResult(r.Context(), investigationID, factID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "verification result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get verification result")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type resolveAnomalyRequest struct {
	WinnerFactID      string                   `json:"winner_fact_id"`
	LoserFactID       string                   `json:"loser_fact_id"`
	ContradictionType domain.ContradictionType `json:"contradiction_type"`
}

// ResolveAnomaly settles a contradiction pair: the winner keeps its claim,
// the loser is marked SUPERSEDED (temporal) or REFUTED (everything else).
func (h *VerificationHandler) ResolveAnomaly(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req resolveAnomalyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WinnerFactID == "" || req.LoserFactID == "" {
		writeError(w, http.StatusBadRequest, "winner_fact_id and loser_fact_id are required")
		return
	}
	if req.WinnerFactID == req.LoserFactID {
		writeError(w, http.StatusBadRequest, "winner and loser must be different facts")
		return
	}

	err := h.reclassifier.ResolveAnomaly(r.Context(), investigationID, req.WinnerFactID, req.LoserFactID, req.ContradictionType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fact classification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve anomaly")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
