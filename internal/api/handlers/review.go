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

type ReviewHandler struct {
	agent         *service.VerificationAgent
	verifications domain.VerificationStore
}

func NewReviewHandler(agent *service.VerificationAgent, verifications domain.VerificationStore) *ReviewHandler {
	return &ReviewHandler{agent: agent, verifications: verifications}
}

// Pending lists verification results held for human sign-off.
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	results, err := h.verifications.GetPendingReview(r.Context(), investigationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending reviews")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pending": results, "count": len(results)})
}

type completeReviewRequest struct {
	Notes   string `json:"notes,omitempty"`
	Approve bool   `json:"approve"`
}

// Complete records a reviewer decision. Approval applies the held
// reclassification; rejection only marks the result reviewed.
func (h *ReviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}
	factID := chi.URLParam(r, "factID")

	var req completeReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.agent.CompleteReview(r.Context(), investigationID, factID, req.Notes, req.Approve)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no pending review for fact")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to complete review")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fact_id":  factID,
		"approved": req.Approve,
	})
}
