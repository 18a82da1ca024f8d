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

type ClassificationHandler struct {
	svc             *service.ClassificationService
	facts           domain.FactStore
	classifications domain.ClassificationStore
}

func NewClassificationHandler(svc *service.ClassificationService, facts domain.FactStore, classifications domain.ClassificationStore) *ClassificationHandler {
	return &ClassificationHandler{svc: svc, facts: facts, classifications: classifications}
}

type classifyRequest struct {
	FactID               string                        `json:"fact_id"`
	AdditionalProvs      []domain.Provenance           `json:"additional_provenances,omitempty"`
	Contradictions       []domain.Contradiction        `json:"contradictions,omitempty"`
	InvestigationContext *service.InvestigationContext `json:"investigation_context,omitempty"`
}

type classifyBatchRequest struct {
	// FactIDs limits the batch; empty means every fact in the investigation.
	FactIDs              []string                      `json:"fact_ids,omitempty"`
	InvestigationContext *service.InvestigationContext `json:"investigation_context,omitempty"`
}

// Classify runs the full classification pass for one stored fact.
func (h *ClassificationHandler) Classify(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FactID == "" {
		writeError(w, http.StatusBadRequest, "fact_id is required")
		return
	}

	f, err := h.facts.GetByID(r.Context(), investigationID, req.FactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get fact")
		return
	}

	c, err := h.svc.Classify(r.Context(), service.ClassifyRequest{
		Fact:                 f,
		AdditionalProvs:      req.AdditionalProvs,
		Contradictions:       req.Contradictions,
		InvestigationContext: req.InvestigationContext,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to classify fact")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// ClassifyBatch classifies many stored facts in one call.
func (h *ClassificationHandler) ClassifyBatch(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req classifyBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	facts, err := h.facts.ListByInvestigation(r.Context(), investigationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list facts")
		return
	}

	wanted := make(map[string]bool, len(req.FactIDs))
	for _, id := range req.FactIDs {
		wanted[id] = true
	}

	reqs := make([]service.ClassifyRequest, 0, len(facts))
	for i := range facts {
		if len(wanted) > 0 && !wanted[facts[i].FactID] {
			continue
		}
		reqs = append(reqs, service.ClassifyRequest{
			Fact:                 &facts[i],
			InvestigationContext: req.InvestigationContext,
		})
	}

	results, err := h.svc.ClassifyBatch(r.Context(), investigationID, reqs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to classify batch")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"classifications": results,
		"count":           len(results),
	})
}

func (h *ClassificationHandler) GetByFactID(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}
	factID := chi.URLParam(r, "factID")

	c, err := h.classifications.GetByFactID(r.Context(), investigationID, factID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "classification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get classification")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// Queue returns the verification priority queue: verifiable dubious facts
// sorted by priority score descending.
func (h *ClassificationHandler) Queue(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	queue, err := h.classifications.PriorityQueue(r.Context(), investigationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get priority queue")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"queue": queue, "count": len(queue)})
}
