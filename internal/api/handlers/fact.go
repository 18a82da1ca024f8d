package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/service"
	"github.com/osint-works/veracity/internal/store"
)

type FactHandler struct {
	consolidator *service.Consolidator
	facts        domain.FactStore
}

func NewFactHandler(consolidator *service.Consolidator, facts domain.FactStore) *FactHandler {
	return &FactHandler{consolidator: consolidator, facts: facts}
}

type siftFactsRequest struct {
	Facts         []domain.Fact `json:"facts"`
	MinConfidence float64       `json:"min_confidence,omitempty"`
}

type siftFactsResponse struct {
	Facts []domain.Fact     `json:"facts"`
	Stats service.SiftStats `json:"stats"`
}

// Sift runs consolidation over a batch without persisting anything, so
// callers can preview what dedup would keep.
func (h *FactHandler) Sift(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req siftFactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Facts) == 0 {
		writeError(w, http.StatusBadRequest, "facts are required")
		return
	}
	stampInvestigation(req.Facts, investigationID)

	facts, stats, err := h.consolidator.Sift(r.Context(), service.SiftRequest{
		Facts:           req.Facts,
		InvestigationID: investigationID.String(),
		MinConfidence:   req.MinConfidence,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sift facts")
		return
	}

	writeJSON(w, http.StatusOK, siftFactsResponse{Facts: facts, Stats: stats})
}

// Ingest sifts and persists a batch of facts.
func (h *FactHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req siftFactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Facts) == 0 {
		writeError(w, http.StatusBadRequest, "facts are required")
		return
	}
	stampInvestigation(req.Facts, investigationID)

	stats, err := h.consolidator.SaveFacts(r.Context(), service.SiftRequest{
		Facts:           req.Facts,
		InvestigationID: investigationID.String(),
		MinConfidence:   req.MinConfidence,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to ingest facts")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"stats": stats})
}

func (h *FactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}
	factID := chi.URLParam(r, "factID")

	f, err := h.facts.GetByID(r.Context(), investigationID, factID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get fact")
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *FactHandler) List(w http.ResponseWriter, r *http.Request) {
	investigationID, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	facts, err := h.facts.ListByInvestigation(r.Context(), investigationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list facts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"facts": facts, "count": len(facts)})
}

func stampInvestigation(facts []domain.Fact, investigationID uuid.UUID) {
	for i := range facts {
		facts[i].InvestigationID = investigationID
	}
}

func investigationIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investigation id")
		return uuid.Nil, false
	}
	return id, true
}
