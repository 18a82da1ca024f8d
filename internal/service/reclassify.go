package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
	"github.com/osint-works/veracity/internal/store"
)

// Reclassifier applies verification outcomes back onto a fact's
// classification. Every mutation snapshots the prior state into history
// first; the pre-verification flags stay recoverable through the snapshot
// and the result's origin flags.
type Reclassifier struct {
	classifications domain.ClassificationStore
	facts           domain.FactStore
	verifications   domain.VerificationStore
	impact          *ImpactAssessor
	logger          *zap.Logger
}

func NewReclassifier(classifications domain.ClassificationStore, facts domain.FactStore, verifications domain.VerificationStore, impact *ImpactAssessor, logger *zap.Logger) *Reclassifier {
	return &Reclassifier{
		classifications: classifications,
		facts:           facts,
		verifications:   verifications,
		impact:          impact,
		logger:          logger,
	}
}

// Reclassify folds a verification result into the stored classification.
// A missing classification is "nothing to do": it returns (nil, nil) and
// logs, never an error.
func (r *Reclassifier) Reclassify(ctx context.Context, investigationID uuid.UUID, factID string, result *domain.VerificationResult) (*domain.Classification, error) {
	c, err := r.classifications.GetByFactID(ctx, investigationID, factID)
	if errors.Is(err, store.ErrNotFound) {
		r.logger.Warn("no classification to update",
			zap.String("fact_id", factID),
			zap.String("investigation_id", investigationID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Snapshot("verification_" + strings.ToLower(string(result.Status)))

	c.DubiousFlags = nil
	c.Reasoning = nil
	c.FixabilityScore = 0
	c.PriorityScore = 0

	updated := c.CredibilityScore + result.ConfidenceBoost
	if updated > 1.0 {
		updated = 1.0
	}
	c.CredibilityScore = updated

	if result.Status == domain.StatusConfirmed {
		r.rederiveImpact(ctx, investigationID, factID, c, result)
	}

	c.UpdatedAt = time.Now().UTC()
	if err := r.classifications.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// rederiveImpact re-scores impact with context enriched by the confirming
// evidence. Impact is recomputed, never carried forward.
func (r *Reclassifier) rederiveImpact(ctx context.Context, investigationID uuid.UUID, factID string, c *domain.Classification, result *domain.VerificationResult) {
	f, err := r.facts.GetByID(ctx, investigationID, factID)
	if err != nil {
		r.logger.Warn("fact missing during impact rederivation",
			zap.String("fact_id", factID), zap.Error(err))
		return
	}

	assessed := r.impact.Assess(f, evidenceContext(f, result.Supporting))
	if assessed.Tier != c.ImpactTier {
		r.logger.Info("impact tier changed after confirmation",
			zap.String("fact_id", factID),
			zap.String("from", string(c.ImpactTier)),
			zap.String("to", string(assessed.Tier)))
	}
	c.ImpactTier = assessed.Tier
	c.ImpactScore = assessed.Score
	c.ImpactReasoning = assessed.Reasoning
}

// evidenceContext promotes entities corroborated by supporting snippets to
// investigation focus entities.
func evidenceContext(f *domain.Fact, supporting []domain.EvidenceItem) *InvestigationContext {
	if len(supporting) == 0 || len(f.Entities) == 0 {
		return nil
	}
	var focus []string
	for _, ent := range f.Entities {
		if ent.Text == "" {
			continue
		}
		for _, ev := range supporting {
			if strings.Contains(strings.ToLower(ev.Snippet), strings.ToLower(ent.Text)) {
				focus = append(focus, ent.Text)
				break
			}
		}
	}
	if len(focus) == 0 {
		return nil
	}
	return &InvestigationContext{FocusEntities: focus}
}

// ResolveAnomaly arbitrates a contradiction between two facts. The winner's
// flags clear; the loser is superseded when the contradiction is temporal
// (it was true, it is no longer current) and refuted otherwise (it was never
// true). Both sides get history entries and the loser gets a stored result.
func (r *Reclassifier) ResolveAnomaly(ctx context.Context, investigationID uuid.UUID, winnerID, loserID string, contradictionType domain.ContradictionType) error {
	winner, err := r.classifications.GetByFactID(ctx, investigationID, winnerID)
	if err != nil {
		return err
	}
	loser, err := r.classifications.GetByFactID(ctx, investigationID, loserID)
	if err != nil {
		return err
	}

	// Arbitration confirms the winner's claim, so all doubt clears, not
	// just the ANOMALY flag. The winner leaves the verification queue.
	winner.Snapshot("anomaly_resolved_winner")
	winner.DubiousFlags = nil
	winner.Reasoning = nil
	winner.FixabilityScore = 0
	winner.PriorityScore = 0
	winner.UpdatedAt = time.Now().UTC()
	if err := r.classifications.Save(ctx, winner); err != nil {
		return err
	}

	loserStatus := domain.StatusRefuted
	if contradictionType == domain.ContradictionTemporal {
		loserStatus = domain.StatusSuperseded
	}

	loser.Snapshot("anomaly_resolved_" + strings.ToLower(string(loserStatus)))
	loser.FixabilityScore = 0
	loser.PriorityScore = 0
	loser.UpdatedAt = time.Now().UTC()
	if err := r.classifications.Save(ctx, loser); err != nil {
		return err
	}

	result, err := domain.NewVerificationResult(loserID, investigationID, loserStatus, loser.CredibilityScore, 0, 0)
	if err != nil {
		return err
	}
	result.OriginDubiousFlags = loser.DubiousFlags
	result.RelatedFactID = winnerID
	result.ContradictionType = contradictionType
	return r.verifications.SaveResult(ctx, result)
}
