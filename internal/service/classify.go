package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

// ClassifyRequest carries one fact through the full classification pass.
// Contradictions are detected upstream and supplied, never inferred here.
type ClassifyRequest struct {
	Fact                 *domain.Fact           `json:"fact"`
	AdditionalProvs      []domain.Provenance    `json:"additional_provenances,omitempty"`
	Contradictions       []domain.Contradiction `json:"contradictions,omitempty"`
	InvestigationContext *InvestigationContext  `json:"investigation_context,omitempty"`
}

// ClassificationService composes credibility scoring, echo analysis,
// dubious detection, and impact assessment into one persisted
// classification per fact.
type ClassificationService struct {
	classifications domain.ClassificationStore
	scorer          *CredibilityScorer
	echo            *EchoDetector
	dubious         *DubiousDetector
	impact          *ImpactAssessor
	logger          *zap.Logger
}

func NewClassificationService(
	classifications domain.ClassificationStore,
	scorer *CredibilityScorer,
	echo *EchoDetector,
	dubious *DubiousDetector,
	impact *ImpactAssessor,
	logger *zap.Logger,
) *ClassificationService {
	return &ClassificationService{
		classifications: classifications,
		scorer:          scorer,
		echo:            echo,
		dubious:         dubious,
		impact:          impact,
		logger:          logger,
	}
}

// Classify scores and classifies one fact, persisting the result.
// Priority is impact times fixability: a critical fact nobody can fix
// ranks below a lesser fact a single search could settle.
func (s *ClassificationService) Classify(ctx context.Context, req ClassifyRequest) (*domain.Classification, error) {
	f := req.Fact
	if f == nil || f.FactID == "" {
		return nil, fmt.Errorf("fact with fact_id is required")
	}

	credibility, breakdown := s.score(f, req.AdditionalProvs)

	dubiousResult := s.dubious.Detect(f, credibility, req.Contradictions)
	impactResult := s.impact.Assess(f, req.InvestigationContext)

	now := time.Now().UTC()
	c := &domain.Classification{
		FactID:           f.FactID,
		InvestigationID:  f.InvestigationID,
		ImpactTier:       impactResult.Tier,
		ImpactScore:      impactResult.Score,
		ImpactReasoning:  impactResult.Reasoning,
		DubiousFlags:     dubiousResult.Flags,
		PriorityScore:    impactResult.Score * dubiousResult.FixabilityScore,
		CredibilityScore: credibility,
		Breakdown:        breakdown,
		Reasoning:        dubiousResult.Reasoning,
		FixabilityScore:  dubiousResult.FixabilityScore,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.classifications.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("fact classified",
		zap.String("fact_id", f.FactID),
		zap.String("impact_tier", string(impactResult.Tier)),
		zap.Float64("credibility", credibility),
		zap.Int("dubious_flags", len(dubiousResult.Flags)),
		zap.Float64("priority", c.PriorityScore))
	return c, nil
}

// ClassifyBatch classifies facts independently with per-fact error
// isolation. A malformed fact is logged and skipped, never aborts the rest.
func (s *ClassificationService) ClassifyBatch(ctx context.Context, investigationID uuid.UUID, reqs []ClassifyRequest) ([]domain.Classification, error) {
	out := make([]domain.Classification, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		c, err := s.Classify(ctx, req)
		if err != nil {
			id := ""
			if req.Fact != nil {
				id = req.Fact.FactID
			}
			s.logger.Warn("classification failed, skipping fact",
				zap.String("fact_id", id),
				zap.String("investigation_id", investigationID.String()),
				zap.Error(err))
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// score runs single-source credibility, or the multi-source path with echo
// dampening when corroborating provenances exist.
func (s *ClassificationService) score(f *domain.Fact, additional []domain.Provenance) (float64, domain.CredibilityBreakdown) {
	if len(additional) == 0 {
		return s.scorer.ComputeCredibility(f)
	}

	multi := s.scorer.ScoreMultipleSources(f, additional)

	provs := make([]domain.Provenance, 0, len(additional)+1)
	scores := make([]SourceScore, 0, len(additional)+1)
	provs = append(provs, multi.Root.Provenance)
	scores = append(scores, multi.Root)
	for _, e := range multi.Echoes {
		provs = append(provs, e.Provenance)
		scores = append(scores, e)
	}

	echoScore := s.echo.AnalyzeSources(provs, scores)
	if echoScore.CircularWarning {
		s.logger.Warn("corroboration looks circular",
			zap.String("fact_id", f.FactID),
			zap.Int("sources", len(provs)))
	}

	breakdown := multi.Breakdown
	breakdown.EchoBonus = echoScore.EchoBonus
	return echoScore.TotalScore, breakdown
}
