package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

type agentFixture struct {
	facts           *mockFactStore
	classifications *mockClassificationStore
	verifications   *mockVerificationStore
	searcher        *mockSearcher
	agent           *VerificationAgent
}

func newAgentFixture() *agentFixture {
	fx := &agentFixture{
		facts:           newMockFactStore(),
		classifications: newMockClassificationStore(),
		verifications:   newMockVerificationStore(),
		searcher:        &mockSearcher{results: map[string][]domain.SearchResult{}},
	}
	logger := zap.NewNop()
	authority := NewAuthorityIndex(nil)
	reclassifier := NewReclassifier(fx.classifications, fx.facts, fx.verifications, NewImpactAssessor(logger), logger)
	fx.agent = NewVerificationAgent(
		fx.facts,
		fx.classifications,
		fx.verifications,
		NewQueryGenerator(),
		NewSearchExecutor(fx.searcher, authority, logger),
		NewEvidenceAggregator(),
		reclassifier,
		DefaultBatchSize,
		logger,
	)
	return fx
}

func (fx *agentFixture) seedFact(t *testing.T, invID uuid.UUID, factID, claim string, tier domain.ImpactTier, flags ...domain.DubiousFlag) {
	t.Helper()
	ctx := context.Background()
	err := fx.facts.Save(ctx, &domain.Fact{
		FactID:          factID,
		InvestigationID: invID,
		Claim:           domain.Claim{Text: claim},
		Entities:        []domain.Entity{{Text: "Minister A", Type: domain.EntityPerson}},
	})
	if err != nil {
		t.Fatalf("seed fact: %v", err)
	}
	err = fx.classifications.Save(ctx, &domain.Classification{
		FactID:           factID,
		InvestigationID:  invID,
		ImpactTier:       tier,
		ImpactScore:      0.5,
		DubiousFlags:     flags,
		CredibilityScore: 0.4,
		FixabilityScore:  0.8,
		PriorityScore:    0.4,
	})
	if err != nil {
		t.Fatalf("seed classification: %v", err)
	}
}

// wireHit makes every query return one supporting reuters result so the
// first aggregation confirms.
func (fx *agentFixture) wireHit() {
	fx.searcher.fallback = []domain.SearchResult{
		{URL: "https://www.reuters.com/world/hit", Snippet: "Minister A confirmed the statement"},
	}
}

func TestVerificationAgent_ShortCircuitsOnConfirmation(t *testing.T) {
	fx := newAgentFixture()
	fx.wireHit()
	invID := uuid.New()
	fx.seedFact(t, invID, "f1", "the agreement was signed", domain.ImpactLessCritical, domain.FlagPhantom)

	result, err := fx.agent.VerifyFact(context.Background(), invID, "f1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != domain.StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", result.Status)
	}
	if result.QueryAttempts != 1 {
		t.Fatalf("expected short-circuit after 1 query, got %d attempts", result.QueryAttempts)
	}
	if len(result.QueriesUsed) != 1 {
		t.Fatalf("expected 1 query recorded, got %d", len(result.QueriesUsed))
	}
	if len(result.OriginDubiousFlags) != 1 || result.OriginDubiousFlags[0] != domain.FlagPhantom {
		t.Fatalf("expected origin flags preserved, got %v", result.OriginDubiousFlags)
	}

	// The reclassifier ran: flags cleared, boost applied.
	c, err := fx.classifications.GetByFactID(context.Background(), invID, "f1")
	if err != nil {
		t.Fatalf("expected classification, got %v", err)
	}
	if len(c.DubiousFlags) != 0 {
		t.Fatalf("expected flags cleared after confirmation, got %v", c.DubiousFlags)
	}
	if c.CredibilityScore <= 0.4 {
		t.Fatalf("expected credibility boosted, got %f", c.CredibilityScore)
	}
}

func TestVerificationAgent_ExhaustionIsUnverifiable(t *testing.T) {
	fx := newAgentFixture()
	// No search hits at all.
	invID := uuid.New()
	fx.seedFact(t, invID, "f1", "the agreement was signed", domain.ImpactLessCritical, domain.FlagPhantom)

	result, err := fx.agent.VerifyFact(context.Background(), invID, "f1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != domain.StatusUnverifiable {
		t.Fatalf("expected terminal UNVERIFIABLE, got %s", result.Status)
	}
	if result.QueryAttempts != domain.MaxQueryAttempts {
		t.Fatalf("expected full budget spent, got %d", result.QueryAttempts)
	}
	if result.ConfidenceBoost != 0 {
		t.Fatalf("expected zero boost, got %f", result.ConfidenceBoost)
	}

	// Flags stay; the doubt was not resolved.
	c, _ := fx.classifications.GetByFactID(context.Background(), invID, "f1")
	if len(c.DubiousFlags) != 1 {
		t.Fatalf("expected flags untouched, got %v", c.DubiousFlags)
	}
}

func TestVerificationAgent_CriticalHeldForReview(t *testing.T) {
	fx := newAgentFixture()
	fx.wireHit()
	invID := uuid.New()
	fx.seedFact(t, invID, "f1", "the agreement was signed", domain.ImpactCritical, domain.FlagFog)

	result, err := fx.agent.VerifyFact(context.Background(), invID, "f1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.RequiresReview {
		t.Fatal("expected critical fact flagged for human review")
	}

	// The reclassifier must not run before sign-off.
	c, _ := fx.classifications.GetByFactID(context.Background(), invID, "f1")
	if len(c.DubiousFlags) != 1 {
		t.Fatalf("expected flags untouched pending review, got %v", c.DubiousFlags)
	}

	pending, err := fx.verifications.GetPendingReview(context.Background(), invID)
	if err != nil {
		t.Fatalf("expected pending review list, got %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 result pending review, got %d", len(pending))
	}
}

func TestVerificationAgent_CompleteReviewAppliesReclassification(t *testing.T) {
	fx := newAgentFixture()
	fx.wireHit()
	invID := uuid.New()
	fx.seedFact(t, invID, "f1", "the agreement was signed", domain.ImpactCritical, domain.FlagFog)

	if _, err := fx.agent.VerifyFact(context.Background(), invID, "f1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := fx.agent.CompleteReview(context.Background(), invID, "f1", "checked against archive", true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	c, _ := fx.classifications.GetByFactID(context.Background(), invID, "f1")
	if len(c.DubiousFlags) != 0 {
		t.Fatalf("expected flags cleared after approved review, got %v", c.DubiousFlags)
	}

	pending, _ := fx.verifications.GetPendingReview(context.Background(), invID)
	if len(pending) != 0 {
		t.Fatalf("expected review queue drained, got %d", len(pending))
	}
}

func TestVerificationAgent_SkipsUnverifiable(t *testing.T) {
	fx := newAgentFixture()
	invID := uuid.New()
	fx.seedFact(t, invID, "f1", "noise", domain.ImpactLessCritical, domain.FlagNoise)

	result, err := fx.agent.VerifyFact(context.Background(), invID, "f1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected pure-noise fact skipped, got %+v", result)
	}
}

func TestVerificationAgent_BatchIsolatesFailures(t *testing.T) {
	fx := newAgentFixture()
	fx.wireHit()
	invID := uuid.New()

	fx.seedFact(t, invID, "f1", "the agreement was signed", domain.ImpactLessCritical, domain.FlagPhantom)
	fx.seedFact(t, invID, "f2", "the convoy was rerouted", domain.ImpactLessCritical, domain.FlagFog)

	// A classification with no backing fact fails mid-verification.
	err := fx.classifications.Save(context.Background(), &domain.Classification{
		FactID:          "orphan",
		InvestigationID: invID,
		ImpactTier:      domain.ImpactLessCritical,
		DubiousFlags:    []domain.DubiousFlag{domain.FlagFog},
		PriorityScore:   0.9,
	})
	if err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	stats, err := fx.agent.VerifyInvestigation(context.Background(), invID)
	if err != nil {
		t.Fatalf("expected stats despite per-fact failure, got %v", err)
	}
	if stats.TotalQueued != 3 {
		t.Fatalf("expected 3 queued, got %d", stats.TotalQueued)
	}
	if stats.Failed != 1 {
		t.Fatalf("expected 1 failure, got %d", stats.Failed)
	}
	if stats.TotalVerified != 2 {
		t.Fatalf("expected 2 verified, got %d", stats.TotalVerified)
	}
	if stats.Confirmed != 2 {
		t.Fatalf("expected 2 confirmed, got %d", stats.Confirmed)
	}
}

func TestVerificationAgent_BatchIsolatesPanics(t *testing.T) {
	fx := newAgentFixture()
	fx.wireHit()
	invID := uuid.New()

	fx.seedFact(t, invID, "f1", "the agreement was signed", domain.ImpactLessCritical, domain.FlagPhantom)
	fx.seedFact(t, invID, "f2", "the convoy was rerouted", domain.ImpactLessCritical, domain.FlagFog)
	fx.facts.panicOn = "f2"

	stats, err := fx.agent.VerifyInvestigation(context.Background(), invID)
	if err != nil {
		t.Fatalf("expected stats despite a panicking fact, got %v", err)
	}
	if stats.Failed != 1 {
		t.Fatalf("expected the panicking fact counted as failed, got %d", stats.Failed)
	}
	if stats.TotalVerified != 1 || stats.Confirmed != 1 {
		t.Fatalf("expected the other fact to verify, got %+v", stats)
	}
}

func TestVerificationAgent_EmptyQueue(t *testing.T) {
	fx := newAgentFixture()

	stats, err := fx.agent.VerifyInvestigation(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.TotalQueued != 0 || stats.TotalVerified != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}
