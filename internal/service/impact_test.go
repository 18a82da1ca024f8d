package service

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

func TestImpactAssessor_WorldLeaderMilitaryAction(t *testing.T) {
	a := NewImpactAssessor(zap.NewNop())

	f := &domain.Fact{
		FactID: "f1",
		Claim:  domain.Claim{Text: "The president ordered an airstrike on the border region"},
	}

	result := a.Assess(f, nil)
	if result.Tier != domain.ImpactCritical {
		t.Fatalf("expected CRITICAL, got %s", result.Tier)
	}
	if result.Score != 1.0 {
		t.Fatalf("expected score 1.0, got %f", result.Score)
	}
	if result.EntityContribution != 1.0 || result.EventContribution != 1.0 {
		t.Fatalf("expected full contributions, got entity %f event %f",
			result.EntityContribution, result.EventContribution)
	}
}

func TestImpactAssessor_OpinionIsLessCritical(t *testing.T) {
	a := NewImpactAssessor(zap.NewNop())

	f := &domain.Fact{
		FactID: "f1",
		Claim:  domain.Claim{Text: "The policy seems unwise to me", Type: domain.ClaimOpinion},
	}

	result := a.Assess(f, nil)
	if result.Tier != domain.ImpactLessCritical {
		t.Fatalf("expected LESS_CRITICAL, got %s", result.Tier)
	}
	// entity 0.3, event 0.2, equal weights.
	if math.Abs(result.Score-0.25) > 1e-9 {
		t.Fatalf("expected score 0.25, got %f", result.Score)
	}
}

func TestImpactAssessor_TierBoundary(t *testing.T) {
	a := NewImpactAssessor(zap.NewNop())

	// Major org (0.6) plus diplomatic terms (0.7) lands exactly at 0.65.
	f := &domain.Fact{
		FactID: "f1",
		Claim:  domain.Claim{Text: "NATO delegation opened negotiations in Vienna"},
	}
	result := a.Assess(f, nil)
	if result.Tier != domain.ImpactCritical {
		t.Fatalf("expected CRITICAL at score %f, got %s", result.Score, result.Tier)
	}

	// Generic ORG entity (0.4) plus attribution default (0.5) stays below.
	f = &domain.Fact{
		FactID:   "f2",
		Claim:    domain.Claim{Text: "The company confirmed the filing", Type: domain.ClaimAttribution},
		Entities: []domain.Entity{{Text: "Acme Corp", Type: domain.EntityOrganization}},
	}
	result = a.Assess(f, nil)
	if result.Tier != domain.ImpactLessCritical {
		t.Fatalf("expected LESS_CRITICAL at score %f, got %s", result.Score, result.Tier)
	}
}

func TestImpactAssessor_ContextBoost(t *testing.T) {
	a := NewImpactAssessor(zap.NewNop())

	f := &domain.Fact{
		FactID:   "f1",
		Claim:    domain.Claim{Text: "The company confirmed the border filing", Type: domain.ClaimAttribution},
		Entities: []domain.Entity{{Text: "Acme Corp", Type: domain.EntityOrganization}},
	}

	base := a.Assess(f, nil)

	boosted := a.Assess(f, &InvestigationContext{
		Keywords:      []string{"border"},
		FocusEntities: []string{"Acme Corp"},
	})

	want := base.Score + contextKeywordBoost + contextEntityBoost
	if math.Abs(boosted.Score-want) > 1e-9 {
		t.Fatalf("expected boosted score %f, got %f", want, boosted.Score)
	}

	// Boost can tip the tier.
	if base.Tier != domain.ImpactLessCritical || boosted.Tier != domain.ImpactCritical {
		t.Fatalf("expected boost to cross the tier boundary, got %s then %s", base.Tier, boosted.Tier)
	}
}

func TestImpactAssessor_ContextBoostCapped(t *testing.T) {
	a := NewImpactAssessor(zap.NewNop())

	f := &domain.Fact{
		FactID: "f1",
		Claim:  domain.Claim{Text: "The senator discussed sanctions with the delegation"},
	}

	base := a.Assess(f, nil)
	boosted := a.Assess(f, &InvestigationContext{
		Keywords:      []string{"sanctions", "delegation", "senator"},
		FocusEntities: []string{"sanctions"},
	})

	if boosted.Score-base.Score > contextBoostCap+1e-9 {
		t.Fatalf("expected boost capped at %f, got %f", contextBoostCap, boosted.Score-base.Score)
	}
}
