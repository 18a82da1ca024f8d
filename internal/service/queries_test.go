package service

import (
	"strings"
	"testing"

	"github.com/osint-works/veracity/internal/domain"
)

func queryFact(claim string) *domain.Fact {
	return &domain.Fact{
		FactID: "f1",
		Claim:  domain.Claim{Text: claim},
		Entities: []domain.Entity{
			{Text: "Minister A", Type: domain.EntityPerson},
			{Text: "Republic B", Type: domain.EntityLocation},
		},
	}
}

func flaggedClassification(flags ...domain.DubiousFlag) *domain.Classification {
	return &domain.Classification{FactID: "f1", DubiousFlags: flags}
}

func TestQueryGenerator_NoFlagsNoQueries(t *testing.T) {
	g := NewQueryGenerator()

	queries := g.GenerateQueries(queryFact("something happened"), flaggedClassification())
	if len(queries) != 0 {
		t.Fatalf("expected no queries for unflagged fact, got %d", len(queries))
	}
}

func TestQueryGenerator_PureNoiseExcluded(t *testing.T) {
	g := NewQueryGenerator()

	queries := g.GenerateQueries(queryFact("something happened"), flaggedClassification(domain.FlagNoise))
	if len(queries) != 0 {
		t.Fatalf("expected no queries for pure noise, got %d", len(queries))
	}
}

func TestQueryGenerator_BudgetNeverExceeded(t *testing.T) {
	g := NewQueryGenerator()

	c := flaggedClassification(domain.FlagPhantom, domain.FlagFog, domain.FlagAnomaly, domain.FlagNoise)
	queries := g.GenerateQueries(queryFact("sources say several troops may have moved recently"), c)
	if len(queries) > DefaultMaxQueries {
		t.Fatalf("expected at most %d queries, got %d", DefaultMaxQueries, len(queries))
	}
	if len(queries) != DefaultMaxQueries {
		t.Fatalf("expected the budget to be filled with multiple flags, got %d", len(queries))
	}
}

func TestQueryGenerator_PhantomQueries(t *testing.T) {
	g := NewQueryGenerator()

	queries := g.GenerateQueries(queryFact("the facility was evacuated overnight"), flaggedClassification(domain.FlagPhantom))
	if len(queries) != 3 {
		t.Fatalf("expected 3 phantom queries, got %d", len(queries))
	}

	variants := map[domain.QueryVariant]bool{}
	for _, q := range queries {
		variants[q.Variant] = true
		if q.DubiousFlag != domain.FlagPhantom {
			t.Fatalf("expected PHANTOM flag on query, got %s", q.DubiousFlag)
		}
		if q.Text == "" || q.Purpose == "" {
			t.Fatalf("expected populated query, got %+v", q)
		}
	}
	for _, v := range []domain.QueryVariant{domain.VariantEntityFocused, domain.VariantExactPhrase, domain.VariantBroaderContext} {
		if !variants[v] {
			t.Fatalf("expected variant %s among phantom queries", v)
		}
	}

	// Entity-focused query carries the entity names.
	if !strings.Contains(queries[0].Text, "Minister A") {
		t.Fatalf("expected entity names in query, got %q", queries[0].Text)
	}
}

func TestQueryGenerator_ClarityBranching(t *testing.T) {
	g := NewQueryGenerator()

	// Vague quantities ask for exact figures.
	q := g.clarityQuery(queryFact("several dozen trucks were seen"), domain.FlagFog)
	if q.Variant != domain.VariantClarityEnhancement {
		t.Fatalf("expected clarity variant, got %s", q.Variant)
	}
	if !strings.Contains(q.Text, "exact number") {
		t.Fatalf("expected figure-seeking query, got %q", q.Text)
	}

	// Vague time asks for exact dates.
	q = g.clarityQuery(queryFact("the site was recently expanded"), domain.FlagFog)
	if !strings.Contains(q.Text, "exact date") {
		t.Fatalf("expected date-seeking query, got %q", q.Text)
	}

	// Anything else restricts to wire services.
	q = g.clarityQuery(queryFact("the site was expanded"), domain.FlagFog)
	if !strings.Contains(q.Text, "site:reuters.com") {
		t.Fatalf("expected wire-restricted query, got %q", q.Text)
	}
}

func TestQueryGenerator_AnomalyTemporalFallback(t *testing.T) {
	g := NewQueryGenerator()

	f := queryFact("the ceasefire ended")
	queries := g.GenerateQueries(f, flaggedClassification(domain.FlagAnomaly))
	if len(queries) != 3 {
		t.Fatalf("expected 3 anomaly queries, got %d", len(queries))
	}
	if queries[0].Variant != domain.VariantTemporalContext {
		t.Fatalf("expected temporal-context first, got %s", queries[0].Variant)
	}
	if !strings.Contains(queries[0].Text, "latest update current status") {
		t.Fatalf("expected fallback temporal text, got %q", queries[0].Text)
	}

	f.Temporal = []domain.TemporalMarker{{Value: "14 February 2026", Precision: domain.TemporalExplicit}}
	queries = g.GenerateQueries(f, flaggedClassification(domain.FlagAnomaly))
	if !strings.Contains(queries[0].Text, "14 February 2026") {
		t.Fatalf("expected extracted temporal value, got %q", queries[0].Text)
	}

	if queries[1].Variant != domain.VariantAuthorityArbitration || !strings.Contains(queries[1].Text, "site:.gov") {
		t.Fatalf("expected .gov arbitration query, got %+v", queries[1])
	}
}
