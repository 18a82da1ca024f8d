package service

import (
	"math"
	"testing"

	"github.com/osint-works/veracity/internal/domain"
)

func TestEchoDetector_BonusDampening(t *testing.T) {
	d := NewEchoDetector()

	// 0.2 x log10(10001) is roughly 0.800.
	if got := d.computeEchoBonus(10000); math.Abs(got-0.800) > 0.001 {
		t.Fatalf("expected bonus ~0.800 at echo sum 10000, got %f", got)
	}

	// A further 100x increase in volume buys under 0.5 more.
	delta := d.computeEchoBonus(1000000) - d.computeEchoBonus(10000)
	if delta >= 0.5 {
		t.Fatalf("expected sub-linear growth, got delta %f", delta)
	}

	if got := d.computeEchoBonus(0); got != 0 {
		t.Fatalf("expected zero bonus for zero echo sum, got %f", got)
	}
	if got := d.computeEchoBonus(-1); got != 0 {
		t.Fatalf("expected zero bonus for negative echo sum, got %f", got)
	}
}

func TestEchoDetector_BonusNonDecreasing(t *testing.T) {
	d := NewEchoDetector()

	prev := 0.0
	for _, sum := range []float64{0, 0.5, 1, 5, 50, 500, 5000} {
		cur := d.computeEchoBonus(sum)
		if cur < prev {
			t.Fatalf("bonus decreased at echo sum %f: %f < %f", sum, cur, prev)
		}
		prev = cur
	}

	// Doubling the echo sum less than doubles the bonus.
	if 2*d.computeEchoBonus(10) <= d.computeEchoBonus(20) {
		t.Fatal("expected strictly sub-linear bonus growth")
	}
}

func TestEchoDetector_SingleSource(t *testing.T) {
	d := NewEchoDetector()

	provs := []domain.Provenance{{SourceID: "reuters.com", HopCount: 0}}
	scores := []SourceScore{{Provenance: provs[0], Combined: 0.85}}

	es := d.AnalyzeSources(provs, scores)
	if es.RootScore != 0.85 {
		t.Fatalf("expected root score 0.85, got %f", es.RootScore)
	}
	if es.EchoBonus != 0 {
		t.Fatalf("expected no echo bonus for a single source, got %f", es.EchoBonus)
	}
	if es.TotalScore != 0.85 {
		t.Fatalf("expected total 0.85, got %f", es.TotalScore)
	}
	if es.UniqueRoots != 1 {
		t.Fatalf("expected 1 unique root, got %d", es.UniqueRoots)
	}
}

func TestEchoDetector_IndependentRootsGetBonus(t *testing.T) {
	d := NewEchoDetector()

	provs := []domain.Provenance{
		{SourceID: "reuters.com", HopCount: 0},
		{SourceID: "bbc.com", HopCount: 0},
		{SourceID: "cnn.com", HopCount: 1},
	}
	scores := []SourceScore{
		{Provenance: provs[0], Combined: 0.80},
		{Provenance: provs[1], Combined: 0.60},
		{Provenance: provs[2], Combined: 0.40},
	}

	es := d.AnalyzeSources(provs, scores)
	if es.RootScore != 0.80 {
		t.Fatalf("expected root 0.80, got %f", es.RootScore)
	}
	if math.Abs(es.EchoSum-1.0) > 1e-9 {
		t.Fatalf("expected echo sum 1.0, got %f", es.EchoSum)
	}
	wantBonus := 0.2 * math.Log10(2)
	if math.Abs(es.EchoBonus-wantBonus) > 1e-9 {
		t.Fatalf("expected bonus %f, got %f", wantBonus, es.EchoBonus)
	}
	if es.TotalScore <= es.RootScore {
		t.Fatal("expected corroboration to raise the total above the root")
	}
	if es.CircularWarning {
		t.Fatal("did not expect circular warning for independent roots")
	}
}

func TestEchoDetector_TotalScoreCapped(t *testing.T) {
	d := NewEchoDetector()

	provs := []domain.Provenance{
		{SourceID: "a.com", HopCount: 0},
		{SourceID: "b.com", HopCount: 0},
	}
	scores := []SourceScore{
		{Provenance: provs[0], Combined: 0.95},
		{Provenance: provs[1], Combined: 0.95},
	}

	es := d.AnalyzeSources(provs, scores)
	if es.TotalScore != 1.0 {
		t.Fatalf("expected total capped at 1.0, got %f", es.TotalScore)
	}
}

func TestEchoDetector_SharedRootClustersTogether(t *testing.T) {
	d := NewEchoDetector()

	chain := []domain.AttributionHop{{Entity: "ministry spokesperson", SourceType: domain.SourceOfficialStatement, Hop: 1}}
	provs := []domain.Provenance{
		{SourceID: "outlet-a.com", HopCount: 2, AttributionChain: chain},
		{SourceID: "outlet-b.com", HopCount: 2, AttributionChain: chain},
		{SourceID: "outlet-c.com", HopCount: 2, AttributionChain: chain},
	}
	scores := []SourceScore{
		{Provenance: provs[0], Combined: 0.40},
		{Provenance: provs[1], Combined: 0.35},
		{Provenance: provs[2], Combined: 0.30},
	}

	es := d.AnalyzeSources(provs, scores)
	if es.UniqueRoots != 1 {
		t.Fatalf("expected one shared root cluster, got %d", es.UniqueRoots)
	}
	if !es.CircularWarning {
		t.Fatal("expected circular warning for a single shared non-primary root")
	}
}

func TestEchoDetector_NoPrimaryOriginWarning(t *testing.T) {
	d := NewEchoDetector()

	var provs []domain.Provenance
	var scores []SourceScore
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		p := domain.Provenance{SourceID: id, HopCount: 2}
		provs = append(provs, p)
		scores = append(scores, SourceScore{Provenance: p, Combined: 0.3})
	}

	es := d.AnalyzeSources(provs, scores)
	if !es.CircularWarning {
		t.Fatal("expected circular warning when no provenance has a primary origin")
	}

	// One primary source among them clears the warning.
	provs[0].HopCount = 0
	es = d.AnalyzeSources(provs, scores)
	if es.CircularWarning {
		t.Fatal("did not expect circular warning with a hop-0 provenance present")
	}
}

func TestEchoDetector_CorroborationStrength(t *testing.T) {
	d := NewEchoDetector()

	if got := d.ComputeCorroborationStrength(1, 0.9); got != 0.3 {
		t.Fatalf("expected flat 0.3 for a single root, got %f", got)
	}
	if got := d.ComputeCorroborationStrength(5, 0.8); got != 1.0 {
		t.Fatalf("expected saturation at five roots with a strong root, got %f", got)
	}

	two := d.ComputeCorroborationStrength(2, 0.5)
	three := d.ComputeCorroborationStrength(3, 0.5)
	if three <= two {
		t.Fatalf("expected strength to grow with roots: %f <= %f", three, two)
	}
	gain1 := three - two
	gain2 := d.ComputeCorroborationStrength(6, 0.5) - d.ComputeCorroborationStrength(5, 0.5)
	if gain2 > gain1 {
		t.Fatalf("expected diminishing returns, got gains %f then %f", gain1, gain2)
	}
}
