package service

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

// Credibility constants
const (
	DefaultProximityDecay = 0.7

	// Precision factor weights, sum to 1.0
	EntityCountWeight      = 0.3
	TemporalWeight         = 0.3
	QuoteWeight            = 0.2
	DocumentCitationWeight = 0.2
)

// SourceScore is the scored view of one provenance record.
type SourceScore struct {
	Provenance domain.Provenance
	SourceCred float64
	Proximity  float64
	Precision  float64
	Combined   float64
}

// MultiSourceScore splits a fact's sources into a root and its echoes,
// echoes sorted descending by combined score.
type MultiSourceScore struct {
	Root      SourceScore
	Echoes    []SourceScore
	Breakdown domain.CredibilityBreakdown
}

// CredibilityScorer computes source_cred x proximity x precision for
// provenance records.
type CredibilityScorer struct {
	authority *AuthorityIndex
	decay     float64
	logger    *zap.Logger
}

func NewCredibilityScorer(authority *AuthorityIndex, logger *zap.Logger) *CredibilityScorer {
	return &CredibilityScorer{
		authority: authority,
		decay:     DefaultProximityDecay,
		logger:    logger,
	}
}

// ComputeCredibility scores a fact's primary provenance. A fact with no
// provenance gets the fixed default with an empty breakdown.
func (s *CredibilityScorer) ComputeCredibility(f *domain.Fact) (float64, domain.CredibilityBreakdown) {
	if f.Provenance == nil {
		return DefaultSourceCredibility, domain.CredibilityBreakdown{
			RootScore: DefaultSourceCredibility,
			Alpha:     DefaultEchoAlpha,
		}
	}

	score := s.scoreSource(f, f.Provenance)

	s.logger.Debug("credibility computed",
		zap.String("fact_id", f.FactID),
		zap.String("source_id", f.Provenance.SourceID),
		zap.Float64("source_cred", score.SourceCred),
		zap.Float64("proximity", score.Proximity),
		zap.Float64("precision", score.Precision),
		zap.Float64("combined", score.Combined))

	return score.Combined, domain.CredibilityBreakdown{
		RootScore:   score.Combined,
		Proximities: []float64{score.Proximity},
		Precisions:  []float64{score.Precision},
		Alpha:       DefaultEchoAlpha,
	}
}

// ScoreMultipleSources scores every source independently, selects the
// highest-combined as root, and returns the rest as echoes sorted
// descending by combined score.
func (s *CredibilityScorer) ScoreMultipleSources(f *domain.Fact, additional []domain.Provenance) MultiSourceScore {
	var scores []SourceScore
	if f.Provenance != nil {
		scores = append(scores, s.scoreSource(f, f.Provenance))
	}
	for i := range additional {
		scores = append(scores, s.scoreSource(f, &additional[i]))
	}

	if len(scores) == 0 {
		return MultiSourceScore{
			Root: SourceScore{Combined: DefaultSourceCredibility},
			Breakdown: domain.CredibilityBreakdown{
				RootScore: DefaultSourceCredibility,
				Alpha:     DefaultEchoAlpha,
			},
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Combined > scores[j].Combined
	})

	root := scores[0]
	echoes := scores[1:]

	breakdown := domain.CredibilityBreakdown{
		RootScore: root.Combined,
		Alpha:     DefaultEchoAlpha,
	}
	for _, sc := range scores {
		breakdown.Proximities = append(breakdown.Proximities, sc.Proximity)
		breakdown.Precisions = append(breakdown.Precisions, sc.Precision)
	}
	for _, e := range echoes {
		breakdown.EchoSum += e.Combined
	}

	return MultiSourceScore{Root: root, Echoes: echoes, Breakdown: breakdown}
}

func (s *CredibilityScorer) scoreSource(f *domain.Fact, p *domain.Provenance) SourceScore {
	sourceCred := s.authority.SourceCredibility(p)
	proximity := s.Proximity(p.HopCount)
	precision := s.precision(f, p)

	return SourceScore{
		Provenance: *p,
		SourceCred: sourceCred,
		Proximity:  proximity,
		Precision:  precision,
		Combined:   sourceCred * proximity * precision,
	}
}

// Proximity returns decay^hop: hop 0 is 1.0, strictly decreasing,
// asymptotic to zero.
func (s *CredibilityScorer) Proximity(hopCount int) float64 {
	if hopCount < 0 {
		hopCount = 0
	}
	return math.Pow(s.decay, float64(hopCount))
}

// precision is the weighted sum of four sub-scores, capped at 1.0.
func (s *CredibilityScorer) precision(f *domain.Fact, p *domain.Provenance) float64 {
	precision := EntityCountWeight*entityCountFactor(len(f.Entities)) +
		TemporalWeight*temporalFactor(f.Temporal) +
		QuoteWeight*quoteFactor(p) +
		DocumentCitationWeight*documentCitationFactor(p)

	if precision > 1.0 {
		precision = 1.0
	}
	return precision
}

// entityCountFactor rises with diminishing returns from 0.3, saturating
// at 1.0.
func entityCountFactor(count int) float64 {
	return math.Min(1.0, 0.3+float64(count)*0.233)
}

func temporalFactor(markers []domain.TemporalMarker) float64 {
	if len(markers) == 0 {
		return 0.3
	}
	best := 0.3
	for _, m := range markers {
		switch m.Precision {
		case domain.TemporalExplicit:
			return 1.0
		case domain.TemporalInferred:
			if best < 0.6 {
				best = 0.6
			}
		}
	}
	return best
}

func quoteFactor(p *domain.Provenance) float64 {
	if strings.ContainsAny(p.Quote, `"“”`) {
		return 1.0
	}
	if strings.Contains(strings.ToLower(p.AttributionPhrase), "said") {
		return 1.0
	}
	return 0.5
}

func documentCitationFactor(p *domain.Provenance) float64 {
	for _, hop := range p.AttributionChain {
		switch hop.SourceType {
		case domain.SourceDocument, domain.SourceOfficialStatement, domain.SourceAcademic:
			return 1.0
		}
	}
	return 0.5
}
