package service

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/osint-works/veracity/internal/domain"
)

// Dubious detection thresholds
const (
	PhantomHopThreshold = 2
	FogClarityThreshold = 0.5
	NoiseCredThreshold  = 0.3

	// Per-flag fixability bases: how amenable each species of doubt is to
	// resolution by targeted search.
	FogFixabilityBase     = 0.9
	AnomalyFixabilityBase = 0.8
	PhantomFixabilityBase = 0.6
	NoiseFixabilityBase   = 0.1

	fixabilityCredWeight = 0.2
)

// vagueAttributionPattern matches hedged sourcing language.
var vagueAttributionPattern = regexp.MustCompile(`(?i)\b(reportedly|allegedly|sources?\s+say|sources?\s+said|may\s+have|might\s+have|could\s+have|according\s+to\s+(officials|sources|reports)|it\s+is\s+(believed|understood|rumou?red)|unconfirmed|some\s+say|claims?\s+that)\b`)

// DubiousResult is the outcome of the four doubt gates.
type DubiousResult struct {
	Flags           []domain.DubiousFlag   `json:"flags"`
	Reasoning       []domain.FlagReasoning `json:"reasoning,omitempty"`
	FixabilityScore float64                `json:"fixability_score"`
}

// DubiousDetector applies the four independent Boolean doubt gates in fixed
// order: PHANTOM, FOG, ANOMALY, NOISE. Gates are never blended into a
// weighted score.
type DubiousDetector struct {
	logger *zap.Logger
}

func NewDubiousDetector(logger *zap.Logger) *DubiousDetector {
	return &DubiousDetector{logger: logger}
}

// Detect evaluates every gate against the fact. Contradictions are supplied
// by the caller; this detector does not find them.
func (d *DubiousDetector) Detect(f *domain.Fact, credibilityScore float64, contradictions []domain.Contradiction) DubiousResult {
	var result DubiousResult

	if reason, ok := d.checkPhantom(f); ok {
		result.Flags = append(result.Flags, domain.FlagPhantom)
		result.Reasoning = append(result.Reasoning, reason)
	}
	if reason, ok := d.checkFog(f); ok {
		result.Flags = append(result.Flags, domain.FlagFog)
		result.Reasoning = append(result.Reasoning, reason)
	}
	if len(contradictions) > 0 {
		related := make([]string, len(contradictions))
		for i, c := range contradictions {
			related[i] = c.RelatedFactID
		}
		result.Flags = append(result.Flags, domain.FlagAnomaly)
		result.Reasoning = append(result.Reasoning, domain.FlagReasoning{
			Flag:   domain.FlagAnomaly,
			Reason: fmt.Sprintf("contradicts %d other fact(s)", len(contradictions)),
			Triggers: map[string]any{
				"contradiction_count": len(contradictions),
				"related_fact_ids":    related,
			},
		})
	}
	if credibilityScore < NoiseCredThreshold {
		result.Flags = append(result.Flags, domain.FlagNoise)
		result.Reasoning = append(result.Reasoning, domain.FlagReasoning{
			Flag:   domain.FlagNoise,
			Reason: fmt.Sprintf("credibility %.3f below threshold %.2f", credibilityScore, NoiseCredThreshold),
			Triggers: map[string]any{
				"credibility_score": credibilityScore,
				"noise_threshold":   NoiseCredThreshold,
			},
		})
	}

	result.FixabilityScore = d.fixability(result.Flags, credibilityScore)

	if len(result.Flags) > 0 {
		d.logger.Debug("dubious flags raised",
			zap.String("fact_id", f.FactID),
			zap.Any("flags", result.Flags),
			zap.Float64("fixability", result.FixabilityScore))
	}

	return result
}

// checkPhantom fires on a long attribution chain with no traceable primary
// origin. Hop count at the threshold does not trigger; only beyond it.
func (d *DubiousDetector) checkPhantom(f *domain.Fact) (domain.FlagReasoning, bool) {
	if f.Provenance == nil {
		return domain.FlagReasoning{}, false
	}
	p := f.Provenance
	if p.HopCount <= PhantomHopThreshold {
		return domain.FlagReasoning{}, false
	}
	if p.HasPrimaryOrigin() {
		return domain.FlagReasoning{}, false
	}
	return domain.FlagReasoning{
		Flag:   domain.FlagPhantom,
		Reason: fmt.Sprintf("hop count %d exceeds %d with no traceable primary source", p.HopCount, PhantomHopThreshold),
		Triggers: map[string]any{
			"hop_count":         p.HopCount,
			"phantom_threshold": PhantomHopThreshold,
			"chain_length":      len(p.AttributionChain),
		},
	}, true
}

// checkFog fires on low claim clarity or hedged attribution language.
func (d *DubiousDetector) checkFog(f *domain.Fact) (domain.FlagReasoning, bool) {
	if f.Quality.ClaimClarity < FogClarityThreshold {
		return domain.FlagReasoning{
			Flag:   domain.FlagFog,
			Reason: fmt.Sprintf("claim clarity %.3f below threshold %.2f", f.Quality.ClaimClarity, FogClarityThreshold),
			Triggers: map[string]any{
				"claim_clarity": f.Quality.ClaimClarity,
				"fog_threshold": FogClarityThreshold,
			},
		}, true
	}

	texts := []string{f.Claim.Text}
	if f.Provenance != nil {
		texts = append(texts, f.Provenance.AttributionPhrase)
	}
	for _, text := range texts {
		if match := vagueAttributionPattern.FindString(text); match != "" {
			return domain.FlagReasoning{
				Flag:   domain.FlagFog,
				Reason: fmt.Sprintf("vague attribution language: %q", strings.ToLower(match)),
				Triggers: map[string]any{
					"matched_phrase": strings.ToLower(match),
				},
			}, true
		}
	}
	return domain.FlagReasoning{}, false
}

// fixability estimates how resolvable the flagged doubt is. Unflagged and
// pure-noise facts are 0: there is nothing to search for, or nothing worth
// searching for individually.
func (d *DubiousDetector) fixability(flags []domain.DubiousFlag, credibilityScore float64) float64 {
	if len(flags) == 0 {
		return 0
	}
	if len(flags) == 1 && flags[0] == domain.FlagNoise {
		return 0
	}

	var base float64
	for _, f := range flags {
		var b float64
		switch f {
		case domain.FlagFog:
			b = FogFixabilityBase
		case domain.FlagAnomaly:
			b = AnomalyFixabilityBase
		case domain.FlagPhantom:
			b = PhantomFixabilityBase
		case domain.FlagNoise:
			b = NoiseFixabilityBase
		}
		if b > base {
			base = b
		}
	}

	fixability := base + credibilityScore*fixabilityCredWeight
	if fixability > 1.0 {
		fixability = 1.0
	}
	return fixability
}
