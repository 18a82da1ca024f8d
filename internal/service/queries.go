package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/osint-works/veracity/internal/domain"
)

// DefaultMaxQueries caps the total queries generated per fact across all
// flags.
const DefaultMaxQueries = domain.MaxQueryAttempts

const claimPrefixWords = 8

var (
	vagueQuantityPattern = regexp.MustCompile(`(?i)\b(several|many|dozens|hundreds|thousands|numerous|a\s+number\s+of|some|most|few)\b`)
	vagueTemporalPattern = regexp.MustCompile(`(?i)\b(recently|soon|lately|in\s+recent\s+(days|weeks|months)|earlier|some\s+time\s+ago|previously)\b`)
)

// QueryGenerator produces species-specialized search queries for dubious
// facts.
type QueryGenerator struct {
	maxQueries int
}

func NewQueryGenerator() *QueryGenerator {
	return &QueryGenerator{maxQueries: DefaultMaxQueries}
}

// GenerateQueries dispatches per dubious flag, capping the total. Unflagged
// and pure-noise classifications get nothing: noise has no search remedy.
func (g *QueryGenerator) GenerateQueries(f *domain.Fact, c *domain.Classification) []domain.VerificationQuery {
	if len(c.DubiousFlags) == 0 || c.PureNoise() {
		return nil
	}

	var queries []domain.VerificationQuery
	for _, flag := range c.DubiousFlags {
		if len(queries) >= g.maxQueries {
			break
		}
		var generated []domain.VerificationQuery
		switch flag {
		case domain.FlagPhantom:
			generated = g.phantomQueries(f)
		case domain.FlagFog:
			generated = g.fogQueries(f)
		case domain.FlagAnomaly:
			generated = g.anomalyQueries(f)
		}
		for _, q := range generated {
			if len(queries) >= g.maxQueries {
				break
			}
			queries = append(queries, q)
		}
	}
	return queries
}

// phantomQueries hunt for a primary origin the attribution chain lost.
func (g *QueryGenerator) phantomQueries(f *domain.Fact) []domain.VerificationQuery {
	entities := entityText(f)
	return []domain.VerificationQuery{
		{
			Text:          strings.TrimSpace(entities + " official statement press release"),
			Variant:       domain.VariantEntityFocused,
			TargetSources: []domain.SourceType{domain.SourceOfficialStatement, domain.SourceWireService},
			Purpose:       "locate a primary source for the untraceable claim",
			DubiousFlag:   domain.FlagPhantom,
		},
		{
			Text:          fmt.Sprintf("%q", claimPrefix(f.Claim.Text)),
			Variant:       domain.VariantExactPhrase,
			TargetSources: []domain.SourceType{domain.SourceWireService, domain.SourceNewsOutlet},
			Purpose:       "find the earliest verbatim occurrence of the claim",
			DubiousFlag:   domain.FlagPhantom,
		},
		{
			Text:          strings.TrimSpace(entities + " transcript interview statement"),
			Variant:       domain.VariantBroaderContext,
			TargetSources: []domain.SourceType{domain.SourceDocument, domain.SourceOfficialStatement},
			Purpose:       "surface primary documents mentioning the entities",
			DubiousFlag:   domain.FlagPhantom,
		},
	}
}

// fogQueries target the specific kind of vagueness detected.
func (g *QueryGenerator) fogQueries(f *domain.Fact) []domain.VerificationQuery {
	entities := entityText(f)
	return []domain.VerificationQuery{
		{
			Text:          strings.TrimSpace(entities + " confirmed report official"),
			Variant:       domain.VariantEntityFocused,
			TargetSources: []domain.SourceType{domain.SourceWireService, domain.SourceOfficialStatement},
			Purpose:       "find unhedged confirmation of the claim",
			DubiousFlag:   domain.FlagFog,
		},
		g.clarityQuery(f, domain.FlagFog),
		{
			Text:          fmt.Sprintf("%q", claimPrefix(f.Claim.Text)),
			Variant:       domain.VariantExactPhrase,
			TargetSources: []domain.SourceType{domain.SourceNewsOutlet},
			Purpose:       "find better-sourced copies of the claim",
			DubiousFlag:   domain.FlagFog,
		},
	}
}

// anomalyQueries arbitrate between the fact and its contradiction.
func (g *QueryGenerator) anomalyQueries(f *domain.Fact) []domain.VerificationQuery {
	entities := entityText(f)

	temporal := "latest update current status"
	for _, m := range f.Temporal {
		if m.Value != "" {
			temporal = m.Value
			break
		}
	}

	return []domain.VerificationQuery{
		{
			Text:          strings.TrimSpace(entities + " " + temporal),
			Variant:       domain.VariantTemporalContext,
			TargetSources: []domain.SourceType{domain.SourceWireService, domain.SourceNewsOutlet},
			Purpose:       "establish which version of events is current",
			DubiousFlag:   domain.FlagAnomaly,
		},
		{
			Text:          strings.TrimSpace(entities + " site:.gov " + claimPrefix(f.Claim.Text)),
			Variant:       domain.VariantAuthorityArbitration,
			TargetSources: []domain.SourceType{domain.SourceOfficialStatement},
			Purpose:       "let an authoritative source arbitrate the contradiction",
			DubiousFlag:   domain.FlagAnomaly,
		},
		g.clarityQuery(f, domain.FlagAnomaly),
	}
}

// clarityQuery branches on the species of vagueness in the claim text:
// vague quantities want exact figures, vague time wants exact dates,
// anything else gets a wire-service-restricted search.
func (g *QueryGenerator) clarityQuery(f *domain.Fact, flag domain.DubiousFlag) domain.VerificationQuery {
	entities := entityText(f)
	text := f.Claim.Text

	switch {
	case vagueQuantityPattern.MatchString(text):
		return domain.VerificationQuery{
			Text:          strings.TrimSpace(entities + " exact number figures official count"),
			Variant:       domain.VariantClarityEnhancement,
			TargetSources: []domain.SourceType{domain.SourceOfficialStatement, domain.SourceDocument},
			Purpose:       "replace vague quantities with exact figures",
			DubiousFlag:   flag,
		}
	case vagueTemporalPattern.MatchString(text):
		return domain.VerificationQuery{
			Text:          strings.TrimSpace(entities + " exact date timeline when"),
			Variant:       domain.VariantClarityEnhancement,
			TargetSources: []domain.SourceType{domain.SourceWireService, domain.SourceNewsOutlet},
			Purpose:       "pin the claim to an exact date",
			DubiousFlag:   flag,
		}
	default:
		return domain.VerificationQuery{
			Text:          strings.TrimSpace(entities + " " + claimPrefix(text) + " site:reuters.com OR site:apnews.com"),
			Variant:       domain.VariantClarityEnhancement,
			TargetSources: []domain.SourceType{domain.SourceWireService},
			Purpose:       "restrict the search to wire services",
			DubiousFlag:   flag,
		}
	}
}

// entityText joins up to three entity names for query building.
func entityText(f *domain.Fact) string {
	var names []string
	for _, e := range f.Entities {
		if e.Text == "" {
			continue
		}
		names = append(names, e.Text)
		if len(names) == 3 {
			break
		}
	}
	return strings.Join(names, " ")
}

// claimPrefix returns the first few words of the claim text.
func claimPrefix(text string) string {
	words := strings.Fields(text)
	if len(words) > claimPrefixWords {
		words = words[:claimPrefixWords]
	}
	return strings.Join(words, " ")
}
