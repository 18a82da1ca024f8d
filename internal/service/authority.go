package service

import (
	"net/url"
	"strings"

	"github.com/osint-works/veracity/internal/domain"
)

// DefaultSourceCredibility is the floor used when nothing is known about a
// source.
const DefaultSourceCredibility = 0.3

// AuthorityIndex resolves credibility baselines for sources and domains.
// Lookup order: exact source id, extracted domain, domain suffix pattern,
// source-type default, floor. The same table backs provenance scoring and
// evidence authority scoring so the two stay comparable.
type AuthorityIndex struct {
	sources  map[string]float64
	domains  map[string]domainEntry
	suffixes []suffixEntry
}

type domainEntry struct {
	score      float64
	sourceType domain.SourceType
}

type suffixEntry struct {
	suffix     string
	score      float64
	sourceType domain.SourceType
}

// NewAuthorityIndex returns an index seeded with the baseline table.
// Overrides map exact source ids to scores.
func NewAuthorityIndex(overrides map[string]float64) *AuthorityIndex {
	idx := &AuthorityIndex{
		sources: make(map[string]float64),
		domains: map[string]domainEntry{
			"reuters.com":        {0.90, domain.SourceWireService},
			"apnews.com":         {0.90, domain.SourceWireService},
			"afp.com":            {0.90, domain.SourceWireService},
			"bbc.com":            {0.85, domain.SourceNewsOutlet},
			"bbc.co.uk":          {0.85, domain.SourceNewsOutlet},
			"nytimes.com":        {0.80, domain.SourceNewsOutlet},
			"washingtonpost.com": {0.80, domain.SourceNewsOutlet},
			"theguardian.com":    {0.78, domain.SourceNewsOutlet},
			"wsj.com":            {0.78, domain.SourceNewsOutlet},
			"ft.com":             {0.78, domain.SourceNewsOutlet},
			"economist.com":      {0.75, domain.SourceNewsOutlet},
			"cnn.com":            {0.72, domain.SourceNewsOutlet},
			"aljazeera.com":      {0.72, domain.SourceNewsOutlet},
			"un.org":             {0.88, domain.SourceOfficialStatement},
			"nato.int":           {0.88, domain.SourceOfficialStatement},
			"twitter.com":        {0.35, domain.SourceSocialMedia},
			"x.com":              {0.35, domain.SourceSocialMedia},
			"facebook.com":       {0.35, domain.SourceSocialMedia},
			"reddit.com":         {0.35, domain.SourceSocialMedia},
			"t.me":               {0.30, domain.SourceSocialMedia},
		},
		suffixes: []suffixEntry{
			{".gov", 0.90, domain.SourceOfficialStatement},
			{".mil", 0.90, domain.SourceOfficialStatement},
			{".int", 0.85, domain.SourceOfficialStatement},
			{".edu", 0.85, domain.SourceAcademic},
			{".org", 0.60, domain.SourceUnknown},
		},
	}
	for id, score := range overrides {
		idx.sources[id] = score
	}
	return idx
}

// SourceCredibility resolves the baseline credibility for a provenance.
func (a *AuthorityIndex) SourceCredibility(p *domain.Provenance) float64 {
	if score, ok := a.sources[p.SourceID]; ok {
		return score
	}

	if host := extractHost(p.SourceID); host != "" {
		if score, _, ok := a.domainScore(host); ok {
			return score
		}
	}

	if p.SourceType != "" && p.SourceType != domain.SourceUnknown {
		return p.SourceType.DefaultCredibility()
	}

	return DefaultSourceCredibility
}

// ScoreDomain returns the authority score and inferred source type for an
// evidence domain.
func (a *AuthorityIndex) ScoreDomain(host string) (float64, domain.SourceType) {
	if score, st, ok := a.domainScore(host); ok {
		return score, st
	}
	return DefaultSourceCredibility, domain.SourceUnknown
}

func (a *AuthorityIndex) domainScore(host string) (float64, domain.SourceType, bool) {
	host = normalizeHost(host)

	if entry, ok := a.domains[host]; ok {
		return entry.score, entry.sourceType, true
	}
	for d, entry := range a.domains {
		if strings.HasSuffix(host, "."+d) {
			return entry.score, entry.sourceType, true
		}
	}
	for _, s := range a.suffixes {
		if strings.HasSuffix(host, s.suffix) {
			return s.score, s.sourceType, true
		}
	}
	return 0, domain.SourceUnknown, false
}

// extractHost pulls a hostname out of a source id that looks like a URL or
// bare domain, normalized to its canonical form. Returns "" for opaque ids.
// Normalization matters downstream: evidence independence is judged by
// domain equality, so www.cnn.com and cnn.com must map to the same host.
func extractHost(sourceID string) string {
	s := strings.TrimSpace(sourceID)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return normalizeHost(u.Hostname())
		}
		return ""
	}
	host := s
	if idx := strings.IndexByte(host, '/'); idx >= 0 {
		host = host[:idx]
	}
	if !strings.Contains(host, ".") || strings.ContainsAny(host, " \t") {
		return ""
	}
	return normalizeHost(host)
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
