package search

import (
	"fmt"

	"github.com/osint-works/veracity/internal/domain"
)

// Provider constants
const (
	ProviderBrave = "brave"
	ProviderMock  = "mock"
)

// NewClient creates a search client based on the provider name. A missing
// API key is not an error: the brave client degrades to empty results so
// callers see inconclusive evidence rather than failures.
func NewClient(provider, apiKey string, rps float64) (domain.SearchClient, error) {
	switch provider {
	case ProviderBrave:
		return NewBraveClient(apiKey, rps), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s (valid options: brave, mock)", provider)
	}
}
