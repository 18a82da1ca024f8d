package search

import (
	"context"

	"github.com/osint-works/veracity/internal/domain"
)

// MockClient returns canned results keyed by query text. Queries with no
// canned entry return nothing, which is the degraded-provider behavior.
type MockClient struct {
	Results map[string][]domain.SearchResult
}

func NewMockClient() *MockClient {
	return &MockClient{Results: make(map[string][]domain.SearchResult)}
}

func (c *MockClient) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	results := c.Results[query]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
