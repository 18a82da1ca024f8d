package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/osint-works/veracity/internal/domain"
)

const braveSearchURL = "https://api.search.brave.com/res/v1/web/search"

// BraveClient wraps the Brave Search REST API. Without an API key every
// search returns no results instead of an error.
type BraveClient struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewBraveClient(apiKey string, rps float64) *BraveClient {
	if rps <= 0 {
		rps = 1
	}
	return &BraveClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (c *BraveClient) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search rate limiter: %w", err)
	}

	u := braveSearchURL + "?q=" + url.QueryEscape(query) + "&count=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result braveResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(result.Web.Results))
	for _, r := range result.Web.Results {
		results = append(results, domain.SearchResult{
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results, nil
}
