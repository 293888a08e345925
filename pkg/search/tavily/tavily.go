// Package tavily provides a search.Searcher backed by the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/utils"
)

const (
	// DefaultURL is the Tavily search endpoint.
	DefaultURL = "https://api.tavily.com/search"

	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 5
	hitContentLen     = 500
)

// Config holds configuration for the Tavily client.
type Config struct {
	APIKey string

	// URL overrides DefaultURL.
	URL string

	Timeout time.Duration
}

// Client implements search.Searcher using Tavily's REST API.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Tavily client. A missing API key is not an error
// here; Search reports search.ErrNotConfigured instead.
func NewClient(c Config, logger *slog.Logger) *Client {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	return &Client{
		apiKey: c.APIKey,
		url:    c.URL,
		httpClient: &http.Client{
			Timeout: c.Timeout,
		},
		logger: logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search runs a basic-depth search with a summary answer. Hit content is
// trimmed to 500 characters.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*search.Result, error) {
	if c.apiKey == "" {
		return nil, search.ErrNotConfigured
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	c.logger.Debug("searching", "query", utils.Truncate(query, 50))

	jsonBody, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search failed: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	result := &search.Result{
		Query:   query,
		Results: make([]search.Hit, 0, len(sr.Results)),
	}
	if sr.Answer != nil {
		result.Answer = *sr.Answer
	}
	for _, r := range sr.Results[:min(len(sr.Results), maxResults)] {
		result.Results = append(result.Results, search.Hit{
			Title:   r.Title,
			URL:     r.URL,
			Content: utils.Clip(r.Content, hitContentLen),
		})
	}

	c.logger.Debug("search complete", "results", len(result.Results))
	return result, nil
}
