package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient implements Searcher against a JSON search endpoint.
// The endpoint is expected to accept ?q=<query>&limit=<n> and return
// {"results": [{"title": ..., "url": ..., "snippet": ...}]}.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// HTTPOption configures HTTPClient.
type HTTPOption func(*HTTPClient)

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.client = client }
}

// NewHTTPClient creates a Searcher backed by the given endpoint URL.
func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search implements Searcher.
func (c *HTTPClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{
			Query: query,
			Err:   fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var body struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}

	if limit > 0 && len(body.Results) > limit {
		body.Results = body.Results[:limit]
	}
	return body.Results, nil
}
