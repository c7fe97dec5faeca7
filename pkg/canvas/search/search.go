// Package search defines the retrieval collaborator contract and a
// plain HTTP implementation of it.
package search

import (
	"context"
	"fmt"
)

// Result is a single retrieval hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher retrieves web results for a query.
// Implementations must be safe for concurrent use.
type Searcher interface {
	// Search returns up to limit results, ordered by relevance.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// FilterEmpty removes results lacking a snippet or a URL.
// The input slice is not modified.
func FilterEmpty(results []Result) []Result {
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Snippet != "" && r.URL != "" {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// SearchError wraps a failure from the retrieval collaborator.
type SearchError struct {
	// Query is the query that failed.
	Query string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SearchError) Unwrap() error {
	return e.Err
}
