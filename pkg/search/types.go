package search

import "context"

// Result is a single search hit normalized across providers.
type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Provider executes one query against a single search backend.
// Implementations must honor ctx cancellation and return an empty
// slice (not nil results with an error) only via the error path;
// the aggregator treats any error as "no results from this provider".
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
