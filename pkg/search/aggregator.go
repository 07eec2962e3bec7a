package search

import (
	"context"
	"log/slog"
	"strings"
)

// Aggregator fans one query out to a set of registered providers and merges
// their results. A failing provider never fails the aggregation; it simply
// contributes nothing.
type Aggregator struct {
	providers map[string]Provider
	logger    *slog.Logger
}

// NewAggregator registers the given providers, keyed by Provider.Name.
func NewAggregator(providers ...Provider) *Aggregator {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[strings.ToLower(p.Name())] = p
	}
	return &Aggregator{providers: m, logger: slog.Default()}
}

// SetLogger overrides the aggregator's logger.
func (a *Aggregator) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}

// Search invokes every enabled provider for the query and merges the results
// in the order the engines are listed. Unknown engine names are skipped.
// Provider errors are logged and swallowed; with zero providers succeeding
// the merged list is empty, never an error.
func (a *Aggregator) Search(ctx context.Context, query string, engines []string, maxResults int) []Result {
	var merged []Result
	for _, engine := range engines {
		provider, ok := a.providers[strings.ToLower(engine)]
		if !ok {
			continue
		}

		results, err := provider.Search(ctx, query, maxResults)
		if err != nil {
			a.logger.Warn("search provider failed", "provider", provider.Name(), "query", query, "error", err)
			continue
		}
		a.logger.Info("search provider succeeded", "provider", provider.Name(), "query", query, "count", len(results))
		merged = append(merged, results...)
	}
	return merged
}
