package search

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider returns a fixed result set, or an error when broken.
type fakeProvider struct {
	name    string
	results []Result
	err     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func result(title, source string) Result {
	return Result{Title: title, Content: "content of " + title, URL: "https://" + source + ".example/" + title, Source: source}
}

func TestAggregatorMergesInEngineOrder(t *testing.T) {
	agg := NewAggregator(
		&fakeProvider{name: "alpha", results: []Result{result("a1", "alpha"), result("a2", "alpha")}},
		&fakeProvider{name: "beta", results: []Result{result("b1", "beta")}},
	)

	merged := agg.Search(context.Background(), "q", []string{"beta", "alpha"}, 5)
	if len(merged) != 3 {
		t.Fatalf("expected 3 results, got %d", len(merged))
	}
	want := []string{"b1", "a1", "a2"}
	for i, title := range want {
		if merged[i].Title != title {
			t.Errorf("result %d: got %q, want %q", i, merged[i].Title, title)
		}
	}
}

func TestAggregatorSwallowsProviderFailure(t *testing.T) {
	agg := NewAggregator(
		&fakeProvider{name: "alpha", results: []Result{result("a1", "alpha")}},
		&fakeProvider{name: "broken", err: errors.New("boom")},
		&fakeProvider{name: "gamma", results: []Result{result("g1", "gamma")}},
	)

	merged := agg.Search(context.Background(), "q", []string{"alpha", "broken", "gamma"}, 5)
	if len(merged) != 2 {
		t.Fatalf("expected 2 results, got %d", len(merged))
	}
	if merged[0].Title != "a1" || merged[1].Title != "g1" {
		t.Errorf("unexpected merge order: %q, %q", merged[0].Title, merged[1].Title)
	}
}

func TestAggregatorAllProvidersFailing(t *testing.T) {
	agg := NewAggregator(
		&fakeProvider{name: "alpha", err: errors.New("down")},
		&fakeProvider{name: "beta", err: errors.New("also down")},
	)

	merged := agg.Search(context.Background(), "q", []string{"alpha", "beta"}, 5)
	if len(merged) != 0 {
		t.Fatalf("expected empty merge, got %d results", len(merged))
	}
}

func TestAggregatorSkipsUnknownEngines(t *testing.T) {
	agg := NewAggregator(
		&fakeProvider{name: "alpha", results: []Result{result("a1", "alpha")}},
	)

	merged := agg.Search(context.Background(), "q", []string{"nonexistent", "alpha", "ALPHA"}, 5)
	// Unknown engine skipped silently; names match case-insensitively.
	if len(merged) != 2 {
		t.Fatalf("expected 2 results, got %d", len(merged))
	}
}
