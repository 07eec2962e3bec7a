package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// arxivEntry holds one entry of the arXiv Atom feed.
type arxivEntry struct {
	Title   string      `xml:"title"`
	Summary string      `xml:"summary"`
	ID      string      `xml:"id"`
	Link    []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entry   []arxivEntry `xml:"entry"`
}

// Arxiv queries the arXiv Atom API. Useful for academic topics; returns
// paper abstracts as result content.
type Arxiv struct {
	client *http.Client
}

// NewArxiv constructs an arXiv search provider.
func NewArxiv() *Arxiv {
	return &Arxiv{client: &http.Client{Timeout: 15 * time.Second}}
}

func (a *Arxiv) Name() string { return "arxiv" }

// Search queries the arXiv API and normalizes feed entries.
func (a *Arxiv) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Add("search_query", query)
	params.Add("max_results", strconv.Itoa(maxResults))
	params.Add("start", "0")
	apiURL := "https://export.arxiv.org/api/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("arxiv returned status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal XML: %w", err)
	}

	results := make([]Result, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		link := entry.ID
		for _, l := range entry.Link {
			if l.Type == "application/pdf" {
				link = l.Href
				break
			}
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(entry.Title),
			Content: strings.TrimSpace(entry.Summary),
			URL:     link,
			Source:  a.Name(),
		})
	}
	return results, nil
}
