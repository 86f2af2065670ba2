package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leonardcser/inmemcache/internal/cache"
	"github.com/leonardcser/inmemcache/internal/logger"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	maxResults     = 20
)

// extractDDGURL extracts the actual URL from DuckDuckGo's redirect URL format
// Input: //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
// Output: https://example.com
func extractDDGURL(ddgURL string) string {
	if strings.HasPrefix(ddgURL, "//duckduckgo.com/l/") {
		ddgURL = "https:" + ddgURL
	}
	u, err := url.Parse(ddgURL)
	if err != nil {
		return ddgURL
	}
	uddg := u.Query().Get("uddg")
	if uddg == "" {
		return ddgURL
	}
	// Query() already decoded the parameter once.
	return uddg
}

type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

type Searcher struct {
	client   *http.Client
	cache    cache.KV
	endpoint string
}

func NewSearcher(kv cache.KV, client *http.Client) *Searcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Searcher{client: client, cache: kv, endpoint: searchEndpoint}
}

func searchKey(q string) string { return "web_search|" + q }

// Search queries DuckDuckGo and returns up to limit results. Results are
// cached per query; a cached list longer than limit is truncated.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 || limit > maxResults {
		limit = 10
	}
	key := searchKey(q)
	if v, err := s.cache.Get(key); err == nil {
		var cached []SearchResult
		if json.Unmarshal(v, &cached) == nil {
			if len(cached) > limit {
				return cached[:limit], nil
			}
			return cached, nil
		}
	}

	values := url.Values{"q": {q}, "kl": {"us-en"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", NextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("duckduckgo status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	results := ParseResults(doc, limit)
	if b, err := json.Marshal(results); err == nil {
		if err := s.cache.Put(key, b); err != nil {
			logger.Warnf("not caching search %q: %v", q, err)
		}
	}
	return results, nil
}

// ParseResults reads up to limit results from a DuckDuckGo HTML results page.
func ParseResults(doc *goquery.Document, limit int) []SearchResult {
	results := make([]SearchResult, 0, limit)
	doc.Find("div.result.results_links.results_links_deep.web-result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		a := s.Find("a.result__a").First()
		link := strings.TrimSpace(a.AttrOr("href", ""))
		title := singleLine(a.Text())
		desc := singleLine(s.Find("a.result__snippet").First().Text())
		if title != "" && link != "" {
			results = append(results, SearchResult{Title: title, Description: desc, Link: extractDDGURL(link)})
		}
		return len(results) < limit
	})
	if len(results) > 0 {
		return results
	}

	// Fallback: scan anchor list and nearest snippet up the tree
	doc.Find("a.result__a").EachWithBreak(func(_ int, n *goquery.Selection) bool {
		title := singleLine(n.Text())
		link := strings.TrimSpace(n.AttrOr("href", ""))
		desc := singleLine(n.Parents().Find("a.result__snippet").First().Text())
		results = append(results, SearchResult{Title: title, Description: desc, Link: extractDDGURL(link)})
		return len(results) < limit
	})
	return results
}

// singleLine trims and collapses internal whitespace/newlines to single spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
