package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/leonardcser/inmemcache/internal/cache"
	"github.com/leonardcser/inmemcache/internal/logger"
)

const (
	RequestTimeout  = 20 * time.Second
	MaxResponseSize = 1 * 1024 * 1024 // 1MB
	maxLinks        = 50
)

var (
	ErrBadScheme   = errors.New("url must start with http:// or https://")
	ErrEmptyBody   = errors.New("empty response body")
	ErrUnsupported = errors.New("unsupported content type: binary files like images or PDFs are not supported")
)

type PageSummary struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Text        string   `json:"text"`
	Links       []string `json:"links"`
}

// Fetcher downloads pages and memoizes their summaries in a content cache.
type Fetcher struct {
	c     *colly.Collector
	cache cache.KV
}

func NewFetcher(kv cache.KV) *Fetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       1 * time.Second,
	})
	c.SetRequestTimeout(RequestTimeout)
	return &Fetcher{c: c, cache: kv}
}

func fetchKey(rawURL string) string { return "web_fetch|" + rawURL }

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*PageSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, ErrBadScheme
	}
	key := fetchKey(rawURL)
	if v, err := f.cache.Get(key); err == nil {
		var ps PageSummary
		if json.Unmarshal(v, &ps) == nil {
			return &ps, nil
		}
		// Undecodable entries are dropped and refetched.
		_ = f.cache.Delete(key)
	}

	var (
		pageHTML    []byte
		finalURL    string
		contentType string
	)

	// A clone shares the transport and limits but not callbacks, so
	// concurrent fetches never see each other's responses.
	c := f.c.Clone()
	c.Context = ctx
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", NextUserAgent())
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	c.OnResponse(func(r *colly.Response) {
		if ctx.Err() != nil {
			return
		}
		finalURL = r.Request.URL.String()
		pageHTML = append([]byte(nil), r.Body...)
		contentType = r.Headers.Get("Content-Type")
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	ps, err := Summarize(finalURL, contentType, pageHTML)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(ps); err == nil {
		if err := f.cache.Put(key, b); err != nil {
			logger.Warnf("not caching %s: %v", rawURL, err)
		}
	}
	return ps, nil
}

// Summarize turns a fetched body into a PageSummary. HTML is reduced to its
// title, description, outgoing links and a Markdown rendering of the body;
// other text types are returned verbatim.
func Summarize(finalURL, contentType string, body []byte) (*PageSummary, error) {
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	if len(body) > MaxResponseSize {
		body = append(body[:MaxResponseSize:MaxResponseSize], []byte("... [response trimmed due to size]")...)
	}

	lowerCT := strings.ToLower(contentType)
	if !strings.HasPrefix(lowerCT, "text/") {
		return nil, ErrUnsupported
	}
	if !strings.Contains(lowerCT, "text/html") {
		return &PageSummary{URL: finalURL, Text: string(body)}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	// Remove non-visible elements
	doc.Find("script, style, noscript, iframe, object, embed, img, video, picture, svg, canvas, audio, source, track, map, area, form, label, input, button, select, textarea, progress, ins, applet").Remove()

	ps := &PageSummary{
		URL:         finalURL,
		Title:       strings.TrimSpace(doc.Find("head > title").First().Text()),
		Description: strings.TrimSpace(doc.Find("meta[name=description]").AttrOr("content", "")),
		Links:       extractLinks(doc, finalURL),
	}

	plainText := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	doc.Find("a").Remove()
	doc.Find("header, footer, aside").Remove()

	htmlStr, err := doc.Html()
	if err != nil {
		return nil, err
	}
	if markdown, err := htmltomarkdown.ConvertString(htmlStr); err == nil {
		ps.Text = markdown
	} else {
		ps.Text = plainText
	}
	return ps, nil
}

// extractLinks resolves anchors against base, drops fragments and
// non-navigable schemes, and returns at most maxLinks sorted unique URLs.
func extractLinks(doc *goquery.Document, base string) []string {
	baseURL, _ := url.Parse(base)
	set := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if !u.IsAbs() && baseURL != nil {
			u = baseURL.ResolveReference(u)
		}
		switch u.Scheme {
		case "", "javascript", "mailto", "tel":
			return
		}
		u.Fragment = ""
		set[u.String()] = struct{}{}
	})

	links := make([]string, 0, len(set))
	for l := range set {
		links = append(links, l)
	}
	sort.Strings(links)
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	return links
}
