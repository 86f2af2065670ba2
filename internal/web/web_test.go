package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/inmemcache/internal/cache"
)

const samplePage = `<html>
<head><title> Sample </title><meta name="description" content=" A page. "></head>
<body>
<header>Site header</header>
<h1>Heading</h1>
<p>Some <b>bold</b> text.</p>
<a href="/about#team">About</a>
<a href="https://other.example/x">Other</a>
<a href="mailto:someone@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
<script>var hidden = 1;</script>
<footer>Site footer</footer>
</body>
</html>`

func newKV(capacity int64) *cache.Guarded {
	return cache.NewGuarded(cache.New(cache.Options{Capacity: capacity}))
}

func TestSummarize(t *testing.T) {
	t.Run("html", func(t *testing.T) {
		ps, err := Summarize("https://site.example/page", "text/html; charset=utf-8", []byte(samplePage))
		require.NoError(t, err)
		assert.Equal(t, "https://site.example/page", ps.URL)
		assert.Equal(t, "Sample", ps.Title)
		assert.Equal(t, "A page.", ps.Description)
		assert.Equal(t, []string{"https://other.example/x", "https://site.example/about"}, ps.Links)
		assert.Contains(t, ps.Text, "Heading")
		assert.Contains(t, ps.Text, "**bold**")
		assert.NotContains(t, ps.Text, "hidden")
		assert.NotContains(t, ps.Text, "Site footer")
	})

	t.Run("plain text is verbatim", func(t *testing.T) {
		ps, err := Summarize("https://site.example/a.txt", "text/plain", []byte("just text"))
		require.NoError(t, err)
		assert.Equal(t, "just text", ps.Text)
		assert.Empty(t, ps.Links)
	})

	t.Run("binary is rejected", func(t *testing.T) {
		_, err := Summarize("https://site.example/a.png", "image/png", []byte{0x89, 'P'})
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		_, err := Summarize("https://site.example/", "text/html", nil)
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("oversized body is trimmed", func(t *testing.T) {
		body := []byte(strings.Repeat("a", MaxResponseSize+10))
		ps, err := Summarize("https://site.example/big.txt", "text/plain", body)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(ps.Text, "[response trimmed due to size]"))
		assert.Len(t, body, MaxResponseSize+10)
	})
}

func TestExtractDDGURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc&rut=abc", "https://example.com/a?b=c"},
		{"https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org", "https://example.org"},
		{"https://example.net/direct", "https://example.net/direct"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractDDGURL(tt.in), tt.in)
	}
}

const sampleResults = `<html><body>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fone.example">First
  result</a>
  <a class="result__snippet">Snippet one</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://two.example">Second</a>
  <a class="result__snippet">Snippet two</a>
</div>
<div class="result results_links results_links_deep web-result">
  <a class="result__a" href="https://three.example">Third</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sampleResults))
	require.NoError(t, err)

	results := ParseResults(doc, 2)
	assert.Equal(t, []SearchResult{
		{Title: "First result", Description: "Snippet one", Link: "https://one.example"},
		{Title: "Second", Description: "Snippet two", Link: "https://two.example"},
	}, results)
}

func TestSearcher_CachesResults(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, sampleResults)
	}))
	defer srv.Close()

	kv := newKV(1 << 20)
	s := NewSearcher(kv, srv.Client())
	s.endpoint = srv.URL

	results, err := s.Search(context.Background(), "  golang ", 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = s.Search(context.Background(), "golang", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(1), hits.Load())

	_, err = kv.Get(searchKey("golang"))
	assert.NoError(t, err)
}

func TestSearcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSearcher(newKV(1<<20), srv.Client())
	s.endpoint = srv.URL

	_, err := s.Search(context.Background(), "   ", 10)
	assert.Error(t, err)

	_, err = s.Search(context.Background(), "down", 10)
	assert.ErrorContains(t, err, "duckduckgo status 503")
}

func TestFetcher_CachesSummaries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	kv := newKV(1 << 20)
	f := NewFetcher(kv)

	ps, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "Sample", ps.Title)

	again, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, ps, again)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, kv.Info().Entries)
}

func TestFetcher_TooLargeForCacheStillReturns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer srv.Close()

	kv := newKV(16)
	ps, err := NewFetcher(kv).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, ps.Text, 64)
	assert.Zero(t, kv.Info().Entries)
}

func TestFetcher_RejectsBadInput(t *testing.T) {
	f := NewFetcher(newKV(1 << 20))

	_, err := f.Fetch(context.Background(), "ftp://example.com")
	assert.ErrorIs(t, err, ErrBadScheme)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, "https://example.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_DropsCorruptCacheEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "fresh")
	}))
	defer srv.Close()

	kv := newKV(1 << 20)
	require.NoError(t, kv.Put(fetchKey(srv.URL), []byte("{not json")))

	ps, err := NewFetcher(kv).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "fresh", ps.Text)
}
