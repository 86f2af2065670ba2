package main

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leonardcser/inmemcache/internal/cache"
	"github.com/leonardcser/inmemcache/internal/config"
	"github.com/leonardcser/inmemcache/internal/logger"
	"github.com/leonardcser/inmemcache/internal/tools"
	"github.com/leonardcser/inmemcache/internal/web"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.LogPath); err != nil {
		panic(err)
	}
	defer logger.Close()
	logger.SetTrace(cfg.Trace)

	logger.Infof("Starting Web MCP server")

	store := cache.NewGuarded(cache.New(cache.Options{
		Capacity: cfg.CacheCapacity,
		Sink:     logger.CacheSink(),
	}))
	logger.Infof("Content cache ready: %d bytes", store.Info().Capacity)

	fetcher := web.NewFetcher(store)
	searcher := web.NewSearcher(store, nil)

	s := server.NewMCPServer(
		"Web MCP",
		"0.2.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolFetch := mcp.NewTool("web-fetch",
		mcp.WithDescription(multiline(
			"Fetches content from a specified URL and returns the parsed content",
			"\nFunctionality:",
			"- Takes a URL as input",
			"- Fetches the URL content and parses it",
			"- Returns the structured content including title, description, text, and links",
			"\nUsage notes:",
			"- If an MCP-provided web fetch tool is available, prefer using that tool instead",
			"- The URL must be a fully-formed valid URL",
			"- This tool is read-only and does not modify any files",
			"- Results are kept in a size-bounded in-memory cache; repeated fetches of the same URL are served from it until evicted",
		)),
		mcp.WithString("url", mcp.Required(), mcp.Description("The URL to fetch content from")),
	)
	s.AddTool(toolFetch, tools.WebFetchHandler(fetcher))

	toolSearch := mcp.NewTool("web-search",
		mcp.WithDescription(multiline(
			"Allows you to search the web and use the results to inform responses",
			"\nFunctionality:",
			"- Provides up-to-date information for current events and recent data",
			"- Returns search result information formatted as search result blocks",
			"- Use this tool for accessing information beyond your knowledge cutoff",
			"\nUsage notes:",
			"- Web search is only available in the US",
			"- Repeated queries are answered from the in-memory cache",
		)),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query to use")),
	)
	s.AddTool(toolSearch, tools.WebSearchHandler(searcher, cfg.SearchLimit))

	toolInfo := mcp.NewTool("cache-info",
		mcp.WithDescription("Reports the entry count, size and capacity of the in-memory content cache"),
	)
	s.AddTool(toolInfo, tools.CacheInfoHandler(store))

	toolClear := mcp.NewTool("cache-clear",
		mcp.WithDescription("Drops every entry from the in-memory content cache so the next fetch or search goes to the network"),
	)
	s.AddTool(toolClear, tools.CacheClearHandler(store))
	logger.Infof("Registered tools: web-fetch, web-search, cache-info, cache-clear")

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }
