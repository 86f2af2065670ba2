package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/inmemcache/internal/cache"
)

// CacheAdmin is the part of the content cache the admin tools need.
type CacheAdmin interface {
	Info() cache.Info
	Clear()
}

// CacheInfoHandler returns the MCP tool handler for the "cache-info" tool.
func CacheInfoHandler(c CacheAdmin) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(formatCacheInfo(c.Info())), nil
	}
}

// CacheClearHandler returns the MCP tool handler for the "cache-clear" tool.
func CacheClearHandler(c CacheAdmin) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		before := c.Info()
		c.Clear()
		return mcp.NewToolResultText(fmt.Sprintf("Cleared %d entries (%d bytes).", before.Entries, before.Size)), nil
	}
}

func formatCacheInfo(info cache.Info) string {
	used := 0.0
	if info.Capacity > 0 {
		used = float64(info.Size) / float64(info.Capacity) * 100
	}
	return fmt.Sprintf("entries: %d\nsize: %d bytes\ncapacity: %d bytes\nused: %.1f%%",
		info.Entries, info.Size, info.Capacity, used)
}
