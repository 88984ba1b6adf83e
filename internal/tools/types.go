package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/server"
)

// EmptyRequest represents a request with no parameters.
// Used by tools that don't require any input arguments.
type EmptyRequest struct{}

// ToolHandler is the signature for MCP tool handler functions that take
// ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// Result is the common envelope tool handlers serialize into the MCP
// response. Changed reports whether the cluster was mutated, Method the
// reconcile path taken (create, patch, apply, delete, noop).
type Result struct {
	Changed  bool          `json:"changed"`
	Method   string        `json:"method,omitempty"`
	Result   interface{}   `json:"result,omitempty"`
	Results  []interface{} `json:"results,omitempty"`
	Diff     interface{}   `json:"diff,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// GetStringArg extracts a string argument from the request, returning the
// fallback when absent or not a string.
func GetStringArg(request mcp.CallToolRequest, key, fallback string) string {
	if v, ok := request.GetArguments()[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// GetBoolArg extracts a boolean argument from the request.
func GetBoolArg(request mcp.CallToolRequest, key string, fallback bool) bool {
	if v, ok := request.GetArguments()[key].(bool); ok {
		return v
	}
	return fallback
}

// GetIntArg extracts an integer argument from the request. JSON numbers
// arrive as float64.
func GetIntArg(request mcp.CallToolRequest, key string, fallback int) int {
	switch v := request.GetArguments()[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
