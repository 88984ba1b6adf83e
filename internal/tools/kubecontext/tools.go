// Package kubecontext implements MCP tools for kubeconfig context
// listing and switching.
package kubecontext

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterContextTools registers all context management tools with the
// MCP server. Context tools are skipped entirely in-cluster, where there
// is no kubeconfig to manage.
func RegisterContextTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.InClusterMode() {
		return nil
	}

	// kubernetes_contexts tool
	listContextsTool := mcp.NewTool("kubernetes_contexts",
		mcp.WithDescription("List all available kubeconfig contexts, marking the active one"),
	)
	s.AddTool(listContextsTool, tools.WrapWithAuditLogging("kubernetes_contexts", handleListContexts, sc))

	// kubernetes_use_context tool
	useContextTool := mcp.NewTool("kubernetes_use_context",
		mcp.WithDescription("Switch the active kubeconfig context"),
		mcp.WithString("contextName",
			mcp.Required(),
			mcp.Description("Name of the context to switch to"),
		),
	)
	s.AddTool(useContextTool, tools.WrapWithAuditLogging("kubernetes_use_context", handleUseContext, sc))

	return nil
}
