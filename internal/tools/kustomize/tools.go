// Package kustomize implements the MCP tool for rendering kustomization
// directories.
package kustomize

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterKustomizeTools registers the kustomize tools with the MCP server.
func RegisterKustomizeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	buildTool := mcp.NewTool("kustomize_build",
		mcp.WithDescription("Render a kustomization directory to multi-document manifest YAML without touching the cluster. The output is suitable for kubernetes_apply."),
		mcp.WithString("dir",
			mcp.Required(),
			mcp.Description("Path of the directory containing the kustomization file"),
		),
		mcp.WithBoolean("enableHelm",
			mcp.Description("Allow kustomizations that inflate helm charts (requires a helm binary, default: false)"),
		),
		mcp.WithString("helmBinary",
			mcp.Description("Helm executable used for chart inflation (default: 'helm' on PATH)"),
		),
		mcp.WithString("loadRestrictions",
			mcp.Description("File loading restriction: 'rootOnly' or 'none' (default: rootOnly)"),
			mcp.Enum("rootOnly", "none"),
		),
	)
	s.AddTool(buildTool, tools.WrapWithAuditLogging("kustomize_build", handleBuild, sc))

	return nil
}
