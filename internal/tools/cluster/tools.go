// Package cluster implements MCP tools for cluster-level introspection:
// API discovery and health reporting.
package cluster

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterClusterTools registers all cluster introspection tools with the
// MCP server.
func RegisterClusterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	kubeContextParam := tools.AddKubeContextParam(sc)

	// kubernetes_api_resources tool
	apiResourcesOpts := []mcp.ToolOption{
		mcp.WithDescription("List API resources discovered from the cluster, including group, version, kind and supported verbs"),
		mcp.WithBoolean("namespacedOnly",
			mcp.Description("Only return namespaced resources (default: false)"),
		),
	}
	apiResourcesOpts = append(apiResourcesOpts, kubeContextParam...)
	apiResourcesTool := mcp.NewTool("kubernetes_api_resources", apiResourcesOpts...)
	s.AddTool(apiResourcesTool, tools.WrapWithAuditLogging("kubernetes_api_resources", handleGetAPIResources, sc))

	// kubernetes_cluster_health tool
	healthOpts := []mcp.ToolOption{
		mcp.WithDescription("Report cluster health: node readiness and control plane component status"),
	}
	healthOpts = append(healthOpts, kubeContextParam...)
	healthTool := mcp.NewTool("kubernetes_cluster_health", healthOpts...)
	s.AddTool(healthTool, tools.WrapWithAuditLogging("kubernetes_cluster_health", handleGetClusterHealth, sc))

	return nil
}
