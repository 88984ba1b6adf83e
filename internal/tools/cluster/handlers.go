package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// handleGetAPIResources lists discovered API resources.
func handleGetAPIResources(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	kubeContext := request.GetString("kubeContext", "")
	namespacedOnly := tools.GetBoolArg(request, "namespacedOnly", false)

	resources, err := sc.K8sClient().GetAPIResources(ctx, kubeContext, namespacedOnly)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get API resources: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal API resources: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleGetClusterHealth reports node and component health.
func handleGetClusterHealth(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	kubeContext := request.GetString("kubeContext", "")

	health, err := sc.K8sClient().GetClusterHealth(ctx, kubeContext)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get cluster health: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal cluster health: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
