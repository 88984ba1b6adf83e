package kubecontext

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/server"
)

// handleListContexts lists kubeconfig contexts with the current one
// marked.
func handleListContexts(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	contexts, err := sc.K8sClient().ListContexts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list contexts: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(map[string]interface{}{
		"contexts": contexts,
		"count":    len(contexts),
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal contexts: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleUseContext switches the active kubeconfig context.
func handleUseContext(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	contextName, err := request.RequireString("contextName")
	if err != nil {
		return mcp.NewToolResultError("contextName is required"), nil
	}

	if err := sc.K8sClient().SwitchContext(ctx, contextName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to switch context: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Switched to context: %s", contextName)), nil
}
