package kustomize

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/kustomize"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// handleBuild renders a kustomization directory and returns the YAML
// stream as-is so it can feed kubernetes_apply.
func handleBuild(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError("dir is required"), nil
	}

	manifest, err := kustomize.Build(dir, kustomize.Options{
		EnableHelm:       tools.GetBoolArg(request, "enableHelm", false),
		HelmBinary:       request.GetString("helmBinary", ""),
		LoadRestrictions: request.GetString("loadRestrictions", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build kustomization: %v", err)), nil
	}

	sc.Logger().Debug("rendered kustomization", "dir", dir, "bytes", len(manifest))

	return mcp.NewToolResultText(manifest), nil
}
