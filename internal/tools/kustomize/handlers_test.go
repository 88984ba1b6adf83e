// Package kustomize provides tests for the kustomize build handler.
package kustomize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools/resource/testdata"
)

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(),
		server.WithK8sClient(&testdata.MockK8sClient{}),
		server.WithLogger(&testdata.MockLogger{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent in result, got %T", result.Content[0])
	return textContent.Text
}

func writeKustomization(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestHandleBuild(t *testing.T) {
	t.Run("renders a kustomization", func(t *testing.T) {
		dir := writeKustomization(t, map[string]string{
			"kustomization.yaml": "resources:\n- configmap.yaml\nnamePrefix: demo-\n",
			"configmap.yaml": "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: app-config\ndata:\n  key: value\n",
		})
		sc := newTestContext(t)

		request := mcp.CallToolRequest{}
		request.Params.Arguments = map[string]interface{}{"dir": dir}

		result, err := handleBuild(context.Background(), request, sc)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))
		assert.Contains(t, resultText(t, result), "demo-app-config")
	})

	t.Run("requires dir", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleBuild(context.Background(), mcp.CallToolRequest{}, sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "dir is required")
	})

	t.Run("reports missing kustomization file", func(t *testing.T) {
		sc := newTestContext(t)

		request := mcp.CallToolRequest{}
		request.Params.Arguments = map[string]interface{}{"dir": t.TempDir()}

		result, err := handleBuild(context.Background(), request, sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Failed to build kustomization")
	})

	t.Run("rejects unknown load restriction", func(t *testing.T) {
		dir := writeKustomization(t, map[string]string{
			"kustomization.yaml": "resources: []\n",
		})
		sc := newTestContext(t)

		request := mcp.CallToolRequest{}
		request.Params.Arguments = map[string]interface{}{
			"dir":              dir,
			"loadRestrictions": "everything",
		}

		result, err := handleBuild(context.Background(), request, sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "unknown load restriction")
	})
}
