// Package kubecontext provides tests for context management handlers.
package kubecontext

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools/resource/testdata"
)

func newTestContext(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()
	base := []server.Option{
		server.WithK8sClient(&testdata.MockK8sClient{}),
		server.WithLogger(&testdata.MockLogger{}),
	}
	sc, err := server.NewServerContext(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
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

func TestHandleListContexts(t *testing.T) {
	mock := &testdata.MockK8sClient{
		ListContextsFunc: func(_ context.Context) ([]k8s.ContextInfo, error) {
			return []k8s.ContextInfo{
				{Name: "prod", Cluster: "prod", Current: true},
				{Name: "staging", Cluster: "staging"},
			}, nil
		},
	}
	sc := newTestContext(t, server.WithK8sClient(mock))

	result, err := handleListContexts(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, float64(2), response["count"])
}

func TestHandleUseContext(t *testing.T) {
	t.Run("switches context", func(t *testing.T) {
		var switched string
		mock := &testdata.MockK8sClient{
			SwitchContextFunc: func(_ context.Context, contextName string) error {
				switched = contextName
				return nil
			},
		}
		sc := newTestContext(t, server.WithK8sClient(mock))

		request := mcp.CallToolRequest{}
		request.Params.Arguments = map[string]interface{}{"contextName": "staging"}

		result, err := handleUseContext(context.Background(), request, sc)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))
		assert.Equal(t, "staging", switched)
	})

	t.Run("requires contextName", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleUseContext(context.Background(), mcp.CallToolRequest{}, sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "contextName is required")
	})

	t.Run("reports switch failures", func(t *testing.T) {
		mock := &testdata.MockK8sClient{
			SwitchContextFunc: func(_ context.Context, _ string) error {
				return assert.AnError
			},
		}
		sc := newTestContext(t, server.WithK8sClient(mock))

		request := mcp.CallToolRequest{}
		request.Params.Arguments = map[string]interface{}{"contextName": "missing"}

		result, err := handleUseContext(context.Background(), request, sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Failed to switch context")
	})
}
