// Package node provides tests for node lifecycle handlers.
package node

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools/resource/testdata"
)

func newTestContext(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()
	base := []server.Option{
		server.WithK8sClient(&testdata.MockK8sClient{}),
		server.WithLogger(&testdata.MockLogger{}),
		server.WithNonDestructiveMode(false),
	}
	sc, err := server.NewServerContext(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	return sc
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
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

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &parsed))
	return parsed
}

func TestHandleCordonNode(t *testing.T) {
	t.Run("cordons a node", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleCordonNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
		}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		response := resultJSON(t, result)
		assert.Equal(t, true, response["changed"])
		assert.Equal(t, "worker-1", response["node"])
	})

	t.Run("requires nodeName", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleCordonNode(context.Background(), newRequest(map[string]interface{}{}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "nodeName is required")
	})

	t.Run("blocked in non-destructive mode", func(t *testing.T) {
		sc := newTestContext(t, server.WithNonDestructiveMode(true))

		result, err := handleCordonNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
		}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "non-destructive mode")
	})
}

func TestHandleUncordonNode(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleUncordonNode(context.Background(), newRequest(map[string]interface{}{
		"nodeName": "worker-1",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	assert.Equal(t, true, resultJSON(t, result)["changed"])
}

func TestHandleDrainNode(t *testing.T) {
	t.Run("drains a node and reports evictions", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleDrainNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName":         "worker-1",
			"ignoreDaemonsets": true,
			"waitTimeout":      float64(30),
		}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		response := resultJSON(t, result)
		assert.Equal(t, true, response["changed"])
		assert.Equal(t, true, response["cordoned"])
	})

	t.Run("blocked in non-destructive mode", func(t *testing.T) {
		sc := newTestContext(t, server.WithNonDestructiveMode(true))

		result, err := handleDrainNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
		}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Drain operations are not allowed")
	})
}

func TestHandleTaintNode(t *testing.T) {
	validTaints := []interface{}{
		map[string]interface{}{"key": "dedicated", "value": "gpu", "effect": "NoSchedule"},
	}

	t.Run("applies taints with state present", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleTaintNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
			"taints":   validTaints,
		}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		response := resultJSON(t, result)
		assert.Equal(t, true, response["changed"])
		assert.Equal(t, "present", response["state"])
	})

	t.Run("removes taints with state absent", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleTaintNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
			"taints":   validTaints,
			"state":    "absent",
		}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))
		assert.Equal(t, "absent", resultJSON(t, result)["state"])
	})

	t.Run("rejects empty taints", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleTaintNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
			"taints":   []interface{}{},
		}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "non-empty array")
	})

	t.Run("rejects invalid effect", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleTaintNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
			"taints": []interface{}{
				map[string]interface{}{"key": "dedicated", "effect": "Sometimes"},
			},
		}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "invalid effect")
	})

	t.Run("rejects missing key", func(t *testing.T) {
		sc := newTestContext(t)

		result, err := handleTaintNode(context.Background(), newRequest(map[string]interface{}{
			"nodeName": "worker-1",
			"taints": []interface{}{
				map[string]interface{}{"effect": "NoSchedule"},
			},
		}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "missing key")
	})
}

func TestParseTaints(t *testing.T) {
	taints, err := parseTaints([]interface{}{
		map[string]interface{}{"key": "a", "value": "1", "effect": "NoSchedule"},
		map[string]interface{}{"key": "b", "effect": "NoExecute"},
	})
	require.NoError(t, err)
	require.Len(t, taints, 2)
	assert.Equal(t, "a", taints[0].Key)
	assert.Equal(t, "1", taints[0].Value)
	assert.Empty(t, taints[1].Value)
}
