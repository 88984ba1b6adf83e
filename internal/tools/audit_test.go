package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools/resource/testdata"
)

func TestWrapWithAuditLogging_CapturesToolName(t *testing.T) {
	provider := createTestProvider(t)
	sc := createTestServerContext(t, provider)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	request := createTestRequest(nil)
	_, err := wrapped(context.Background(), request)
	require.NoError(t, err)

	require.NotNil(t, provider.AuditLogger())
}

func TestWrapWithAuditLogging_ExtractsResourceInfo(t *testing.T) {
	provider := createTestProvider(t)
	sc := createTestServerContext(t, provider)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	args := map[string]interface{}{
		"kubeContext":  "prod-cluster-1",
		"namespace":    "kube-system",
		"resourceType": "pods",
		"name":         "my-pod",
	}
	request := createTestRequest(args)

	_, err := wrapped(context.Background(), request)
	require.NoError(t, err)
}

func TestWrapWithAuditLogging_MeasuresDuration(t *testing.T) {
	provider := createTestProvider(t)
	sc := createTestServerContext(t, provider)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		time.Sleep(10 * time.Millisecond)
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	request := createTestRequest(nil)
	start := time.Now()
	_, err := wrapped(context.Background(), request)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}

func TestWrapWithAuditLogging_HandlesSuccess(t *testing.T) {
	provider := createTestProvider(t)
	sc := createTestServerContext(t, provider)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	request := createTestRequest(nil)
	result, err := wrapped(context.Background(), request)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestWrapWithAuditLogging_HandlesGoError(t *testing.T) {
	provider := createTestProvider(t)
	sc := createTestServerContext(t, provider)

	expectedErr := errors.New("handler error")
	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	request := createTestRequest(nil)
	result, err := wrapped(context.Background(), request)

	require.Error(t, err)
	assert.Equal(t, expectedErr, err)
	assert.Nil(t, result)
}

func TestWrapWithAuditLogging_HandlesMCPToolError(t *testing.T) {
	provider := createTestProvider(t)
	sc := createTestServerContext(t, provider)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("tool error message"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	request := createTestRequest(nil)
	result, err := wrapped(context.Background(), request)

	require.NoError(t, err) // No Go error
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestWrapWithAuditLogging_NoProvider(t *testing.T) {
	sc := createTestServerContextNoInstrumentation(t)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	request := createTestRequest(nil)
	result, err := wrapped(context.Background(), request)

	// Should still work, just without audit logging
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestWrapWithAuditLogging_CountsInvocations(t *testing.T) {
	sc := createTestServerContextNoInstrumentation(t)

	handler := func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("boom"), nil
	}

	wrapped := WrapWithAuditLogging("test_tool", handler, sc)

	callsBefore, errorsBefore, _ := sc.Metrics().Snapshot()
	_, err := wrapped(context.Background(), createTestRequest(nil))
	require.NoError(t, err)

	calls, toolErrors, _ := sc.Metrics().Snapshot()
	assert.Equal(t, callsBefore+1, calls)
	assert.Equal(t, errorsBefore+1, toolErrors)
}

func TestExtractAuditInfoFromArgs(t *testing.T) {
	tests := []struct {
		name            string
		args            map[string]interface{}
		expectContext   string
		expectNamespace string
		expectResType   string
		expectResName   string
	}{
		{
			name: "full resource info",
			args: map[string]interface{}{
				"kubeContext":  "prod-cluster",
				"namespace":    "default",
				"resourceType": "pods",
				"name":         "my-pod",
			},
			expectContext:   "prod-cluster",
			expectNamespace: "default",
			expectResType:   "pods",
			expectResName:   "my-pod",
		},
		{
			name: "pod name parameter",
			args: map[string]interface{}{
				"namespace": "default",
				"podName":   "nginx-pod",
			},
			expectNamespace: "default",
			expectResName:   "nginx-pod",
		},
		{
			name: "node name parameter",
			args: map[string]interface{}{
				"nodeName": "worker-1",
			},
			expectResName: "worker-1",
		},
		{
			name: "release name parameter",
			args: map[string]interface{}{
				"namespace":   "apps",
				"releaseName": "prometheus",
			},
			expectNamespace: "apps",
			expectResName:   "prometheus",
		},
		{
			name: "sessionID parameter",
			args: map[string]interface{}{
				"sessionID": "default/web-0:8080",
			},
			expectResName: "default/web-0:8080",
		},
		{
			name: "empty args",
			args: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invocation := instrumentation.NewToolInvocation("test")
			extractAuditInfoFromArgs(invocation, tt.args)

			assert.Equal(t, tt.expectContext, invocation.KubeContext)
			assert.Equal(t, tt.expectNamespace, invocation.Namespace)
			assert.Equal(t, tt.expectResType, invocation.ResourceType)
			assert.Equal(t, tt.expectResName, invocation.ResourceName)
		})
	}
}

func TestExtractResourceName(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "name parameter",
			args:     map[string]interface{}{"name": "my-resource"},
			expected: "my-resource",
		},
		{
			name:     "podName parameter",
			args:     map[string]interface{}{"podName": "my-pod"},
			expected: "my-pod",
		},
		{
			name:     "name takes precedence",
			args:     map[string]interface{}{"name": "primary", "podName": "secondary"},
			expected: "primary",
		},
		{
			name:     "empty string ignored",
			args:     map[string]interface{}{"name": "", "podName": "actual"},
			expected: "actual",
		},
		{
			name:     "no matching parameter",
			args:     map[string]interface{}{"other": "value"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractResourceName(tt.args))
		})
	}
}

// Helper functions

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	config := instrumentation.Config{
		Enabled:         true,
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	}
	provider, err := instrumentation.NewProvider(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
	return provider
}

func createTestServerContext(t *testing.T, provider *instrumentation.Provider) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(
		context.Background(),
		server.WithK8sClient(&testdata.MockK8sClient{}),
		server.WithLogger(&testdata.MockLogger{}),
		server.WithInstrumentationProvider(provider),
	)
	require.NoError(t, err)
	return sc
}

func createTestServerContextNoInstrumentation(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(
		context.Background(),
		server.WithK8sClient(&testdata.MockK8sClient{}),
		server.WithLogger(&testdata.MockLogger{}),
	)
	require.NoError(t, err)
	return sc
}

func createTestRequest(args map[string]interface{}) mcp.CallToolRequest {
	if args == nil {
		args = map[string]interface{}{}
	}
	request := mcp.CallToolRequest{}
	request.Params.Name = "test_tool"
	request.Params.Arguments = args
	return request
}
