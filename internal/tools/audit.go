// Package tools provides shared utilities and types for MCP tool implementations.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/server"
)

// WrapWithAuditLogging wraps a tool handler with audit logging and the
// server's coarse invocation counters. The wrapper automatically captures:
//   - Tool invocation timing
//   - Kube context and resource information from request arguments
//   - Success/error status from the handler result
//   - OpenTelemetry trace context for correlation
//
// If no instrumentation provider is available, the handler still updates
// the server counters but skips the audit record.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sc.Metrics().IncrementToolCalls()

		provider := sc.InstrumentationProvider()
		if provider == nil || provider.AuditLogger() == nil {
			result, err := handler(ctx, request, sc)
			if err != nil || (result != nil && result.IsError) {
				sc.Metrics().IncrementToolErrors()
			}
			return result, err
		}

		auditLogger := provider.AuditLogger()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)

		extractAuditInfoFromArgs(invocation, request.GetArguments())

		result, err := handler(ctx, request, sc)

		// MCP tool errors are returned in the result, not as Go errors
		if err != nil {
			invocation.CompleteWithError(err)
		} else if result != nil && result.IsError {
			invocation.Complete(false, nil)
			if len(result.Content) > 0 {
				if textContent, ok := result.Content[0].(mcp.TextContent); ok {
					invocation.Error = textContent.Text
				}
			}
		} else {
			invocation.CompleteSuccess()
		}

		if !invocation.Success {
			sc.Metrics().IncrementToolErrors()
		}

		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}

// extractAuditInfoFromArgs extracts kube context, namespace, and resource
// information from tool request arguments for audit logging.
func extractAuditInfoFromArgs(invocation *instrumentation.ToolInvocation, args map[string]interface{}) {
	if kubeContext, ok := args["kubeContext"].(string); ok && kubeContext != "" {
		invocation.WithKubeContext(kubeContext)
	}

	namespace, _ := args["namespace"].(string)
	resourceType, _ := args["resourceType"].(string)
	resourceName := extractResourceName(args)

	if namespace != "" || resourceType != "" || resourceName != "" {
		invocation.WithResource(namespace, resourceType, resourceName)
	}
}

// extractResourceName extracts the resource name from various argument
// patterns. Different tools use different parameter names.
func extractResourceName(args map[string]interface{}) string {
	nameKeys := []string{"name", "podName", "nodeName", "releaseName", "resourceName", "sessionID"}
	for _, key := range nameKeys {
		if name, ok := args[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}
