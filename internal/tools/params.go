package tools

import (
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/server"
)

// AddKubeContextParam returns tool options for the kubeContext parameter
// based on the server's operating mode. The parameter is only offered when
// the server is NOT running in-cluster, where context switching makes no
// sense.
//
// Usage in tool registration:
//
//	opts := []mcp.ToolOption{
//	    mcp.WithDescription("..."),
//	}
//	opts = append(opts, tools.AddKubeContextParam(sc)...)
//	opts = append(opts, /* tool-specific params */...)
//	tool := mcp.NewTool("tool_name", opts...)
func AddKubeContextParam(sc *server.ServerContext) []mcp.ToolOption {
	var opts []mcp.ToolOption

	if !sc.InClusterMode() {
		opts = append(opts, mcp.WithString("kubeContext",
			mcp.Description("Kubernetes context to use (optional, uses current context if not specified)"),
		))
	}

	return opts
}

// AddNamespaceParam returns the standard namespace parameter shared by
// namespaced tools.
func AddNamespaceParam() mcp.ToolOption {
	return mcp.WithString("namespace",
		mcp.Description("Namespace to operate in (optional, uses the server default if not specified)"),
	)
}

// NamespaceOrDefault resolves the effective namespace for a request,
// falling back to the server's configured default.
func NamespaceOrDefault(sc *server.ServerContext, namespace string) string {
	if namespace != "" {
		return namespace
	}
	if ns := sc.Config().DefaultNamespace; ns != "" {
		return ns
	}
	return "default"
}
