// Package server provides the ServerContext dependency container and
// related infrastructure for the kubesteward MCP server.
//
// The ServerContext struct encapsulates the Kubernetes client, the Helm
// client factory, logging, configuration and lifecycle management. All
// dependencies are injected through functional options, which keeps tool
// handlers testable with mock clients.
//
// Example usage:
//
//	serverCtx, err := NewServerContext(ctx,
//		WithK8sClient(k8sClient),
//		WithLogger(logger),
//		WithNonDestructiveMode(true),
//		WithDefaultNamespace("production"),
//	)
//	if err != nil {
//		return err
//	}
//	defer serverCtx.Shutdown()
//
// The context also tracks long-lived port forwarding sessions so they can
// be torn down during graceful shutdown, and exposes health endpoints for
// the HTTP transports.
package server
