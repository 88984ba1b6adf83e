// Package cmd provides the command-line interface for kubesteward.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// Running the binary without a subcommand starts the MCP server, so the
// application can be used directly as an MCP stdio endpoint.
//
// Command Structure:
//
//	kubesteward [flags]                 # Starts the MCP server (default)
//	kubesteward serve [flags]           # Explicitly starts the MCP server
//	kubesteward version                 # Shows version information
//	kubesteward self-update             # Updates to latest release
//	kubesteward help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	kubesteward serve --transport stdio           # Default STDIO transport
//	kubesteward serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	kubesteward serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// The serve command also exposes flags for safety behavior (non-destructive
// mode, dry-run, allowed operations, restricted namespaces), Kubernetes
// client tuning (kubeconfig, context, QPS, burst, timeout) and Helm
// configuration (storage driver, helm binary).
package cmd
