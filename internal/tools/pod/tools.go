// Package pod implements MCP tools for pod I/O: logs, command execution,
// file transfer and session-tracked port forwarding.
package pod

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterPodTools registers all pod I/O tools with the MCP server.
func RegisterPodTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	kubeContextParam := tools.AddKubeContextParam(sc)

	// kubernetes_logs tool
	logsOpts := []mcp.ToolOption{
		mcp.WithDescription("Retrieve container logs from a pod. When podName is omitted, labelSelector resolves the pod to read from."),
		mcp.WithString("namespace",
			mcp.Required(),
			mcp.Description("Namespace of the pod"),
		),
		mcp.WithString("podName",
			mcp.Description("Name of the pod (optional when labelSelector is provided)"),
		),
		mcp.WithString("labelSelector",
			mcp.Description("Label selector resolving the pod when podName is omitted (e.g., 'app=web')"),
		),
		mcp.WithString("containerName",
			mcp.Description("Container to read from (optional for single-container pods)"),
		),
		mcp.WithBoolean("previous",
			mcp.Description("Read logs from the previous container instance (default: false)"),
		),
		mcp.WithBoolean("timestamps",
			mcp.Description("Prefix each line with its timestamp (default: false)"),
		),
		mcp.WithNumber("tailLines",
			mcp.Description("Only return the last N lines (optional)"),
		),
		mcp.WithString("sinceTime",
			mcp.Description("Only return logs after this RFC 3339 timestamp (optional)"),
		),
	}
	logsOpts = append(logsOpts, kubeContextParam...)
	logsTool := mcp.NewTool("kubernetes_logs", logsOpts...)
	s.AddTool(logsTool, tools.WrapWithAuditLogging("kubernetes_logs", handleGetLogs, sc))

	// kubernetes_exec tool
	execOpts := []mcp.ToolOption{
		mcp.WithDescription("Execute a command inside a pod container. A non-zero exit code is reported in the result, not as an error."),
		mcp.WithString("namespace",
			mcp.Required(),
			mcp.Description("Namespace of the pod"),
		),
		mcp.WithString("podName",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		mcp.WithString("containerName",
			mcp.Description("Container to execute in (optional for single-container pods)"),
		),
		mcp.WithArray("command",
			mcp.Required(),
			mcp.Description("Command and arguments to execute (e.g., ['ls', '-la', '/tmp'])"),
		),
		mcp.WithString("stdin",
			mcp.Description("Data fed to the command's standard input (optional)"),
		),
		mcp.WithBoolean("tty",
			mcp.Description("Allocate a pseudo-terminal (default: false)"),
		),
	}
	execOpts = append(execOpts, kubeContextParam...)
	execTool := mcp.NewTool("kubernetes_exec", execOpts...)
	s.AddTool(execTool, tools.WrapWithAuditLogging("kubernetes_exec", handleExec, sc))

	// kubernetes_cp tool
	cpOpts := []mcp.ToolOption{
		mcp.WithDescription("Copy files or directories between the local filesystem and a pod container. Content literal mode writes a string directly to remotePath."),
		mcp.WithString("namespace",
			mcp.Required(),
			mcp.Description("Namespace of the pod"),
		),
		mcp.WithString("podName",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		mcp.WithString("containerName",
			mcp.Description("Container to copy to or from (optional for single-container pods)"),
		),
		mcp.WithString("direction",
			mcp.Description("Transfer direction: 'to' copies into the pod, 'from' copies out of it (default: to)"),
			mcp.Enum("to", "from"),
		),
		mcp.WithString("remotePath",
			mcp.Required(),
			mcp.Description("Absolute path inside the container"),
		),
		mcp.WithString("localPath",
			mcp.Description("Local file or directory path (required unless content is provided)"),
		),
		mcp.WithString("content",
			mcp.Description("Literal content written to remotePath instead of reading localPath (direction 'to' only)"),
		),
		mcp.WithBoolean("noPreserve",
			mcp.Description("Skip ownership and permission preservation (default: false)"),
		),
	}
	cpOpts = append(cpOpts, kubeContextParam...)
	cpTool := mcp.NewTool("kubernetes_cp", cpOpts...)
	s.AddTool(cpTool, tools.WrapWithAuditLogging("kubernetes_cp", handleCopy, sc))

	// kubernetes_port_forward tool
	portForwardOpts := []mcp.ToolOption{
		mcp.WithDescription("Establish a port forwarding session to a pod. The session stays open until stopped and is cleaned up on server shutdown."),
		mcp.WithString("namespace",
			mcp.Required(),
			mcp.Description("Namespace of the pod"),
		),
		mcp.WithString("podName",
			mcp.Required(),
			mcp.Description("Name of the pod"),
		),
		mcp.WithArray("ports",
			mcp.Required(),
			mcp.Description("Port mappings as 'local:remote' strings (e.g., ['8080:80']); use '0:80' for a random local port"),
		),
	}
	portForwardOpts = append(portForwardOpts, kubeContextParam...)
	portForwardTool := mcp.NewTool("kubernetes_port_forward", portForwardOpts...)
	s.AddTool(portForwardTool, tools.WrapWithAuditLogging("kubernetes_port_forward", handlePortForward, sc))

	// kubernetes_port_forward_sessions tool
	listSessionsTool := mcp.NewTool("kubernetes_port_forward_sessions",
		mcp.WithDescription("List all active port forwarding sessions"),
	)
	s.AddTool(listSessionsTool, tools.WrapWithAuditLogging("kubernetes_port_forward_sessions", handleListPortForwardSessions, sc))

	// kubernetes_port_forward_stop tool
	stopSessionTool := mcp.NewTool("kubernetes_port_forward_stop",
		mcp.WithDescription("Stop a specific port forwarding session"),
		mcp.WithString("sessionID",
			mcp.Required(),
			mcp.Description("ID of the session to stop, as returned by kubernetes_port_forward"),
		),
	)
	s.AddTool(stopSessionTool, tools.WrapWithAuditLogging("kubernetes_port_forward_stop", handleStopPortForwardSession, sc))

	// kubernetes_port_forward_stop_all tool
	stopAllSessionsTool := mcp.NewTool("kubernetes_port_forward_stop_all",
		mcp.WithDescription("Stop all active port forwarding sessions"),
	)
	s.AddTool(stopAllSessionsTool, tools.WrapWithAuditLogging("kubernetes_port_forward_stop_all", handleStopAllPortForwardSessions, sc))

	return nil
}
