package pod

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// portForwardSetupTimeout bounds the initial tunnel establishment.
const portForwardSetupTimeout = 10 * time.Second

func toolResultJSON(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleGetLogs retrieves container logs, optionally resolving the pod
// from a label selector.
func handleGetLogs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	kubeContext := request.GetString("kubeContext", "")

	namespace, err := request.RequireString("namespace")
	if err != nil {
		return mcp.NewToolResultError("namespace is required"), nil
	}

	podName := request.GetString("podName", "")
	labelSelector := request.GetString("labelSelector", "")
	if podName == "" && labelSelector == "" {
		return mcp.NewToolResultError("one of podName or labelSelector is required"), nil
	}

	opts := k8s.LogOptions{
		Previous:      tools.GetBoolArg(request, "previous", false),
		Timestamps:    tools.GetBoolArg(request, "timestamps", false),
		LabelSelector: labelSelector,
	}
	if tail := tools.GetIntArg(request, "tailLines", -1); tail >= 0 {
		lines := int64(tail)
		opts.TailLines = &lines
	}
	if since := request.GetString("sinceTime", ""); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid sinceTime: %v", err)), nil
		}
		opts.SinceTime = &parsed
	}

	containerName := request.GetString("containerName", "")

	reader, err := sc.K8sClient().GetLogs(ctx, kubeContext, namespace, podName, containerName, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get logs: %v", err)), nil
	}
	defer reader.Close()

	logsBytes, err := io.ReadAll(reader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read logs: %v", err)), nil
	}

	return mcp.NewToolResultText(string(logsBytes)), nil
}

// handleExec executes a command inside a pod container.
func handleExec(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "exec"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")

	namespace, err := request.RequireString("namespace")
	if err != nil {
		return mcp.NewToolResultError("namespace is required"), nil
	}
	podName, err := request.RequireString("podName")
	if err != nil {
		return mcp.NewToolResultError("podName is required"), nil
	}

	rawCommand, ok := request.GetArguments()["command"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("command must be an array of strings"), nil
	}
	var command []string
	for _, item := range rawCommand {
		if str, ok := item.(string); ok {
			command = append(command, str)
		}
	}
	if len(command) == 0 {
		return mcp.NewToolResultError("command cannot be empty"), nil
	}

	opts := k8s.ExecOptions{
		TTY: tools.GetBoolArg(request, "tty", false),
	}
	if stdin := request.GetString("stdin", ""); stdin != "" {
		opts.Stdin = strings.NewReader(stdin)
	}

	containerName := request.GetString("containerName", "")

	execResult, err := sc.K8sClient().Exec(ctx, kubeContext, namespace, podName, containerName, command, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to execute command: %v", err)), nil
	}

	return toolResultJSON(execResult)
}

// handleCopy transfers files between the local filesystem and a pod
// container.
func handleCopy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "copy"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")

	namespace, err := request.RequireString("namespace")
	if err != nil {
		return mcp.NewToolResultError("namespace is required"), nil
	}
	podName, err := request.RequireString("podName")
	if err != nil {
		return mcp.NewToolResultError("podName is required"), nil
	}
	remotePath, err := request.RequireString("remotePath")
	if err != nil {
		return mcp.NewToolResultError("remotePath is required"), nil
	}

	opts := k8s.CopyOptions{
		LocalPath:  request.GetString("localPath", ""),
		RemotePath: remotePath,
		Content:    request.GetString("content", ""),
		NoPreserve: tools.GetBoolArg(request, "noPreserve", false),
	}

	containerName := request.GetString("containerName", "")
	direction := request.GetString("direction", "to")

	switch direction {
	case "to":
		if opts.LocalPath == "" && opts.Content == "" {
			return mcp.NewToolResultError("one of localPath or content is required"), nil
		}
		err = sc.K8sClient().CopyToPod(ctx, kubeContext, namespace, podName, containerName, opts)
	case "from":
		if opts.LocalPath == "" {
			return mcp.NewToolResultError("localPath is required when copying from a pod"), nil
		}
		if opts.Content != "" {
			return mcp.NewToolResultError("content is only valid when copying to a pod"), nil
		}
		err = sc.K8sClient().CopyFromPod(ctx, kubeContext, namespace, podName, containerName, opts)
	default:
		return mcp.NewToolResultError("Invalid direction. Must be one of: to, from"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to copy: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"changed":    direction == "to",
		"direction":  direction,
		"pod":        fmt.Sprintf("%s/%s", namespace, podName),
		"remotePath": remotePath,
	})
}

// handlePortForward establishes a tracked port forwarding session.
func handlePortForward(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "port-forward"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")

	namespace, err := request.RequireString("namespace")
	if err != nil {
		return mcp.NewToolResultError("namespace is required"), nil
	}
	podName, err := request.RequireString("podName")
	if err != nil {
		return mcp.NewToolResultError("podName is required"), nil
	}

	rawPorts, ok := request.GetArguments()["ports"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("ports must be an array of strings"), nil
	}
	var ports []string
	for _, item := range rawPorts {
		if str, ok := item.(string); ok && str != "" {
			ports = append(ports, str)
		}
	}
	if len(ports) == 0 {
		return mcp.NewToolResultError("ports cannot be empty"), nil
	}

	setupCtx, setupCancel := context.WithTimeout(ctx, portForwardSetupTimeout)
	defer setupCancel()

	session, err := sc.K8sClient().PortForward(setupCtx, kubeContext, namespace, podName, ports, k8s.PortForwardOptions{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set up port forwarding: %v", err)), nil
	}

	sessionID := fmt.Sprintf("pf-%s", uuid.NewString())
	sc.RegisterPortForwardSession(sessionID, session)

	mappings := make([]map[string]interface{}, 0, len(session.LocalPorts))
	for i, localPort := range session.LocalPorts {
		if i < len(session.RemotePorts) {
			mappings = append(mappings, map[string]interface{}{
				"localPort":  localPort,
				"remotePort": session.RemotePorts[i],
			})
		}
	}

	return toolResultJSON(map[string]interface{}{
		"sessionID": sessionID,
		"pod":       fmt.Sprintf("%s/%s", namespace, podName),
		"mappings":  mappings,
		"note":      "Long-running session. Use kubernetes_port_forward_sessions to list and kubernetes_port_forward_stop to stop it.",
	})
}

// handleListPortForwardSessions lists active sessions with their port
// mappings.
func handleListPortForwardSessions(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	sessions := sc.GetActiveSessions()

	entries := make([]map[string]interface{}, 0, len(sessions))
	for sessionID, session := range sessions {
		entries = append(entries, map[string]interface{}{
			"sessionID":   sessionID,
			"localPorts":  session.LocalPorts,
			"remotePorts": session.RemotePorts,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i]["sessionID"].(string) < entries[j]["sessionID"].(string)
	})

	return toolResultJSON(map[string]interface{}{
		"sessions": entries,
		"count":    len(entries),
	})
}

// handleStopPortForwardSession stops one session by ID.
func handleStopPortForwardSession(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("sessionID")
	if err != nil {
		return mcp.NewToolResultError("sessionID is required"), nil
	}

	if err := sc.StopPortForwardSession(sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stop session: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"stopped":   true,
		"sessionID": sessionID,
	})
}

// handleStopAllPortForwardSessions stops every active session.
func handleStopAllPortForwardSessions(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	count := sc.StopAllPortForwardSessions()
	return toolResultJSON(map[string]interface{}{
		"stopped": count,
	})
}
