package node

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	corev1 "k8s.io/api/core/v1"

	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

func toolResultJSON(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleCordonNode marks a node unschedulable.
func handleCordonNode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "cordon"); result != nil {
		return result, nil
	}

	nodeName, err := request.RequireString("nodeName")
	if err != nil {
		return mcp.NewToolResultError("nodeName is required"), nil
	}
	kubeContext := request.GetString("kubeContext", "")
	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	changed, err := sc.K8sClient().Cordon(ctx, kubeContext, nodeName, checkMode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to cordon node: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"changed": changed,
		"node":    nodeName,
	})
}

// handleUncordonNode marks a node schedulable again.
func handleUncordonNode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "uncordon"); result != nil {
		return result, nil
	}

	nodeName, err := request.RequireString("nodeName")
	if err != nil {
		return mcp.NewToolResultError("nodeName is required"), nil
	}
	kubeContext := request.GetString("kubeContext", "")
	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	changed, err := sc.K8sClient().Uncordon(ctx, kubeContext, nodeName, checkMode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to uncordon node: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"changed": changed,
		"node":    nodeName,
	})
}

// handleDrainNode cordons a node and evicts its pods.
func handleDrainNode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "drain"); result != nil {
		return result, nil
	}

	nodeName, err := request.RequireString("nodeName")
	if err != nil {
		return mcp.NewToolResultError("nodeName is required"), nil
	}
	kubeContext := request.GetString("kubeContext", "")

	opts := k8s.DrainOptions{
		Force:              tools.GetBoolArg(request, "force", false),
		IgnoreDaemonsets:   tools.GetBoolArg(request, "ignoreDaemonsets", false),
		DeleteEmptydirData: tools.GetBoolArg(request, "deleteEmptydirData", false),
		DisableEviction:    tools.GetBoolArg(request, "disableEviction", false),
		PodSelector:        request.GetString("podSelector", ""),
		WaitTimeout:        time.Duration(tools.GetIntArg(request, "waitTimeout", 0)) * time.Second,
		WaitSleep:          time.Duration(tools.GetIntArg(request, "waitSleep", 5)) * time.Second,
		DryRun:             tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun,
	}
	if grace := tools.GetIntArg(request, "gracePeriodSeconds", -1); grace >= 0 {
		g := int64(grace)
		opts.GracePeriodSeconds = &g
	}

	start := time.Now()
	drainResult, err := sc.K8sClient().Drain(ctx, kubeContext, nodeName, opts)
	duration := time.Since(start)

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to drain node: %v", err)), nil
	}

	response := map[string]interface{}{
		"changed":  drainResult.Changed,
		"cordoned": drainResult.Cordoned,
		"node":     nodeName,
		"evicted":  drainResult.Evicted,
		"duration": duration.String(),
	}
	if len(drainResult.Warnings) > 0 {
		response["warnings"] = drainResult.Warnings
	}

	return toolResultJSON(response)
}

// handleTaintNode adds or removes node taints.
func handleTaintNode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "taint"); result != nil {
		return result, nil
	}

	nodeName, err := request.RequireString("nodeName")
	if err != nil {
		return mcp.NewToolResultError("nodeName is required"), nil
	}
	kubeContext := request.GetString("kubeContext", "")
	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	rawTaints, ok := request.GetArguments()["taints"].([]interface{})
	if !ok || len(rawTaints) == 0 {
		return mcp.NewToolResultError("taints must be a non-empty array"), nil
	}

	taints, err := parseTaints(rawTaints)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid taints: %v", err)), nil
	}

	state := request.GetString("state", "present")

	var changed bool
	switch state {
	case "present":
		replace := tools.GetBoolArg(request, "replace", false)
		changed, err = sc.K8sClient().Taint(ctx, kubeContext, nodeName, taints, replace, checkMode)
	case "absent":
		changed, err = sc.K8sClient().Untaint(ctx, kubeContext, nodeName, taints, checkMode)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid state %q. Must be one of: present, absent", state)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update node taints: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"changed": changed,
		"node":    nodeName,
		"state":   state,
	})
}

// parseTaints converts the taints argument into typed taints, validating
// keys and effects.
func parseTaints(raw []interface{}) ([]corev1.Taint, error) {
	taints := make([]corev1.Taint, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("taint %d is not an object", i)
		}

		key, _ := m["key"].(string)
		if key == "" {
			return nil, fmt.Errorf("taint %d is missing key", i)
		}

		value, _ := m["value"].(string)
		effect, _ := m["effect"].(string)
		switch corev1.TaintEffect(effect) {
		case corev1.TaintEffectNoSchedule, corev1.TaintEffectPreferNoSchedule, corev1.TaintEffectNoExecute:
		case "":
			return nil, fmt.Errorf("taint %d is missing effect", i)
		default:
			return nil, fmt.Errorf("taint %d has invalid effect %q", i, effect)
		}

		taints = append(taints, corev1.Taint{
			Key:    key,
			Value:  value,
			Effect: corev1.TaintEffect(effect),
		})
	}
	return taints, nil
}
