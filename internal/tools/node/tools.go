// Package node implements MCP tools for node lifecycle management:
// cordoning, draining and taint updates.
package node

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterNodeTools registers all node lifecycle tools with the MCP server.
func RegisterNodeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	kubeContextParam := tools.AddKubeContextParam(sc)

	// kubernetes_cordon tool
	cordonOpts := []mcp.ToolOption{
		mcp.WithDescription("Mark a node as unschedulable. Reports changed=false when the node is already cordoned."),
		mcp.WithString("nodeName",
			mcp.Required(),
			mcp.Description("Name of the node to cordon"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate the operation without persisting it (default: false)"),
		),
	}
	cordonOpts = append(cordonOpts, kubeContextParam...)
	cordonTool := mcp.NewTool("kubernetes_cordon", cordonOpts...)
	s.AddTool(cordonTool, tools.WrapWithAuditLogging("kubernetes_cordon", handleCordonNode, sc))

	// kubernetes_uncordon tool
	uncordonOpts := []mcp.ToolOption{
		mcp.WithDescription("Mark a node as schedulable again. Reports changed=false when the node is not cordoned."),
		mcp.WithString("nodeName",
			mcp.Required(),
			mcp.Description("Name of the node to uncordon"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate the operation without persisting it (default: false)"),
		),
	}
	uncordonOpts = append(uncordonOpts, kubeContextParam...)
	uncordonTool := mcp.NewTool("kubernetes_uncordon", uncordonOpts...)
	s.AddTool(uncordonTool, tools.WrapWithAuditLogging("kubernetes_uncordon", handleUncordonNode, sc))

	// kubernetes_drain tool
	drainOpts := []mcp.ToolOption{
		mcp.WithDescription("Cordon a node and evict its pods in preparation for maintenance. Pods owned by DaemonSets are skipped only when ignoreDaemonsets is set; unmanaged pods require force."),
		mcp.WithString("nodeName",
			mcp.Required(),
			mcp.Description("Name of the node to drain"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Evict pods not managed by a controller (default: false)"),
		),
		mcp.WithBoolean("ignoreDaemonsets",
			mcp.Description("Proceed past pods owned by DaemonSets (default: false)"),
		),
		mcp.WithBoolean("deleteEmptydirData",
			mcp.Description("Evict pods using emptyDir volumes, losing the local data (default: false)"),
		),
		mcp.WithBoolean("disableEviction",
			mcp.Description("Delete pods directly instead of using the eviction API (default: false)"),
		),
		mcp.WithString("podSelector",
			mcp.Description("Label selector restricting which pods are drained (e.g., 'app=web')"),
		),
		mcp.WithNumber("gracePeriodSeconds",
			mcp.Description("Grace period for pod termination (optional, pod defaults apply)"),
		),
		mcp.WithNumber("waitTimeout",
			mcp.Description("Seconds to wait for evicted pods to disappear (default: 0, no wait)"),
		),
		mcp.WithNumber("waitSleep",
			mcp.Description("Seconds between deletion polls while waiting (default: 5)"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Report what would be evicted without touching the node (default: false)"),
		),
	}
	drainOpts = append(drainOpts, kubeContextParam...)
	drainTool := mcp.NewTool("kubernetes_drain", drainOpts...)
	s.AddTool(drainTool, tools.WrapWithAuditLogging("kubernetes_drain", handleDrainNode, sc))

	// kubernetes_taint tool
	taintOpts := []mcp.ToolOption{
		mcp.WithDescription("Add or remove node taints. With state=present existing taints are merged unless replace is set; state=absent removes the listed taints."),
		mcp.WithString("nodeName",
			mcp.Required(),
			mcp.Description("Name of the node to taint"),
		),
		mcp.WithArray("taints",
			mcp.Required(),
			mcp.Description("Taints to apply or remove, each with key, optional value and effect (NoSchedule, PreferNoSchedule, NoExecute)"),
		),
		mcp.WithString("state",
			mcp.Description("Desired state of the taints: 'present' or 'absent' (default: present)"),
			mcp.Enum("present", "absent"),
		),
		mcp.WithBoolean("replace",
			mcp.Description("Replace all existing taints instead of merging (default: false)"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate the operation without persisting it (default: false)"),
		),
	}
	taintOpts = append(taintOpts, kubeContextParam...)
	taintTool := mcp.NewTool("kubernetes_taint", taintOpts...)
	s.AddTool(taintTool, tools.WrapWithAuditLogging("kubernetes_taint", handleTaintNode, sc))

	return nil
}
