// Package resource implements the MCP tools for Kubernetes resource
// operations: get, list, describe, the direct mutation primitives, and
// the apply reconciler.
package resource

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterResourceTools registers all resource management tools with the
// MCP server.
func RegisterResourceTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	kubeContextParam := tools.AddKubeContextParam(sc)

	// kubernetes_get tool
	getOpts := []mcp.ToolOption{
		mcp.WithDescription(`Get a specific Kubernetes resource by name.

For cluster-scoped resources (nodes, namespaces, PVs) the namespace is
ignored; resource scope is determined via API discovery.`),
	}
	getOpts = append(getOpts, kubeContextParam...)
	getOpts = append(getOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace for namespaced resources. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of Kubernetes resource (e.g., pod, service, deployment)"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource (e.g., 'apps', 'networking.k8s.io', or 'apps/v1')"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to get"),
		),
		mcp.WithArray("hiddenFields",
			mcp.Description("Dotted field paths to strip from the returned object"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Block until the resource is ready, or matches waitCondition (default: false)"),
		),
		mcp.WithNumber("waitTimeout",
			mcp.Description("Wait timeout in seconds (default: 120)"),
		),
		mcp.WithNumber("waitSleep",
			mcp.Description("Poll interval in seconds while waiting (default: 5)"),
		),
		mcp.WithBoolean("waitAbsent",
			mcp.Description("Wait for the resource to disappear instead of become ready (default: false)"),
		),
		mcp.WithObject("waitCondition",
			mcp.Description("Status condition to wait for, e.g. {\"type\": \"Ready\", \"status\": \"True\"}"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_get", getOpts...),
		tools.WrapWithAuditLogging("kubernetes_get", handleGetResource, sc))

	// kubernetes_list tool
	listOpts := []mcp.ToolOption{
		mcp.WithDescription(`List Kubernetes resources with optional filtering.

Use 'allNamespaces=true' to list namespaced resources across all
namespaces. Results are paginated; pass the returned continue token to
fetch the next page.`),
	}
	listOpts = append(listOpts, kubeContextParam...)
	listOpts = append(listOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace for namespaced resources. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of Kubernetes resource to list (e.g., pods, services, deployments, nodes)"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("labelSelector",
			mcp.Description("Server-side label selector (e.g., 'app=nginx,env=prod')"),
		),
		mcp.WithString("fieldSelector",
			mcp.Description("Server-side field selector (metadata.name, metadata.namespace, spec.nodeName, status.phase)"),
		),
		mcp.WithBoolean("allNamespaces",
			mcp.Description("List namespaced resources across all namespaces; overrides 'namespace'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of items per page (default: 20, max: 1000)"),
		),
		mcp.WithString("continue",
			mcp.Description("Continue token from a previous paginated request"),
		),
		mcp.WithArray("hiddenFields",
			mcp.Description("Dotted field paths to strip from every returned object"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_list", listOpts...),
		tools.WrapWithAuditLogging("kubernetes_list", handleListResources, sc))

	// kubernetes_describe tool
	describeOpts := []mcp.ToolOption{
		mcp.WithDescription("Get detailed information about a Kubernetes resource including associated events"),
	}
	describeOpts = append(describeOpts, kubeContextParam...)
	describeOpts = append(describeOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace for namespaced resources. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of Kubernetes resource"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to describe"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_describe", describeOpts...),
		tools.WrapWithAuditLogging("kubernetes_describe", handleDescribeResource, sc))

	// kubernetes_create tool
	createOpts := []mcp.ToolOption{
		mcp.WithDescription("Create a new Kubernetes resource from a manifest. Fails if the resource already exists; use kubernetes_apply for create-or-update semantics."),
	}
	createOpts = append(createOpts, kubeContextParam...)
	createOpts = append(createOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace where the resource should be created"),
		),
		mcp.WithObject("manifest",
			mcp.Required(),
			mcp.Description("Kubernetes manifest as JSON object"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate with a server dry-run instead of persisting (default: false)"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_create", createOpts...),
		tools.WrapWithAuditLogging("kubernetes_create", handleCreateResource, sc))

	// kubernetes_apply tool
	applyOpts := []mcp.ToolOption{
		mcp.WithDescription(`Reconcile Kubernetes resources to a desired state.

Accepts a single manifest object, an array of manifests, a multi-document
YAML string, or a file path. For each definition the resource is created
when absent, patched when present, and left alone (changed=false) when it
already matches. state=absent deletes, state=patched never creates.
Returns per-definition change reports with before/after diffs.`),
	}
	applyOpts = append(applyOpts, kubeContextParam...)
	applyOpts = append(applyOpts,
		mcp.WithObject("manifest",
			mcp.Description("Manifest as a JSON object, or an array of manifest objects"),
		),
		mcp.WithString("yaml",
			mcp.Description("Manifest(s) as a multi-document YAML string"),
		),
		mcp.WithString("src",
			mcp.Description("Path to a local manifest file (single or multi-document YAML)"),
		),
		mcp.WithString("state",
			mcp.Description("Desired state: present (default), absent, or patched"),
			mcp.Enum("present", "absent", "patched"),
		),
		mcp.WithString("applyMethod",
			mcp.Description("How present resources are updated: update (default, merge patch), apply (client-side apply), server-side (server-side apply), replace (delete-and-recreate semantics via PUT)"),
			mcp.Enum("update", "apply", "server-side", "replace"),
		),
		mcp.WithString("fieldManager",
			mcp.Description("Field manager name for server-side apply"),
		),
		mcp.WithBoolean("forceConflicts",
			mcp.Description("Force ownership conflicts on server-side apply (default: false)"),
		),
		mcp.WithArray("mergeTypes",
			mcp.Description("Ordered patch types tried on update: strategic, merge, json (default: strategic then merge)"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Report what would change using a server dry-run (default: false)"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Block until each resource converges after the mutation (default: false)"),
		),
		mcp.WithNumber("waitTimeout",
			mcp.Description("Wait timeout in seconds (default: 120)"),
		),
		mcp.WithNumber("waitSleep",
			mcp.Description("Poll interval in seconds while waiting (default: 5)"),
		),
		mcp.WithObject("waitCondition",
			mcp.Description("Status condition to wait for, e.g. {\"type\": \"Ready\", \"status\": \"True\"}"),
		),
		mcp.WithArray("labelSelectors",
			mcp.Description("Only definitions whose labels match all selectors are processed"),
		),
		mcp.WithString("propagationPolicy",
			mcp.Description("Deletion propagation when state=absent: Foreground, Background, or Orphan"),
			mcp.Enum("Foreground", "Background", "Orphan"),
		),
		mcp.WithNumber("gracePeriodSeconds",
			mcp.Description("Grace period for deletion when state=absent"),
		),
		mcp.WithBoolean("continueOnError",
			mcp.Description("Keep processing remaining definitions after one fails (default: false)"),
		),
		mcp.WithArray("hiddenFields",
			mcp.Description("Dotted field paths stripped from results and diffs"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_apply", applyOpts...),
		tools.WrapWithAuditLogging("kubernetes_apply", handleApplyResource, sc))

	// kubernetes_delete tool
	deleteOpts := []mcp.ToolOption{
		mcp.WithDescription("Delete a Kubernetes resource. Deleting an absent resource reports changed=false."),
	}
	deleteOpts = append(deleteOpts, kubeContextParam...)
	deleteOpts = append(deleteOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace for namespaced resources. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of Kubernetes resource"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to delete"),
		),
		mcp.WithString("propagationPolicy",
			mcp.Description("Deletion propagation: Foreground, Background, or Orphan"),
			mcp.Enum("Foreground", "Background", "Orphan"),
		),
		mcp.WithNumber("gracePeriodSeconds",
			mcp.Description("Grace period before the object is removed"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate with a server dry-run instead of deleting (default: false)"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_delete", deleteOpts...),
		tools.WrapWithAuditLogging("kubernetes_delete", handleDeleteResource, sc))

	// kubernetes_patch tool
	patchOpts := []mcp.ToolOption{
		mcp.WithDescription("Patch a Kubernetes resource with specific changes"),
	}
	patchOpts = append(patchOpts, kubeContextParam...)
	patchOpts = append(patchOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace for namespaced resources. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of Kubernetes resource"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to patch"),
		),
		mcp.WithString("patchType",
			mcp.Required(),
			mcp.Description("Type of patch (strategic, merge, json)"),
			mcp.Enum("strategic", "merge", "json"),
		),
		mcp.WithObject("patch",
			mcp.Required(),
			mcp.Description("Patch data as JSON object"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate with a server dry-run instead of persisting (default: false)"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_patch", patchOpts...),
		tools.WrapWithAuditLogging("kubernetes_patch", handlePatchResource, sc))

	// kubernetes_json_patch tool
	jsonPatchOpts := []mcp.ToolOption{
		mcp.WithDescription(`Apply an RFC 6902 JSON patch to a Kubernetes resource.

The patch is an array of operations, e.g.
[{"op": "replace", "path": "/spec/replicas", "value": 3}].`),
	}
	jsonPatchOpts = append(jsonPatchOpts, kubeContextParam...)
	jsonPatchOpts = append(jsonPatchOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace for namespaced resources. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of Kubernetes resource"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to patch"),
		),
		mcp.WithArray("operations",
			mcp.Required(),
			mcp.Description("RFC 6902 operations, each with op, path and (where applicable) value"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Validate with a server dry-run instead of persisting (default: false)"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_json_patch", jsonPatchOpts...),
		tools.WrapWithAuditLogging("kubernetes_json_patch", handleJSONPatchResource, sc))

	// kubernetes_scale tool
	scaleOpts := []mcp.ToolOption{
		mcp.WithDescription("Scale a Kubernetes resource through the scale subresource. Scaling to the current replica count reports changed=false."),
	}
	scaleOpts = append(scaleOpts, kubeContextParam...)
	scaleOpts = append(scaleOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace where the resource is located. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of scalable Kubernetes resource (deployment, replicaset, statefulset)"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to scale"),
		),
		mcp.WithNumber("replicas",
			mcp.Required(),
			mcp.Description("Number of replicas to scale to"),
		),
		mcp.WithNumber("currentReplicas",
			mcp.Description("Fail unless the observed replica count matches this value"),
		),
		mcp.WithString("resourceVersion",
			mcp.Description("Optimistic concurrency precondition on the scale subresource"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Block until status replicas converge (default: false)"),
		),
		mcp.WithNumber("waitTimeout",
			mcp.Description("Wait timeout in seconds (default: 120)"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Report what would change without scaling (default: false)"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_scale", scaleOpts...),
		tools.WrapWithAuditLogging("kubernetes_scale", handleScaleResource, sc))

	// kubernetes_rollback tool
	rollbackOpts := []mcp.ToolOption{
		mcp.WithDescription("Roll a Deployment or DaemonSet back to its previous revision"),
	}
	rollbackOpts = append(rollbackOpts, kubeContextParam...)
	rollbackOpts = append(rollbackOpts,
		mcp.WithString("namespace",
			mcp.Description("Namespace where the resource is located. Uses 'default' if not specified."),
		),
		mcp.WithString("resourceType",
			mcp.Required(),
			mcp.Description("Type of resource to roll back (deployment or daemonset)"),
		),
		mcp.WithString("apiGroup",
			mcp.Description("Optional API group for the resource"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the resource to roll back"),
		),
	)
	s.AddTool(mcp.NewTool("kubernetes_rollback", rollbackOpts...),
		tools.WrapWithAuditLogging("kubernetes_rollback", handleRollbackResource, sc))

	return nil
}
