// Package helm implements MCP tools for Helm release lifecycle
// management, chart templating, repositories and plugins.
package helm

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// RegisterHelmTools registers all Helm tools with the MCP server.
func RegisterHelmTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	kubeContextParam := tools.AddKubeContextParam(sc)

	// helm_release tool
	releaseOpts := []mcp.ToolOption{
		mcp.WithDescription("Reconcile a Helm release. With state=present the chart is installed or upgraded only when the desired state differs from the deployed release; state=absent uninstalls it. Reports changed=false when nothing had to happen."),
		mcp.WithString("releaseName",
			mcp.Required(),
			mcp.Description("Name of the release"),
		),
		mcp.WithString("state",
			mcp.Description("Desired state of the release: 'present' or 'absent' (default: present)"),
			mcp.Enum("present", "absent"),
		),
		mcp.WithString("chartRef",
			mcp.Description("Chart reference: repo/chart name, local path or OCI reference (required for state=present)"),
		),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the release (optional, uses the server default if not specified)"),
		),
		mcp.WithString("version",
			mcp.Description("Chart version constraint (optional, latest stable if not specified)"),
		),
		mcp.WithBoolean("devel",
			mcp.Description("Allow development chart versions when no explicit version is set (default: false)"),
		),
		mcp.WithObject("values",
			mcp.Description("Inline release values merged over valuesFiles"),
		),
		mcp.WithArray("valuesFiles",
			mcp.Description("Paths of values files merged in order (optional)"),
		),
		mcp.WithBoolean("createNamespace",
			mcp.Description("Create the release namespace if it does not exist (default: false)"),
		),
		mcp.WithBoolean("dependencyUpdate",
			mcp.Description("Update chart dependencies before installing (default: false)"),
		),
		mcp.WithBoolean("skipCrds",
			mcp.Description("Skip CRD installation (default: false)"),
		),
		mcp.WithBoolean("atomic",
			mcp.Description("Roll the release back when the operation fails (default: false)"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Wait until the released resources are ready (default: false)"),
		),
		mcp.WithNumber("waitTimeout",
			mcp.Description("Seconds to wait for readiness (default: 300)"),
		),
		mcp.WithBoolean("resetValues",
			mcp.Description("Reset values to chart defaults on upgrade (default: false)"),
		),
		mcp.WithBoolean("reuseValues",
			mcp.Description("Reuse the deployed release's values on upgrade (default: false)"),
		),
		mcp.WithNumber("historyMax",
			mcp.Description("Maximum number of revisions kept per release (optional)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Upgrade even when the deployed release already matches (default: false)"),
		),
		mcp.WithBoolean("keepHistory",
			mcp.Description("Keep release history on uninstall (state=absent only, default: false)"),
		),
		mcp.WithBoolean("disableHooks",
			mcp.Description("Skip chart hooks on uninstall (state=absent only, default: false)"),
		),
		mcp.WithBoolean("checkMode",
			mcp.Description("Render the operation without touching the cluster (default: false)"),
		),
	}
	releaseOpts = append(releaseOpts, kubeContextParam...)
	releaseTool := mcp.NewTool("helm_release", releaseOpts...)
	s.AddTool(releaseTool, tools.WrapWithAuditLogging("helm_release", handleRelease, sc))

	// helm_info tool
	infoOpts := []mcp.ToolOption{
		mcp.WithDescription("Inspect Helm releases. With releaseName the tool returns status, values and optionally hooks, notes, manifest and revision history; without it, deployed releases are listed."),
		mcp.WithString("releaseName",
			mcp.Description("Name of the release to inspect (optional, lists releases when omitted)"),
		),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the release (optional, uses the server default if not specified)"),
		),
		mcp.WithString("selector",
			mcp.Description("Label selector filtering listed releases (list mode only)"),
		),
		mcp.WithBoolean("allNamespaces",
			mcp.Description("List releases across all namespaces (list mode only, default: false)"),
		),
		mcp.WithBoolean("allValues",
			mcp.Description("Return computed values instead of user-supplied ones (default: false)"),
		),
		mcp.WithBoolean("includeHooks",
			mcp.Description("Include rendered hooks in the response (default: false)"),
		),
		mcp.WithBoolean("includeNotes",
			mcp.Description("Include rendered notes in the response (default: false)"),
		),
		mcp.WithBoolean("includeManifest",
			mcp.Description("Include the rendered manifest in the response (default: false)"),
		),
		mcp.WithBoolean("includeHistory",
			mcp.Description("Include revision history in the response (default: false)"),
		),
		mcp.WithNumber("historyMax",
			mcp.Description("Maximum history entries returned (default: 10)"),
		),
	}
	infoOpts = append(infoOpts, kubeContextParam...)
	infoTool := mcp.NewTool("helm_info", infoOpts...)
	s.AddTool(infoTool, tools.WrapWithAuditLogging("helm_info", handleInfo, sc))

	// helm_rollback tool
	rollbackOpts := []mcp.ToolOption{
		mcp.WithDescription("Roll a Helm release back to a previous revision (default: the one before the current)"),
		mcp.WithString("releaseName",
			mcp.Required(),
			mcp.Description("Name of the release"),
		),
		mcp.WithString("namespace",
			mcp.Description("Namespace of the release (optional, uses the server default if not specified)"),
		),
		mcp.WithNumber("revision",
			mcp.Description("Revision to roll back to (default: previous revision)"),
		),
		mcp.WithBoolean("wait",
			mcp.Description("Wait until the rolled back resources are ready (default: false)"),
		),
	}
	rollbackOpts = append(rollbackOpts, kubeContextParam...)
	rollbackTool := mcp.NewTool("helm_rollback", rollbackOpts...)
	s.AddTool(rollbackTool, tools.WrapWithAuditLogging("helm_rollback", handleRollback, sc))

	// helm_template tool
	templateOpts := []mcp.ToolOption{
		mcp.WithDescription("Render chart templates locally without touching the cluster. The output is multi-document YAML suitable for kubernetes_apply."),
		mcp.WithString("releaseName",
			mcp.Required(),
			mcp.Description("Release name used during rendering"),
		),
		mcp.WithString("chartRef",
			mcp.Required(),
			mcp.Description("Chart reference: repo/chart name, local path or OCI reference"),
		),
		mcp.WithString("version",
			mcp.Description("Chart version constraint (optional)"),
		),
		mcp.WithObject("values",
			mcp.Description("Inline values merged over valuesFiles"),
		),
		mcp.WithArray("valuesFiles",
			mcp.Description("Paths of values files merged in order (optional)"),
		),
		mcp.WithBoolean("includeCrds",
			mcp.Description("Include CRDs in the rendered output (default: false)"),
		),
		mcp.WithArray("showOnly",
			mcp.Description("Restrict output to the named template files (e.g., ['templates/deployment.yaml'])"),
		),
	}
	templateOpts = append(templateOpts, kubeContextParam...)
	templateTool := mcp.NewTool("helm_template", templateOpts...)
	s.AddTool(templateTool, tools.WrapWithAuditLogging("helm_template", handleTemplate, sc))

	// helm_repository tool
	repositoryOpts := []mcp.ToolOption{
		mcp.WithDescription("Manage chart repositories: add, remove, update indexes or list configured entries"),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Repository operation to perform"),
			mcp.Enum("add", "remove", "update", "list"),
		),
		mcp.WithString("name",
			mcp.Description("Repository name (required for add and remove)"),
		),
		mcp.WithString("url",
			mcp.Description("Repository URL (required for add)"),
		),
		mcp.WithString("username",
			mcp.Description("Repository username (optional)"),
		),
		mcp.WithString("password",
			mcp.Description("Repository password (optional)"),
		),
	}
	repositoryOpts = append(repositoryOpts, kubeContextParam...)
	repositoryTool := mcp.NewTool("helm_repository", repositoryOpts...)
	s.AddTool(repositoryTool, tools.WrapWithAuditLogging("helm_repository", handleRepository, sc))

	// helm_plugin tool
	pluginTool := mcp.NewTool("helm_plugin",
		mcp.WithDescription("Manage helm plugins through the helm binary: install, uninstall or list"),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Plugin operation to perform"),
			mcp.Enum("install", "uninstall", "list"),
		),
		mcp.WithString("source",
			mcp.Description("Plugin source URL or local path (required for install)"),
		),
		mcp.WithString("version",
			mcp.Description("Plugin version (install only, optional)"),
		),
		mcp.WithString("name",
			mcp.Description("Plugin name (required for uninstall)"),
		),
	)
	s.AddTool(pluginTool, tools.WrapWithAuditLogging("helm_plugin", handlePlugin, sc))

	return nil
}
