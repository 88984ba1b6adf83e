package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kubesteward/kubesteward/internal/helm"
	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
)

// toolResultJSON marshals a response object into a text tool result.
func toolResultJSON(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleRelease reconciles a release to the requested state.
func handleRelease(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	releaseName, err := request.RequireString("releaseName")
	if err != nil {
		return mcp.NewToolResultError("releaseName is required"), nil
	}

	state := request.GetString("state", "present")
	if state != "present" && state != "absent" {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid state %q: must be 'present' or 'absent'", state)), nil
	}
	chartRef := request.GetString("chartRef", "")
	if state == "present" && chartRef == "" {
		return mcp.NewToolResultError("chartRef is required when state is 'present'"), nil
	}

	namespace := tools.NamespaceOrDefault(sc, request.GetString("namespace", ""))
	kubeContext := request.GetString("kubeContext", "")
	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	operation := helm.MethodInstall
	if state == "absent" {
		operation = helm.MethodUninstall
	}
	if result := tools.CheckMutatingOperation(sc, operation); result != nil {
		return result, nil
	}
	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	if state == "absent" && checkMode {
		// Uninstall has no server-side dry run; report the intent only.
		return toolResultJSON(map[string]interface{}{
			"changed": true,
			"method":  helm.MethodUninstall,
			"name":    releaseName,
		})
	}

	client, err := sc.HelmClient(kubeContext, namespace)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize Helm client: %v", err)), nil
	}

	args := request.GetArguments()
	start := time.Now()

	var result *helm.ReleaseResult
	switch state {
	case "present":
		result, err = client.EnsureRelease(ctx, helm.ReleaseSpec{
			Name:             releaseName,
			Namespace:        namespace,
			ChartRef:         chartRef,
			Version:          request.GetString("version", ""),
			Devel:            tools.GetBoolArg(request, "devel", false),
			Values:           mapArg(args, "values"),
			ValuesFiles:      stringSliceArg(args, "valuesFiles"),
			CreateNamespace:  tools.GetBoolArg(request, "createNamespace", false),
			DependencyUpdate: tools.GetBoolArg(request, "dependencyUpdate", false),
			SkipCRDs:         tools.GetBoolArg(request, "skipCrds", false),
			Atomic:           tools.GetBoolArg(request, "atomic", false),
			Wait:             tools.GetBoolArg(request, "wait", false),
			Timeout:          time.Duration(tools.GetIntArg(request, "waitTimeout", 300)) * time.Second,
			ResetValues:      tools.GetBoolArg(request, "resetValues", false),
			ReuseValues:      tools.GetBoolArg(request, "reuseValues", false),
			HistoryMax:       tools.GetIntArg(request, "historyMax", 0),
			Force:            tools.GetBoolArg(request, "force", false),
			DryRun:           checkMode,
		})
	case "absent":
		result, err = client.Uninstall(ctx, helm.UninstallSpec{
			Name:         releaseName,
			KeepHistory:  tools.GetBoolArg(request, "keepHistory", false),
			DisableHooks: tools.GetBoolArg(request, "disableHooks", false),
			Wait:         tools.GetBoolArg(request, "wait", false),
			Timeout:      time.Duration(tools.GetIntArg(request, "waitTimeout", 300)) * time.Second,
		})
	}

	duration := time.Since(start)
	if err != nil {
		sc.RecordHelmOperation(ctx, operation, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reconcile release %s: %v", releaseName, err)), nil
	}
	sc.RecordHelmOperation(ctx, resultOperation(result, operation), namespace, instrumentation.StatusSuccess, duration)

	return toolResultJSON(result)
}

// resultOperation prefers the method the client actually chose, e.g.
// upgrade instead of install for an existing release.
func resultOperation(result *helm.ReleaseResult, fallback string) string {
	if result != nil && result.Method != "" {
		return result.Method
	}
	return fallback
}

// handleInfo returns release details or, without a releaseName, the list
// of deployed releases.
func handleInfo(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	namespace := tools.NamespaceOrDefault(sc, request.GetString("namespace", ""))
	kubeContext := request.GetString("kubeContext", "")

	client, err := sc.HelmClient(kubeContext, namespace)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize Helm client: %v", err)), nil
	}

	releaseName := request.GetString("releaseName", "")
	if releaseName == "" {
		releases, err := client.ListReleases(
			request.GetString("selector", ""),
			tools.GetBoolArg(request, "allNamespaces", false),
		)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list releases: %v", err)), nil
		}
		return toolResultJSON(map[string]interface{}{
			"releases": releases,
			"count":    len(releases),
		})
	}

	info, err := client.GetReleaseInfo(releaseName, helm.InfoOptions{
		AllValues:       tools.GetBoolArg(request, "allValues", false),
		IncludeHooks:    tools.GetBoolArg(request, "includeHooks", false),
		IncludeNotes:    tools.GetBoolArg(request, "includeNotes", false),
		IncludeManifest: tools.GetBoolArg(request, "includeManifest", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get release %s: %v", releaseName, err)), nil
	}

	response := map[string]interface{}{
		"release": info,
	}
	if tools.GetBoolArg(request, "includeHistory", false) {
		history, err := client.GetReleaseHistory(releaseName, tools.GetIntArg(request, "historyMax", 10))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to get history for release %s: %v", releaseName, err)), nil
		}
		response["history"] = history
	}

	return toolResultJSON(response)
}

// handleRollback rolls a release back to a prior revision.
func handleRollback(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	releaseName, err := request.RequireString("releaseName")
	if err != nil {
		return mcp.NewToolResultError("releaseName is required"), nil
	}

	namespace := tools.NamespaceOrDefault(sc, request.GetString("namespace", ""))

	if result := tools.CheckMutatingOperation(sc, helm.MethodRollback); result != nil {
		return result, nil
	}
	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	client, err := sc.HelmClient(request.GetString("kubeContext", ""), namespace)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize Helm client: %v", err)), nil
	}

	start := time.Now()
	result, err := client.Rollback(ctx, releaseName,
		tools.GetIntArg(request, "revision", 0),
		tools.GetBoolArg(request, "wait", false),
	)
	duration := time.Since(start)
	if err != nil {
		sc.RecordHelmOperation(ctx, instrumentation.OperationRollback, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to rollback release %s: %v", releaseName, err)), nil
	}
	sc.RecordHelmOperation(ctx, instrumentation.OperationRollback, namespace, instrumentation.StatusSuccess, duration)

	return toolResultJSON(result)
}

// handleTemplate renders chart templates locally and returns the YAML
// stream as-is so it can feed kubernetes_apply.
func handleTemplate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	releaseName, err := request.RequireString("releaseName")
	if err != nil {
		return mcp.NewToolResultError("releaseName is required"), nil
	}
	chartRef, err := request.RequireString("chartRef")
	if err != nil {
		return mcp.NewToolResultError("chartRef is required"), nil
	}

	client, err := sc.HelmClient(request.GetString("kubeContext", ""), request.GetString("namespace", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize Helm client: %v", err)), nil
	}

	args := request.GetArguments()
	manifest, err := client.Template(ctx, helm.TemplateSpec{
		Name:        releaseName,
		ChartRef:    chartRef,
		Version:     request.GetString("version", ""),
		Values:      mapArg(args, "values"),
		ValuesFiles: stringSliceArg(args, "valuesFiles"),
		IncludeCRDs: tools.GetBoolArg(request, "includeCrds", false),
		ShowOnly:    stringSliceArg(args, "showOnly"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to template chart %s: %v", chartRef, err)), nil
	}

	return mcp.NewToolResultText(manifest), nil
}

// handleRepository manages chart repository entries.
func handleRepository(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	operation, err := request.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError("operation is required"), nil
	}

	name := request.GetString("name", "")
	switch operation {
	case "add":
		if name == "" || request.GetString("url", "") == "" {
			return mcp.NewToolResultError("name and url are required for the add operation"), nil
		}
		if result := tools.CheckMutatingOperation(sc, "repository-add"); result != nil {
			return result, nil
		}
	case "remove":
		if name == "" {
			return mcp.NewToolResultError("name is required for the remove operation"), nil
		}
		if result := tools.CheckMutatingOperation(sc, "repository-remove"); result != nil {
			return result, nil
		}
	case "update", "list":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid operation %q: must be one of add, remove, update, list", operation)), nil
	}

	client, err := sc.HelmClient(request.GetString("kubeContext", ""), "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to initialize Helm client: %v", err)), nil
	}

	switch operation {
	case "add":
		result, err := client.AddRepository(helm.RepositorySpec{
			Name:     name,
			URL:      request.GetString("url", ""),
			Username: request.GetString("username", ""),
			Password: request.GetString("password", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add repository %s: %v", name, err)), nil
		}
		return toolResultJSON(result)

	case "remove":
		result, err := client.RemoveRepository(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to remove repository %s: %v", name, err)), nil
		}
		return toolResultJSON(result)

	case "update":
		result, err := client.UpdateRepositories()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update repositories: %v", err)), nil
		}
		return toolResultJSON(result)

	case "list":
		repositories, err := client.ListRepositories()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list repositories: %v", err)), nil
		}
		return toolResultJSON(map[string]interface{}{
			"repositories": repositories,
			"count":        len(repositories),
		})
	}

	return mcp.NewToolResultError(fmt.Sprintf("Invalid operation %q: must be one of add, remove, update, list", operation)), nil
}

// handlePlugin manages helm plugins through the helm binary.
func handlePlugin(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	operation, err := request.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError("operation is required"), nil
	}

	plugins := sc.HelmPlugins()
	if plugins == nil {
		return mcp.NewToolResultError("Helm plugin support is not configured"), nil
	}

	switch operation {
	case "install":
		source := request.GetString("source", "")
		if source == "" {
			return mcp.NewToolResultError("source is required for the install operation"), nil
		}
		if result := tools.CheckMutatingOperation(sc, "plugin-install"); result != nil {
			return result, nil
		}
		changed, err := plugins.InstallPlugin(ctx, source, request.GetString("version", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to install plugin: %v", err)), nil
		}
		return toolResultJSON(map[string]interface{}{
			"changed": changed,
			"source":  source,
		})

	case "uninstall":
		name := request.GetString("name", "")
		if name == "" {
			return mcp.NewToolResultError("name is required for the uninstall operation"), nil
		}
		if result := tools.CheckMutatingOperation(sc, "plugin-uninstall"); result != nil {
			return result, nil
		}
		changed, err := plugins.UninstallPlugin(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to uninstall plugin %s: %v", name, err)), nil
		}
		return toolResultJSON(map[string]interface{}{
			"changed": changed,
			"name":    name,
		})

	case "list":
		installed, err := plugins.ListPlugins(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list plugins: %v", err)), nil
		}
		return toolResultJSON(map[string]interface{}{
			"plugins": installed,
			"count":   len(installed),
		})

	default:
		return mcp.NewToolResultError(fmt.Sprintf("Invalid operation %q: must be one of install, uninstall, list", operation)), nil
	}
}

// mapArg reads an object argument, tolerating absence.
func mapArg(args map[string]interface{}, key string) map[string]interface{} {
	if value, ok := args[key].(map[string]interface{}); ok {
		return value
	}
	return nil
}

// stringSliceArg reads an array argument whose elements are strings.
func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var values []string
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	return values
}
