package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"

	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools"
	"github.com/kubesteward/kubesteward/internal/tools/output"
)

// outputProcessor builds a per-request processor honoring the request's
// hiddenFields argument.
func outputProcessor(args map[string]interface{}) *output.Processor {
	cfg := output.DefaultConfig()
	cfg.HiddenFields = stringSliceArg(args, "hiddenFields")
	return output.NewProcessor(cfg)
}

// toolResultJSON marshals a response map into an MCP text result.
func toolResultJSON(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleGetResource retrieves a single resource by name.
func handleGetResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := request.GetString("namespace", k8s.DefaultNamespace)

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	if tools.GetBoolArg(request, "wait", false) {
		return waitForGetTarget(ctx, request, sc, kubeContext, namespace, resourceType, apiGroup, name)
	}

	start := time.Now()
	obj, err := sc.K8sClient().Get(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusSuccess, duration)

	processed := outputProcessor(args).ProcessUnstructured(obj)
	return toolResultJSON(map[string]interface{}{"resource": processed.Object})
}

// waitForGetTarget blocks until the requested resource is ready, matches
// the requested condition, or is gone when waitAbsent is set.
func waitForGetTarget(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, kubeContext, namespace, resourceType, apiGroup, name string) (*mcp.CallToolResult, error) {
	waitOpts := waitOptionsFromArgs(request)
	waitOpts.Absent = tools.GetBoolArg(request, "waitAbsent", false)

	start := time.Now()
	waitResult, err := sc.K8sClient().WaitFor(ctx, kubeContext, namespace, resourceType, apiGroup, name, waitOpts)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to wait for resource: %v", err)), nil
	}
	if !waitResult.Satisfied {
		sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("%s %q did not converge within %s", resourceType, name, waitOpts.Timeout)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusSuccess, duration)

	response := map[string]interface{}{
		"satisfied": true,
		"duration":  waitResult.Duration.String(),
	}
	if waitOpts.Absent {
		response["found"] = false
	} else if len(waitResult.Resources) > 0 {
		processed := outputProcessor(request.GetArguments()).ProcessUnstructured(waitResult.Resources[0])
		response["resource"] = processed.Object
	}
	return toolResultJSON(response)
}

// handleListResources lists resources with selectors and pagination.
func handleListResources(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}

	allNamespaces := tools.GetBoolArg(request, "allNamespaces", false)
	namespace := request.GetString("namespace", "")
	if !allNamespaces && namespace == "" {
		namespace = k8s.DefaultNamespace
	}

	limit := int64(tools.GetIntArg(request, "limit", 20))
	opts := k8s.ListOptions{
		LabelSelector: request.GetString("labelSelector", ""),
		FieldSelector: request.GetString("fieldSelector", ""),
		AllNamespaces: allNamespaces,
		Limit:         limit,
		Continue:      request.GetString("continue", ""),
	}

	metricsNamespace := namespace
	if allNamespaces {
		namespace = ""
		metricsNamespace = "all"
	}

	start := time.Now()
	listResult, err := sc.K8sClient().List(ctx, kubeContext, namespace, resourceType, apiGroup, opts)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationList, resourceType, metricsNamespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list resources: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationList, resourceType, metricsNamespace, instrumentation.StatusSuccess, duration)

	processed, procResult := outputProcessor(args).ProcessUnstructuredList(listResult.Items)

	items := make([]map[string]interface{}, 0, len(processed))
	for _, obj := range processed {
		items = append(items, obj.Object)
	}

	response := map[string]interface{}{
		"items": items,
		"count": len(items),
	}
	if listResult.Continue != "" {
		response["continue"] = listResult.Continue
	}
	if listResult.RemainingItems != nil {
		response["remainingItems"] = *listResult.RemainingItems
	}
	if procResult.Truncated {
		warnings := make([]string, 0, len(procResult.Warnings))
		for _, w := range procResult.Warnings {
			warnings = append(warnings, w.Message)
		}
		response["_truncated"] = true
		response["_warnings"] = warnings
	}

	return toolResultJSON(response)
}

// handleDescribeResource retrieves a resource with its associated events.
func handleDescribeResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := request.GetString("namespace", k8s.DefaultNamespace)

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	start := time.Now()
	description, err := sc.K8sClient().Describe(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to describe resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationGet, resourceType, namespace, instrumentation.StatusSuccess, duration)

	processed := outputProcessor(args).ProcessUnstructured(description.Resource)
	response := map[string]interface{}{
		"resource": processed.Object,
	}
	if len(description.Events) > 0 {
		response["events"] = description.Events
	}

	return toolResultJSON(response)
}

// handleCreateResource creates a resource, failing if it exists.
func handleCreateResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "create"); result != nil {
		return result, nil
	}

	args := request.GetArguments()
	kubeContext := request.GetString("kubeContext", "")
	namespace := tools.NamespaceOrDefault(sc, request.GetString("namespace", ""))
	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	manifestData, ok := args["manifest"]
	if !ok || manifestData == nil {
		return mcp.NewToolResultError("manifest is required"), nil
	}

	defs, err := decodeManifestArg(manifestData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid manifest: %v", err)), nil
	}
	if len(defs) != 1 {
		return mcp.NewToolResultError("kubernetes_create accepts a single manifest; use kubernetes_apply for multi-document input"), nil
	}

	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	start := time.Now()
	created, err := sc.K8sClient().Create(ctx, kubeContext, namespace, defs[0], checkMode)
	duration := time.Since(start)

	resourceType := manifestKind(manifestData)
	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationCreate, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationCreate, resourceType, namespace, instrumentation.StatusSuccess, duration)

	return toolResultJSON(map[string]interface{}{
		"changed":  true,
		"method":   k8s.MethodCreate,
		"result":   created.Object,
		"duration": duration.String(),
	})
}

// handleApplyResource reconciles one or more definitions to the desired
// state.
func handleApplyResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "apply"); result != nil {
		return result, nil
	}

	args := request.GetArguments()
	kubeContext := request.GetString("kubeContext", "")

	defs, err := resolveManifests(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid manifest input: %v", err)), nil
	}

	opts, errMsg := reconcileOptionsFromArgs(request, sc)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	continueOnError := tools.GetBoolArg(request, "continueOnError", false)

	var (
		results []map[string]interface{}
		changed bool
	)
	for _, def := range defs {
		namespace := def.GetNamespace()
		if namespace == "" {
			namespace = sc.Config().DefaultNamespace
		}
		if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
			return result, nil
		}

		start := time.Now()
		res, err := sc.K8sClient().Reconcile(ctx, kubeContext, def, opts)
		duration := time.Since(start)

		entry := map[string]interface{}{
			"kind":      def.GetKind(),
			"name":      def.GetName(),
			"namespace": def.GetNamespace(),
		}

		if err != nil {
			sc.RecordK8sOperation(ctx, instrumentation.OperationApply, def.GetKind(), namespace, instrumentation.StatusError, duration)
			entry["error"] = err.Error()
			var timeoutErr *k8s.WaitTimeoutError
			if errors.As(err, &timeoutErr) && timeoutErr.LastObserved != nil {
				entry["result"] = timeoutErr.LastObserved
			}
			results = append(results, entry)
			if continueOnError {
				continue
			}
			response := map[string]interface{}{"changed": changed, "results": results}
			jsonData, _ := json.MarshalIndent(response, "", "  ")
			return mcp.NewToolResultError(string(jsonData)), nil
		}

		sc.RecordK8sOperation(ctx, instrumentation.OperationApply, def.GetKind(), namespace, instrumentation.StatusSuccess, duration)
		changed = changed || res.Changed

		entry["changed"] = res.Changed
		entry["method"] = res.Method
		if res.Result != nil {
			entry["result"] = res.Result
		}
		if res.Diff != nil {
			entry["diff"] = res.Diff
		}
		if res.Duration > 0 {
			entry["duration"] = res.Duration.String()
		}
		if len(res.Warnings) > 0 {
			entry["warnings"] = res.Warnings
		}
		results = append(results, entry)
	}

	return toolResultJSON(map[string]interface{}{
		"changed": changed,
		"results": results,
	})
}

// reconcileOptionsFromArgs translates tool arguments into reconcile
// options. Returns a non-empty error message on invalid input.
func reconcileOptionsFromArgs(request mcp.CallToolRequest, sc *server.ServerContext) (k8s.ReconcileOptions, string) {
	args := request.GetArguments()

	opts := k8s.ReconcileOptions{
		CheckMode:      tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun,
		LabelSelectors: stringSliceArg(args, "labelSelectors"),
		HiddenFields:   stringSliceArg(args, "hiddenFields"),
	}

	switch state := request.GetString("state", "present"); state {
	case "present":
		opts.State = k8s.StatePresent
	case "absent":
		opts.State = k8s.StateAbsent
	case "patched":
		opts.State = k8s.StatePatched
	default:
		return opts, fmt.Sprintf("Invalid state %q. Must be one of: present, absent, patched", state)
	}

	switch method := request.GetString("applyMethod", "update"); method {
	case "update":
	case "apply":
		opts.Apply = true
	case "server-side":
		opts.Apply = true
		opts.ServerSide = &k8s.ServerSideApplyOptions{
			FieldManager:   request.GetString("fieldManager", ""),
			ForceConflicts: tools.GetBoolArg(request, "forceConflicts", false),
		}
	case "replace":
		opts.Force = true
	default:
		return opts, fmt.Sprintf("Invalid applyMethod %q. Must be one of: update, apply, server-side, replace", method)
	}

	for _, mt := range stringSliceArg(args, "mergeTypes") {
		switch mt {
		case "strategic":
			opts.MergeTypes = append(opts.MergeTypes, types.StrategicMergePatchType)
		case "merge":
			opts.MergeTypes = append(opts.MergeTypes, types.MergePatchType)
		case "json":
			opts.MergeTypes = append(opts.MergeTypes, types.JSONPatchType)
		default:
			return opts, fmt.Sprintf("Invalid merge type %q. Must be one of: strategic, merge, json", mt)
		}
	}

	if tools.GetBoolArg(request, "wait", false) {
		wait := waitOptionsFromArgs(request)
		opts.Wait = &wait
	}

	opts.DeleteOptions = deleteOptionsFromArgs(request, opts.CheckMode)

	return opts, ""
}

// waitOptionsFromArgs reads the shared wait parameters of a request.
func waitOptionsFromArgs(request mcp.CallToolRequest) k8s.WaitOptions {
	opts := k8s.WaitOptions{
		Timeout: time.Duration(tools.GetIntArg(request, "waitTimeout", 120)) * time.Second,
		Sleep:   time.Duration(tools.GetIntArg(request, "waitSleep", 5)) * time.Second,
	}
	if cond, ok := request.GetArguments()["waitCondition"].(map[string]interface{}); ok {
		condType, _ := cond["type"].(string)
		condStatus, _ := cond["status"].(string)
		condReason, _ := cond["reason"].(string)
		opts.Condition = &k8s.WaitCondition{Type: condType, Status: condStatus, Reason: condReason}
	}
	return opts
}

func deleteOptionsFromArgs(request mcp.CallToolRequest, dryRun bool) k8s.DeleteOptions {
	opts := k8s.DeleteOptions{
		PropagationPolicy: request.GetString("propagationPolicy", ""),
		DryRun:            dryRun,
	}
	if grace := tools.GetIntArg(request, "gracePeriodSeconds", -1); grace >= 0 {
		opts.GracePeriodSeconds = ptr.To(int64(grace))
	}
	return opts
}

// handleDeleteResource deletes a resource by name. Deleting an absent
// resource reports changed=false.
func handleDeleteResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "delete"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := request.GetString("namespace", k8s.DefaultNamespace)

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun
	opts := deleteOptionsFromArgs(request, checkMode)

	start := time.Now()
	deleted, err := sc.K8sClient().Delete(ctx, kubeContext, namespace, resourceType, apiGroup, name, opts)
	duration := time.Since(start)

	if apierrors.IsNotFound(err) {
		sc.RecordK8sOperation(ctx, instrumentation.OperationDelete, resourceType, namespace, instrumentation.StatusSuccess, duration)
		return toolResultJSON(map[string]interface{}{
			"changed": false,
			"method":  k8s.MethodDelete,
		})
	}
	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationDelete, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationDelete, resourceType, namespace, instrumentation.StatusSuccess, duration)

	response := map[string]interface{}{
		"changed":  true,
		"method":   k8s.MethodDelete,
		"duration": duration.String(),
	}
	if deleted != nil {
		response["result"] = outputProcessor(request.GetArguments()).ProcessUnstructured(deleted).Object
	}

	return toolResultJSON(response)
}

// handlePatchResource applies a strategic, merge or JSON patch.
func handlePatchResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "patch"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := request.GetString("namespace", k8s.DefaultNamespace)

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	patchTypeStr, err := request.RequireString("patchType")
	if err != nil {
		return mcp.NewToolResultError("patchType is required"), nil
	}

	patchData, ok := request.GetArguments()["patch"]
	if !ok || patchData == nil {
		return mcp.NewToolResultError("patch is required"), nil
	}

	var patchType types.PatchType
	switch patchTypeStr {
	case "strategic":
		patchType = types.StrategicMergePatchType
	case "merge":
		patchType = types.MergePatchType
	case "json":
		patchType = types.JSONPatchType
	default:
		return mcp.NewToolResultError("Invalid patch type. Must be one of: strategic, merge, json"), nil
	}

	patchBytes, err := json.Marshal(patchData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal patch data: %v", err)), nil
	}

	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	start := time.Now()
	patched, err := sc.K8sClient().Patch(ctx, kubeContext, namespace, resourceType, apiGroup, name, patchType, patchBytes, checkMode)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationPatch, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to patch resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationPatch, resourceType, namespace, instrumentation.StatusSuccess, duration)

	processed := outputProcessor(request.GetArguments()).ProcessUnstructured(patched)
	return toolResultJSON(map[string]interface{}{
		"changed":  true,
		"method":   k8s.MethodPatch,
		"result":   processed.Object,
		"duration": duration.String(),
	})
}

// handleJSONPatchResource applies an RFC 6902 patch array.
func handleJSONPatchResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "patch"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := request.GetString("namespace", k8s.DefaultNamespace)

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	rawOps, ok := request.GetArguments()["operations"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("operations must be an array of patch operations"), nil
	}

	patchBytes, err := jsonPatchOps(rawOps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid patch operations: %v", err)), nil
	}

	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	checkMode := tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun

	start := time.Now()
	patched, err := sc.K8sClient().Patch(ctx, kubeContext, namespace, resourceType, apiGroup, name, types.JSONPatchType, patchBytes, checkMode)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationPatch, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to apply JSON patch: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationPatch, resourceType, namespace, instrumentation.StatusSuccess, duration)

	processed := outputProcessor(request.GetArguments()).ProcessUnstructured(patched)
	return toolResultJSON(map[string]interface{}{
		"changed":  true,
		"method":   k8s.MethodPatch,
		"result":   processed.Object,
		"duration": duration.String(),
	})
}

// handleScaleResource sets replicas through the scale subresource.
func handleScaleResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "scale"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := tools.NamespaceOrDefault(sc, request.GetString("namespace", ""))

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	replicas, err := request.RequireFloat("replicas")
	if err != nil {
		return mcp.NewToolResultError("replicas is required"), nil
	}

	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	opts := k8s.ScaleOptions{
		Replicas:        int32(replicas),
		ResourceVersion: request.GetString("resourceVersion", ""),
		CheckMode:       tools.GetBoolArg(request, "checkMode", false) || sc.Config().DryRun,
	}
	if current := tools.GetIntArg(request, "currentReplicas", -1); current >= 0 {
		opts.CurrentReplicas = ptr.To(int32(current))
	}
	if tools.GetBoolArg(request, "wait", false) {
		opts.Wait = &k8s.WaitOptions{
			Timeout: time.Duration(tools.GetIntArg(request, "waitTimeout", 120)) * time.Second,
		}
	}

	start := time.Now()
	scaleResult, err := sc.K8sClient().Scale(ctx, kubeContext, namespace, resourceType, apiGroup, name, opts)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationScale, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to scale resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationScale, resourceType, namespace, instrumentation.StatusSuccess, duration)

	return toolResultJSON(scaleResult)
}

// handleRollbackResource reverts a Deployment or DaemonSet to its
// previous revision.
func handleRollbackResource(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if result := tools.CheckMutatingOperation(sc, "rollback"); result != nil {
		return result, nil
	}

	kubeContext := request.GetString("kubeContext", "")
	apiGroup := request.GetString("apiGroup", "")
	namespace := tools.NamespaceOrDefault(sc, request.GetString("namespace", ""))

	resourceType, err := request.RequireString("resourceType")
	if err != nil {
		return mcp.NewToolResultError("resourceType is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	kind := strings.ToLower(resourceType)
	if kind != "deployment" && kind != "deployments" && kind != "daemonset" && kind != "daemonsets" {
		return mcp.NewToolResultError("Rollback supports deployments and daemonsets only"), nil
	}

	if result := tools.CheckRestrictedNamespace(sc, namespace); result != nil {
		return result, nil
	}

	start := time.Now()
	rollbackResult, err := sc.K8sClient().Rollback(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	duration := time.Since(start)

	if err != nil {
		sc.RecordK8sOperation(ctx, instrumentation.OperationRollback, resourceType, namespace, instrumentation.StatusError, duration)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to roll back resource: %v", err)), nil
	}
	sc.RecordK8sOperation(ctx, instrumentation.OperationRollback, resourceType, namespace, instrumentation.StatusSuccess, duration)

	return toolResultJSON(rollbackResult)
}
