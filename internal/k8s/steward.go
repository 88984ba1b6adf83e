package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/types"
)

// defaultMergeTypes is the patch type fallback order for updates. Strategic
// merge is tried first; custom resources reject it with 415 and fall through
// to plain JSON merge.
var defaultMergeTypes = []types.PatchType{
	types.StrategicMergePatchType,
	types.MergePatchType,
}

// Reconcile drives a resource definition to its desired state. It is
// idempotent: reconciling a definition that already matches the cluster
// reports changed=false and leaves the object alone.
func (c *kubernetesClient) Reconcile(ctx context.Context, kubeContext string, def *unstructured.Unstructured, opts ReconcileOptions) (*ReconcileResult, error) {
	start := time.Now()

	if def == nil {
		return nil, fmt.Errorf("resource definition is required")
	}
	if opts.State == "" {
		opts.State = StatePresent
	}

	c.logOperation("reconcile", kubeContext, def.GetNamespace(), def.GetKind(), def.GetName())

	matched, err := matchesSelectors(def, opts.LabelSelectors)
	if err != nil {
		return nil, err
	}
	if !matched {
		return &ReconcileResult{
			Changed:  false,
			Duration: time.Since(start),
			Warnings: []string{fmt.Sprintf("%s %q skipped: labels do not match the configured selectors", def.GetKind(), def.GetName())},
		}, nil
	}

	gvr, err := c.resolveGVRFromObject(ctx, kubeContext, def)
	if err != nil {
		return nil, err
	}
	ri, namespace, err := c.objectInterface(ctx, kubeContext, def.GetNamespace(), def)
	if err != nil {
		return nil, err
	}
	if namespace != "" {
		def.SetNamespace(namespace)
	}

	existing, err := ri.Get(ctx, def.GetName(), metav1.GetOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to read current state of %s %q: %w", def.GetKind(), def.GetName(), err)
	}
	exists := err == nil

	var result *ReconcileResult
	switch opts.State {
	case StateAbsent:
		result, err = c.reconcileAbsent(ctx, ri, def, existing, exists, opts)
	case StatePresent, StatePatched:
		result, err = c.reconcilePresent(ctx, ri, def, existing, exists, opts)
	default:
		return nil, fmt.Errorf("unknown desired state %q", opts.State)
	}
	if err != nil {
		return nil, err
	}

	if opts.Wait != nil && !opts.CheckMode {
		waitOpts := *opts.Wait
		// Absent means waiting for the object to disappear, not become
		// ready.
		if opts.State == StateAbsent {
			waitOpts.Absent = true
		}
		waitResult, waitErr := c.waitForResource(ctx, kubeContext, gvr, namespace, def.GetName(), waitOpts)
		if waitErr != nil {
			return nil, waitErr
		}
		if !waitResult.Satisfied {
			timeoutErr := &WaitTimeoutError{
				Kind:    def.GetKind(),
				Name:    def.GetName(),
				Timeout: waitTimeout(waitOpts),
			}
			if len(waitResult.Resources) > 0 {
				timeoutErr.LastObserved = hideFields(waitResult.Resources[0], opts.HiddenFields).Object
			}
			return nil, timeoutErr
		}
		if !waitOpts.Absent && len(waitResult.Resources) > 0 {
			result.Result = hideFields(waitResult.Resources[0], opts.HiddenFields).Object
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (c *kubernetesClient) reconcileAbsent(ctx context.Context, ri resourceWriter, def, existing *unstructured.Unstructured, exists bool, opts ReconcileOptions) (*ReconcileResult, error) {
	if !exists {
		return &ReconcileResult{Changed: false}, nil
	}

	deleteOpts := metav1.DeleteOptions{
		GracePeriodSeconds: opts.DeleteOptions.GracePeriodSeconds,
	}
	if opts.DeleteOptions.PropagationPolicy != "" {
		policy := metav1.DeletionPropagation(opts.DeleteOptions.PropagationPolicy)
		deleteOpts.PropagationPolicy = &policy
	}
	if opts.CheckMode {
		deleteOpts.DryRun = []string{metav1.DryRunAll}
	}

	if err := ri.Delete(ctx, def.GetName(), deleteOpts); err != nil {
		if apierrors.IsNotFound(err) {
			return &ReconcileResult{Changed: false}, nil
		}
		return nil, fmt.Errorf("failed to delete %s %q: %w", def.GetKind(), def.GetName(), err)
	}

	return &ReconcileResult{
		Changed: true,
		Method:  MethodDelete,
		Result:  hideFields(existing, opts.HiddenFields).Object,
	}, nil
}

func (c *kubernetesClient) reconcilePresent(ctx context.Context, ri resourceWriter, def, existing *unstructured.Unstructured, exists bool, opts ReconcileOptions) (*ReconcileResult, error) {
	if !exists {
		if opts.State == StatePatched {
			return &ReconcileResult{
				Changed:  false,
				Warnings: []string{fmt.Sprintf("%s %q does not exist and will not be created in patched mode", def.GetKind(), def.GetName())},
			}, nil
		}
		return c.createResource(ctx, ri, def, opts)
	}

	var (
		updated *unstructured.Unstructured
		method  string
		err     error
	)
	switch {
	case opts.Force:
		updated, err = c.replaceResource(ctx, ri, def, existing, opts)
		method = MethodReplace
	case opts.Apply:
		updated, err = c.applyResource(ctx, ri, def, opts)
		method = MethodApply
	default:
		updated, err = c.patchResource(ctx, ri, def, opts)
		method = MethodPatch
	}
	if err != nil {
		return nil, err
	}

	changed, diff := diffObjects(existing, updated, opts.HiddenFields)
	result := &ReconcileResult{
		Changed: changed,
		Result:  hideFields(updated, opts.HiddenFields).Object,
	}
	if changed {
		result.Method = method
		result.Diff = diff
	}
	return result, nil
}

func (c *kubernetesClient) createResource(ctx context.Context, ri resourceWriter, def *unstructured.Unstructured, opts ReconcileOptions) (*ReconcileResult, error) {
	createOpts := metav1.CreateOptions{FieldManager: c.fieldManager(opts)}
	if opts.CheckMode {
		createOpts.DryRun = []string{metav1.DryRunAll}
	}

	created, err := ri.Create(ctx, def, createOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %q: %w", def.GetKind(), def.GetName(), err)
	}

	return &ReconcileResult{
		Changed: true,
		Method:  MethodCreate,
		Result:  hideFields(created, opts.HiddenFields).Object,
		Diff: &Diff{
			Before: nil,
			After:  sanitizeForDiff(created, opts.HiddenFields),
		},
	}, nil
}

func (c *kubernetesClient) replaceResource(ctx context.Context, ri resourceWriter, def, existing *unstructured.Unstructured, opts ReconcileOptions) (*unstructured.Unstructured, error) {
	replacement := def.DeepCopy()
	replacement.SetResourceVersion(existing.GetResourceVersion())

	updateOpts := metav1.UpdateOptions{FieldManager: c.fieldManager(opts)}
	if opts.CheckMode {
		updateOpts.DryRun = []string{metav1.DryRunAll}
	}

	updated, err := ri.Update(ctx, replacement, updateOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to replace %s %q: %w", def.GetKind(), def.GetName(), err)
	}
	return updated, nil
}

func (c *kubernetesClient) applyResource(ctx context.Context, ri resourceWriter, def *unstructured.Unstructured, opts ReconcileOptions) (*unstructured.Unstructured, error) {
	data, err := json.Marshal(def.Object)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %q for apply: %w", def.GetKind(), def.GetName(), err)
	}

	patchOpts := metav1.PatchOptions{FieldManager: c.fieldManager(opts)}
	if opts.ServerSide != nil && opts.ServerSide.ForceConflicts {
		force := true
		patchOpts.Force = &force
	}
	if opts.CheckMode {
		patchOpts.DryRun = []string{metav1.DryRunAll}
	}

	applied, err := ri.Patch(ctx, def.GetName(), types.ApplyPatchType, data, patchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s %q: %w", def.GetKind(), def.GetName(), err)
	}
	return applied, nil
}

func (c *kubernetesClient) patchResource(ctx context.Context, ri resourceWriter, def *unstructured.Unstructured, opts ReconcileOptions) (*unstructured.Unstructured, error) {
	data, err := json.Marshal(def.Object)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %q for patch: %w", def.GetKind(), def.GetName(), err)
	}

	patchOpts := metav1.PatchOptions{FieldManager: c.fieldManager(opts)}
	if opts.CheckMode {
		patchOpts.DryRun = []string{metav1.DryRunAll}
	}

	mergeTypes := opts.MergeTypes
	if len(mergeTypes) == 0 {
		mergeTypes = defaultMergeTypes
	}

	var lastErr error
	for _, patchType := range mergeTypes {
		patched, err := ri.Patch(ctx, def.GetName(), patchType, data, patchOpts)
		if err == nil {
			return patched, nil
		}
		lastErr = err
		// Custom resources reject strategic merge; fall through to the
		// next patch type.
		if !apierrors.IsUnsupportedMediaType(err) {
			break
		}
	}
	return nil, fmt.Errorf("failed to patch %s %q: %w", def.GetKind(), def.GetName(), lastErr)
}

func (c *kubernetesClient) fieldManager(opts ReconcileOptions) string {
	if opts.ServerSide != nil && opts.ServerSide.FieldManager != "" {
		return opts.ServerSide.FieldManager
	}
	return DefaultFieldManager
}

// matchesSelectors reports whether the definition's labels satisfy every
// configured selector.
func matchesSelectors(def *unstructured.Unstructured, selectors []string) (bool, error) {
	if len(selectors) == 0 {
		return true, nil
	}
	objLabels := labels.Set(def.GetLabels())
	for _, raw := range selectors {
		selector, err := labels.Parse(raw)
		if err != nil {
			return false, fmt.Errorf("invalid label selector %q: %w", raw, err)
		}
		if !selector.Matches(objLabels) {
			return false, nil
		}
	}
	return true, nil
}

func waitTimeout(opts WaitOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return DefaultWaitTimeout
}

// resourceWriter is the subset of the dynamic resource interface the
// reconcile paths need. Narrowing it keeps the unit tests small.
type resourceWriter interface {
	Create(ctx context.Context, obj *unstructured.Unstructured, options metav1.CreateOptions, subresources ...string) (*unstructured.Unstructured, error)
	Update(ctx context.Context, obj *unstructured.Unstructured, options metav1.UpdateOptions, subresources ...string) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, name string, options metav1.DeleteOptions, subresources ...string) error
	Get(ctx context.Context, name string, options metav1.GetOptions, subresources ...string) (*unstructured.Unstructured, error)
	Patch(ctx context.Context, name string, pt types.PatchType, data []byte, options metav1.PatchOptions, subresources ...string) (*unstructured.Unstructured, error)
}
