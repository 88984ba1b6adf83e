package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// resourceInterface resolves a resource type to the dynamic client interface
// scoped to the right namespace. It returns the resolved namespace so callers
// can report it.
func (c *kubernetesClient) resourceInterface(ctx context.Context, kubeContext, namespace, resourceType, apiGroup string) (dynamic.ResourceInterface, string, error) {
	gvr, err := c.resolveResourceType(ctx, kubeContext, resourceType, apiGroup)
	if err != nil {
		return nil, "", err
	}

	dynamicClient, err := c.getDynamicClient(kubeContext)
	if err != nil {
		return nil, "", err
	}

	namespaced, err := c.isResourceNamespaced(ctx, kubeContext, gvr)
	if err != nil {
		return nil, "", err
	}

	if !namespaced {
		return dynamicClient.Resource(gvr), "", nil
	}

	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := c.isNamespaceRestricted(namespace); err != nil {
		return nil, "", err
	}
	return dynamicClient.Resource(gvr).Namespace(namespace), namespace, nil
}

// Get retrieves a specific resource by name and namespace.
func (c *kubernetesClient) Get(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*unstructured.Unstructured, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}
	c.logOperation("get", kubeContext, namespace, resourceType, name)

	ri, _, err := c.resourceInterface(ctx, kubeContext, namespace, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}

	obj, err := ri.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %q: %w", resourceType, name, err)
	}
	return obj, nil
}

// List retrieves resources with selector and pagination support.
func (c *kubernetesClient) List(ctx context.Context, kubeContext, namespace, resourceType, apiGroup string, opts ListOptions) (*ListResult, error) {
	c.logOperation("list", kubeContext, namespace, resourceType, "")

	gvr, err := c.resolveResourceType(ctx, kubeContext, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}

	dynamicClient, err := c.getDynamicClient(kubeContext)
	if err != nil {
		return nil, err
	}

	namespaced, err := c.isResourceNamespaced(ctx, kubeContext, gvr)
	if err != nil {
		return nil, err
	}

	var ri dynamic.ResourceInterface
	switch {
	case !namespaced, opts.AllNamespaces:
		ri = dynamicClient.Resource(gvr)
	default:
		if namespace == "" {
			namespace = DefaultNamespace
		}
		if err := c.isNamespaceRestricted(namespace); err != nil {
			return nil, err
		}
		ri = dynamicClient.Resource(gvr).Namespace(namespace)
	}

	listOpts := metav1.ListOptions{
		LabelSelector: opts.LabelSelector,
		FieldSelector: opts.FieldSelector,
		Limit:         opts.Limit,
		Continue:      opts.Continue,
	}

	list, err := ri.List(ctx, listOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resourceType, err)
	}

	result := &ListResult{
		Items:           make([]*unstructured.Unstructured, 0, len(list.Items)),
		Continue:        list.GetContinue(),
		RemainingItems:  list.GetRemainingItemCount(),
		ResourceVersion: list.GetResourceVersion(),
	}
	for i := range list.Items {
		result.Items = append(result.Items, &list.Items[i])
	}
	return result, nil
}

// Describe provides detailed information about a resource including its
// recent events.
func (c *kubernetesClient) Describe(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*ResourceDescription, error) {
	obj, err := c.Get(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	if err != nil {
		return nil, err
	}

	description := &ResourceDescription{Resource: obj}

	events, err := c.getResourceEvents(ctx, kubeContext, obj)
	if err != nil {
		// Events are best effort; a describe without them is still useful.
		if c.config.Logger != nil {
			c.config.Logger.Warn("failed to fetch events", "resource", name, "error", err)
		}
	} else {
		description.Events = events
	}
	return description, nil
}

// getResourceEvents fetches events referencing the given object.
func (c *kubernetesClient) getResourceEvents(ctx context.Context, kubeContext string, obj *unstructured.Unstructured) ([]corev1.Event, error) {
	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	namespace := obj.GetNamespace()
	if namespace == "" {
		namespace = metav1.NamespaceAll
	}

	fieldSelector := fmt.Sprintf("involvedObject.name=%s,involvedObject.kind=%s", obj.GetName(), obj.GetKind())
	eventList, err := clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{
		FieldSelector: fieldSelector,
	})
	if err != nil {
		return nil, err
	}
	return eventList.Items, nil
}

// Create creates a new resource from the provided object.
func (c *kubernetesClient) Create(ctx context.Context, kubeContext, namespace string, obj *unstructured.Unstructured, dryRun bool) (*unstructured.Unstructured, error) {
	if obj == nil {
		return nil, fmt.Errorf("resource definition is required")
	}
	c.logOperation("create", kubeContext, namespace, obj.GetKind(), obj.GetName())

	ri, namespace, err := c.objectInterface(ctx, kubeContext, namespace, obj)
	if err != nil {
		return nil, err
	}
	if namespace != "" {
		obj.SetNamespace(namespace)
	}

	createOpts := metav1.CreateOptions{}
	if dryRun {
		createOpts.DryRun = []string{metav1.DryRunAll}
	}

	created, err := ri.Create(ctx, obj, createOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %q: %w", obj.GetKind(), obj.GetName(), err)
	}
	return created, nil
}

// objectInterface resolves a resource interface from an object's own
// apiVersion and kind, scoped to the effective namespace.
func (c *kubernetesClient) objectInterface(ctx context.Context, kubeContext, namespace string, obj *unstructured.Unstructured) (dynamic.ResourceInterface, string, error) {
	gvr, err := c.resolveGVRFromObject(ctx, kubeContext, obj)
	if err != nil {
		return nil, "", err
	}

	dynamicClient, err := c.getDynamicClient(kubeContext)
	if err != nil {
		return nil, "", err
	}

	namespaced, err := c.isResourceNamespaced(ctx, kubeContext, gvr)
	if err != nil {
		return nil, "", err
	}

	if !namespaced {
		return dynamicClient.Resource(gvr), "", nil
	}

	// The object's own namespace wins over the parameter, matching kubectl.
	if obj.GetNamespace() != "" {
		namespace = obj.GetNamespace()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := c.isNamespaceRestricted(namespace); err != nil {
		return nil, "", err
	}
	return dynamicClient.Resource(gvr).Namespace(namespace), namespace, nil
}

// Delete removes a resource and returns its last observed state.
func (c *kubernetesClient) Delete(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts DeleteOptions) (*unstructured.Unstructured, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}
	c.logOperation("delete", kubeContext, namespace, resourceType, name)

	ri, _, err := c.resourceInterface(ctx, kubeContext, namespace, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}

	existing, err := ri.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %q before deletion: %w", resourceType, name, err)
	}

	deleteOpts := metav1.DeleteOptions{
		GracePeriodSeconds: opts.GracePeriodSeconds,
	}
	if opts.PropagationPolicy != "" {
		policy := metav1.DeletionPropagation(opts.PropagationPolicy)
		deleteOpts.PropagationPolicy = &policy
	}
	if opts.DryRun {
		deleteOpts.DryRun = []string{metav1.DryRunAll}
	}

	if err := ri.Delete(ctx, name, deleteOpts); err != nil {
		return nil, fmt.Errorf("failed to delete %s %q: %w", resourceType, name, err)
	}
	return existing, nil
}

// Patch updates specific fields of a resource.
func (c *kubernetesClient) Patch(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, patchType types.PatchType, data []byte, dryRun bool) (*unstructured.Unstructured, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("patch data is required")
	}
	c.logOperation("patch", kubeContext, namespace, resourceType, name)

	ri, _, err := c.resourceInterface(ctx, kubeContext, namespace, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}

	patchOpts := metav1.PatchOptions{FieldManager: DefaultFieldManager}
	if dryRun {
		patchOpts.DryRun = []string{metav1.DryRunAll}
	}

	patched, err := ri.Patch(ctx, name, patchType, data, patchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to patch %s %q: %w", resourceType, name, err)
	}
	return patched, nil
}
