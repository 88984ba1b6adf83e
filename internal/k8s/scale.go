package k8s

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Scale changes the replica count of a resource through its scale
// subresource, so it works for any kind that exposes one.
func (c *kubernetesClient) Scale(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts ScaleOptions) (*ScaleResult, error) {
	start := time.Now()
	c.logOperation("scale", kubeContext, namespace, resourceType, name)

	gvr, err := c.resolveResourceType(ctx, kubeContext, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}
	ri, namespace, err := c.resourceInterface(ctx, kubeContext, namespace, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}

	scale, err := ri.Get(ctx, name, metav1.GetOptions{}, "scale")
	if err != nil {
		return nil, fmt.Errorf("failed to read scale of %s %q: %w", resourceType, name, err)
	}

	current := nestedInt(scale, 0, "spec", "replicas")

	if opts.CurrentReplicas != nil && int64(*opts.CurrentReplicas) != current {
		return nil, fmt.Errorf("current replica count %d does not match expected %d, refusing to scale %s %q",
			current, *opts.CurrentReplicas, resourceType, name)
	}

	if current == int64(opts.Replicas) {
		return &ScaleResult{
			Changed:  false,
			Result:   scale.Object,
			Duration: time.Since(start),
		}, nil
	}

	desired := scale.DeepCopy()
	if err := unstructured.SetNestedField(desired.Object, int64(opts.Replicas), "spec", "replicas"); err != nil {
		return nil, fmt.Errorf("failed to set replica count: %w", err)
	}
	if opts.ResourceVersion != "" {
		desired.SetResourceVersion(opts.ResourceVersion)
	}

	updateOpts := metav1.UpdateOptions{FieldManager: DefaultFieldManager}
	if opts.CheckMode {
		updateOpts.DryRun = []string{metav1.DryRunAll}
	}

	updated, err := ri.Update(ctx, desired, updateOpts, "scale")
	if err != nil {
		return nil, fmt.Errorf("failed to scale %s %q to %d replicas: %w", resourceType, name, opts.Replicas, err)
	}

	result := &ScaleResult{
		Changed: true,
		Result:  updated.Object,
	}

	if opts.Wait != nil && !opts.CheckMode {
		waitResult, waitErr := c.waitForResource(ctx, kubeContext, gvr, namespace, name, *opts.Wait)
		if waitErr != nil {
			return nil, waitErr
		}
		if !waitResult.Satisfied {
			return nil, fmt.Errorf("%s %q did not reach %d ready replicas within %s",
				resourceType, name, opts.Replicas, waitTimeout(*opts.Wait))
		}
		if len(waitResult.Resources) > 0 {
			result.Result = waitResult.Resources[0].Object
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
