package k8s

import (
	"context"
	"fmt"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"
)

// WaitTimeoutError reports a wait that did not converge before its
// deadline. LastObserved carries the final state seen, when any.
type WaitTimeoutError struct {
	Kind         string
	Name         string
	Timeout      time.Duration
	LastObserved map[string]interface{}
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("%s %q did not converge within %s", e.Kind, e.Name, e.Timeout)
}

// WaitFor blocks until the named resources satisfy the wait options.
func (c *kubernetesClient) WaitFor(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts WaitOptions) (*WaitResult, error) {
	gvr, err := c.resolveResourceType(ctx, kubeContext, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}
	return c.waitForResource(ctx, kubeContext, gvr, namespace, name, opts)
}

// waitForResource polls the cluster until the target satisfies the wait
// predicate or the timeout elapses. Timing out is not an error; the caller
// reads Satisfied to decide how to report it.
func (c *kubernetesClient) waitForResource(ctx context.Context, kubeContext string, gvr schema.GroupVersionResource, namespace, name string, opts WaitOptions) (*WaitResult, error) {
	start := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	sleep := opts.Sleep
	if sleep <= 0 {
		sleep = DefaultWaitSleep
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
	if namespaced {
		if namespace == "" {
			namespace = DefaultNamespace
		}
		ri = dynamicClient.Resource(gvr).Namespace(namespace)
	} else {
		ri = dynamicClient.Resource(gvr)
	}

	result := &WaitResult{}
	err = wait.PollUntilContextTimeout(ctx, sleep, timeout, true, func(ctx context.Context) (bool, error) {
		targets, err := fetchWaitTargets(ctx, ri, name, opts)
		if err != nil {
			if apierrors.IsNotFound(err) {
				if opts.Absent {
					result.Satisfied = true
					result.Resources = nil
					return true, nil
				}
				return false, nil
			}
			return false, err
		}

		if opts.Absent {
			if len(targets) == 0 {
				result.Satisfied = true
				result.Resources = nil
				return true, nil
			}
			return false, nil
		}

		if len(targets) == 0 {
			return false, nil
		}
		for _, target := range targets {
			if !resourceSatisfies(target, opts.Condition) {
				result.Resources = targets
				return false, nil
			}
		}
		result.Satisfied = true
		result.Resources = targets
		return true, nil
	})

	result.Duration = time.Since(start)
	if err != nil && !wait.Interrupted(err) {
		return nil, fmt.Errorf("wait failed: %w", err)
	}
	return result, nil
}

// fetchWaitTargets reads the resources the wait applies to: a single named
// object, or everything matching the label selector.
func fetchWaitTargets(ctx context.Context, ri dynamic.ResourceInterface, name string, opts WaitOptions) ([]*unstructured.Unstructured, error) {
	if opts.LabelSelector == "" && name != "" {
		obj, err := ri.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		return []*unstructured.Unstructured{obj}, nil
	}

	list, err := ri.List(ctx, metav1.ListOptions{
		LabelSelector: opts.LabelSelector,
		FieldSelector: opts.FieldSelector,
	})
	if err != nil {
		return nil, err
	}
	targets := make([]*unstructured.Unstructured, 0, len(list.Items))
	for i := range list.Items {
		targets = append(targets, &list.Items[i])
	}
	return targets, nil
}

// resourceSatisfies evaluates the readiness of a resource. An explicit
// condition overrides the per-kind predicate; kinds without a predicate are
// considered ready as soon as they exist.
func resourceSatisfies(obj *unstructured.Unstructured, condition *WaitCondition) bool {
	if condition != nil {
		return hasCondition(obj, condition)
	}

	switch obj.GetKind() {
	case "Deployment":
		return deploymentReady(obj)
	case "DaemonSet":
		return daemonSetReady(obj)
	case "StatefulSet":
		return statefulSetReady(obj)
	case "Pod":
		return podReady(obj)
	case "Job":
		return hasCondition(obj, &WaitCondition{Type: "Complete", Status: "True"})
	default:
		return true
	}
}

// deploymentReady mirrors the kubectl rollout status logic: the controller
// has observed the latest generation and every replica is updated and
// available.
func deploymentReady(obj *unstructured.Unstructured) bool {
	if !generationObserved(obj) {
		return false
	}
	specReplicas := nestedInt(obj, 1, "spec", "replicas")
	return nestedInt(obj, 0, "status", "updatedReplicas") == specReplicas &&
		nestedInt(obj, 0, "status", "replicas") == specReplicas &&
		nestedInt(obj, 0, "status", "availableReplicas") == specReplicas
}

func daemonSetReady(obj *unstructured.Unstructured) bool {
	if !generationObserved(obj) {
		return false
	}
	desired := nestedInt(obj, 0, "status", "desiredNumberScheduled")
	return nestedInt(obj, 0, "status", "updatedNumberScheduled") == desired &&
		nestedInt(obj, 0, "status", "numberReady") == desired
}

func statefulSetReady(obj *unstructured.Unstructured) bool {
	if !generationObserved(obj) {
		return false
	}
	specReplicas := nestedInt(obj, 1, "spec", "replicas")
	return nestedInt(obj, 0, "status", "updatedReplicas") == specReplicas &&
		nestedInt(obj, 0, "status", "readyReplicas") == specReplicas
}

// podReady accepts a running pod whose Ready condition is true, or a pod
// that already ran to completion.
func podReady(obj *unstructured.Unstructured) bool {
	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	switch phase {
	case "Succeeded":
		return true
	case "Running":
		return hasCondition(obj, &WaitCondition{Type: "Ready", Status: "True"})
	default:
		return false
	}
}

// generationObserved reports whether the controller has caught up with the
// latest spec revision.
func generationObserved(obj *unstructured.Unstructured) bool {
	generation := obj.GetGeneration()
	observed := nestedInt(obj, 0, "status", "observedGeneration")
	return observed >= generation
}

// hasCondition scans status.conditions for a matching entry. An empty
// expected status defaults to "True"; reason is only compared when set.
func hasCondition(obj *unstructured.Unstructured, condition *WaitCondition) bool {
	expectedStatus := condition.Status
	if expectedStatus == "" {
		expectedStatus = "True"
	}

	conditions, found, err := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if !found || err != nil {
		return false
	}
	for _, raw := range conditions {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _ := entry["type"].(string)
		if !strings.EqualFold(condType, condition.Type) {
			continue
		}
		status, _ := entry["status"].(string)
		if !strings.EqualFold(status, expectedStatus) {
			return false
		}
		if condition.Reason != "" {
			reason, _ := entry["reason"].(string)
			if reason != condition.Reason {
				return false
			}
		}
		return true
	}
	return false
}

func nestedInt(obj *unstructured.Unstructured, fallback int64, fields ...string) int64 {
	value, found, err := unstructured.NestedInt64(obj.Object, fields...)
	if !found || err != nil {
		return fallback
	}
	return value
}
