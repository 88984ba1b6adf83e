package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
)

// revisionAnnotation tracks the rollout revision on Deployments and their
// ReplicaSets.
const revisionAnnotation = "deployment.kubernetes.io/revision"

// Rollback reverts a Deployment or DaemonSet to the revision that preceded
// the current one.
func (c *kubernetesClient) Rollback(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*RollbackResult, error) {
	c.logOperation("rollback", kubeContext, namespace, resourceType, name)

	gvr, err := c.resolveResourceType(ctx, kubeContext, resourceType, apiGroup)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := c.isNamespaceRestricted(namespace); err != nil {
		return nil, err
	}

	switch gvr.Resource {
	case "deployments":
		return c.rollbackDeployment(ctx, kubeContext, namespace, name)
	case "daemonsets":
		return c.rollbackDaemonSet(ctx, kubeContext, namespace, name)
	default:
		return nil, fmt.Errorf("rollback supports Deployments and DaemonSets, not %q", resourceType)
	}
}

// rollbackDeployment restores the pod template of the previous ReplicaSet
// revision.
func (c *kubernetesClient) rollbackDeployment(ctx context.Context, kubeContext, namespace, name string) (*RollbackResult, error) {
	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	deployment, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %q: %w", name, err)
	}

	selector, err := metav1.LabelSelectorAsSelector(deployment.Spec.Selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector on deployment %q: %w", name, err)
	}

	replicaSets, err := clientset.AppsV1().ReplicaSets(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list replica sets for deployment %q: %w", name, err)
	}

	owned := make([]appsv1.ReplicaSet, 0, len(replicaSets.Items))
	for _, rs := range replicaSets.Items {
		if metav1.IsControlledBy(&rs, deployment) {
			owned = append(owned, rs)
		}
	}
	if len(owned) < 2 {
		return nil, fmt.Errorf("deployment %q has no previous revision to roll back to", name)
	}

	sort.Slice(owned, func(i, j int) bool {
		return replicaSetRevision(&owned[i]) > replicaSetRevision(&owned[j])
	})
	previous := owned[1]
	revision := replicaSetRevision(&previous)

	patch := map[string]interface{}{
		"metadata": map[string]interface{}{
			"annotations": map[string]interface{}{
				revisionAnnotation: strconv.FormatInt(revision, 10),
			},
		},
		"spec": map[string]interface{}{
			"template": previous.Spec.Template,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rollback patch: %w", err)
	}

	updated, err := clientset.AppsV1().Deployments(namespace).Patch(ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{
		FieldManager: DefaultFieldManager,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to roll back deployment %q: %w", name, err)
	}

	result, err := toUnstructuredMap(updated)
	if err != nil {
		return nil, err
	}
	return &RollbackResult{
		Changed:  true,
		Method:   MethodPatch,
		Revision: revision,
		Result:   result,
	}, nil
}

// rollbackDaemonSet applies the patch stored in the previous
// ControllerRevision.
func (c *kubernetesClient) rollbackDaemonSet(ctx context.Context, kubeContext, namespace, name string) (*RollbackResult, error) {
	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	daemonSet, err := clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get daemonset %q: %w", name, err)
	}

	selector, err := metav1.LabelSelectorAsSelector(daemonSet.Spec.Selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector on daemonset %q: %w", name, err)
	}

	revisions, err := clientset.AppsV1().ControllerRevisions(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list controller revisions for daemonset %q: %w", name, err)
	}

	owned := make([]appsv1.ControllerRevision, 0, len(revisions.Items))
	for _, rev := range revisions.Items {
		if metav1.IsControlledBy(&rev, daemonSet) {
			owned = append(owned, rev)
		}
	}
	if len(owned) < 2 {
		return nil, fmt.Errorf("daemonset %q has no previous revision to roll back to", name)
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].Revision > owned[j].Revision
	})
	previous := owned[1]

	// ControllerRevision data is a strategic merge patch of the daemonset.
	updated, err := clientset.AppsV1().DaemonSets(namespace).Patch(ctx, name, types.StrategicMergePatchType, previous.Data.Raw, metav1.PatchOptions{
		FieldManager: DefaultFieldManager,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to roll back daemonset %q: %w", name, err)
	}

	result, err := toUnstructuredMap(updated)
	if err != nil {
		return nil, err
	}
	return &RollbackResult{
		Changed:  true,
		Method:   MethodPatch,
		Revision: previous.Revision,
		Result:   result,
	}, nil
}

func replicaSetRevision(rs *appsv1.ReplicaSet) int64 {
	raw, ok := rs.Annotations[revisionAnnotation]
	if !ok {
		return 0
	}
	revision, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return revision
}

func toUnstructuredMap(obj runtime.Object) (map[string]interface{}, error) {
	converted, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert result: %w", err)
	}
	return converted, nil
}
