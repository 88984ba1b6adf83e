package k8s

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
)

// mirrorPodAnnotation marks static pods managed directly by the kubelet.
const mirrorPodAnnotation = "kubernetes.io/config.mirror"

// maxConcurrentEvictions bounds parallel pod evictions during a drain.
const maxConcurrentEvictions = 5

// Cordon marks a node unschedulable.
func (c *kubernetesClient) Cordon(ctx context.Context, kubeContext, nodeName string, dryRun bool) (bool, error) {
	return c.setSchedulable(ctx, kubeContext, nodeName, true, dryRun)
}

// Uncordon marks a node schedulable again.
func (c *kubernetesClient) Uncordon(ctx context.Context, kubeContext, nodeName string, dryRun bool) (bool, error) {
	return c.setSchedulable(ctx, kubeContext, nodeName, false, dryRun)
}

func (c *kubernetesClient) setSchedulable(ctx context.Context, kubeContext, nodeName string, unschedulable, dryRun bool) (bool, error) {
	operation := "uncordon"
	if unschedulable {
		operation = "cordon"
	}
	c.logOperation(operation, kubeContext, "", "nodes", nodeName)

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return false, err
	}

	node, err := clientset.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to get node %q: %w", nodeName, err)
	}

	if node.Spec.Unschedulable == unschedulable {
		return false, nil
	}

	node.Spec.Unschedulable = unschedulable

	updateOpts := metav1.UpdateOptions{FieldManager: DefaultFieldManager}
	if dryRun {
		updateOpts.DryRun = []string{metav1.DryRunAll}
	}
	if _, err := clientset.CoreV1().Nodes().Update(ctx, node, updateOpts); err != nil {
		return false, fmt.Errorf("failed to %s node %q: %w", operation, nodeName, err)
	}
	return true, nil
}

// Drain cordons a node and evicts or deletes its pods. On eviction failure
// the cordon is reverted so the node is not left half-drained and
// unschedulable.
func (c *kubernetesClient) Drain(ctx context.Context, kubeContext, nodeName string, opts DrainOptions) (*DrainResult, error) {
	c.logOperation("drain", kubeContext, "", "nodes", nodeName)

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	// Cordon before selecting pods so nothing new lands on the node in
	// between.
	cordoned, err := c.Cordon(ctx, kubeContext, nodeName, opts.DryRun)
	if err != nil {
		return nil, err
	}

	pods, warnings, err := c.podsToDrain(ctx, clientset, nodeName, opts)
	if err != nil {
		if cordoned {
			if _, uncordonErr := c.Uncordon(ctx, kubeContext, nodeName, false); uncordonErr != nil {
				return nil, fmt.Errorf("%w (failed to revert cordon: %v)", err, uncordonErr)
			}
		}
		return nil, err
	}

	result := &DrainResult{
		Changed:  cordoned,
		Cordoned: true,
		Warnings: warnings,
	}

	if opts.DryRun {
		for _, pod := range pods {
			result.Evicted = append(result.Evicted, pod.Namespace+"/"+pod.Name)
		}
		result.Changed = result.Changed || len(pods) > 0
		return result, nil
	}

	evicted, err := c.evictPods(ctx, clientset, pods, opts)
	result.Evicted = evicted
	result.Changed = result.Changed || len(evicted) > 0
	if err != nil {
		if cordoned {
			if _, uncordonErr := c.Uncordon(ctx, kubeContext, nodeName, false); uncordonErr != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to revert cordon on %q: %v", nodeName, uncordonErr))
			}
		}
		return nil, fmt.Errorf("failed to drain node %q: %w", nodeName, err)
	}

	if opts.WaitTimeout > 0 && len(pods) > 0 {
		if err := c.waitForPodsGone(ctx, clientset, pods, opts); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}
	return result, nil
}

// podsToDrain lists the pods on a node and vets them against the drain
// policy. Mirror pods and DaemonSet pods are never evicted; the latter fail
// the drain unless explicitly ignored.
func (c *kubernetesClient) podsToDrain(ctx context.Context, clientset kubernetes.Interface, nodeName string, opts DrainOptions) ([]corev1.Pod, []string, error) {
	podList, err := clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		FieldSelector: "spec.nodeName=" + nodeName,
		LabelSelector: opts.PodSelector,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list pods on node %q: %w", nodeName, err)
	}

	var pods []corev1.Pod
	var warnings []string
	for _, pod := range podList.Items {
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}
		if _, isMirror := pod.Annotations[mirrorPodAnnotation]; isMirror {
			continue
		}

		controller := metav1.GetControllerOf(&pod)
		if controller != nil && controller.Kind == "DaemonSet" {
			if !opts.IgnoreDaemonsets {
				return nil, nil, fmt.Errorf("cannot drain node %q: pod %s/%s is managed by a DaemonSet (set ignore_daemonsets to proceed)", nodeName, pod.Namespace, pod.Name)
			}
			warnings = append(warnings, fmt.Sprintf("ignoring DaemonSet pod %s/%s", pod.Namespace, pod.Name))
			continue
		}
		if controller == nil && !opts.Force {
			return nil, nil, fmt.Errorf("cannot drain node %q: pod %s/%s is not managed by a controller (set force to proceed)", nodeName, pod.Namespace, pod.Name)
		}
		if hasEmptyDirVolume(&pod) && !opts.DeleteEmptydirData {
			return nil, nil, fmt.Errorf("cannot drain node %q: pod %s/%s uses emptyDir storage (set delete_emptydir_data to proceed)", nodeName, pod.Namespace, pod.Name)
		}
		pods = append(pods, pod)
	}
	return pods, warnings, nil
}

// evictPods evicts the given pods in parallel through the eviction API, or
// deletes them directly when eviction is disabled.
func (c *kubernetesClient) evictPods(ctx context.Context, clientset kubernetes.Interface, pods []corev1.Pod, opts DrainOptions) ([]string, error) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentEvictions)

	evicted := make([]string, 0, len(pods))
	results := make(chan string, len(pods))

	for i := range pods {
		pod := pods[i]
		group.Go(func() error {
			var err error
			if opts.DisableEviction {
				deleteOpts := metav1.DeleteOptions{GracePeriodSeconds: opts.GracePeriodSeconds}
				err = clientset.CoreV1().Pods(pod.Namespace).Delete(groupCtx, pod.Name, deleteOpts)
			} else {
				eviction := &policyv1.Eviction{
					ObjectMeta:    metav1.ObjectMeta{Name: pod.Name, Namespace: pod.Namespace},
					DeleteOptions: &metav1.DeleteOptions{GracePeriodSeconds: opts.GracePeriodSeconds},
				}
				err = clientset.PolicyV1().Evictions(pod.Namespace).Evict(groupCtx, eviction)
			}
			if err != nil {
				if apierrors.IsNotFound(err) {
					return nil
				}
				return fmt.Errorf("failed to evict pod %s/%s: %w", pod.Namespace, pod.Name, err)
			}
			results <- pod.Namespace + "/" + pod.Name
			return nil
		})
	}

	err := group.Wait()
	close(results)
	for name := range results {
		evicted = append(evicted, name)
	}
	return evicted, err
}

// waitForPodsGone polls until the evicted pods are deleted or replaced.
func (c *kubernetesClient) waitForPodsGone(ctx context.Context, clientset kubernetes.Interface, pods []corev1.Pod, opts DrainOptions) error {
	sleep := opts.WaitSleep
	if sleep <= 0 {
		sleep = DefaultWaitSleep
	}

	err := wait.PollUntilContextTimeout(ctx, sleep, opts.WaitTimeout, true, func(ctx context.Context) (bool, error) {
		for _, pod := range pods {
			current, err := clientset.CoreV1().Pods(pod.Namespace).Get(ctx, pod.Name, metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				continue
			}
			if err != nil {
				return false, err
			}
			// A recreated pod with a new UID does not block the drain.
			if current.UID == pod.UID {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("pods were still terminating after %s", opts.WaitTimeout)
	}
	return nil
}

func hasEmptyDirVolume(pod *corev1.Pod) bool {
	for _, volume := range pod.Spec.Volumes {
		if volume.EmptyDir != nil {
			return true
		}
	}
	return false
}

// Taint adds or updates taints on a node. With replace set the node's taint
// list is overwritten; otherwise matching taints are updated in place and
// new ones appended.
func (c *kubernetesClient) Taint(ctx context.Context, kubeContext, nodeName string, taints []corev1.Taint, replace, dryRun bool) (bool, error) {
	c.logOperation("taint", kubeContext, "", "nodes", nodeName)

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return false, err
	}

	node, err := clientset.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to get node %q: %w", nodeName, err)
	}

	var desired []corev1.Taint
	if replace {
		desired = taints
	} else {
		desired = mergeTaints(node.Spec.Taints, taints)
	}

	if taintsEqual(node.Spec.Taints, desired) {
		return false, nil
	}

	node.Spec.Taints = desired

	updateOpts := metav1.UpdateOptions{FieldManager: DefaultFieldManager}
	if dryRun {
		updateOpts.DryRun = []string{metav1.DryRunAll}
	}
	if _, err := clientset.CoreV1().Nodes().Update(ctx, node, updateOpts); err != nil {
		return false, fmt.Errorf("failed to taint node %q: %w", nodeName, err)
	}
	return true, nil
}

// Untaint removes taints from a node. A taint matches on key, and on effect
// when the removal specifies one.
func (c *kubernetesClient) Untaint(ctx context.Context, kubeContext, nodeName string, taints []corev1.Taint, dryRun bool) (bool, error) {
	c.logOperation("untaint", kubeContext, "", "nodes", nodeName)

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return false, err
	}

	node, err := clientset.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to get node %q: %w", nodeName, err)
	}

	remaining := make([]corev1.Taint, 0, len(node.Spec.Taints))
	for _, existing := range node.Spec.Taints {
		if !taintMatchesAny(existing, taints) {
			remaining = append(remaining, existing)
		}
	}

	if len(remaining) == len(node.Spec.Taints) {
		return false, nil
	}

	node.Spec.Taints = remaining

	updateOpts := metav1.UpdateOptions{FieldManager: DefaultFieldManager}
	if dryRun {
		updateOpts.DryRun = []string{metav1.DryRunAll}
	}
	if _, err := clientset.CoreV1().Nodes().Update(ctx, node, updateOpts); err != nil {
		return false, fmt.Errorf("failed to untaint node %q: %w", nodeName, err)
	}
	return true, nil
}

func mergeTaints(existing, updates []corev1.Taint) []corev1.Taint {
	merged := make([]corev1.Taint, len(existing))
	copy(merged, existing)

	for _, update := range updates {
		replaced := false
		for i, taint := range merged {
			if taint.Key == update.Key && taint.Effect == update.Effect {
				merged[i] = update
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, update)
		}
	}
	return merged
}

// taintMatchesAny reports whether a taint matches any of the removals. A
// removal matches on key, and on effect only when it names one.
func taintMatchesAny(taint corev1.Taint, removals []corev1.Taint) bool {
	for _, removal := range removals {
		if taint.Key != removal.Key {
			continue
		}
		if removal.Effect == "" || taint.Effect == removal.Effect {
			return true
		}
	}
	return false
}

func taintsEqual(a, b []corev1.Taint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Value != b[i].Value || a[i].Effect != b[i].Effect {
			return false
		}
	}
	return true
}
