package k8s

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/tools/remotecommand"
	"k8s.io/client-go/transport/spdy"
	utilexec "k8s.io/client-go/util/exec"
)

// GetLogs retrieves logs from a pod container. When podName is empty the pod
// is resolved from the label selector in opts; ambiguous selectors fail.
func (c *kubernetesClient) GetLogs(ctx context.Context, kubeContext, namespace, podName, containerName string, opts LogOptions) (io.ReadCloser, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := c.isNamespaceRestricted(namespace); err != nil {
		return nil, err
	}

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	if podName == "" {
		podName, err = c.resolvePodBySelector(ctx, kubeContext, namespace, opts.LabelSelector)
		if err != nil {
			return nil, err
		}
	}

	c.logOperation("get-logs", kubeContext, namespace, "pod", podName)

	logOpts := &corev1.PodLogOptions{
		Container:  containerName,
		Follow:     opts.Follow,
		Previous:   opts.Previous,
		Timestamps: opts.Timestamps,
		TailLines:  opts.TailLines,
	}
	if opts.SinceTime != nil {
		logOpts.SinceTime = &metav1.Time{Time: *opts.SinceTime}
	}

	logs, err := clientset.CoreV1().Pods(namespace).GetLogs(podName, logOpts).Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for pod %s/%s: %w", namespace, podName, err)
	}
	return logs, nil
}

// resolvePodBySelector finds the single running pod matching a label
// selector.
func (c *kubernetesClient) resolvePodBySelector(ctx context.Context, kubeContext, namespace, labelSelector string) (string, error) {
	if labelSelector == "" {
		return "", fmt.Errorf("either a pod name or a label selector is required")
	}

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return "", err
	}

	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list pods matching %q: %w", labelSelector, err)
	}

	var running []string
	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodRunning {
			running = append(running, pod.Name)
		}
	}
	switch len(running) {
	case 0:
		return "", fmt.Errorf("no running pods match selector %q in namespace %q", labelSelector, namespace)
	case 1:
		return running[0], nil
	default:
		return "", fmt.Errorf("selector %q matches %d running pods, a unique match is required", labelSelector, len(running))
	}
}

// Exec executes a command inside a pod container. Output is captured into
// the result unless the caller provides its own streams; a non-zero exit
// code is reported in the result rather than as an error.
func (c *kubernetesClient) Exec(ctx context.Context, kubeContext, namespace, podName, containerName string, command []string, opts ExecOptions) (*ExecResult, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := c.isNamespaceRestricted(namespace); err != nil {
		return nil, err
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("a command is required")
	}

	c.logOperation("exec", kubeContext, namespace, "pod", podName)

	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}
	restConfig, err := c.getRestConfig(kubeContext)
	if err != nil {
		return nil, err
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := opts.Stdout
	stderr := opts.Stderr
	if stdout == nil {
		stdout = &stdoutBuf
	}
	if stderr == nil {
		stderr = &stderrBuf
	}

	execReq := clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(podName).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: containerName,
			Command:   command,
			Stdin:     opts.Stdin != nil,
			Stdout:    true,
			Stderr:    !opts.TTY,
			TTY:       opts.TTY,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(restConfig, http.MethodPost, execReq.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	streamErr := executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdin:  opts.Stdin,
		Stdout: stdout,
		Stderr: stderr,
		Tty:    opts.TTY,
	})

	result := &ExecResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}
	if streamErr != nil {
		var exitErr utilexec.CodeExitError
		if errors.As(streamErr, &exitErr) {
			result.ExitCode = exitErr.Code
			return result, nil
		}
		return nil, fmt.Errorf("failed to execute command in pod %s/%s: %w", namespace, podName, streamErr)
	}
	return result, nil
}

// PortForward sets up port forwarding to a pod and returns once the tunnel
// is ready.
func (c *kubernetesClient) PortForward(ctx context.Context, kubeContext, namespace, podName string, ports []string, opts PortForwardOptions) (*PortForwardSession, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := c.isNamespaceRestricted(namespace); err != nil {
		return nil, err
	}

	c.logOperation("port-forward", kubeContext, namespace, "pod", podName)

	if err := c.validatePodRunning(ctx, kubeContext, namespace, podName); err != nil {
		return nil, err
	}

	localPorts, remotePorts, err := parsePortPairs(ports)
	if err != nil {
		return nil, err
	}

	restConfig, err := c.getRestConfig(kubeContext)
	if err != nil {
		return nil, err
	}
	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return nil, err
	}

	portForwardReq := clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(podName).
		Namespace(namespace).
		SubResource("portforward")

	roundTripper, upgrader, err := spdy.RoundTripperFor(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create round tripper: %w", err)
	}
	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: roundTripper}, http.MethodPost, portForwardReq.URL())

	stopChan := make(chan struct{}, 1)
	readyChan := make(chan struct{}, 1)

	stdout := opts.Stdout
	stderr := opts.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	forwarder, err := portforward.New(dialer, ports, stopChan, readyChan, stdout, stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create port forwarder: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := forwarder.ForwardPorts(); err != nil {
			if c.config.Logger != nil {
				c.config.Logger.Error("port forwarding error", "error", err)
			}
			errChan <- err
		}
	}()

	select {
	case <-readyChan:
	case err := <-errChan:
		close(stopChan)
		return nil, fmt.Errorf("port forwarding failed: %w", err)
	case <-ctx.Done():
		close(stopChan)
		return nil, fmt.Errorf("port forwarding cancelled: %w", ctx.Err())
	}

	return &PortForwardSession{
		LocalPorts:  localPorts,
		RemotePorts: remotePorts,
		StopChan:    stopChan,
		ReadyChan:   readyChan,
		Forwarder:   forwarder,
	}, nil
}

// parsePortPairs parses port specs in "local:remote" or "port" form.
func parsePortPairs(ports []string) (localPorts, remotePorts []int, err error) {
	if len(ports) == 0 {
		return nil, nil, fmt.Errorf("at least one port is required")
	}

	localPorts = make([]int, len(ports))
	remotePorts = make([]int, len(ports))
	for i, spec := range ports {
		local, remote, found := strings.Cut(spec, ":")
		if !found {
			remote = local
		}
		localPorts[i], err = strconv.Atoi(local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid local port in %q", spec)
		}
		remotePorts[i], err = strconv.Atoi(remote)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid remote port in %q", spec)
		}
	}
	return localPorts, remotePorts, nil
}

// validatePodRunning checks that a pod exists and is running.
func (c *kubernetesClient) validatePodRunning(ctx context.Context, kubeContext, namespace, podName string) error {
	clientset, err := c.getClientset(kubeContext)
	if err != nil {
		return err
	}

	pod, err := clientset.CoreV1().Pods(namespace).Get(ctx, podName, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("pod %s/%s not found: %w", namespace, podName, err)
	}
	if pod.Status.Phase != corev1.PodRunning {
		return fmt.Errorf("pod %s/%s is not running", namespace, podName)
	}
	return nil
}
