// Package testdata provides mock implementations for testing the resource package.
package testdata

import (
	"context"
	"io"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"

	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/server"
)

// Compile-time interface compliance checks.
var (
	_ k8s.Client    = (*MockK8sClient)(nil)
	_ server.Logger = (*MockLogger)(nil)
)

// MockK8sClient implements k8s.Client for testing. Each operation can be
// overridden through the corresponding func field; unset operations
// return zero values so handler-level checks can be exercised without a
// cluster.
type MockK8sClient struct {
	GetFunc       func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*unstructured.Unstructured, error)
	ListFunc      func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup string, opts k8s.ListOptions) (*k8s.ListResult, error)
	DescribeFunc  func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*k8s.ResourceDescription, error)
	CreateFunc    func(ctx context.Context, kubeContext, namespace string, obj *unstructured.Unstructured, dryRun bool) (*unstructured.Unstructured, error)
	DeleteFunc    func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts k8s.DeleteOptions) (*unstructured.Unstructured, error)
	PatchFunc     func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, patchType types.PatchType, data []byte, dryRun bool) (*unstructured.Unstructured, error)
	ReconcileFunc func(ctx context.Context, kubeContext string, def *unstructured.Unstructured, opts k8s.ReconcileOptions) (*k8s.ReconcileResult, error)
	ScaleFunc     func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts k8s.ScaleOptions) (*k8s.ScaleResult, error)
	RollbackFunc  func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*k8s.RollbackResult, error)
	WaitForFunc   func(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts k8s.WaitOptions) (*k8s.WaitResult, error)

	GetLogsFunc     func(ctx context.Context, kubeContext, namespace, podName, containerName string, opts k8s.LogOptions) (io.ReadCloser, error)
	ExecFunc        func(ctx context.Context, kubeContext, namespace, podName, containerName string, command []string, opts k8s.ExecOptions) (*k8s.ExecResult, error)
	CopyToPodFunc   func(ctx context.Context, kubeContext, namespace, podName, containerName string, opts k8s.CopyOptions) error
	CopyFromPodFunc func(ctx context.Context, kubeContext, namespace, podName, containerName string, opts k8s.CopyOptions) error
	PortForwardFunc func(ctx context.Context, kubeContext, namespace, podName string, ports []string, opts k8s.PortForwardOptions) (*k8s.PortForwardSession, error)

	ListContextsFunc     func(ctx context.Context) ([]k8s.ContextInfo, error)
	SwitchContextFunc    func(ctx context.Context, contextName string) error
	GetAPIResourcesFunc  func(ctx context.Context, kubeContext string, namespacedOnly bool) ([]k8s.APIResourceInfo, error)
	GetClusterHealthFunc func(ctx context.Context, kubeContext string) (*k8s.ClusterHealth, error)
}

// ListContexts implements k8s.ContextManager.
func (m *MockK8sClient) ListContexts(ctx context.Context) ([]k8s.ContextInfo, error) {
	if m.ListContextsFunc != nil {
		return m.ListContextsFunc(ctx)
	}
	return nil, nil
}

// GetCurrentContext implements k8s.ContextManager.
func (m *MockK8sClient) GetCurrentContext(_ context.Context) (*k8s.ContextInfo, error) {
	return &k8s.ContextInfo{Name: "test"}, nil
}

// SwitchContext implements k8s.ContextManager.
func (m *MockK8sClient) SwitchContext(ctx context.Context, contextName string) error {
	if m.SwitchContextFunc != nil {
		return m.SwitchContextFunc(ctx, contextName)
	}
	return nil
}

// Get implements k8s.ResourceManager.
func (m *MockK8sClient) Get(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*unstructured.Unstructured, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	}
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "ConfigMap",
		"metadata":   map[string]interface{}{"name": name, "namespace": namespace},
	}}, nil
}

// List implements k8s.ResourceManager.
func (m *MockK8sClient) List(ctx context.Context, kubeContext, namespace, resourceType, apiGroup string, opts k8s.ListOptions) (*k8s.ListResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, kubeContext, namespace, resourceType, apiGroup, opts)
	}
	return &k8s.ListResult{Items: []*unstructured.Unstructured{}}, nil
}

// Describe implements k8s.ResourceManager.
func (m *MockK8sClient) Describe(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*k8s.ResourceDescription, error) {
	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	}
	obj, _ := m.Get(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	return &k8s.ResourceDescription{Resource: obj}, nil
}

// Create implements k8s.ResourceManager.
func (m *MockK8sClient) Create(ctx context.Context, kubeContext, namespace string, obj *unstructured.Unstructured, dryRun bool) (*unstructured.Unstructured, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, kubeContext, namespace, obj, dryRun)
	}
	return obj, nil
}

// Delete implements k8s.ResourceManager.
func (m *MockK8sClient) Delete(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts k8s.DeleteOptions) (*unstructured.Unstructured, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name, opts)
	}
	return nil, nil
}

// Patch implements k8s.ResourceManager.
func (m *MockK8sClient) Patch(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, patchType types.PatchType, data []byte, dryRun bool) (*unstructured.Unstructured, error) {
	if m.PatchFunc != nil {
		return m.PatchFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name, patchType, data, dryRun)
	}
	return m.Get(ctx, kubeContext, namespace, resourceType, apiGroup, name)
}

// Reconcile implements k8s.ResourceManager.
func (m *MockK8sClient) Reconcile(ctx context.Context, kubeContext string, def *unstructured.Unstructured, opts k8s.ReconcileOptions) (*k8s.ReconcileResult, error) {
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx, kubeContext, def, opts)
	}
	return &k8s.ReconcileResult{Changed: true, Method: k8s.MethodCreate, Result: def.Object}, nil
}

// Scale implements k8s.ResourceManager.
func (m *MockK8sClient) Scale(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts k8s.ScaleOptions) (*k8s.ScaleResult, error) {
	if m.ScaleFunc != nil {
		return m.ScaleFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name, opts)
	}
	return &k8s.ScaleResult{Changed: true}, nil
}

// Rollback implements k8s.ResourceManager.
func (m *MockK8sClient) Rollback(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*k8s.RollbackResult, error) {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name)
	}
	return &k8s.RollbackResult{Changed: true}, nil
}

// WaitFor implements k8s.ResourceManager.
func (m *MockK8sClient) WaitFor(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts k8s.WaitOptions) (*k8s.WaitResult, error) {
	if m.WaitForFunc != nil {
		return m.WaitForFunc(ctx, kubeContext, namespace, resourceType, apiGroup, name, opts)
	}
	return &k8s.WaitResult{Satisfied: true}, nil
}

// Cordon implements k8s.NodeManager.
func (m *MockK8sClient) Cordon(_ context.Context, _, _ string, _ bool) (bool, error) {
	return true, nil
}

// Uncordon implements k8s.NodeManager.
func (m *MockK8sClient) Uncordon(_ context.Context, _, _ string, _ bool) (bool, error) {
	return true, nil
}

// Drain implements k8s.NodeManager.
func (m *MockK8sClient) Drain(_ context.Context, _, _ string, _ k8s.DrainOptions) (*k8s.DrainResult, error) {
	return &k8s.DrainResult{Changed: true, Cordoned: true}, nil
}

// Taint implements k8s.NodeManager.
func (m *MockK8sClient) Taint(_ context.Context, _, _ string, _ []corev1.Taint, _, _ bool) (bool, error) {
	return true, nil
}

// Untaint implements k8s.NodeManager.
func (m *MockK8sClient) Untaint(_ context.Context, _, _ string, _ []corev1.Taint, _ bool) (bool, error) {
	return true, nil
}

// GetLogs implements k8s.PodManager.
func (m *MockK8sClient) GetLogs(ctx context.Context, kubeContext, namespace, podName, containerName string, opts k8s.LogOptions) (io.ReadCloser, error) {
	if m.GetLogsFunc != nil {
		return m.GetLogsFunc(ctx, kubeContext, namespace, podName, containerName, opts)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

// Exec implements k8s.PodManager.
func (m *MockK8sClient) Exec(ctx context.Context, kubeContext, namespace, podName, containerName string, command []string, opts k8s.ExecOptions) (*k8s.ExecResult, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, kubeContext, namespace, podName, containerName, command, opts)
	}
	return &k8s.ExecResult{}, nil
}

// CopyToPod implements k8s.PodManager.
func (m *MockK8sClient) CopyToPod(ctx context.Context, kubeContext, namespace, podName, containerName string, opts k8s.CopyOptions) error {
	if m.CopyToPodFunc != nil {
		return m.CopyToPodFunc(ctx, kubeContext, namespace, podName, containerName, opts)
	}
	return nil
}

// CopyFromPod implements k8s.PodManager.
func (m *MockK8sClient) CopyFromPod(ctx context.Context, kubeContext, namespace, podName, containerName string, opts k8s.CopyOptions) error {
	if m.CopyFromPodFunc != nil {
		return m.CopyFromPodFunc(ctx, kubeContext, namespace, podName, containerName, opts)
	}
	return nil
}

// PortForward implements k8s.PodManager.
func (m *MockK8sClient) PortForward(ctx context.Context, kubeContext, namespace, podName string, ports []string, opts k8s.PortForwardOptions) (*k8s.PortForwardSession, error) {
	if m.PortForwardFunc != nil {
		return m.PortForwardFunc(ctx, kubeContext, namespace, podName, ports, opts)
	}
	return &k8s.PortForwardSession{
		LocalPorts:  []int{8080},
		RemotePorts: []int{80},
		StopChan:    make(chan struct{}),
	}, nil
}

// GetAPIResources implements k8s.ClusterManager.
func (m *MockK8sClient) GetAPIResources(ctx context.Context, kubeContext string, namespacedOnly bool) ([]k8s.APIResourceInfo, error) {
	if m.GetAPIResourcesFunc != nil {
		return m.GetAPIResourcesFunc(ctx, kubeContext, namespacedOnly)
	}
	return nil, nil
}

// GetClusterHealth implements k8s.ClusterManager.
func (m *MockK8sClient) GetClusterHealth(ctx context.Context, kubeContext string) (*k8s.ClusterHealth, error) {
	if m.GetClusterHealthFunc != nil {
		return m.GetClusterHealthFunc(ctx, kubeContext)
	}
	return &k8s.ClusterHealth{Status: "healthy"}, nil
}

// MockLogger implements server.Logger for testing.
type MockLogger struct{}

// Info implements server.Logger.
func (m *MockLogger) Info(_ string, _ ...interface{}) {}

// Debug implements server.Logger.
func (m *MockLogger) Debug(_ string, _ ...interface{}) {}

// Warn implements server.Logger.
func (m *MockLogger) Warn(_ string, _ ...interface{}) {}

// Error implements server.Logger.
func (m *MockLogger) Error(_ string, _ ...interface{}) {}

// With implements server.Logger.
func (m *MockLogger) With(_ ...interface{}) server.Logger {
	return m
}
