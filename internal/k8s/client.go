package k8s

import (
	"context"
	"io"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/portforward"
)

// Client defines the interface for Kubernetes operations.
// It supports multi-context operations by accepting kubeContext parameters
// and provides the full operation surface for the steward tools.
type Client interface {
	// Context Management Operations
	ContextManager

	// Resource Management Operations
	ResourceManager

	// Node Lifecycle Operations
	NodeManager

	// Pod Operations
	PodManager

	// Cluster Operations
	ClusterManager
}

// ContextManager handles kubeconfig context operations.
type ContextManager interface {
	// ListContexts returns all available kubeconfig contexts.
	ListContexts(ctx context.Context) ([]ContextInfo, error)

	// GetCurrentContext returns the currently active context.
	GetCurrentContext(ctx context.Context) (*ContextInfo, error)

	// SwitchContext changes the active kubeconfig context.
	SwitchContext(ctx context.Context, contextName string) error
}

// ResourceManager handles Kubernetes resource operations.
type ResourceManager interface {
	// Get retrieves a specific resource by name and namespace.
	Get(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*unstructured.Unstructured, error)

	// List retrieves resources with selector and pagination support.
	List(ctx context.Context, kubeContext, namespace, resourceType, apiGroup string, opts ListOptions) (*ListResult, error)

	// Describe provides detailed information about a resource including events.
	Describe(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*ResourceDescription, error)

	// Create creates a new resource from the provided object.
	Create(ctx context.Context, kubeContext, namespace string, obj *unstructured.Unstructured, dryRun bool) (*unstructured.Unstructured, error)

	// Delete removes a resource by name and namespace and returns the last
	// observed state of the deleted object.
	Delete(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts DeleteOptions) (*unstructured.Unstructured, error)

	// Patch updates specific fields of a resource.
	Patch(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, patchType types.PatchType, data []byte, dryRun bool) (*unstructured.Unstructured, error)

	// Reconcile drives a resource definition to the desired state and reports
	// what changed. This is the engine behind the apply tool: it decides
	// between create, patch, server-side apply, replace and delete, and
	// optionally blocks until the resource converges.
	Reconcile(ctx context.Context, kubeContext string, def *unstructured.Unstructured, opts ReconcileOptions) (*ReconcileResult, error)

	// Scale changes the number of replicas through the scale subresource.
	Scale(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts ScaleOptions) (*ScaleResult, error)

	// Rollback reverts a Deployment or DaemonSet to its previous revision.
	Rollback(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string) (*RollbackResult, error)

	// WaitFor blocks until the named resources satisfy the wait options.
	WaitFor(ctx context.Context, kubeContext, namespace, resourceType, apiGroup, name string, opts WaitOptions) (*WaitResult, error)
}

// NodeManager handles node lifecycle operations.
type NodeManager interface {
	// Cordon marks a node unschedulable. Returns false when the node was
	// already cordoned.
	Cordon(ctx context.Context, kubeContext, nodeName string, dryRun bool) (bool, error)

	// Uncordon marks a node schedulable again.
	Uncordon(ctx context.Context, kubeContext, nodeName string, dryRun bool) (bool, error)

	// Drain cordons a node and evicts or deletes its pods.
	Drain(ctx context.Context, kubeContext, nodeName string, opts DrainOptions) (*DrainResult, error)

	// Taint adds or updates taints on a node. Returns false when the node
	// already carried the requested taints.
	Taint(ctx context.Context, kubeContext, nodeName string, taints []corev1.Taint, replace, dryRun bool) (bool, error)

	// Untaint removes taints from a node.
	Untaint(ctx context.Context, kubeContext, nodeName string, taints []corev1.Taint, dryRun bool) (bool, error)
}

// PodManager handles pod-specific operations.
type PodManager interface {
	// GetLogs retrieves logs from a pod container.
	GetLogs(ctx context.Context, kubeContext, namespace, podName, containerName string, opts LogOptions) (io.ReadCloser, error)

	// Exec executes a command inside a pod container.
	Exec(ctx context.Context, kubeContext, namespace, podName, containerName string, command []string, opts ExecOptions) (*ExecResult, error)

	// CopyToPod copies a local file or directory into a pod container.
	CopyToPod(ctx context.Context, kubeContext, namespace, podName, containerName string, opts CopyOptions) error

	// CopyFromPod copies a file or directory out of a pod container.
	CopyFromPod(ctx context.Context, kubeContext, namespace, podName, containerName string, opts CopyOptions) error

	// PortForward sets up port forwarding to a pod.
	PortForward(ctx context.Context, kubeContext, namespace, podName string, ports []string, opts PortForwardOptions) (*PortForwardSession, error)
}

// ClusterManager handles cluster-level operations.
type ClusterManager interface {
	// GetAPIResources returns available API resources discovered from the server.
	GetAPIResources(ctx context.Context, kubeContext string, namespacedOnly bool) ([]APIResourceInfo, error)

	// GetClusterHealth returns the health status of the cluster.
	GetClusterHealth(ctx context.Context, kubeContext string) (*ClusterHealth, error)
}

// ContextInfo represents information about a kubeconfig context.
type ContextInfo struct {
	Name      string `json:"name"`
	Cluster   string `json:"cluster"`
	User      string `json:"user"`
	Namespace string `json:"namespace"`
	Current   bool   `json:"current"`
}

// ListOptions provides configuration for list operations.
type ListOptions struct {
	LabelSelector string `json:"labelSelector,omitempty"`
	FieldSelector string `json:"fieldSelector,omitempty"`
	AllNamespaces bool   `json:"allNamespaces,omitempty"`

	// Pagination options
	Limit    int64  `json:"limit,omitempty"`
	Continue string `json:"continue,omitempty"`
}

// ListResult contains a page of listed resources with continuation metadata.
type ListResult struct {
	Items           []*unstructured.Unstructured `json:"items"`
	Continue        string                       `json:"continue,omitempty"`
	RemainingItems  *int64                       `json:"remainingItems,omitempty"`
	ResourceVersion string                       `json:"resourceVersion,omitempty"`
}

// ResourceDescription contains detailed information about a resource.
type ResourceDescription struct {
	Resource *unstructured.Unstructured `json:"resource"`
	Events   []corev1.Event             `json:"events,omitempty"`
}

// ResourceState describes the desired end state of a reconciled resource.
type ResourceState string

const (
	// StatePresent ensures the resource exists and matches the definition.
	StatePresent ResourceState = "present"
	// StateAbsent ensures the resource does not exist.
	StateAbsent ResourceState = "absent"
	// StatePatched patches the resource if it exists but never creates it.
	StatePatched ResourceState = "patched"
)

// Reconcile method names reported in results.
const (
	MethodCreate  = "create"
	MethodPatch   = "patch"
	MethodApply   = "apply"
	MethodReplace = "replace"
	MethodDelete  = "delete"
)

// ServerSideApplyOptions configures server-side apply behavior.
type ServerSideApplyOptions struct {
	FieldManager   string `json:"fieldManager,omitempty"`
	ForceConflicts bool   `json:"forceConflicts,omitempty"`
}

// ReconcileOptions configures a Reconcile call.
type ReconcileOptions struct {
	// State is the desired end state; defaults to StatePresent.
	State ResourceState

	// Apply requests apply semantics instead of the default update (patch)
	// path. When ServerSide is set the apply is performed by the API server.
	Apply      bool
	ServerSide *ServerSideApplyOptions

	// Force replaces the existing object instead of patching it.
	Force bool

	// MergeTypes is the ordered list of patch types tried on update.
	// Defaults to strategic-merge followed by merge.
	MergeTypes []types.PatchType

	// CheckMode validates the operation with a server dry-run instead of
	// persisting it. The returned result reflects what would have changed.
	CheckMode bool

	// Wait blocks until the resource converges after the mutation.
	Wait *WaitOptions

	// DeleteOptions apply when State is StateAbsent.
	DeleteOptions DeleteOptions

	// LabelSelectors gates the operation: a definition not matching all
	// selectors is skipped with changed=false.
	LabelSelectors []string

	// HiddenFields are dotted paths stripped from results and diffs.
	HiddenFields []string
}

// Diff holds the before/after object diff of a reconcile operation.
type Diff struct {
	Before map[string]interface{} `json:"before"`
	After  map[string]interface{} `json:"after"`

	// Unified is a human-readable unified diff of the two objects.
	Unified string `json:"unified,omitempty"`
}

// ReconcileResult reports the outcome of a Reconcile call.
type ReconcileResult struct {
	Changed  bool                   `json:"changed"`
	Method   string                 `json:"method,omitempty"`
	Result   map[string]interface{} `json:"result,omitempty"`
	Diff     *Diff                  `json:"diff,omitempty"`
	Duration time.Duration          `json:"duration,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

// WaitCondition describes a status condition to wait for.
type WaitCondition struct {
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// WaitOptions configures convergence waiting.
type WaitOptions struct {
	Timeout time.Duration `json:"timeout,omitempty"`
	Sleep   time.Duration `json:"sleep,omitempty"`

	// Condition overrides the per-kind readiness predicate.
	Condition *WaitCondition `json:"condition,omitempty"`

	// Absent waits for the resource to disappear instead of become ready.
	Absent bool `json:"absent,omitempty"`

	// LabelSelector widens the wait to all matching resources.
	LabelSelector string `json:"labelSelector,omitempty"`

	// FieldSelector narrows the initial lookup.
	FieldSelector string `json:"fieldSelector,omitempty"`
}

// WaitResult reports the outcome of a wait.
type WaitResult struct {
	Satisfied bool                         `json:"satisfied"`
	Resources []*unstructured.Unstructured `json:"resources,omitempty"`
	Duration  time.Duration                `json:"duration"`
}

// DeleteOptions configures resource deletion.
type DeleteOptions struct {
	GracePeriodSeconds *int64 `json:"gracePeriodSeconds,omitempty"`
	PropagationPolicy  string `json:"propagationPolicy,omitempty"`
	DryRun             bool   `json:"dryRun,omitempty"`
}

// ScaleOptions configures a scale operation.
type ScaleOptions struct {
	Replicas int32 `json:"replicas"`

	// CurrentReplicas, when set, must match the observed replica count or
	// the operation fails without scaling.
	CurrentReplicas *int32 `json:"currentReplicas,omitempty"`

	// ResourceVersion, when set, is used as an optimistic concurrency
	// precondition on the scale subresource.
	ResourceVersion string `json:"resourceVersion,omitempty"`

	CheckMode bool         `json:"checkMode,omitempty"`
	Wait      *WaitOptions `json:"wait,omitempty"`
}

// ScaleResult reports the outcome of a scale operation.
type ScaleResult struct {
	Changed  bool                   `json:"changed"`
	Result   map[string]interface{} `json:"result,omitempty"`
	Duration time.Duration          `json:"duration,omitempty"`
}

// RollbackResult reports the outcome of a rollback operation.
type RollbackResult struct {
	Changed  bool                   `json:"changed"`
	Method   string                 `json:"method,omitempty"`
	Revision int64                  `json:"revision,omitempty"`
	Result   map[string]interface{} `json:"result,omitempty"`
}

// DrainOptions configures node draining.
type DrainOptions struct {
	// Force allows eviction of pods not managed by a controller.
	Force bool `json:"force,omitempty"`

	// IgnoreDaemonsets allows the drain to proceed past DaemonSet pods.
	IgnoreDaemonsets bool `json:"ignoreDaemonsets,omitempty"`

	// DeleteEmptydirData allows eviction of pods using emptyDir volumes.
	DeleteEmptydirData bool `json:"deleteEmptydirData,omitempty"`

	// DisableEviction forces drain to use delete rather than the eviction API.
	DisableEviction bool `json:"disableEviction,omitempty"`

	// PodSelector restricts the drain to pods matching the label selector.
	PodSelector string `json:"podSelector,omitempty"`

	GracePeriodSeconds *int64 `json:"gracePeriodSeconds,omitempty"`

	// WaitTimeout bounds the post-eviction deletion wait. Zero skips the wait.
	WaitTimeout time.Duration `json:"waitTimeout,omitempty"`
	WaitSleep   time.Duration `json:"waitSleep,omitempty"`

	DryRun bool `json:"dryRun,omitempty"`
}

// DrainResult reports the outcome of a node drain.
type DrainResult struct {
	Changed  bool     `json:"changed"`
	Cordoned bool     `json:"cordoned"`
	Evicted  []string `json:"evicted,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// LogOptions configures log retrieval.
type LogOptions struct {
	Follow     bool       `json:"follow,omitempty"`
	Previous   bool       `json:"previous,omitempty"`
	Timestamps bool       `json:"timestamps,omitempty"`
	SinceTime  *time.Time `json:"sinceTime,omitempty"`
	TailLines  *int64     `json:"tailLines,omitempty"`

	// LabelSelector resolves the pod to read from when podName is empty.
	LabelSelector string `json:"labelSelector,omitempty"`
}

// ExecOptions configures command execution in pods.
type ExecOptions struct {
	Stdin  io.Reader `json:"-"`
	Stdout io.Writer `json:"-"`
	Stderr io.Writer `json:"-"`
	TTY    bool      `json:"tty,omitempty"`
}

// ExecResult contains the result of command execution. A non-zero exit
// code is reported here, not as an error.
type ExecResult struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// CopyOptions configures file transfer between the local filesystem and a
// pod container.
type CopyOptions struct {
	LocalPath  string `json:"localPath,omitempty"`
	RemotePath string `json:"remotePath"`

	// Content, when set on a copy-to operation, is written to RemotePath
	// instead of reading LocalPath.
	Content string `json:"content,omitempty"`

	// NoPreserve skips ownership and permission preservation.
	NoPreserve bool `json:"noPreserve,omitempty"`
}

// PortForwardOptions configures port forwarding.
type PortForwardOptions struct {
	Stdout io.Writer `json:"-"`
	Stderr io.Writer `json:"-"`
}

// PortForwardSession represents an active port forwarding session.
type PortForwardSession struct {
	LocalPorts  []int                      `json:"localPorts"`
	RemotePorts []int                      `json:"remotePorts"`
	StopChan    chan struct{}              `json:"-"`
	ReadyChan   chan struct{}              `json:"-"`
	Forwarder   *portforward.PortForwarder `json:"-"`
}

// APIResourceInfo represents information about an API resource.
type APIResourceInfo struct {
	Name         string   `json:"name"`
	SingularName string   `json:"singularName"`
	Namespaced   bool     `json:"namespaced"`
	Kind         string   `json:"kind"`
	Verbs        []string `json:"verbs"`
	Group        string   `json:"group"`
	Version      string   `json:"version"`
}

// ClusterHealth represents the health status of a Kubernetes cluster.
type ClusterHealth struct {
	Status     string            `json:"status"`
	Components []ComponentHealth `json:"components"`
	Nodes      []NodeHealth      `json:"nodes"`
}

// ComponentHealth represents the health of a cluster component.
type ComponentHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NodeHealth represents the health of a cluster node.
type NodeHealth struct {
	Name       string                 `json:"name"`
	Ready      bool                   `json:"ready"`
	Conditions []corev1.NodeCondition `json:"conditions"`
}
