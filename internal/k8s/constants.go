package k8s

import "time"

const (
	// Service account paths - default Kubernetes in-cluster locations
	DefaultServiceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount"
	DefaultTokenPath          = DefaultServiceAccountPath + "/token"
	DefaultCACertPath         = DefaultServiceAccountPath + "/ca.crt"
	DefaultNamespacePath      = DefaultServiceAccountPath + "/namespace"

	// Default performance settings
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30
	DefaultTimeout    = 30 * time.Second

	// Default wait settings for convergence loops
	DefaultWaitTimeout = 120 * time.Second
	DefaultWaitSleep   = 5 * time.Second

	// DefaultFieldManager identifies this process in server-side apply
	// managedFields entries.
	DefaultFieldManager = "kubesteward"

	// DefaultNamespace is used when a namespaced operation does not
	// specify one, matching kubectl behavior.
	DefaultNamespace = "default"

	// InClusterContext is the pseudo context name used in in-cluster mode.
	InClusterContext = "in-cluster"
)
