package k8s

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// kubernetesClient implements the Client interface using client-go.
type kubernetesClient struct {
	config *ClientConfig

	// Per-context client caches. Building a clientset involves parsing the
	// kubeconfig and setting up transports, so instances are reused.
	mu               sync.RWMutex
	clientsets       map[string]kubernetes.Interface
	dynamicClients   map[string]dynamic.Interface
	discoveryClients map[string]discovery.DiscoveryInterface
	restConfigs      map[string]*rest.Config

	// Kubeconfig management
	kubeconfigData *clientcmdapi.Config
	currentContext string

	// Safety settings
	restrictedNamespaces []string

	// Performance settings
	qpsLimit   float32
	burstLimit int
	timeout    time.Duration
}

// ClientConfig holds configuration for the Kubernetes client.
type ClientConfig struct {
	// Kubeconfig settings
	KubeconfigPath string
	Context        string

	// InCluster uses the pod service account instead of a kubeconfig.
	InCluster bool

	// RestrictedNamespaces lists namespaces no operation may touch.
	RestrictedNamespaces []string

	// Performance settings
	QPSLimit   float32
	BurstLimit int
	Timeout    time.Duration

	// Logging
	Logger Logger
}

// Logger is the minimal logging interface the client depends on.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NewClient creates a new Kubernetes client with the given configuration.
func NewClient(config *ClientConfig) (*kubernetesClient, error) {
	if config == nil {
		return nil, fmt.Errorf("client configuration is required")
	}

	if config.QPSLimit == 0 {
		config.QPSLimit = DefaultQPSLimit
	}
	if config.BurstLimit == 0 {
		config.BurstLimit = DefaultBurstLimit
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	client := &kubernetesClient{
		config:               config,
		clientsets:           make(map[string]kubernetes.Interface),
		dynamicClients:       make(map[string]dynamic.Interface),
		discoveryClients:     make(map[string]discovery.DiscoveryInterface),
		restConfigs:          make(map[string]*rest.Config),
		restrictedNamespaces: config.RestrictedNamespaces,
		qpsLimit:             config.QPSLimit,
		burstLimit:           config.BurstLimit,
		timeout:              config.Timeout,
	}

	if config.InCluster {
		client.currentContext = InClusterContext

		if err := client.validateInClusterEnvironment(); err != nil {
			return nil, fmt.Errorf("in-cluster authentication not available: %w", err)
		}

		if config.Logger != nil {
			config.Logger.Info("Using in-cluster authentication")
		}
	} else {
		if err := client.loadKubeconfig(); err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}

		if config.Context != "" {
			client.currentContext = config.Context
		} else {
			client.currentContext = client.kubeconfigData.CurrentContext
		}

		if _, exists := client.kubeconfigData.Contexts[client.currentContext]; !exists && client.currentContext != "" {
			return nil, fmt.Errorf("context %q does not exist in kubeconfig", client.currentContext)
		}

		if config.Logger != nil {
			config.Logger.Info("Using kubeconfig authentication", "context", client.currentContext)
		}
	}

	return client, nil
}

// validateInClusterEnvironment checks that the service account token and CA
// certificate are mounted.
func (c *kubernetesClient) validateInClusterEnvironment() error {
	for _, path := range []string{DefaultTokenPath, DefaultCACertPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("missing %s: %w", path, err)
		}
	}
	return nil
}

// loadKubeconfig reads and parses the kubeconfig file.
func (c *kubernetesClient) loadKubeconfig() error {
	kubeconfigPath := c.config.KubeconfigPath
	if kubeconfigPath == "" {
		if envPath := os.Getenv("KUBECONFIG"); envPath != "" {
			kubeconfigPath = envPath
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to determine home directory: %w", err)
			}
			kubeconfigPath = filepath.Join(home, ".kube", "config")
		}
	}

	kubeconfigData, err := clientcmd.LoadFromFile(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig from %s: %w", kubeconfigPath, err)
	}

	c.kubeconfigData = kubeconfigData
	return nil
}

// resolveContext maps an empty context name to the active context.
func (c *kubernetesClient) resolveContext(contextName string) string {
	if contextName == "" {
		return c.currentContext
	}
	return contextName
}

// getRestConfig returns a rest.Config for the given context, building and
// caching it on first use.
func (c *kubernetesClient) getRestConfig(contextName string) (*rest.Config, error) {
	contextName = c.resolveContext(contextName)

	c.mu.RLock()
	if config, ok := c.restConfigs[contextName]; ok {
		c.mu.RUnlock()
		return config, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double check after acquiring the write lock.
	if config, ok := c.restConfigs[contextName]; ok {
		return config, nil
	}

	var config *rest.Config
	var err error

	if c.config.InCluster {
		if contextName != InClusterContext {
			return nil, fmt.Errorf("context switching is not available in in-cluster mode")
		}
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to build in-cluster config: %w", err)
		}
	} else {
		overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
		clientConfig := clientcmd.NewDefaultClientConfig(*c.kubeconfigData, overrides)
		config, err = clientConfig.ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to build rest config for context %q: %w", contextName, err)
		}
	}

	config.QPS = c.qpsLimit
	config.Burst = c.burstLimit
	config.Timeout = c.timeout

	c.restConfigs[contextName] = config
	return config, nil
}

// getClientset returns a typed clientset for the given context.
func (c *kubernetesClient) getClientset(contextName string) (kubernetes.Interface, error) {
	contextName = c.resolveContext(contextName)

	c.mu.RLock()
	if clientset, ok := c.clientsets[contextName]; ok {
		c.mu.RUnlock()
		return clientset, nil
	}
	c.mu.RUnlock()

	config, err := c.getRestConfig(contextName)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if clientset, ok := c.clientsets[contextName]; ok {
		return clientset, nil
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset for context %q: %w", contextName, err)
	}

	c.clientsets[contextName] = clientset
	return clientset, nil
}

// getDynamicClient returns a dynamic client for the given context.
func (c *kubernetesClient) getDynamicClient(contextName string) (dynamic.Interface, error) {
	contextName = c.resolveContext(contextName)

	c.mu.RLock()
	if client, ok := c.dynamicClients[contextName]; ok {
		c.mu.RUnlock()
		return client, nil
	}
	c.mu.RUnlock()

	config, err := c.getRestConfig(contextName)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.dynamicClients[contextName]; ok {
		return client, nil
	}

	client, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client for context %q: %w", contextName, err)
	}

	c.dynamicClients[contextName] = client
	return client, nil
}

// getDiscoveryClient returns a discovery client for the given context.
func (c *kubernetesClient) getDiscoveryClient(contextName string) (discovery.DiscoveryInterface, error) {
	contextName = c.resolveContext(contextName)

	c.mu.RLock()
	if client, ok := c.discoveryClients[contextName]; ok {
		c.mu.RUnlock()
		return client, nil
	}
	c.mu.RUnlock()

	config, err := c.getRestConfig(contextName)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.discoveryClients[contextName]; ok {
		return client, nil
	}

	client, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client for context %q: %w", contextName, err)
	}

	c.discoveryClients[contextName] = client
	return client, nil
}

// isNamespaceRestricted rejects operations against configured restricted
// namespaces.
func (c *kubernetesClient) isNamespaceRestricted(namespace string) error {
	for _, restricted := range c.restrictedNamespaces {
		if namespace == restricted {
			return fmt.Errorf("namespace %q is restricted by server configuration", namespace)
		}
	}
	return nil
}

// logOperation emits a debug log for an operation when a logger is configured.
func (c *kubernetesClient) logOperation(operation, contextName, namespace, resourceType, name string) {
	if c.config.Logger == nil {
		return
	}
	c.config.Logger.Debug("kubernetes operation",
		"operation", operation,
		"context", c.resolveContext(contextName),
		"namespace", namespace,
		"resource_type", resourceType,
		"resource_name", name,
	)
}

// ListContexts returns all available kubeconfig contexts.
func (c *kubernetesClient) ListContexts(ctx context.Context) ([]ContextInfo, error) {
	if c.config.InCluster {
		return []ContextInfo{{
			Name:      InClusterContext,
			Cluster:   InClusterContext,
			Namespace: c.getInClusterNamespace(),
			Current:   true,
		}}, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	contexts := make([]ContextInfo, 0, len(c.kubeconfigData.Contexts))
	for name, kubeContext := range c.kubeconfigData.Contexts {
		contexts = append(contexts, ContextInfo{
			Name:      name,
			Cluster:   kubeContext.Cluster,
			User:      kubeContext.AuthInfo,
			Namespace: kubeContext.Namespace,
			Current:   name == c.currentContext,
		})
	}
	return contexts, nil
}

// GetCurrentContext returns the currently active context.
func (c *kubernetesClient) GetCurrentContext(ctx context.Context) (*ContextInfo, error) {
	contexts, err := c.ListContexts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range contexts {
		if contexts[i].Current {
			return &contexts[i], nil
		}
	}
	return nil, fmt.Errorf("no current context is set")
}

// SwitchContext changes the active kubeconfig context.
func (c *kubernetesClient) SwitchContext(ctx context.Context, contextName string) error {
	if c.config.InCluster {
		return fmt.Errorf("context switching is not available in in-cluster mode")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.kubeconfigData.Contexts[contextName]; !exists {
		return fmt.Errorf("context %q does not exist in kubeconfig", contextName)
	}

	c.currentContext = contextName
	return nil
}

// getInClusterNamespace reads the namespace the pod runs in.
func (c *kubernetesClient) getInClusterNamespace() string {
	data, err := os.ReadFile(DefaultNamespacePath)
	if err != nil {
		return DefaultNamespace
	}
	return string(data)
}
