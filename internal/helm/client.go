// Package helm wraps the Helm SDK action package behind an idempotent,
// result-reporting release API.
package helm

import (
	"fmt"
	"time"

	"helm.sh/helm/v4/pkg/action"
	"helm.sh/helm/v4/pkg/cli"
)

// Logger is the minimal logging interface the client depends on.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Client executes Helm operations against a single namespace and context.
type Client struct {
	settings      *cli.EnvSettings
	config        *action.Configuration
	timeout       time.Duration
	namespace     string
	kubeconfig    string
	kubeContext   string
	storageDriver string
	logger        Logger
}

// Option is a functional option for configuring the Helm client.
type Option func(*Client)

// WithNamespace sets the Kubernetes namespace for Helm operations.
func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.namespace = namespace
	}
}

// WithKubeconfig sets the path to the kubeconfig file.
func WithKubeconfig(kubeconfig string) Option {
	return func(c *Client) {
		c.kubeconfig = kubeconfig
	}
}

// WithKubeContext selects the kubeconfig context to operate against.
func WithKubeContext(kubeContext string) Option {
	return func(c *Client) {
		c.kubeContext = kubeContext
	}
}

// WithStorageDriver sets the Helm storage driver (secret, configmap, or memory).
func WithStorageDriver(driver string) Option {
	return func(c *Client) {
		c.storageDriver = driver
	}
}

// WithTimeout sets the default timeout for Helm operations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient initializes the Helm action configuration. The storage driver
// defaults to "secret" and the operation timeout to 5 minutes.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		storageDriver: "secret",
		timeout:       5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}

	settings := cli.New()
	if c.kubeconfig != "" {
		settings.KubeConfig = c.kubeconfig
	}
	if c.kubeContext != "" {
		settings.KubeContext = c.kubeContext
	}
	if c.namespace != "" {
		settings.SetNamespace(c.namespace)
	}

	validDrivers := map[string]bool{"secret": true, "configmap": true, "memory": true}
	if !validDrivers[c.storageDriver] {
		return nil, fmt.Errorf("invalid storage driver %q: must be one of 'secret', 'configmap', or 'memory'", c.storageDriver)
	}

	c.config = new(action.Configuration)
	if err := c.config.Init(settings.RESTClientGetter(), settings.Namespace(), c.storageDriver); err != nil {
		return nil, fmt.Errorf("failed to initialize Helm configuration: %w", err)
	}
	c.settings = settings

	return c, nil
}

// Namespace returns the namespace the client operates in.
func (c *Client) Namespace() string {
	return c.settings.Namespace()
}

func (c *Client) debugf(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
