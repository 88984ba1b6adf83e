package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// Kubernetes client settings
	Kubeconfig  string
	KubeContext string
	InCluster   bool
	QPSLimit    float32
	BurstLimit  int
	Timeout     time.Duration

	// Safety settings
	NonDestructiveMode   bool
	DryRun               bool
	AllowedOperations    []string
	RestrictedNamespaces []string
	DefaultNamespace     string

	// Helm settings
	HelmStorageDriver string
	HelmBinary        string

	// Logging
	DebugMode bool
	LogFormat string

	// Metrics server settings
	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated Prometheus metrics listener.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// Validate checks the serve configuration for values that would fail at
// startup.
func (c *ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s, %s)",
			c.Transport, transportStdio, transportSSE, transportStreamableHTTP)
	}

	switch c.HelmStorageDriver {
	case "secret", "configmap", "memory":
	default:
		return fmt.Errorf("unsupported helm storage driver: %s (supported: secret, configmap, memory)", c.HelmStorageDriver)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s (supported: json, text)", c.LogFormat)
	}

	if c.QPSLimit < 0 {
		return fmt.Errorf("qps-limit must not be negative")
	}
	if c.BurstLimit < 0 {
		return fmt.Errorf("burst-limit must not be negative")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics-addr must be set when the metrics server is enabled")
	}

	return nil
}

// loadEnvIfEmpty loads an environment variable into a string pointer if
// it's empty.
func loadEnvIfEmpty(target *string, envKey string) {
	if *target == "" {
		*target = os.Getenv(envKey)
	}
}

// envBool reports whether an environment variable is set to a true value.
func envBool(envKey string) bool {
	value, err := strconv.ParseBool(os.Getenv(envKey))
	return err == nil && value
}
