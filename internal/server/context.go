package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kubesteward/kubesteward/internal/helm"
	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/logging"
)

// HelmFactory builds a Helm client scoped to a kubeconfig context and
// namespace. Helm action configurations are namespace-bound, so tool
// handlers request a fresh client per call instead of sharing one.
type HelmFactory func(kubeContext, namespace string) (*helm.Client, error)

// ServerContext encapsulates all dependencies needed by the MCP server
// and provides a clean abstraction for dependency injection and lifecycle
// management.
type ServerContext struct {
	// Core dependencies
	k8sClient   k8s.Client
	helmFactory HelmFactory
	helmPlugins *helm.PluginManager
	logger      Logger
	config      *Config

	// Observability
	instrumentationProvider *instrumentation.Provider
	metrics                 *Metrics

	// Context management
	ctx    context.Context
	cancel context.CancelFunc

	// Lifecycle management
	mu       sync.RWMutex
	shutdown bool

	// Active session tracking for cleanup during shutdown
	activeSessions map[string]*k8s.PortForwardSession
	sessionsMu     sync.RWMutex
}

// Metrics tracks coarse operational counters for monitoring. The
// OpenTelemetry provider carries the real metric pipeline; these counters
// back the health endpoint and tests without requiring an exporter.
type Metrics struct {
	ToolCalls        int64 // Tool invocations handled
	ToolErrors       int64 // Tool invocations that returned an error
	MutationsBlocked int64 // Mutating calls denied by non-destructive mode

	mu sync.RWMutex
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncrementToolCalls increments the tool invocation counter.
func (m *Metrics) IncrementToolCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolCalls++
}

// IncrementToolErrors increments the failed invocation counter.
func (m *Metrics) IncrementToolErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolErrors++
}

// IncrementMutationsBlocked increments the denied mutation counter.
func (m *Metrics) IncrementMutationsBlocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MutationsBlocked++
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() (calls, errors, blocked int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ToolCalls, m.ToolErrors, m.MutationsBlocked
}

// NewServerContext creates a new ServerContext with default values.
// Use the provided functional options to customize the context.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:            serverCtx,
		cancel:         cancel,
		config:         NewDefaultConfig(),
		logger:         NewDefaultLogger(),
		activeSessions: make(map[string]*k8s.PortForwardSession),
		metrics:        NewMetrics(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// K8sClient returns the Kubernetes client interface.
func (sc *ServerContext) K8sClient() k8s.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.k8sClient
}

// HelmClient returns a Helm client scoped to the given kubeconfig context
// and namespace.
func (sc *ServerContext) HelmClient(kubeContext, namespace string) (*helm.Client, error) {
	sc.mu.RLock()
	factory := sc.helmFactory
	sc.mu.RUnlock()

	if factory == nil {
		return nil, ErrMissingHelmFactory
	}
	return factory(kubeContext, namespace)
}

// HelmPlugins returns the helm plugin manager.
func (sc *ServerContext) HelmPlugins() *helm.PluginManager {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.helmPlugins
}

// Metrics returns the metrics tracker.
func (sc *ServerContext) Metrics() *Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// InstrumentationProvider returns the OpenTelemetry provider, or nil when
// instrumentation is disabled.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// RecordK8sOperation forwards Kubernetes operation metrics to the
// instrumentation provider. A disabled provider makes this a no-op.
func (sc *ServerContext) RecordK8sOperation(ctx context.Context, operation, resourceType, namespace, status string, duration time.Duration) {
	if p := sc.InstrumentationProvider(); p.Enabled() {
		p.Metrics().RecordK8sOperation(ctx, operation, resourceType, namespace, status, duration)
	}
}

// RecordHelmOperation forwards Helm operation metrics to the
// instrumentation provider. A disabled provider makes this a no-op.
func (sc *ServerContext) RecordHelmOperation(ctx context.Context, operation, namespace, status string, duration time.Duration) {
	if p := sc.InstrumentationProvider(); p.Enabled() {
		p.Metrics().RecordHelmOperation(ctx, operation, namespace, status, duration)
	}
}

// Logger returns the logger interface.
func (sc *ServerContext) Logger() Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// InClusterMode reports whether the server authenticates with the
// service account of the pod it runs in.
func (sc *ServerContext) InClusterMode() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config != nil && sc.config.InCluster
}

// RegisterPortForwardSession registers an active port forwarding session
// for cleanup tracking.
func (sc *ServerContext) RegisterPortForwardSession(sessionID string, session *k8s.PortForwardSession) {
	sc.sessionsMu.Lock()
	defer sc.sessionsMu.Unlock()

	if sc.activeSessions != nil {
		sc.activeSessions[sessionID] = session
		sc.logger.Debug("Registered port forward session", "sessionID", sessionID)
	}
}

// UnregisterPortForwardSession removes a port forwarding session from
// tracking.
func (sc *ServerContext) UnregisterPortForwardSession(sessionID string) {
	sc.sessionsMu.Lock()
	defer sc.sessionsMu.Unlock()

	if sc.activeSessions != nil {
		delete(sc.activeSessions, sessionID)
		sc.logger.Debug("Unregistered port forward session", "sessionID", sessionID)
	}
}

// GetActiveSessionCount returns the number of active port forwarding
// sessions.
func (sc *ServerContext) GetActiveSessionCount() int {
	sc.sessionsMu.RLock()
	defer sc.sessionsMu.RUnlock()
	return len(sc.activeSessions)
}

// GetActiveSessions returns a copy of all active port forwarding sessions.
func (sc *ServerContext) GetActiveSessions() map[string]*k8s.PortForwardSession {
	sc.sessionsMu.RLock()
	defer sc.sessionsMu.RUnlock()

	sessions := make(map[string]*k8s.PortForwardSession, len(sc.activeSessions))
	for id, session := range sc.activeSessions {
		sessions[id] = session
	}
	return sessions
}

// StopPortForwardSession stops a specific port forwarding session by ID.
func (sc *ServerContext) StopPortForwardSession(sessionID string) error {
	sc.sessionsMu.Lock()
	defer sc.sessionsMu.Unlock()

	session, exists := sc.activeSessions[sessionID]
	if !exists {
		return fmt.Errorf("session %s not found", sessionID)
	}

	signalStop(session)
	delete(sc.activeSessions, sessionID)
	sc.logger.Info("Port forward session stopped", "sessionID", sessionID)
	return nil
}

// StopAllPortForwardSessions stops all active port forwarding sessions and
// returns the number stopped.
func (sc *ServerContext) StopAllPortForwardSessions() int {
	sc.sessionsMu.Lock()
	defer sc.sessionsMu.Unlock()

	count := len(sc.activeSessions)
	if count == 0 {
		return 0
	}

	for sessionID, session := range sc.activeSessions {
		sc.logger.Debug("Stopping port forward session", "sessionID", sessionID)
		signalStop(session)
	}

	sc.activeSessions = make(map[string]*k8s.PortForwardSession)
	sc.logger.Info("All port forwarding sessions stopped", "count", count)
	return count
}

// signalStop signals a session's stop channel without blocking if the
// channel is already closed or full.
func signalStop(session *k8s.PortForwardSession) {
	if session == nil || session.StopChan == nil {
		return
	}
	select {
	case session.StopChan <- struct{}{}:
	default:
	}
}

// Shutdown gracefully shuts down the server context. This cancels the
// context and releases any resources.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("Shutting down server context")

	sc.cleanupPortForwardSessions()

	if sc.cancel != nil {
		sc.cancel()
	}

	sc.shutdown = true

	sc.logger.Info("Server context shutdown complete")
	return nil
}

// cleanupPortForwardSessions stops all active port forwarding sessions.
func (sc *ServerContext) cleanupPortForwardSessions() {
	sc.sessionsMu.Lock()
	defer sc.sessionsMu.Unlock()

	if len(sc.activeSessions) == 0 {
		return
	}

	sc.logger.Info("Cleaning up active port forwarding sessions", "count", len(sc.activeSessions))

	for sessionID, session := range sc.activeSessions {
		sc.logger.Debug("Stopping port forward session", "sessionID", sessionID)
		signalStop(session)
	}

	sc.activeSessions = make(map[string]*k8s.PortForwardSession)
}

// IsShutdown returns true if the server context has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are set.
func (sc *ServerContext) validate() error {
	if sc.k8sClient == nil {
		return ErrMissingK8sClient
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Logger defines the interface for logging operations. It is an alias
// for logging.Logger so adapters such as *logging.SlogAdapter satisfy
// it directly.
type Logger = logging.Logger

// Config holds the server configuration.
type Config struct {
	// Server settings
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// Kubernetes settings
	DefaultNamespace string `json:"defaultNamespace"`
	KubeConfigPath   string `json:"kubeConfigPath"`
	DefaultContext   string `json:"defaultContext"`
	InCluster        bool   `json:"inCluster"`

	// Safety settings
	NonDestructiveMode bool     `json:"nonDestructiveMode"`
	DryRun             bool     `json:"dryRun"`
	AllowedOperations  []string `json:"allowedOperations"`

	// Logging settings
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`

	// Security settings
	RestrictedNamespaces []string `json:"restrictedNamespaces"`
}

// NewDefaultConfig creates a configuration with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:           "kubesteward",
		Version:              "0.1.0",
		DefaultNamespace:     "default",
		NonDestructiveMode:   true,
		DryRun:               false,
		AllowedOperations:    []string{"get", "list", "describe"},
		LogLevel:             "info",
		LogFormat:            "json",
		RestrictedNamespaces: []string{"kube-system", "kube-public"},
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if c.AllowedOperations != nil {
		clone.AllowedOperations = make([]string, len(c.AllowedOperations))
		copy(clone.AllowedOperations, c.AllowedOperations)
	}

	if c.RestrictedNamespaces != nil {
		clone.RestrictedNamespaces = make([]string, len(c.RestrictedNamespaces))
		copy(clone.RestrictedNamespaces, c.RestrictedNamespaces)
	}

	return &clone
}
