package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/helm"
	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/k8s"
	"github.com/kubesteward/kubesteward/internal/logging"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/tools/cluster"
	helmtools "github.com/kubesteward/kubesteward/internal/tools/helm"
	"github.com/kubesteward/kubesteward/internal/tools/kubecontext"
	"github.com/kubesteward/kubesteward/internal/tools/kustomize"
	"github.com/kubesteward/kubesteward/internal/tools/node"
	"github.com/kubesteward/kubesteward/internal/tools/pod"
	"github.com/kubesteward/kubesteward/internal/tools/resource"
)

// shutdownTimeout bounds graceful shutdown of HTTP transports.
const shutdownTimeout = 30 * time.Second

// newServeCmd creates the Cobra command for starting the MCP server.
func newServeCmd() *cobra.Command {
	config := ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kubesteward MCP server",
		Long: `Start the kubesteward MCP server to provide idempotent Kubernetes
and Helm tools via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events over HTTP
  - streamable-http: Streamable HTTP transport

Authentication modes:
  - Kubeconfig (default): Uses standard kubeconfig file authentication
  - In-cluster: Uses the service account token when running inside a pod

Safety:
  Non-destructive mode is enabled by default; mutating tools are rejected
  unless listed in --allowed-operations or --dry-run is set. Namespaces in
  --restricted-namespaces can never be modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Env fallbacks apply only to values not set via flags.
			loadEnvIfEmpty(&config.Kubeconfig, "KUBECONFIG")
			if !cmd.Flags().Changed("metrics-server") && envBool("METRICS_SERVER_ENABLED") {
				config.Metrics.Enabled = true
			}
			if !cmd.Flags().Changed("metrics-addr") {
				loadEnvIfEmpty(&config.Metrics.Addr, "METRICS_SERVER_ADDR")
			}

			if err := config.Validate(); err != nil {
				return err
			}
			return runServe(config)
		},
	}

	cmd.Flags().BoolVar(&config.NonDestructiveMode, "non-destructive", true, "Reject mutating operations unless explicitly allowed")
	cmd.Flags().BoolVar(&config.DryRun, "dry-run", false, "Validate mutating operations server-side without persisting them")
	cmd.Flags().StringSliceVar(&config.AllowedOperations, "allowed-operations", nil, "Operations permitted in non-destructive mode (in addition to get, list, describe)")
	cmd.Flags().StringSliceVar(&config.RestrictedNamespaces, "restricted-namespaces", []string{"kube-system", "kube-public"}, "Namespaces no mutating operation may touch")
	cmd.Flags().StringVar(&config.DefaultNamespace, "namespace", "default", "Default namespace for namespaced operations")

	cmd.Flags().StringVar(&config.Kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (defaults to KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVar(&config.KubeContext, "kube-context", "", "Default kubeconfig context (defaults to the current context)")
	cmd.Flags().BoolVar(&config.InCluster, "in-cluster", false, "Use in-cluster authentication (service account token) instead of kubeconfig")
	cmd.Flags().Float32Var(&config.QPSLimit, "qps-limit", 20.0, "QPS limit for Kubernetes API calls")
	cmd.Flags().IntVar(&config.BurstLimit, "burst-limit", 30, "Burst limit for Kubernetes API calls")
	cmd.Flags().DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout for Kubernetes API calls")

	cmd.Flags().StringVar(&config.HelmStorageDriver, "helm-storage-driver", "secret", "Helm release storage driver: secret, configmap, or memory")
	cmd.Flags().StringVar(&config.HelmBinary, "helm-binary", "helm", "Helm executable used for plugin management and chart inflation")

	cmd.Flags().BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&config.LogFormat, "log-format", "json", "Log output format: json or text")

	// Transport flags
	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for sse and streamable-http transports)")
	cmd.Flags().StringVar(&config.SSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.MessageEndpoint, "message-endpoint", "/message", "Message endpoint path (for sse transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")

	// Metrics server flags
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "metrics-server", false, "Serve Prometheus metrics on a dedicated listener (can also be set via METRICS_SERVER_ENABLED)")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (can also be set via METRICS_SERVER_ADDR)")

	return cmd
}

// newLogger builds the process-wide slog logger. Logs always go to stderr
// so the stdio transport keeps stdout free for MCP traffic.
func newLogger(config ServeConfig) *slog.Logger {
	level := slog.LevelInfo
	if config.DebugMode {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if config.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// runServe contains the main server logic with support for multiple
// transports.
func runServe(config ServeConfig) error {
	slogger := newLogger(config)
	slog.SetDefault(slogger)
	logger := logging.NewSlogAdapter(slogger)

	k8sClient, err := k8s.NewClient(&k8s.ClientConfig{
		KubeconfigPath:       config.Kubeconfig,
		Context:              config.KubeContext,
		InCluster:            config.InCluster,
		RestrictedNamespaces: config.RestrictedNamespaces,
		QPSLimit:             config.QPSLimit,
		BurstLimit:           config.BurstLimit,
		Timeout:              config.Timeout,
		Logger:               logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	// Graceful shutdown on SIGINT and SIGTERM.
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			slogger.Error("error during instrumentation shutdown", "error", shutdownErr)
		}
	}()

	if instrumentationProvider.Enabled() {
		slogger.Info("instrumentation enabled",
			"metrics_exporter", instrumentationConfig.MetricsExporter,
			"tracing_exporter", instrumentationConfig.TracingExporter)
	}

	helmFactory := func(kubeContext, namespace string) (*helm.Client, error) {
		if kubeContext == "" {
			kubeContext = config.KubeContext
		}
		opts := []helm.Option{
			helm.WithNamespace(namespace),
			helm.WithStorageDriver(config.HelmStorageDriver),
			helm.WithTimeout(config.Timeout),
			helm.WithLogger(logger),
		}
		if config.Kubeconfig != "" {
			opts = append(opts, helm.WithKubeconfig(config.Kubeconfig))
		}
		if kubeContext != "" {
			opts = append(opts, helm.WithKubeContext(kubeContext))
		}
		return helm.NewClient(opts...)
	}

	serverContextOptions := []server.Option{
		server.WithK8sClient(k8sClient),
		server.WithLogger(logger),
		server.WithInstrumentationProvider(instrumentationProvider),
		server.WithHelmFactory(helmFactory),
		server.WithHelmPluginManager(helm.NewPluginManager(config.HelmBinary)),
		server.WithNonDestructiveMode(config.NonDestructiveMode),
		server.WithDryRun(config.DryRun),
		server.WithDefaultNamespace(config.DefaultNamespace),
		server.WithRestrictedNamespaces(config.RestrictedNamespaces),
	}
	if len(config.AllowedOperations) > 0 {
		allowed := append([]string{"get", "list", "describe"}, config.AllowedOperations...)
		serverContextOptions = append(serverContextOptions, server.WithAllowedOperations(allowed))
	}
	if config.InCluster {
		serverContextOptions = append(serverContextOptions, server.WithInCluster(true))
	}
	if config.DebugMode {
		serverContextOptions = append(serverContextOptions, server.WithLogLevel("debug"))
	}

	serverContext, err := server.NewServerContext(shutdownCtx, serverContextOptions...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			slogger.Error("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("kubesteward", rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerTools(mcpSrv, serverContext); err != nil {
		return err
	}

	switch config.Transport {
	case transportStdio:
		// No startup message for stdio mode; stdout carries MCP traffic.
		return runStdioServer(mcpSrv)
	case transportSSE:
		return runSSEServer(mcpSrv, config, shutdownCtx, instrumentationProvider)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(mcpSrv, config, shutdownCtx, instrumentationProvider, serverContext)
	default:
		return fmt.Errorf("unsupported transport type: %s", config.Transport)
	}
}

// registerTools wires every tool category into the MCP server.
func registerTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := resource.RegisterResourceTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register resource tools: %w", err)
	}
	if err := node.RegisterNodeTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register node tools: %w", err)
	}
	if err := pod.RegisterPodTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register pod tools: %w", err)
	}
	if err := kubecontext.RegisterContextTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register context tools: %w", err)
	}
	if err := cluster.RegisterClusterTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register cluster tools: %w", err)
	}
	if err := helmtools.RegisterHelmTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register helm tools: %w", err)
	}
	if err := kustomize.RegisterKustomizeTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register kustomize tools: %w", err)
	}
	return nil
}
