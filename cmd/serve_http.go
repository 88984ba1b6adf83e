package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kubesteward/kubesteward/internal/instrumentation"
	"github.com/kubesteward/kubesteward/internal/server"
	"github.com/kubesteward/kubesteward/internal/server/middleware"
)

// runStreamableHTTPServer runs the server with Streamable HTTP transport.
func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, config ServeConfig, ctx context.Context, provider *instrumentation.Provider, sc *server.ServerContext) error {
	mux := http.NewServeMux()

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	)
	mux.Handle(config.HTTPEndpoint, mcpHandler)

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	slog.Info("streamable HTTP server starting",
		"addr", config.HTTPAddr,
		"endpoint", config.HTTPEndpoint,
		"health_endpoints", []string{"/healthz", "/readyz"})

	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(provider)(handler)

	metricsServer, err := startMetricsServer(config.Metrics, provider)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownMetricsServer(metricsServer, shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		shutdownMetricsServerBackground(metricsServer)
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		slog.Info("HTTP server stopped normally")
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts the dedicated metrics listener when enabled.
// Serving metrics on a separate port keeps them off the MCP transport.
func startMetricsServer(config MetricsServeConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	if !config.Enabled || !provider.Enabled() {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()

	slog.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}

// shutdownMetricsServer stops the metrics server with the given context.
func shutdownMetricsServer(metricsServer *server.MetricsServer, ctx context.Context) {
	if metricsServer == nil {
		return
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		slog.Error("error shutting down metrics server", "error", err)
	}
}

// shutdownMetricsServerBackground stops the metrics server with a fresh
// timeout when no shutdown context is available.
func shutdownMetricsServerBackground(metricsServer *server.MetricsServer) {
	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownMetricsServer(metricsServer, ctx)
}
