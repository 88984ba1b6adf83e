package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kubesteward/kubesteward/internal/instrumentation"
)

// DefaultMetricsAddr is the default listen address for the metrics server.
const DefaultMetricsAddr = ":9090"

// MetricsServerConfig configures the standalone Prometheus metrics server.
type MetricsServerConfig struct {
	// Addr is the listen address; defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider supplies the Prometheus registry handler.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves Prometheus metrics and a liveness endpoint on a
// dedicated listener, separate from the MCP transport.
type MetricsServer struct {
	addr       string
	httpServer *http.Server
}

// NewMetricsServer creates a metrics server from the given configuration.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	path := config.InstrumentationProvider.Config().PrometheusEndpoint
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	if handler := config.InstrumentationProvider.PrometheusHandler(); handler != nil {
		mux.Handle(path, handler)
	} else {
		// Metrics are exported via OTLP/stdout instead; keep the endpoint
		// answering so probes don't flap.
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "prometheus exporter not active", http.StatusNotFound)
		})
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, "ok")
	})

	return &MetricsServer{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}

// Start begins serving and blocks until the server stops. Returns
// http.ErrServerClosed after a graceful Shutdown.
func (s *MetricsServer) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
