// Package instrumentation provides OpenTelemetry instrumentation for the
// kubesteward server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, Kubernetes and Helm operations
//   - Distributed tracing for tool invocations and Kubernetes API calls
//   - Prometheus metrics export via /metrics endpoint
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_port_forward_sessions: Gauge of active port-forward sessions
//
// Kubernetes Operation Metrics:
//   - kubernetes_operations_total: Counter of operations by operation and status
//   - kubernetes_operation_duration_seconds: Histogram of operation durations
//
// Helm Operation Metrics:
//   - helm_operations_total: Counter of release operations by operation and status
//   - helm_operation_duration_seconds: Histogram of release operation durations
//
// # Cardinality Considerations
//
// Labels like namespace and resource_type can create high cardinality in
// large clusters. They are only recorded when detailed labels are enabled;
// in production environments with many namespaces keep them off and rely on
// traces for per-resource debugging.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: kubesteward)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "kubesteward",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordK8sOperation(ctx, "apply", "deployments", "default", "success", time.Since(start))
package instrumentation
