package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// Provider owns the OpenTelemetry meter and tracer providers and the
// metrics recorder built on them. A disabled provider is a cheap no-op;
// all recording methods check for initialization.
type Provider struct {
	config Config

	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	auditLogger    *AuditLogger

	// promRegistry is set when the prometheus exporter is active
	promRegistry *prometheus.Registry
}

// NewProvider creates and registers the OpenTelemetry providers described
// by config. When config.Enabled is false the returned provider is inert
// and Shutdown is a no-op.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	p := &Provider{config: config}

	if !config.Enabled {
		return p, nil
	}

	res, err := newResource(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry resource: %w", err)
	}

	if err := p.setupMetrics(ctx, res); err != nil {
		return nil, err
	}

	if err := p.setupTracing(ctx, res); err != nil {
		// Roll back the meter provider so we don't leak a half-initialized state
		if p.meterProvider != nil {
			_ = p.meterProvider.Shutdown(ctx)
		}
		return nil, err
	}

	meter := p.meterProvider.Meter(TracerName)
	metrics, err := NewMetrics(meter, config.DetailedLabels)
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.metrics = metrics

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.auditLogger = NewAuditLogger(slog.Default())

	return p, nil
}

// newResource builds the service identity resource.
func newResource(config Config) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
	))
}

// setupMetrics initializes the meter provider with the configured exporter.
func (p *Provider) setupMetrics(ctx context.Context, res *resource.Resource) error {
	var reader sdkmetric.Reader

	switch p.config.MetricsExporter {
	case "prometheus", "":
		registry := prometheus.NewRegistry()
		exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		p.promRegistry = registry
		reader = exporter
	case "otlp":
		opts := []otlpmetrichttp.Option{}
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create otlp metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval))
	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval))
	default:
		return fmt.Errorf("unknown metrics exporter %q", p.config.MetricsExporter)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

// setupTracing initializes the tracer provider with the configured exporter.
func (p *Provider) setupTracing(ctx context.Context, res *resource.Resource) error {
	var exporter sdktrace.SpanExporter

	switch p.config.TracingExporter {
	case "none", "":
		// Tracing disabled, leave the global no-op tracer in place
		return nil
	case "otlp":
		opts := []otlptracehttp.Option{}
		if p.config.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(p.config.OTLPEndpoint))
		}
		if p.config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create otlp trace exporter: %w", err)
		}
		exporter = exp
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		exporter = exp
	default:
		return fmt.Errorf("unknown tracing exporter %q", p.config.TracingExporter)
	}

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.TraceSamplingRate))
	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(p.tracerProvider)
	return nil
}

// Enabled reports whether instrumentation is active.
func (p *Provider) Enabled() bool {
	return p != nil && p.config.Enabled && p.meterProvider != nil
}

// Config returns the provider configuration.
func (p *Provider) Config() Config {
	return p.config
}

// Metrics returns the metrics recorder. Returns nil when instrumentation
// is disabled; the recorder's methods tolerate a nil receiver's fields so
// callers should guard with Enabled().
func (p *Provider) Metrics() *Metrics {
	if p == nil {
		return nil
	}
	return p.metrics
}

// AuditLogger returns the audit logger, or nil when instrumentation is
// disabled.
func (p *Provider) AuditLogger() *AuditLogger {
	if p == nil {
		return nil
	}
	return p.auditLogger
}

// PrometheusHandler returns an HTTP handler serving the Prometheus metrics
// registry, or nil when the prometheus exporter is not active.
func (p *Provider) PrometheusHandler() http.Handler {
	if p == nil || p.promRegistry == nil {
		return nil
	}
	return promhttp.HandlerFor(p.promRegistry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter and tracer providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
