package instrumentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.False(t, provider.Enabled())
	assert.Nil(t, provider.Metrics())
	assert.Nil(t, provider.PrometheusHandler())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Prometheus(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:     "kubesteward-test",
		ServiceVersion:  "0.0.1",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.True(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
	assert.NotNil(t, provider.PrometheusHandler())
}

func TestNewProvider_UnknownMetricsExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		MetricsExporter: "graphite",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metrics exporter")
}

func TestNewProvider_UnknownTracingExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "jaeger",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tracing exporter")
}

func TestProvider_NilReceiver(t *testing.T) {
	var provider *Provider

	assert.False(t, provider.Enabled())
	assert.Nil(t, provider.Metrics())
	assert.Nil(t, provider.PrometheusHandler())
	assert.NoError(t, provider.Shutdown(context.Background()))
}
