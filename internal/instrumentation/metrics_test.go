package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics builds a Metrics instance backed by a manual reader so
// tests can collect recorded data points synchronously.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	metrics, err := NewMetrics(provider.Meter("test"), detailedLabels)
	require.NoError(t, err)
	return metrics, reader
}

// collectedMetricNames gathers the names of all metrics the reader has seen.
func collectedMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]bool {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestRecordHTTPRequest(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordHTTPRequest(context.Background(), "POST", "/mcp", 200, 50*time.Millisecond)

	names := collectedMetricNames(t, reader)
	assert.True(t, names["http_requests_total"])
	assert.True(t, names["http_request_duration_seconds"])
}

func TestRecordK8sOperation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordK8sOperation(context.Background(), OperationApply, "deployments", "default", StatusSuccess, 120*time.Millisecond)
	metrics.RecordK8sOperation(context.Background(), OperationDelete, "pods", "default", StatusError, 10*time.Millisecond)

	names := collectedMetricNames(t, reader)
	assert.True(t, names["kubernetes_operations_total"])
	assert.True(t, names["kubernetes_operation_duration_seconds"])
}

func TestRecordK8sOperation_DetailedLabels(t *testing.T) {
	metrics, reader := newTestMetrics(t, true)

	metrics.RecordK8sOperation(context.Background(), OperationGet, "configmaps", "kube-system", StatusSuccess, time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := false
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "kubernetes_operations_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			attrs := sum.DataPoints[0].Attributes
			ns, ok := attrs.Value("namespace")
			require.True(t, ok)
			assert.Equal(t, "kube-system", ns.AsString())
			rt, ok := attrs.Value("resource_type")
			require.True(t, ok)
			assert.Equal(t, "configmaps", rt.AsString())
			found = true
		}
	}
	assert.True(t, found)
}

func TestRecordHelmOperation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordHelmOperation(context.Background(), "install", "default", StatusSuccess, 3*time.Second)

	names := collectedMetricNames(t, reader)
	assert.True(t, names["helm_operations_total"])
	assert.True(t, names["helm_operation_duration_seconds"])
}

func TestActiveSessions(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.IncrementActiveSessions(context.Background())
	metrics.IncrementActiveSessions(context.Background())
	metrics.DecrementActiveSessions(context.Background())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "active_port_forward_sessions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			assert.Equal(t, int64(1), sum.DataPoints[0].Value)
			return
		}
	}
	t.Fatal("active_port_forward_sessions metric not found")
}

func TestMetricsUninitializedIsNoop(t *testing.T) {
	m := &Metrics{}

	// None of these should panic on an uninitialized instance.
	m.RecordHTTPRequest(context.Background(), "GET", "/", 200, time.Second)
	m.RecordK8sOperation(context.Background(), OperationList, "pods", "default", StatusSuccess, time.Second)
	m.RecordHelmOperation(context.Background(), "upgrade", "default", StatusError, time.Second)
	m.IncrementActiveSessions(context.Background())
	m.DecrementActiveSessions(context.Background())
}
