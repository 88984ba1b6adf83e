package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolInvocation(t *testing.T) {
	ti := NewToolInvocation("kubernetes_apply")

	assert.Equal(t, "kubernetes_apply", ti.Tool)
	assert.False(t, ti.StartTime.IsZero())
	assert.False(t, ti.Success)
	assert.Empty(t, ti.Error)
}

func TestToolInvocation_Complete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ti := NewToolInvocation("kubernetes_get")
		time.Sleep(time.Millisecond)
		ti.CompleteSuccess()

		assert.True(t, ti.Success)
		assert.Empty(t, ti.Error)
		assert.Greater(t, ti.Duration, time.Duration(0))
	})

	t.Run("error", func(t *testing.T) {
		ti := NewToolInvocation("kubernetes_delete")
		ti.CompleteWithError(errors.New("namespace is restricted"))

		assert.False(t, ti.Success)
		assert.Equal(t, "namespace is restricted", ti.Error)
	})

	t.Run("explicit outcome", func(t *testing.T) {
		ti := NewToolInvocation("kubernetes_drain")
		ti.Complete(true, nil)

		assert.True(t, ti.Success)
		assert.Empty(t, ti.Error)
	})
}

func TestToolInvocation_Builders(t *testing.T) {
	ti := NewToolInvocation("kubernetes_scale").
		WithKubeContext("prod-eu-01").
		WithResource("default", "deployments", "web").
		WithChanged(true)

	assert.Equal(t, "prod-eu-01", ti.KubeContext)
	assert.Equal(t, "default", ti.Namespace)
	assert.Equal(t, "deployments", ti.ResourceType)
	assert.Equal(t, "web", ti.ResourceName)
	assert.True(t, ti.Changed)
}

func TestToolInvocation_ContextType(t *testing.T) {
	tests := []struct {
		kubeContext string
		expected    string
	}{
		{"prod-eu-01", string(ContextTypeProduction)},
		{"staging-us", string(ContextTypeStaging)},
		{"", string(ContextTypeDefault)},
		{"my-sandbox", string(ContextTypeOther)},
	}

	for _, tt := range tests {
		t.Run(tt.kubeContext, func(t *testing.T) {
			ti := NewToolInvocation("test").WithKubeContext(tt.kubeContext)
			assert.Equal(t, tt.expected, ti.ContextType())
		})
	}
}

func TestToolInvocation_Status(t *testing.T) {
	ti := NewToolInvocation("test").CompleteSuccess()
	assert.Equal(t, StatusSuccess, ti.Status())

	ti = NewToolInvocation("test").CompleteWithError(errors.New("boom"))
	assert.Equal(t, StatusError, ti.Status())
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation("kubernetes_apply").
		WithKubeContext("prod-eu-01").
		WithResource("default", "deployments", "web").
		CompleteSuccess()

	attrs := ti.LogAttrs()
	keys := attrKeys(attrs)

	assert.Contains(t, keys, "tool")
	assert.Contains(t, keys, "context_type")
	assert.Contains(t, keys, "duration")
	assert.Contains(t, keys, "success")

	// Cardinality-controlled attrs never carry the raw context or
	// resource names.
	assert.NotContains(t, keys, "kube_context")
	assert.NotContains(t, keys, "resource_name")
}

func TestToolInvocation_LogAuditAttrs(t *testing.T) {
	ti := NewToolInvocation("kubernetes_apply").
		WithKubeContext("prod-eu-01").
		WithResource("default", "deployments", "web").
		CompleteWithError(errors.New("conflict"))

	attrs := ti.LogAuditAttrs()
	m := attrStringValues(attrs)

	assert.Equal(t, "kubernetes_apply", m["tool"])
	assert.Equal(t, "prod-eu-01", m["kube_context"])
	assert.Equal(t, "default", m["namespace"])
	assert.Equal(t, "deployments", m["resource_type"])
	assert.Equal(t, "web", m["resource_name"])
	assert.Equal(t, "conflict", m["error"])
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	t.Run("no active span leaves IDs empty", func(t *testing.T) {
		ti := NewToolInvocation("test").WithSpanContext(context.Background())
		assert.Empty(t, ti.TraceID)
		assert.Empty(t, ti.SpanID)
	})

	t.Run("active span records IDs", func(t *testing.T) {
		_ = newRecordingTracer(t)
		ctx, span := StartToolSpan(context.Background(), "kubernetes_get")
		defer span.End()

		ti := NewToolInvocation("kubernetes_get").WithSpanContext(ctx)
		assert.NotEmpty(t, ti.TraceID)
		assert.NotEmpty(t, ti.SpanID)
	})
}

func TestAuditLogger(t *testing.T) {
	t.Run("nil logger uses default", func(t *testing.T) {
		al := NewAuditLogger(nil)
		require.NotNil(t, al)
		assert.NotNil(t, al.logger)
	})

	t.Run("logs successful invocation at info", func(t *testing.T) {
		var buf bytes.Buffer
		al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

		ti := NewToolInvocation("kubernetes_get").
			WithKubeContext("staging-us").
			CompleteSuccess()
		al.LogToolInvocation(ti)

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, "tool invocation")
		assert.Contains(t, output, `"kube_context":"staging-us"`)
	})

	t.Run("logs failed invocation at warn", func(t *testing.T) {
		var buf bytes.Buffer
		al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

		ti := NewToolInvocation("kubernetes_delete").
			CompleteWithError(errors.New("forbidden"))
		al.LogToolInvocation(ti)

		output := buf.String()
		assert.Contains(t, output, `"level":"WARN"`)
		assert.Contains(t, output, `"error":"forbidden"`)
	})
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func attrKeys(attrs []slog.Attr) []string {
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	return keys
}

func attrStringValues(attrs []slog.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.String()
	}
	return m
}
