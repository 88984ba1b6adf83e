package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the kubesteward package.
const TracerName = "github.com/kubesteward/kubesteward"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrContext is the kubeconfig context name.
	SpanAttrContext = "k8s.context"

	// SpanAttrContextType is the classified context type (lower cardinality).
	SpanAttrContextType = "k8s.context_type"

	// SpanAttrNamespace is the Kubernetes namespace.
	SpanAttrNamespace = "k8s.namespace"

	// SpanAttrResourceType is the Kubernetes resource type.
	SpanAttrResourceType = "k8s.resource_type"

	// SpanAttrResourceName is the Kubernetes resource name.
	SpanAttrResourceName = "k8s.resource_name"

	// SpanAttrOperation is the operation type (get, apply, delete, etc.).
	SpanAttrOperation = "k8s.operation"

	// SpanAttrChanged indicates whether the operation mutated the cluster.
	SpanAttrChanged = "steward.changed"

	// SpanAttrMethod is the reconcile method (create, patch, apply, replace, delete).
	SpanAttrMethod = "steward.method"

	// SpanAttrCheckMode indicates whether the operation ran in check mode.
	SpanAttrCheckMode = "steward.check_mode"

	// SpanAttrRelease is the Helm release name.
	SpanAttrRelease = "helm.release"

	// SpanAttrChart is the Helm chart reference.
	SpanAttrChart = "helm.chart"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes with
// consistent naming and cardinality controls.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithKubeContext adds context attributes with cardinality control. Adds
// both the full context name and the classified type.
func (b *SpanAttributeBuilder) WithKubeContext(contextName string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrContext, contextName),
		attribute.String(SpanAttrContextType, ClassifyContextName(contextName)),
	)
	return b
}

// WithKubeContextType adds only the classified context type (for lower
// cardinality).
func (b *SpanAttributeBuilder) WithKubeContextType(contextName string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrContextType, ClassifyContextName(contextName)),
	)
	return b
}

// WithNamespace adds the Kubernetes namespace attribute.
func (b *SpanAttributeBuilder) WithNamespace(namespace string) *SpanAttributeBuilder {
	if namespace != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrNamespace, namespace))
	}
	return b
}

// WithResource adds Kubernetes resource attributes.
func (b *SpanAttributeBuilder) WithResource(resourceType, resourceName string) *SpanAttributeBuilder {
	if resourceType != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if resourceName != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceName, resourceName))
	}
	return b
}

// WithOperation adds the operation type attribute.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	return b
}

// WithChanged adds the changed indicator attribute.
func (b *SpanAttributeBuilder) WithChanged(changed bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrChanged, changed))
	return b
}

// WithCheckMode adds the check mode indicator attribute.
func (b *SpanAttributeBuilder) WithCheckMode(checkMode bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrCheckMode, checkMode))
	return b
}

// WithRelease adds Helm release attributes.
func (b *SpanAttributeBuilder) WithRelease(release, chart string) *SpanAttributeBuilder {
	if release != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrRelease, release))
	}
	if chart != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrChart, chart))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation. Automatically
// adds the tool name and sets the server span kind.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartK8sSpan starts a span for Kubernetes API operations. Includes
// operation and resource attributes.
func StartK8sSpan(ctx context.Context, operation, resourceType, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+3)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	if resourceType != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if namespace != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrNamespace, namespace))
	}
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "k8s."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartHelmSpan starts a span for Helm release operations.
func StartHelmSpan(ctx context.Context, operation, release, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+3)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	if release != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrRelease, release))
	}
	if namespace != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrNamespace, namespace))
	}
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "helm."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns a human-readable trace context string.
// Format: "trace_id=X span_id=Y" or empty string if no valid context.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}
