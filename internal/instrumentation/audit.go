package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures the context of a single MCP tool call for audit
// logging. Build it with the fluent With* methods and finish with one of
// the Complete methods before logging.
type ToolInvocation struct {
	Tool         string
	KubeContext  string
	Namespace    string
	ResourceType string
	ResourceName string
	Changed      bool

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts tracking a tool invocation.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithSpanContext records the active trace and span IDs for correlation.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// WithKubeContext records the kubeconfig context the tool targeted.
func (ti *ToolInvocation) WithKubeContext(contextName string) *ToolInvocation {
	ti.KubeContext = contextName
	return ti
}

// WithResource records the resource the tool operated on.
func (ti *ToolInvocation) WithResource(namespace, resourceType, resourceName string) *ToolInvocation {
	ti.Namespace = namespace
	ti.ResourceType = resourceType
	ti.ResourceName = resourceName
	return ti
}

// WithChanged records whether the tool mutated cluster state.
func (ti *ToolInvocation) WithChanged(changed bool) *ToolInvocation {
	ti.Changed = changed
	return ti
}

// Complete finishes the invocation with an explicit outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess finishes the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError finishes the invocation as failed.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// ContextType returns the cardinality-controlled classification of the
// target kube context.
func (ti *ToolInvocation) ContextType() string {
	return ClassifyContextName(ti.KubeContext)
}

// Status returns "success" or "error" for metric labels.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns cardinality-controlled attributes suitable for
// metrics-adjacent logging. Full context and resource names are omitted;
// use LogAuditAttrs for the complete audit record.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("context_type", ti.ContextType()),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
		slog.Bool("changed", ti.Changed),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// LogAuditAttrs returns the full-fidelity attributes for the audit log,
// including context, resource and trace identifiers.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("kube_context", ti.KubeContext),
		slog.String("namespace", ti.Namespace),
		slog.String("resource_type", ti.ResourceType),
		slog.String("resource_name", ti.ResourceName),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
		slog.Bool("changed", ti.Changed),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes structured audit records for tool invocations.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger falls back to
// slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes the audit record for a completed invocation.
// Failed invocations are logged at warning level.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "tool invocation", ti.LogAuditAttrs()...)
}

// TraceIDFromContext returns the active trace ID, or empty when no span
// is recording.
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}
