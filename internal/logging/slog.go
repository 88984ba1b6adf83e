package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation    = "operation"
	KeyNamespace    = "namespace"
	KeyResourceType = "resource_type"
	KeyResourceName = "resource_name"
	KeyKubeContext  = "kube_context"
	KeyRelease      = "release"
	KeyChart        = "chart"
	KeyMethod       = "method"
	KeyChanged      = "changed"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyHost         = "host"
	KeyTool         = "tool"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ipv4Regex matches IPv4 addresses for sanitization.
var ipv4Regex = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ipv6Regex matches IPv6 addresses for sanitization, including the
// bracketed form used in URLs ([2001:db8::1]).
var ipv6Regex = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithKubeContext returns a logger with the kubeconfig context attribute set.
func WithKubeContext(logger *slog.Logger, contextName string) *slog.Logger {
	return logger.With(slog.String(KeyKubeContext, contextName))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Namespace returns a slog attribute for the namespace.
func Namespace(ns string) slog.Attr {
	return slog.String(KeyNamespace, ns)
}

// ResourceType returns a slog attribute for the resource type.
func ResourceType(rt string) slog.Attr {
	return slog.String(KeyResourceType, rt)
}

// ResourceName returns a slog attribute for the resource name.
func ResourceName(name string) slog.Attr {
	return slog.String(KeyResourceName, name)
}

// KubeContext returns a slog attribute for the kubeconfig context name.
func KubeContext(name string) slog.Attr {
	return slog.String(KeyKubeContext, name)
}

// Release returns a slog attribute for a Helm release name.
func Release(name string) slog.Attr {
	return slog.String(KeyRelease, name)
}

// Chart returns a slog attribute for a Helm chart reference.
func Chart(ref string) slog.Attr {
	return slog.String(KeyChart, ref)
}

// Method returns a slog attribute for the reconcile method.
func Method(method string) slog.Attr {
	return slog.String(KeyMethod, method)
}

// Changed returns a slog attribute reporting whether an operation mutated
// the cluster.
func Changed(changed bool) slog.Attr {
	return slog.Bool(KeyChanged, changed)
}

// Duration returns a slog attribute for an operation duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses
// redacted. Use this when logging errors that may contain hostnames or IP
// addresses from Kubernetes API server responses, which could leak
// network topology information.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// Host returns a slog attribute for a host with IP addresses sanitized.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

// SanitizeHost returns a sanitized version of the host for logging
// purposes. IP addresses (both IPv4 and IPv6) are redacted to prevent
// network topology information from appearing in logs, while preserving
// enough context for debugging.
//
// Examples:
//   - "https://192.168.1.100:6443" -> "https://<redacted-ip>:6443"
//   - "https://api.cluster.example.com:6443" -> unchanged
//   - "192.168.1.100" -> "<redacted-ip>"
//   - "https://[2001:db8::1]:6443" -> "https://<redacted-ip>:6443"
//   - "" -> "<empty>"
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	redactIPs := func(s string) string {
		result := ipv4Regex.ReplaceAllString(s, "<redacted-ip>")
		result = ipv6Regex.ReplaceAllString(result, "<redacted-ip>")
		return result
	}

	// Without a scheme this is a bare host/IP, redact directly.
	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}

	if ipv4Regex.MatchString(parsed.Host) || ipv6Regex.MatchString(parsed.Host) {
		parsed.Host = redactIPs(parsed.Host)
		return parsed.String()
	}

	return host
}
