// Package logging provides structured logging utilities for kubesteward.
//
// This package centralizes logging patterns to ensure consistent,
// structured logging throughout the codebase using the standard library's
// slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Host/URL sanitization so API server errors don't leak topology
//   - Consistent attribute naming across the codebase
//   - An adapter implementing the narrow Logger interface the client
//     layers accept
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "resource.apply")
//	logger.Info("reconciling resource",
//	    logging.Namespace("default"),
//	    logging.ResourceType("deployments"))
//
// Sanitize sensitive data before logging:
//
//	logger.Error("request failed", logging.SanitizedErr(err))
package logging
