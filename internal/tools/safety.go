package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kubesteward/kubesteward/internal/server"
)

// CheckMutatingOperation verifies if a mutating operation is allowed given
// the current server configuration. Returns an error result if blocked,
// nil if allowed.
//
// This centralizes the non-destructive mode check to avoid code
// duplication across all tool handlers that perform mutating operations.
//
// Operations are allowed if:
//   - NonDestructiveMode is disabled, OR
//   - DryRun mode is enabled (operations will be validated but not applied), OR
//   - The operation is explicitly listed in AllowedOperations
//
// Protected operations include: create, apply, delete, patch, scale,
// rollback, drain, taint, exec, copy, port-forward, helm-install,
// helm-upgrade, helm-uninstall, helm-rollback
func CheckMutatingOperation(sc *server.ServerContext, operation string) *mcp.CallToolResult {
	config := sc.Config()
	if !config.NonDestructiveMode || config.DryRun {
		return nil
	}

	for _, op := range config.AllowedOperations {
		if op == operation {
			return nil
		}
	}

	sc.Metrics().IncrementMutationsBlocked()
	return mcp.NewToolResultError(fmt.Sprintf(
		"%s operations are not allowed in non-destructive mode (use --dry-run to validate without applying)",
		cases.Title(language.English).String(operation),
	))
}

// CheckRestrictedNamespace verifies the namespace is not on the server's
// restricted list. Returns an error result if blocked, nil if allowed.
// Read-only tools skip this check; it guards mutations of system
// namespaces like kube-system.
func CheckRestrictedNamespace(sc *server.ServerContext, namespace string) *mcp.CallToolResult {
	for _, restricted := range sc.Config().RestrictedNamespaces {
		if namespace == restricted {
			return mcp.NewToolResultError(fmt.Sprintf(
				"namespace %q is restricted and cannot be modified", namespace,
			))
		}
	}
	return nil
}
