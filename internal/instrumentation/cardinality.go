package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics
// explosion. Always use them when recording metrics keyed by kubeconfig
// context names.

// ContextType represents a classification of kubeconfig context names for
// metrics.
type ContextType string

// Context type classifications for metrics cardinality control.
const (
	// ContextTypeProduction represents production clusters.
	ContextTypeProduction ContextType = "production"

	// ContextTypeStaging represents staging/pre-production clusters.
	ContextTypeStaging ContextType = "staging"

	// ContextTypeDevelopment represents development clusters.
	ContextTypeDevelopment ContextType = "development"

	// ContextTypeCICD represents CI/CD clusters (e.g., cicdprod, cicddev).
	ContextTypeCICD ContextType = "cicd"

	// ContextTypeOperations represents operations/infrastructure clusters.
	ContextTypeOperations ContextType = "operations"

	// ContextTypeDefault represents the current/default context (empty name).
	ContextTypeDefault ContextType = "default"

	// ContextTypeOther represents contexts that don't match any known pattern.
	ContextTypeOther ContextType = "other"
)

// ClassifyContextName classifies a kubeconfig context name into a type for
// metrics. This prevents cardinality explosion by grouping contexts into
// categories instead of using the full name.
//
// The function uses case-insensitive pattern matching:
//
//	| Pattern                          | Classification |
//	|----------------------------------|----------------|
//	| Empty string                     | default        |
//	| Contains: cicd                   | cicd           |
//	| Contains: operations, ops        | operations     |
//	| Prefix/suffix/infix: prod        | production     |
//	| Prefix/suffix/infix: staging/stg | staging        |
//	| Prefix/suffix/infix: dev/demo/test | development  |
//	| Everything else                  | other          |
//
// Organizations using different naming conventions (e.g., "live-", "prd-",
// "uat-") will see those contexts classified as "other".
//
// Examples:
//
//	ClassifyContextName("")                   // "default"
//	ClassifyContextName("prod-eu-01")         // "production"
//	ClassifyContextName("my-production-env")  // "production"
//	ClassifyContextName("staging-test")       // "staging"
//	ClassifyContextName("dev-cluster")        // "development"
//	ClassifyContextName("cicdprod")           // "cicd"
//	ClassifyContextName("infra-ops")          // "operations"
//	ClassifyContextName("my-cluster")         // "other"
func ClassifyContextName(name string) string {
	if name == "" {
		return string(ContextTypeDefault)
	}

	nameLower := strings.ToLower(name)

	// CI/CD patterns (check first as they often contain "prod" or "dev" in the name)
	if strings.Contains(nameLower, "cicd") {
		return string(ContextTypeCICD)
	}

	// Operations patterns
	if strings.Contains(nameLower, "operations") ||
		strings.HasPrefix(nameLower, "ops-") ||
		strings.HasPrefix(nameLower, "ops_") ||
		strings.Contains(nameLower, "-ops-") ||
		strings.HasSuffix(nameLower, "-ops") {
		return string(ContextTypeOperations)
	}

	// Production patterns
	if strings.HasPrefix(nameLower, "prod-") ||
		strings.HasPrefix(nameLower, "prod_") ||
		strings.Contains(nameLower, "production") ||
		strings.Contains(nameLower, "-prod-") ||
		strings.HasSuffix(nameLower, "-prod") {
		return string(ContextTypeProduction)
	}

	// Staging patterns
	if strings.HasPrefix(nameLower, "staging-") ||
		strings.HasPrefix(nameLower, "staging_") ||
		strings.HasPrefix(nameLower, "stg-") ||
		strings.Contains(nameLower, "staging") ||
		strings.Contains(nameLower, "-stg-") ||
		strings.HasSuffix(nameLower, "-stg") {
		return string(ContextTypeStaging)
	}

	// Development patterns (including demo and test clusters)
	if strings.HasPrefix(nameLower, "dev-") ||
		strings.HasPrefix(nameLower, "dev_") ||
		strings.Contains(nameLower, "development") ||
		strings.Contains(nameLower, "-dev-") ||
		strings.HasSuffix(nameLower, "-dev") ||
		strings.HasPrefix(nameLower, "demo") ||
		strings.Contains(nameLower, "-demo-") ||
		strings.HasPrefix(nameLower, "test-") ||
		strings.HasPrefix(nameLower, "test_") ||
		strings.Contains(nameLower, "-test-") ||
		strings.HasSuffix(nameLower, "-test") {
		return string(ContextTypeDevelopment)
	}

	return string(ContextTypeOther)
}
