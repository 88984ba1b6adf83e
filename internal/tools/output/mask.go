package output

import "strings"

// RedactedValue is the placeholder used for masked secret data.
const RedactedValue = "***REDACTED***"

// sensitiveAnnotations lists annotations replaced along with secret data.
var sensitiveAnnotations = map[string]bool{
	"kubernetes.io/service-account.uid":   true,
	"kubernetes.io/service-account.name":  true,
	"kubernetes.io/service-account-token": true,
}

// MaskSecretData replaces the data and stringData values of a Secret with
// redaction markers and returns a modified deep copy. Non-Secret objects
// pass through unchanged (still copied).
func MaskSecretData(obj map[string]interface{}) map[string]interface{} {
	if obj == nil {
		return nil
	}

	result := deepCopyMap(obj)
	if !IsSecret(result) {
		return result
	}

	if data, ok := result["data"].(map[string]interface{}); ok {
		masked := make(map[string]interface{}, len(data))
		for key := range data {
			masked[key] = RedactedValue
		}
		result["data"] = masked
	}

	if stringData, ok := result["stringData"].(map[string]interface{}); ok {
		masked := make(map[string]interface{}, len(stringData))
		for key := range stringData {
			masked[key] = RedactedValue
		}
		result["stringData"] = masked
	}

	// The type field stays visible for context (e.g. kubernetes.io/tls).
	if metadata, ok := result["metadata"].(map[string]interface{}); ok {
		if annotations, ok := metadata["annotations"].(map[string]interface{}); ok {
			for key := range annotations {
				if sensitiveAnnotations[key] {
					annotations[key] = RedactedValue
				}
			}
		}
	}

	return result
}

// MaskSecretDataInList masks secrets in a list of resources.
func MaskSecretDataInList(objects []map[string]interface{}) []map[string]interface{} {
	if len(objects) == 0 {
		return objects
	}

	result := make([]map[string]interface{}, len(objects))
	for i, obj := range objects {
		result[i] = MaskSecretData(obj)
	}

	return result
}

// IsSecret reports whether the object is a Kubernetes Secret.
func IsSecret(obj map[string]interface{}) bool {
	if obj == nil {
		return false
	}
	kind, _ := obj["kind"].(string)
	return strings.EqualFold(kind, "Secret")
}
