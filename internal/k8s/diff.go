package k8s

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"
)

// volatile metadata fields the API server bumps on every write. Differences
// confined to these never count as a change.
var volatileMetadataFields = []string{
	"generation",
	"resourceVersion",
	"managedFields",
	"creationTimestamp",
	"uid",
}

// diffObjects compares the state of an object before and after a mutation
// and reports whether anything meaningful changed. Fields the server rewrites
// on every update are ignored so a no-op update reports changed=false.
func diffObjects(before, after *unstructured.Unstructured, hiddenFields []string) (bool, *Diff) {
	beforeMap := sanitizeForDiff(before, hiddenFields)
	afterMap := sanitizeForDiff(after, hiddenFields)

	if reflect.DeepEqual(beforeMap, afterMap) {
		return false, nil
	}

	diff := &Diff{
		Before:  beforeMap,
		After:   afterMap,
		Unified: unifiedDiff(beforeMap, afterMap),
	}
	return true, diff
}

// sanitizeForDiff deep-copies an object and strips volatile metadata along
// with any configured hidden fields.
func sanitizeForDiff(obj *unstructured.Unstructured, hiddenFields []string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	sanitized := obj.DeepCopy().Object

	for _, field := range volatileMetadataFields {
		unstructured.RemoveNestedField(sanitized, "metadata", field)
	}
	// Status is owned by controllers, never by the definition being applied.
	delete(sanitized, "status")

	for _, path := range hiddenFields {
		removeFieldPath(sanitized, path)
	}
	return sanitized
}

// hideFields strips the configured dotted field paths from an object before
// it is returned to the caller.
func hideFields(obj *unstructured.Unstructured, hiddenFields []string) *unstructured.Unstructured {
	if obj == nil || len(hiddenFields) == 0 {
		return obj
	}
	hidden := obj.DeepCopy()
	for _, path := range hiddenFields {
		removeFieldPath(hidden.Object, path)
	}
	return hidden
}

// removeFieldPath removes a dotted path like "metadata.annotations" or
// "spec.containers[0].env" from a nested object. Map keys containing dots
// can be escaped with square brackets: metadata.annotations[kubectl.kubernetes.io/last-applied-configuration].
func removeFieldPath(obj map[string]interface{}, path string) {
	segments := parseFieldPath(path)
	if len(segments) == 0 {
		return
	}
	removeSegments(obj, segments)
}

func removeSegments(node interface{}, segments []string) {
	if len(segments) == 0 {
		return
	}
	head, rest := segments[0], segments[1:]

	switch typed := node.(type) {
	case map[string]interface{}:
		if len(rest) == 0 {
			delete(typed, head)
			return
		}
		if child, ok := typed[head]; ok {
			removeSegments(child, rest)
		}
	case []interface{}:
		if idx, err := strconv.Atoi(head); err == nil && idx >= 0 && idx < len(typed) {
			if len(rest) == 0 {
				// Removing an element from a slice in place is not possible
				// through the parent reference; blank it instead.
				typed[idx] = nil
				return
			}
			removeSegments(typed[idx], rest)
			return
		}
		// A non-index segment against a list applies to every element.
		for _, item := range typed {
			removeSegments(item, segments)
		}
	}
}

// parseFieldPath splits a dotted path honoring bracketed segments.
func parseFieldPath(path string) []string {
	var segments []string
	var current strings.Builder
	inBracket := false

	for _, r := range path {
		switch {
		case r == '[' && !inBracket:
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
			inBracket = true
		case r == ']' && inBracket:
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
			inBracket = false
		case r == '.' && !inBracket:
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

// unifiedDiff renders two object states as a YAML unified diff.
func unifiedDiff(before, after map[string]interface{}) string {
	beforeYAML := marshalForDiff(before)
	afterYAML := marshalForDiff(after)

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(beforeYAML),
		B:        difflib.SplitLines(afterYAML),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("failed to render diff: %v", err)
	}
	return text
}

func marshalForDiff(obj map[string]interface{}) string {
	if obj == nil {
		return ""
	}
	data, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(data)
}
