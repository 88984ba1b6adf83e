package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	k8syaml "k8s.io/apimachinery/pkg/util/yaml"
)

// errNoManifest is returned when a request carries none of the manifest
// input forms.
var errNoManifest = errors.New("one of manifest, yaml or src is required")

// resolveManifests extracts resource definitions from the request
// arguments. Exactly one of the inputs is used, in precedence order:
// manifest (object or array), yaml (multi-document string), src (file).
func resolveManifests(args map[string]interface{}) ([]*unstructured.Unstructured, error) {
	if manifest, ok := args["manifest"]; ok && manifest != nil {
		return decodeManifestArg(manifest)
	}

	if doc, ok := args["yaml"].(string); ok && doc != "" {
		return parseManifestDocuments(strings.NewReader(doc))
	}

	if src, ok := args["src"].(string); ok && src != "" {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest source: %w", err)
		}
		defer f.Close()
		return parseManifestDocuments(f)
	}

	return nil, errNoManifest
}

// decodeManifestArg converts the manifest argument, either a single
// object or an array of objects, into unstructured resources.
func decodeManifestArg(v interface{}) ([]*unstructured.Unstructured, error) {
	switch m := v.(type) {
	case map[string]interface{}:
		obj, err := toUnstructured(m)
		if err != nil {
			return nil, err
		}
		return []*unstructured.Unstructured{obj}, nil
	case []interface{}:
		defs := make([]*unstructured.Unstructured, 0, len(m))
		for i, item := range m {
			itemMap, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("manifest entry %d is not an object", i)
			}
			obj, err := toUnstructured(itemMap)
			if err != nil {
				return nil, err
			}
			defs = append(defs, obj)
		}
		return defs, nil
	default:
		return nil, errors.New("manifest must be an object or an array of objects")
	}
}

// parseManifestDocuments splits a YAML or JSON stream into resource
// definitions, skipping empty documents.
func parseManifestDocuments(r io.Reader) ([]*unstructured.Unstructured, error) {
	decoder := k8syaml.NewYAMLOrJSONDecoder(r, 4096)

	var defs []*unstructured.Unstructured
	for i := 0; ; i++ {
		var raw map[string]interface{}
		err := decoder.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse manifest document %d: %w", i, err)
		}
		if len(raw) == 0 {
			continue
		}
		obj, err := toUnstructured(raw)
		if err != nil {
			return nil, err
		}
		defs = append(defs, obj)
	}

	if len(defs) == 0 {
		return nil, errors.New("manifest input contains no resource definitions")
	}
	return defs, nil
}

// toUnstructured validates that a raw map is a usable resource
// definition.
func toUnstructured(m map[string]interface{}) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{Object: m}
	if obj.GetKind() == "" {
		return nil, errors.New("manifest is missing kind")
	}
	if obj.GetAPIVersion() == "" {
		return nil, errors.New("manifest is missing apiVersion")
	}
	return obj, nil
}

// manifestKind extracts the kind for metric labels, defaulting to
// "unknown" for malformed input.
func manifestKind(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		if kind, ok := m["kind"].(string); ok && kind != "" {
			return kind
		}
	}
	return "unknown"
}

// stringSliceArg converts an []interface{} argument into []string,
// ignoring non-string entries.
func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// jsonPatchOps validates RFC 6902 operations client-side and returns the
// serialized patch body.
func jsonPatchOps(raw []interface{}) ([]byte, error) {
	if len(raw) == 0 {
		return nil, errors.New("operations cannot be empty")
	}

	for i, item := range raw {
		op, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("operation %d is not an object", i)
		}
		opName, _ := op["op"].(string)
		switch opName {
		case "add", "remove", "replace", "move", "copy", "test":
		default:
			return nil, fmt.Errorf("operation %d has invalid op %q", i, opName)
		}
		if path, ok := op["path"].(string); !ok || path == "" {
			return nil, fmt.Errorf("operation %d is missing path", i)
		}
	}

	return json.Marshal(raw)
}
