package output

import "strings"

// StripFields removes the named dotted field paths from a resource map
// and returns a modified deep copy. Paths support [*] for array elements,
// e.g. "status.conditions[*].lastTransitionTime".
func StripFields(obj map[string]interface{}, fields []string) map[string]interface{} {
	if obj == nil {
		return nil
	}

	result := deepCopyMap(obj)
	for _, field := range fields {
		removePath(result, strings.Split(field, "."))
	}

	return result
}

// StripFieldsFromList applies StripFields to every object in the slice.
func StripFieldsFromList(objects []map[string]interface{}, fields []string) []map[string]interface{} {
	if len(objects) == 0 {
		return objects
	}

	result := make([]map[string]interface{}, len(objects))
	for i, obj := range objects {
		result[i] = StripFields(obj, fields)
	}

	return result
}

func removePath(obj map[string]interface{}, parts []string) {
	if obj == nil || len(parts) == 0 {
		return
	}

	current := parts[0]
	remaining := parts[1:]

	if strings.HasSuffix(current, "[*]") {
		fieldName := strings.TrimSuffix(current, "[*]")
		array, ok := obj[fieldName].([]interface{})
		if !ok || len(remaining) == 0 {
			return
		}
		for _, elem := range array {
			if elemMap, ok := elem.(map[string]interface{}); ok {
				removePath(elemMap, remaining)
			}
		}
		return
	}

	if len(remaining) == 0 {
		delete(obj, current)
		return
	}

	next, ok := obj[current].(map[string]interface{})
	if !ok {
		return
	}
	removePath(next, remaining)
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}

	return result
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = deepCopyValue(item)
		}
		return result
	default:
		return v
	}
}
