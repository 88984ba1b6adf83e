package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFields(t *testing.T) {
	obj := map[string]interface{}{
		"kind": "Deployment",
		"metadata": map[string]interface{}{
			"name":          "web",
			"managedFields": []interface{}{"noise"},
		},
		"status": map[string]interface{}{
			"conditions": []interface{}{
				map[string]interface{}{
					"type":               "Available",
					"lastTransitionTime": "2026-01-01T00:00:00Z",
				},
				map[string]interface{}{
					"type":               "Progressing",
					"lastTransitionTime": "2026-01-02T00:00:00Z",
				},
			},
		},
	}

	stripped := StripFields(obj, []string{
		"metadata.managedFields",
		"status.conditions[*].lastTransitionTime",
	})

	metadata := stripped["metadata"].(map[string]interface{})
	assert.NotContains(t, metadata, "managedFields")
	assert.Equal(t, "web", metadata["name"])

	conditions := stripped["status"].(map[string]interface{})["conditions"].([]interface{})
	for _, c := range conditions {
		cond := c.(map[string]interface{})
		assert.NotContains(t, cond, "lastTransitionTime")
		assert.Contains(t, cond, "type")
	}

	// Original untouched.
	require.Contains(t, obj["metadata"].(map[string]interface{}), "managedFields")
}

func TestStripFields_MissingPathIsNoop(t *testing.T) {
	obj := map[string]interface{}{"kind": "Pod"}
	stripped := StripFields(obj, []string{"spec.containers[*].image", "metadata.labels.app"})
	assert.Equal(t, "Pod", stripped["kind"])
}

func TestStripFields_TopLevelField(t *testing.T) {
	obj := map[string]interface{}{"kind": "Pod", "status": map[string]interface{}{}}
	stripped := StripFields(obj, []string{"status"})
	assert.NotContains(t, stripped, "status")
}

func TestStripFieldsFromList(t *testing.T) {
	objects := []map[string]interface{}{
		{"kind": "Pod", "status": map[string]interface{}{}},
		{"kind": "Service", "status": map[string]interface{}{}},
	}

	stripped := StripFieldsFromList(objects, []string{"status"})
	require.Len(t, stripped, 2)
	for _, obj := range stripped {
		assert.NotContains(t, obj, "status")
	}
}

func TestStripFields_NilObject(t *testing.T) {
	assert.Nil(t, StripFields(nil, []string{"status"}))
}
