package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renderedManifest = `---
# Source: demo/templates/serviceaccount.yaml
apiVersion: v1
kind: ServiceAccount
metadata:
  name: demo
---
# Source: demo/templates/service.yaml
apiVersion: v1
kind: Service
metadata:
  name: demo
---
# Source: demo/templates/deployment.yaml
apiVersion: apps/v1
kind: Deployment
metadata:
  name: demo
`

func TestFilterManifests(t *testing.T) {
	filtered, err := filterManifests(renderedManifest, "demo", []string{"templates/service.yaml"})
	require.NoError(t, err)

	assert.Contains(t, filtered, "kind: Service")
	assert.NotContains(t, filtered, "kind: Deployment")
	assert.NotContains(t, filtered, "kind: ServiceAccount")
}

func TestFilterManifests_MultipleTemplates(t *testing.T) {
	filtered, err := filterManifests(renderedManifest, "demo", []string{
		"templates/service.yaml",
		"templates/deployment.yaml",
	})
	require.NoError(t, err)

	assert.Contains(t, filtered, "kind: Service")
	assert.Contains(t, filtered, "kind: Deployment")
}

func TestFilterManifests_UnknownTemplate(t *testing.T) {
	_, err := filterManifests(renderedManifest, "demo", []string{"templates/ingress.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "templates/ingress.yaml")
}

func TestManifestSource(t *testing.T) {
	doc := "# Source: demo/templates/service.yaml\napiVersion: v1\nkind: Service"
	assert.Equal(t, "demo/templates/service.yaml", manifestSource(doc))
	assert.Equal(t, "", manifestSource("apiVersion: v1\nkind: Service"))
}
