package kustomize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKustomization(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestBuild(t *testing.T) {
	dir := writeKustomization(t, map[string]string{
		"kustomization.yaml": `
namePrefix: prod-
commonLabels:
  team: platform
resources:
  - deployment.yaml
  - service.yaml
`,
		"deployment.yaml": `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 1
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: nginx:1.27
`,
		"service.yaml": `
apiVersion: v1
kind: Service
metadata:
  name: web
spec:
  selector:
    app: web
  ports:
    - port: 80
`,
	})

	output, err := Build(dir, Options{})
	require.NoError(t, err)

	assert.Contains(t, output, "name: prod-web")
	assert.Contains(t, output, "team: platform")
	assert.Contains(t, output, "kind: Deployment")
	assert.Contains(t, output, "kind: Service")
	assert.Contains(t, output, "---")
}

func TestBuild_Patches(t *testing.T) {
	dir := writeKustomization(t, map[string]string{
		"kustomization.yaml": `
resources:
  - deployment.yaml
patches:
  - patch: |-
      - op: replace
        path: /spec/replicas
        value: 5
    target:
      kind: Deployment
      name: web
`,
		"deployment.yaml": `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 1
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: web
          image: nginx:1.27
`,
	})

	output, err := Build(dir, Options{})
	require.NoError(t, err)
	assert.Contains(t, output, "replicas: 5")
}

func TestBuild_MissingDirectory(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")
}

func TestBuild_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "kustomization.yaml")
	require.NoError(t, os.WriteFile(file, []byte("resources: []"), 0o644))

	_, err := Build(file, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestBuild_NoKustomizationFile(t *testing.T) {
	_, err := Build(t.TempDir(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain a kustomization file")
}

func TestBuild_UnknownLoadRestriction(t *testing.T) {
	dir := writeKustomization(t, map[string]string{
		"kustomization.yaml": "resources: []\n",
	})

	_, err := Build(dir, Options{LoadRestrictions: "sometimes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown load restriction")
}
