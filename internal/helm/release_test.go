package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	chart "helm.sh/helm/v4/pkg/chart/v2"
	v1 "helm.sh/helm/v4/pkg/release/v1"
)

func TestChartName(t *testing.T) {
	tests := []struct {
		chartRef string
		expected string
	}{
		{"bitnami/redis", "redis"},
		{"redis", "redis"},
		{"./charts/app", "app"},
		{"oci://registry.example.com/charts/app", "app"},
		{"/tmp/charts/app.tgz", "app"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, chartName(tt.chartRef), tt.chartRef)
	}
}

func TestMergeMaps(t *testing.T) {
	base := map[string]interface{}{
		"replicaCount": 1,
		"image": map[string]interface{}{
			"repository": "nginx",
			"tag":        "1.25",
		},
	}
	override := map[string]interface{}{
		"replicaCount": 3,
		"image": map[string]interface{}{
			"tag": "1.27",
		},
	}

	merged := mergeMaps(base, override)

	assert.Equal(t, 3, merged["replicaCount"])
	image := merged["image"].(map[string]interface{})
	assert.Equal(t, "nginx", image["repository"])
	assert.Equal(t, "1.27", image["tag"])

	// Inputs are not mutated.
	assert.Equal(t, 1, base["replicaCount"])
	assert.Equal(t, "1.25", base["image"].(map[string]interface{})["tag"])
}

func TestNormalizeValues(t *testing.T) {
	a := map[string]interface{}{
		"replicas": 3,
		"nested":   map[string]interface{}{"port": int64(8080)},
		"list":     []interface{}{1, 2},
	}
	b := map[string]interface{}{
		"replicas": float64(3),
		"nested":   map[string]interface{}{"port": float64(8080)},
		"list":     []interface{}{float64(1), float64(2)},
	}

	assert.Equal(t, normalizeValues(b), normalizeValues(a))
	assert.Nil(t, normalizeValues(nil))
	assert.Nil(t, normalizeValues(map[string]interface{}{}))
}

func makeRelease(chartName, chartVersion string, status v1.Status, config map[string]interface{}) *v1.Release {
	return &v1.Release{
		Name:      "demo",
		Namespace: "default",
		Version:   2,
		Info:      &v1.Info{Status: status},
		Chart: &chart.Chart{
			Metadata: &chart.Metadata{Name: chartName, Version: chartVersion},
		},
		Config: config,
	}
}

func TestReleaseMatchesSpec(t *testing.T) {
	deployed := makeRelease("redis", "19.0.1", v1.StatusDeployed, map[string]interface{}{
		"replica": map[string]interface{}{"replicaCount": float64(2)},
	})

	tests := []struct {
		name    string
		spec    ReleaseSpec
		values  map[string]interface{}
		matches bool
	}{
		{
			name:    "identical",
			spec:    ReleaseSpec{ChartRef: "bitnami/redis", Version: "19.0.1"},
			values:  map[string]interface{}{"replica": map[string]interface{}{"replicaCount": 2}},
			matches: true,
		},
		{
			name:    "version unset matches any deployed version",
			spec:    ReleaseSpec{ChartRef: "bitnami/redis"},
			values:  map[string]interface{}{"replica": map[string]interface{}{"replicaCount": 2}},
			matches: true,
		},
		{
			name:    "different chart",
			spec:    ReleaseSpec{ChartRef: "bitnami/valkey", Version: "19.0.1"},
			values:  map[string]interface{}{"replica": map[string]interface{}{"replicaCount": 2}},
			matches: false,
		},
		{
			name:    "different version",
			spec:    ReleaseSpec{ChartRef: "bitnami/redis", Version: "20.0.0"},
			values:  map[string]interface{}{"replica": map[string]interface{}{"replicaCount": 2}},
			matches: false,
		},
		{
			name:    "different values",
			spec:    ReleaseSpec{ChartRef: "bitnami/redis", Version: "19.0.1"},
			values:  map[string]interface{}{"replica": map[string]interface{}{"replicaCount": 5}},
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, releaseMatchesSpec(deployed, tt.spec, tt.values))
		})
	}
}

func TestReleaseMatchesSpec_FailedReleaseNeverMatches(t *testing.T) {
	failed := makeRelease("redis", "19.0.1", v1.StatusFailed, nil)
	spec := ReleaseSpec{ChartRef: "bitnami/redis", Version: "19.0.1"}
	assert.False(t, releaseMatchesSpec(failed, spec, nil))
}

func TestFormatChart(t *testing.T) {
	release := makeRelease("redis", "19.0.1", v1.StatusDeployed, nil)
	assert.Equal(t, "redis-19.0.1", formatChart(release.Chart))
	assert.Equal(t, "", formatChart(nil))
}
