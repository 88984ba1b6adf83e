package k8s

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOverallHealth(t *testing.T) {
	tests := []struct {
		name       string
		components []ComponentHealth
		nodes      []NodeHealth
		expected   string
	}{
		{
			name:       "all healthy",
			components: []ComponentHealth{{Name: "etcd", Status: "Healthy"}},
			nodes:      []NodeHealth{{Name: "n1", Ready: true}},
			expected:   "Healthy",
		},
		{
			name:       "critical component down",
			components: []ComponentHealth{{Name: "etcd", Status: "Unhealthy"}},
			nodes:      []NodeHealth{{Name: "n1", Ready: true}},
			expected:   "Unhealthy",
		},
		{
			name:       "non-critical component down",
			components: []ComponentHealth{{Name: "metrics-server", Status: "Unhealthy"}},
			nodes:      []NodeHealth{{Name: "n1", Ready: true}},
			expected:   "Degraded",
		},
		{
			name: "most nodes not ready",
			nodes: []NodeHealth{
				{Name: "n1", Ready: true},
				{Name: "n2", Ready: false},
				{Name: "n3", Ready: false},
				{Name: "n4", Ready: false},
			},
			expected: "Degraded",
		},
		{
			name:     "no data",
			expected: "Healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calculateOverallHealth(tt.components, tt.nodes))
		})
	}
}
