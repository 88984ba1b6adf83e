package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubesteward/kubesteward/internal/instrumentation"
)

// createTestProvider creates an instrumentation provider for testing.
func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()

	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name     string
		config   MetricsServerConfig
		wantErr  string
		wantAddr string
	}{
		{
			name:    "nil instrumentation provider",
			config:  MetricsServerConfig{Addr: ":9090"},
			wantErr: "instrumentation provider is required",
		},
		{
			name:     "default addr",
			config:   MetricsServerConfig{InstrumentationProvider: createTestProvider(t)},
			wantAddr: DefaultMetricsAddr,
		},
		{
			name:     "custom addr",
			config:   MetricsServerConfig{Addr: ":9091", InstrumentationProvider: createTestProvider(t)},
			wantAddr: ":9091",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewMetricsServer(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, server.Addr())
		})
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9093",
		InstrumentationProvider: createTestProvider(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
}
