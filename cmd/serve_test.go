package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCmdProperties(t *testing.T) {
	cmd := newServeCmd()

	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Start the kubesteward MCP server", cmd.Short)
	assert.True(t, strings.Contains(cmd.Long, "Model Context Protocol"))
	assert.True(t, strings.Contains(cmd.Long, "stdio"))
	assert.True(t, strings.Contains(cmd.Long, "sse"))
	assert.True(t, strings.Contains(cmd.Long, "streamable-http"))
}

func TestServeCmdFlags(t *testing.T) {
	cmd := newServeCmd()

	flagNames := []string{
		"non-destructive",
		"dry-run",
		"allowed-operations",
		"restricted-namespaces",
		"namespace",
		"kubeconfig",
		"kube-context",
		"in-cluster",
		"qps-limit",
		"burst-limit",
		"timeout",
		"helm-storage-driver",
		"helm-binary",
		"debug",
		"log-format",
		"transport",
		"http-addr",
		"sse-endpoint",
		"message-endpoint",
		"http-endpoint",
		"metrics-server",
		"metrics-addr",
	}

	for _, flagName := range flagNames {
		flag := cmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "Flag %s should exist", flagName)
	}
}

func TestServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flagName string
		expected string
	}{
		{"non-destructive", "true"},
		{"dry-run", "false"},
		{"namespace", "default"},
		{"qps-limit", "20"},
		{"burst-limit", "30"},
		{"timeout", "30s"},
		{"helm-storage-driver", "secret"},
		{"helm-binary", "helm"},
		{"log-format", "json"},
		{"transport", "stdio"},
		{"http-addr", ":8080"},
		{"sse-endpoint", "/sse"},
		{"message-endpoint", "/message"},
		{"http-endpoint", "/mcp"},
		{"metrics-server", "false"},
		{"metrics-addr", ":9090"},
	}

	for _, test := range tests {
		flag := cmd.Flags().Lookup(test.flagName)
		assert.Equal(t, test.expected, flag.DefValue,
			"Flag %s should have default value %s", test.flagName, test.expected)
	}
}
