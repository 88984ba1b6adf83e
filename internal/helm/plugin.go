package helm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// PluginManager manages helm plugins by shelling out to the helm binary.
// The SDK has no plugin surface, so this mirrors the CLI contract.
type PluginManager struct {
	// Binary is the helm executable; defaults to "helm" on PATH.
	Binary string

	// Env entries are appended to the subprocess environment, e.g. to
	// point HELM_PLUGINS at a non-default directory.
	Env []string
}

// NewPluginManager returns a PluginManager using the given helm binary.
func NewPluginManager(binary string) *PluginManager {
	if binary == "" {
		binary = "helm"
	}
	return &PluginManager{Binary: binary}
}

// InstallPlugin installs a plugin from a path or URL. Installing a plugin
// that is already present reports changed=false.
func (p *PluginManager) InstallPlugin(ctx context.Context, source, version string) (bool, error) {
	if source == "" {
		return false, errors.New("plugin source is required")
	}

	args := []string{"plugin", "install", source}
	if version != "" {
		args = append(args, "--version", version)
	}

	_, stderr, err := p.run(ctx, args...)
	if err != nil {
		if strings.Contains(stderr, "plugin already exists") {
			return false, nil
		}
		return false, fmt.Errorf("failed to install plugin from %q: %s", source, commandError(stderr, err))
	}
	return true, nil
}

// UninstallPlugin removes a plugin by name. Removing an unknown plugin
// reports changed=false.
func (p *PluginManager) UninstallPlugin(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, errors.New("plugin name is required")
	}

	_, stderr, err := p.run(ctx, "plugin", "uninstall", name)
	if err != nil {
		if strings.Contains(stderr, "plugin: not found") || strings.Contains(stderr, "no plugins") {
			return false, nil
		}
		return false, fmt.Errorf("failed to uninstall plugin %q: %s", name, commandError(stderr, err))
	}
	return true, nil
}

// ListPlugins returns the installed plugins.
func (p *PluginManager) ListPlugins(ctx context.Context) ([]PluginInfo, error) {
	stdout, stderr, err := p.run(ctx, "plugin", "list")
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins: %s", commandError(stderr, err))
	}
	return parsePluginList(stdout), nil
}

// run executes the helm binary and returns stdout and stderr.
func (p *PluginManager) run(ctx context.Context, args ...string) (string, string, error) {
	binary := p.Binary
	if binary == "" {
		binary = "helm"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if len(p.Env) > 0 {
		cmd.Env = append(cmd.Environ(), p.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// parsePluginList parses the tab-separated table `helm plugin list` prints.
func parsePluginList(output string) []PluginInfo {
	var plugins []PluginInfo
	for i, line := range strings.Split(strings.TrimSpace(output), "\n") {
		// First line is the NAME/VERSION/DESCRIPTION header.
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		plugin := PluginInfo{Name: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			plugin.Version = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			plugin.Description = strings.TrimSpace(fields[2])
		}
		plugins = append(plugins, plugin)
	}
	return plugins
}

func commandError(stderr string, err error) string {
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return stderr
	}
	return err.Error()
}
