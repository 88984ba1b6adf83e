// Package kustomize renders kustomization directories to manifest YAML.
package kustomize

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/kustomize/api/krusty"
	"sigs.k8s.io/kustomize/api/types"
	"sigs.k8s.io/kustomize/kyaml/filesys"
)

// Options configures a Build call.
type Options struct {
	// EnableHelm allows kustomizations that inflate helm charts. It
	// requires a helm binary on the PATH.
	EnableHelm bool

	// HelmBinary overrides the helm executable used for chart inflation.
	HelmBinary string

	// LoadRestrictions relaxes the file loading root when set to "none".
	LoadRestrictions string
}

// Build renders the kustomization at dir and returns the multi-document
// YAML output, ordered the way kustomize emits it.
func Build(dir string, opts Options) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("kustomization directory %q is not readable: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", dir)
	}
	if !hasKustomization(dir) {
		return "", fmt.Errorf("%q does not contain a kustomization file", dir)
	}

	buildOpts := krusty.MakeDefaultOptions()
	switch opts.LoadRestrictions {
	case "", "rootOnly":
		buildOpts.LoadRestrictions = types.LoadRestrictionsRootOnly
	case "none":
		buildOpts.LoadRestrictions = types.LoadRestrictionsNone
	default:
		return "", fmt.Errorf("unknown load restriction %q", opts.LoadRestrictions)
	}

	if opts.EnableHelm {
		helmBinary := opts.HelmBinary
		if helmBinary == "" {
			helmBinary = "helm"
		}
		buildOpts.PluginConfig = types.EnabledPluginConfig(types.BploUseStaticallyLinked)
		buildOpts.PluginConfig.HelmConfig.Enabled = true
		buildOpts.PluginConfig.HelmConfig.Command = helmBinary
	}

	kustomizer := krusty.MakeKustomizer(buildOpts)
	resMap, err := kustomizer.Run(filesys.MakeFsOnDisk(), dir)
	if err != nil {
		return "", fmt.Errorf("kustomize build of %q failed: %w", dir, err)
	}

	yamlBytes, err := resMap.AsYaml()
	if err != nil {
		return "", fmt.Errorf("failed to render kustomize output: %w", err)
	}
	return string(yamlBytes), nil
}

// hasKustomization reports whether dir holds one of the recognized
// kustomization file names.
func hasKustomization(dir string) bool {
	for _, name := range []string{"kustomization.yaml", "kustomization.yml", "Kustomization"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
