package helm

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"helm.sh/helm/v4/pkg/action"
)

// Template renders a chart locally and returns the manifest text. No
// cluster connection is needed; capabilities default to the client-only set.
func (c *Client) Template(ctx context.Context, spec TemplateSpec) (string, error) {
	if spec.ChartRef == "" {
		return "", errors.New("a chart reference is required")
	}
	if spec.Name == "" {
		spec.Name = "release-name"
	}

	install := action.NewInstall(c.config)
	install.ReleaseName = spec.Name
	install.Namespace = c.settings.Namespace()
	install.DryRun = true
	install.ClientOnly = true
	install.Replace = true
	install.IncludeCRDs = spec.IncludeCRDs
	install.Version = spec.Version

	ch, err := c.loadChart(&install.ChartPathOptions, spec.ChartRef)
	if err != nil {
		return "", err
	}

	vals, err := c.mergeValues(spec.Values, spec.ValuesFiles)
	if err != nil {
		return "", err
	}

	release, err := install.RunWithContext(ctx, ch, vals)
	if err != nil {
		return "", c.wrapError("template", spec.Name, err)
	}

	manifest := release.Manifest
	if len(spec.ShowOnly) > 0 {
		manifest, err = filterManifests(manifest, ch.Name(), spec.ShowOnly)
		if err != nil {
			return "", err
		}
	}
	return manifest, nil
}

// filterManifests keeps only the rendered documents whose source template
// matches one of the requested paths.
func filterManifests(manifest, chartName string, showOnly []string) (string, error) {
	wanted := make(map[string]bool, len(showOnly))
	for _, template := range showOnly {
		wanted[path.Join(chartName, template)] = true
	}

	var kept []string
	found := make(map[string]bool)
	for _, doc := range strings.Split(manifest, "\n---") {
		source := manifestSource(doc)
		if source == "" || !wanted[source] {
			continue
		}
		found[source] = true
		kept = append(kept, strings.TrimPrefix(doc, "\n"))
	}

	for _, template := range showOnly {
		if !found[path.Join(chartName, template)] {
			return "", fmt.Errorf("template %q was not rendered or produced no output", template)
		}
	}
	return strings.Join(kept, "\n---\n") + "\n", nil
}

// manifestSource extracts the template path from a rendered document's
// "# Source:" comment.
func manifestSource(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "# Source: "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
