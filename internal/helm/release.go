package helm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"helm.sh/helm/v4/pkg/action"
	chart "helm.sh/helm/v4/pkg/chart/v2"
	"helm.sh/helm/v4/pkg/chart/v2/loader"
	"helm.sh/helm/v4/pkg/cli/values"
	"helm.sh/helm/v4/pkg/getter"
	"helm.sh/helm/v4/pkg/kube"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	"helm.sh/helm/v4/pkg/storage/driver"
)

// develVersionConstraint matches any version including pre-releases.
const develVersionConstraint = ">0.0.0-0"

// EnsureRelease installs the chart when the release does not exist and
// upgrades it otherwise. A release already deployed from the same chart
// version with the same user-supplied values reports changed=false and is
// left untouched unless Force is set.
func (c *Client) EnsureRelease(ctx context.Context, spec ReleaseSpec) (*ReleaseResult, error) {
	if spec.Name == "" {
		return nil, errors.New("release name is required")
	}
	if spec.ChartRef == "" {
		return nil, errors.New("a chart reference is required")
	}
	if spec.Timeout == 0 {
		spec.Timeout = c.timeout
	}

	desiredValues, err := c.mergeValues(spec.Values, spec.ValuesFiles)
	if err != nil {
		return nil, err
	}

	deployed, err := c.deployedRelease(spec.Name)
	if err != nil {
		return nil, err
	}

	if deployed == nil {
		return c.install(ctx, spec, desiredValues)
	}

	if !spec.Force && releaseMatchesSpec(deployed, spec, desiredValues) {
		return &ReleaseResult{
			Changed:   false,
			Name:      deployed.Name,
			Namespace: deployed.Namespace,
			Revision:  deployed.Version,
			Status:    deployed.Info.Status.String(),
			Chart:     formatChart(deployed.Chart),
		}, nil
	}

	return c.upgrade(ctx, spec, desiredValues)
}

// deployedRelease returns the latest revision of a release, or nil when the
// release does not exist.
func (c *Client) deployedRelease(name string) (*v1.Release, error) {
	get := action.NewGet(c.config)
	release, err := get.Run(name)
	if err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up release %q: %w", name, err)
	}
	return release, nil
}

// releaseMatchesSpec reports whether a deployed release already reflects the
// desired chart and values.
func releaseMatchesSpec(deployed *v1.Release, spec ReleaseSpec, desiredValues map[string]interface{}) bool {
	if deployed.Info.Status != v1.StatusDeployed {
		return false
	}
	meta := deployed.Chart.Metadata
	if chartName(spec.ChartRef) != meta.Name {
		return false
	}
	if spec.Version != "" && spec.Version != meta.Version {
		return false
	}
	if len(desiredValues) == 0 && len(deployed.Config) == 0 {
		return true
	}
	return reflect.DeepEqual(normalizeValues(desiredValues), normalizeValues(deployed.Config))
}

// chartName extracts the bare chart name from a chart reference such as
// "bitnami/redis", "./charts/app" or "oci://registry/charts/app".
func chartName(chartRef string) string {
	trimmed := strings.TrimSuffix(chartRef, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.TrimSuffix(trimmed, ".tgz")
}

func (c *Client) install(ctx context.Context, spec ReleaseSpec, vals map[string]interface{}) (*ReleaseResult, error) {
	install := action.NewInstall(c.config)
	install.ReleaseName = spec.Name
	install.Namespace = c.namespaceFor(spec.Namespace)
	install.CreateNamespace = spec.CreateNamespace
	install.Timeout = spec.Timeout
	install.DependencyUpdate = spec.DependencyUpdate
	install.SkipCRDs = spec.SkipCRDs
	install.RollbackOnFailure = spec.Atomic
	install.DryRun = spec.DryRun
	install.ClientOnly = spec.DryRun
	if spec.Wait || spec.Atomic {
		install.WaitStrategy = kube.StatusWatcherStrategy
	}
	install.Version = spec.Version
	if spec.Devel && spec.Version == "" {
		install.Version = develVersionConstraint
	}

	ch, err := c.loadChart(&install.ChartPathOptions, spec.ChartRef)
	if err != nil {
		return nil, err
	}

	c.debugf("installing release", "name", spec.Name, "chart", spec.ChartRef)
	release, err := install.RunWithContext(ctx, ch, vals)
	if err != nil {
		return nil, c.wrapError("install", spec.Name, err)
	}

	return &ReleaseResult{
		Changed:   true,
		Method:    MethodInstall,
		Name:      release.Name,
		Namespace: release.Namespace,
		Revision:  release.Version,
		Status:    release.Info.Status.String(),
		Chart:     formatChart(release.Chart),
		Notes:     release.Info.Notes,
	}, nil
}

func (c *Client) upgrade(ctx context.Context, spec ReleaseSpec, vals map[string]interface{}) (*ReleaseResult, error) {
	upgrade := action.NewUpgrade(c.config)
	upgrade.Namespace = c.namespaceFor(spec.Namespace)
	upgrade.Timeout = spec.Timeout
	upgrade.DependencyUpdate = spec.DependencyUpdate
	upgrade.SkipCRDs = spec.SkipCRDs
	upgrade.RollbackOnFailure = spec.Atomic
	upgrade.ResetValues = spec.ResetValues
	upgrade.ReuseValues = spec.ReuseValues
	upgrade.MaxHistory = spec.HistoryMax
	upgrade.DryRun = spec.DryRun
	if spec.Wait || spec.Atomic {
		upgrade.WaitStrategy = kube.StatusWatcherStrategy
	}
	upgrade.Version = spec.Version
	if spec.Devel && spec.Version == "" {
		upgrade.Version = develVersionConstraint
	}

	ch, err := c.loadChart(&upgrade.ChartPathOptions, spec.ChartRef)
	if err != nil {
		return nil, err
	}

	c.debugf("upgrading release", "name", spec.Name, "chart", spec.ChartRef)
	release, err := upgrade.RunWithContext(ctx, spec.Name, ch, vals)
	if err != nil {
		return nil, c.wrapError("upgrade", spec.Name, err)
	}

	return &ReleaseResult{
		Changed:   true,
		Method:    MethodUpgrade,
		Name:      release.Name,
		Namespace: release.Namespace,
		Revision:  release.Version,
		Status:    release.Info.Status.String(),
		Chart:     formatChart(release.Chart),
		Notes:     release.Info.Notes,
	}, nil
}

// Uninstall removes a release. Removing a release that does not exist
// reports changed=false.
func (c *Client) Uninstall(ctx context.Context, spec UninstallSpec) (*ReleaseResult, error) {
	if spec.Name == "" {
		return nil, errors.New("release name is required")
	}
	if spec.Timeout == 0 {
		spec.Timeout = c.timeout
	}

	uninstall := action.NewUninstall(c.config)
	uninstall.KeepHistory = spec.KeepHistory
	uninstall.DisableHooks = spec.DisableHooks
	uninstall.Timeout = spec.Timeout
	if spec.Wait {
		uninstall.WaitStrategy = kube.StatusWatcherStrategy
	}

	response, err := uninstall.Run(spec.Name)
	if err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return &ReleaseResult{Changed: false, Name: spec.Name}, nil
		}
		return nil, c.wrapError("uninstall", spec.Name, err)
	}

	result := &ReleaseResult{
		Changed: true,
		Method:  MethodUninstall,
		Name:    spec.Name,
	}
	if response != nil && response.Release != nil {
		result.Namespace = response.Release.Namespace
		result.Revision = response.Release.Version
		result.Status = response.Release.Info.Status.String()
	}
	return result, nil
}

// Rollback reverts a release to a prior revision. Revision 0 targets the
// previous one.
func (c *Client) Rollback(ctx context.Context, name string, revision int, wait bool) (*ReleaseResult, error) {
	if name == "" {
		return nil, errors.New("release name is required")
	}

	rollback := action.NewRollback(c.config)
	rollback.Version = revision
	rollback.Timeout = c.timeout
	if wait {
		rollback.WaitStrategy = kube.StatusWatcherStrategy
	}

	if err := rollback.Run(name); err != nil {
		return nil, c.wrapError("rollback", name, err)
	}

	current, err := c.deployedRelease(name)
	if err != nil {
		return nil, err
	}

	result := &ReleaseResult{
		Changed: true,
		Method:  MethodRollback,
		Name:    name,
	}
	if current != nil {
		result.Namespace = current.Namespace
		result.Revision = current.Version
		result.Status = current.Info.Status.String()
		result.Chart = formatChart(current.Chart)
	}
	return result, nil
}

// loadChart resolves a chart reference through the configured repositories
// and loads it.
func (c *Client) loadChart(pathOpts *action.ChartPathOptions, chartRef string) (*chart.Chart, error) {
	chartPath, err := pathOpts.LocateChart(chartRef, c.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to locate chart %q: %w", chartRef, err)
	}
	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %q: %w", chartRef, err)
	}
	return ch, nil
}

// mergeValues layers the values files in order and the inline values on
// top, matching helm's precedence.
func (c *Client) mergeValues(inline map[string]interface{}, files []string) (map[string]interface{}, error) {
	merged, err := (&values.Options{ValueFiles: files}).MergeValues(getter.All(c.settings))
	if err != nil {
		return nil, fmt.Errorf("failed to merge values files: %w", err)
	}
	return mergeMaps(merged, inline), nil
}

// mergeMaps deep-merges b over a.
func mergeMaps(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if bMap, ok := v.(map[string]interface{}); ok {
			if aMap, ok := out[k].(map[string]interface{}); ok {
				out[k] = mergeMaps(aMap, bMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// normalizeValues round-trips numbers and nested maps into a comparable
// shape so values loaded from YAML compare equal to values from JSON.
func normalizeValues(vals map[string]interface{}) map[string]interface{} {
	if len(vals) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(vals))
	for k, v := range vals {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return normalizeValues(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return v
	}
}

func (c *Client) namespaceFor(namespace string) string {
	if namespace != "" {
		return namespace
	}
	return c.settings.Namespace()
}

func formatChart(ch *chart.Chart) string {
	if ch == nil || ch.Metadata == nil {
		return ""
	}
	return fmt.Sprintf("%s-%s", ch.Metadata.Name, ch.Metadata.Version)
}

// wrapError translates common Helm failures into actionable messages.
func (c *Client) wrapError(operation, releaseName string, err error) error {
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return fmt.Errorf("release %q not found", releaseName)
	}
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "another operation") || strings.Contains(errMsg, "pending"):
		return fmt.Errorf("another operation is in progress for release %q, please try again later", releaseName)
	case strings.Contains(errMsg, "timed out") || strings.Contains(errMsg, "timeout"):
		return fmt.Errorf("%s timed out for release %q: %w", operation, releaseName, err)
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "dial"):
		return fmt.Errorf("unable to connect to Kubernetes cluster: %w", err)
	case strings.Contains(errMsg, "forbidden") || strings.Contains(errMsg, "unauthorized"):
		return fmt.Errorf("insufficient permissions for %s of release %q: %w", operation, releaseName, err)
	default:
		return fmt.Errorf("helm %s failed for release %q: %w", operation, releaseName, err)
	}
}
