package helm

import (
	"errors"
	"fmt"

	"helm.sh/helm/v4/pkg/action"
	v1 "helm.sh/helm/v4/pkg/release/v1"
	"helm.sh/helm/v4/pkg/storage/driver"
)

// GetReleaseInfo returns the status of a release, or nil when the release
// does not exist.
func (c *Client) GetReleaseInfo(name string, opts InfoOptions) (*ReleaseInfo, error) {
	if name == "" {
		return nil, errors.New("release name is required")
	}

	release, err := c.deployedRelease(name)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, nil
	}

	info := &ReleaseInfo{
		Name:       release.Name,
		Namespace:  release.Namespace,
		Revision:   release.Version,
		Status:     release.Info.Status.String(),
		Chart:      formatChart(release.Chart),
		AppVersion: release.Chart.AppVersion(),
		Updated:    release.Info.LastDeployed.Time,
	}

	if opts.AllValues {
		values, err := c.computedValues(name)
		if err != nil {
			return nil, err
		}
		info.Values = values
	} else {
		info.Values = release.Config
	}

	if opts.IncludeHooks {
		for _, hook := range release.Hooks {
			info.Hooks = append(info.Hooks, hook.Path)
		}
	}
	if opts.IncludeNotes {
		info.Notes = release.Info.Notes
	}
	if opts.IncludeManifest {
		info.Manifest = release.Manifest
	}
	return info, nil
}

// computedValues returns the fully coalesced values of a release.
func (c *Client) computedValues(name string) (map[string]interface{}, error) {
	getValues := action.NewGetValues(c.config)
	getValues.AllValues = true
	values, err := getValues.Run(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get values for release %q: %w", name, err)
	}
	return values, nil
}

// GetReleaseHistory returns the revision history of a release, oldest
// first. A release with no history returns an empty slice.
func (c *Client) GetReleaseHistory(name string, max int) ([]RevisionInfo, error) {
	if name == "" {
		return nil, errors.New("release name is required")
	}
	if max <= 0 {
		max = 256
	}

	history := action.NewHistory(c.config)
	history.Max = max
	releases, err := history.Run(name)
	if err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return []RevisionInfo{}, nil
		}
		return nil, c.wrapError("history", name, err)
	}

	revisions := make([]RevisionInfo, 0, len(releases))
	for _, release := range releases {
		revisions = append(revisions, RevisionInfo{
			Revision:    release.Version,
			Status:      release.Info.Status.String(),
			Chart:       formatChart(release.Chart),
			AppVersion:  release.Chart.AppVersion(),
			Updated:     release.Info.LastDeployed.Time,
			Description: release.Info.Description,
		})
	}
	return revisions, nil
}

// ListReleases returns the releases in the client's namespace, optionally
// filtered by a label selector.
func (c *Client) ListReleases(selector string, allNamespaces bool) ([]ReleaseInfo, error) {
	lister := action.NewList(c.config)
	lister.AllNamespaces = allNamespaces
	lister.Selector = selector
	lister.StateMask = action.ListAll

	releases, err := lister.Run()
	if err != nil {
		return nil, c.wrapError("list", "", err)
	}

	infos := make([]ReleaseInfo, 0, len(releases))
	for _, release := range releases {
		infos = append(infos, releaseSummary(release))
	}
	return infos, nil
}

func releaseSummary(release *v1.Release) ReleaseInfo {
	return ReleaseInfo{
		Name:       release.Name,
		Namespace:  release.Namespace,
		Revision:   release.Version,
		Status:     release.Info.Status.String(),
		Chart:      formatChart(release.Chart),
		AppVersion: release.Chart.AppVersion(),
		Updated:    release.Info.LastDeployed.Time,
	}
}
