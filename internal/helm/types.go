package helm

import "time"

// ReleaseSpec describes the desired state of a release.
type ReleaseSpec struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`

	// ChartRef is a chart reference: a repo/chart name, a local path, or
	// an OCI reference.
	ChartRef string `json:"chartRef"`
	Version  string `json:"version,omitempty"`

	// Devel allows development versions when no explicit version is set.
	Devel bool `json:"devel,omitempty"`

	Values      map[string]interface{} `json:"values,omitempty"`
	ValuesFiles []string               `json:"valuesFiles,omitempty"`

	CreateNamespace  bool `json:"createNamespace,omitempty"`
	DependencyUpdate bool `json:"dependencyUpdate,omitempty"`
	SkipCRDs         bool `json:"skipCrds,omitempty"`

	// Atomic rolls the release back when the operation fails.
	Atomic bool `json:"atomic,omitempty"`

	// Wait blocks until the released resources are ready.
	Wait    bool          `json:"wait,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`

	// Upgrade-only behavior.
	ResetValues bool `json:"resetValues,omitempty"`
	ReuseValues bool `json:"reuseValues,omitempty"`
	HistoryMax  int  `json:"historyMax,omitempty"`

	// Force upgrades even when the deployed release already matches.
	Force bool `json:"force,omitempty"`

	// DryRun renders the operation without touching the cluster.
	DryRun bool `json:"dryRun,omitempty"`
}

// Release methods reported in results.
const (
	MethodInstall   = "install"
	MethodUpgrade   = "upgrade"
	MethodUninstall = "uninstall"
	MethodRollback  = "rollback"
)

// ReleaseResult reports the outcome of a release operation.
type ReleaseResult struct {
	Changed  bool   `json:"changed"`
	Method   string `json:"method,omitempty"`
	Name     string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Revision int    `json:"revision,omitempty"`
	Status   string `json:"status,omitempty"`
	Chart    string `json:"chart,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// UninstallSpec configures release removal.
type UninstallSpec struct {
	Name         string        `json:"name"`
	KeepHistory  bool          `json:"keepHistory,omitempty"`
	DisableHooks bool          `json:"disableHooks,omitempty"`
	Wait         bool          `json:"wait,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty"`
}

// ReleaseInfo holds the status details of a deployed release.
type ReleaseInfo struct {
	Name      string                 `json:"name"`
	Namespace string                 `json:"namespace"`
	Revision  int                    `json:"revision"`
	Status    string                 `json:"status"`
	Chart     string                 `json:"chart"`
	AppVersion string                `json:"appVersion,omitempty"`
	Updated   time.Time              `json:"updated,omitempty"`
	Values    map[string]interface{} `json:"values,omitempty"`
	Hooks     []string               `json:"hooks,omitempty"`
	Notes     string                 `json:"notes,omitempty"`
	Manifest  string                 `json:"manifest,omitempty"`
}

// InfoOptions selects what GetReleaseInfo returns.
type InfoOptions struct {
	// AllValues returns computed values instead of user-supplied ones.
	AllValues bool `json:"allValues,omitempty"`

	IncludeHooks    bool `json:"includeHooks,omitempty"`
	IncludeNotes    bool `json:"includeNotes,omitempty"`
	IncludeManifest bool `json:"includeManifest,omitempty"`
}

// RevisionInfo is one entry of a release's history.
type RevisionInfo struct {
	Revision    int       `json:"revision"`
	Status      string    `json:"status"`
	Chart       string    `json:"chart"`
	AppVersion  string    `json:"appVersion,omitempty"`
	Updated     time.Time `json:"updated,omitempty"`
	Description string    `json:"description,omitempty"`
}

// TemplateSpec configures local chart rendering.
type TemplateSpec struct {
	Name        string                 `json:"name"`
	ChartRef    string                 `json:"chartRef"`
	Version     string                 `json:"version,omitempty"`
	Values      map[string]interface{} `json:"values,omitempty"`
	ValuesFiles []string               `json:"valuesFiles,omitempty"`
	IncludeCRDs bool                   `json:"includeCrds,omitempty"`

	// ShowOnly restricts output to the named template files.
	ShowOnly []string `json:"showOnly,omitempty"`
}

// RepositorySpec describes a chart repository entry.
type RepositorySpec struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// RepositoryResult reports the outcome of a repository operation.
type RepositoryResult struct {
	Changed      bool     `json:"changed"`
	Repositories []string `json:"repositories,omitempty"`
}

// PluginInfo describes an installed helm plugin.
type PluginInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}
