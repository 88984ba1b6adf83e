package helm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"helm.sh/helm/v4/pkg/getter"
	"helm.sh/helm/v4/pkg/repo"
)

// AddRepository registers a chart repository and downloads its index. An
// entry that already exists with the same URL and credentials reports
// changed=false; a differing entry is updated in place.
func (c *Client) AddRepository(spec RepositorySpec) (*RepositoryResult, error) {
	if spec.Name == "" {
		return nil, errors.New("repository name is required")
	}
	if spec.URL == "" {
		return nil, errors.New("repository url is required")
	}

	repoFile, err := c.loadRepoFile()
	if err != nil {
		return nil, err
	}

	entry := &repo.Entry{
		Name:     spec.Name,
		URL:      spec.URL,
		Username: spec.Username,
		Password: spec.Password,
	}

	if existing := findRepository(repoFile, spec.Name); existing != nil {
		if existing.URL == entry.URL && existing.Username == entry.Username && existing.Password == entry.Password {
			return &RepositoryResult{Changed: false, Repositories: repositoryNames(repoFile)}, nil
		}
	}

	chartRepo, err := repo.NewChartRepository(entry, getter.All(c.settings))
	if err != nil {
		return nil, fmt.Errorf("failed to set up repository %q: %w", spec.Name, err)
	}
	if _, err := chartRepo.DownloadIndexFile(); err != nil {
		return nil, fmt.Errorf("repository %q is not reachable at %s: %w", spec.Name, spec.URL, err)
	}

	repoFile.Update(entry)
	if err := c.writeRepoFile(repoFile); err != nil {
		return nil, err
	}
	return &RepositoryResult{Changed: true, Repositories: repositoryNames(repoFile)}, nil
}

// RemoveRepository removes a chart repository entry. Removing an unknown
// entry reports changed=false.
func (c *Client) RemoveRepository(name string) (*RepositoryResult, error) {
	if name == "" {
		return nil, errors.New("repository name is required")
	}

	repoFile, err := c.loadRepoFile()
	if err != nil {
		return nil, err
	}

	if !repoFile.Remove(name) {
		return &RepositoryResult{Changed: false, Repositories: repositoryNames(repoFile)}, nil
	}
	if err := c.writeRepoFile(repoFile); err != nil {
		return nil, err
	}
	return &RepositoryResult{Changed: true, Repositories: repositoryNames(repoFile)}, nil
}

// UpdateRepositories refreshes the index of every configured repository.
func (c *Client) UpdateRepositories() (*RepositoryResult, error) {
	repoFile, err := c.loadRepoFile()
	if err != nil {
		return nil, err
	}

	for _, entry := range repoFile.Repositories {
		chartRepo, err := repo.NewChartRepository(entry, getter.All(c.settings))
		if err != nil {
			return nil, fmt.Errorf("failed to set up repository %q: %w", entry.Name, err)
		}
		if _, err := chartRepo.DownloadIndexFile(); err != nil {
			return nil, fmt.Errorf("failed to update repository %q: %w", entry.Name, err)
		}
	}
	return &RepositoryResult{Changed: len(repoFile.Repositories) > 0, Repositories: repositoryNames(repoFile)}, nil
}

// ListRepositories returns the configured repository entries.
func (c *Client) ListRepositories() ([]RepositorySpec, error) {
	repoFile, err := c.loadRepoFile()
	if err != nil {
		return nil, err
	}

	repos := make([]RepositorySpec, 0, len(repoFile.Repositories))
	for _, entry := range repoFile.Repositories {
		repos = append(repos, RepositorySpec{
			Name:     entry.Name,
			URL:      entry.URL,
			Username: entry.Username,
		})
	}
	return repos, nil
}

func (c *Client) loadRepoFile() (*repo.File, error) {
	repoFile, err := repo.LoadFile(c.settings.RepositoryConfig)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repo.NewFile(), nil
		}
		return nil, fmt.Errorf("failed to load repository config: %w", err)
	}
	return repoFile, nil
}

func (c *Client) writeRepoFile(repoFile *repo.File) error {
	if err := os.MkdirAll(filepath.Dir(c.settings.RepositoryConfig), 0o755); err != nil {
		return fmt.Errorf("failed to create repository config directory: %w", err)
	}
	if err := repoFile.WriteFile(c.settings.RepositoryConfig, 0o644); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}
	return nil
}

func findRepository(repoFile *repo.File, name string) *repo.Entry {
	for _, entry := range repoFile.Repositories {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}

func repositoryNames(repoFile *repo.File) []string {
	names := make([]string, 0, len(repoFile.Repositories))
	for _, entry := range repoFile.Repositories {
		names = append(names, entry.Name)
	}
	return names
}
