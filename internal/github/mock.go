package github

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu           sync.RWMutex
	repositories map[string]*Repository // key: "owner/repo"

	// Hooks for testing error scenarios
	ListOrganizationRepositoriesError error
	GetRepositoryError                error
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		repositories: make(map[string]*Repository),
	}
}

// SetupRepository adds a repository to the mock
func (m *MockClient) SetupRepository(owner, repo string) *Repository {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	r := &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		CloneURL:      fmt.Sprintf("https://github.com/%s/%s.git", owner, repo),
		SSHURL:        fmt.Sprintf("git@github.com:%s/%s.git", owner, repo),
		DefaultBranch: "master",
	}
	m.repositories[key] = r
	return r
}

// SetupArchivedRepository adds an archived repository to the mock
func (m *MockClient) SetupArchivedRepository(owner, repo string) *Repository {
	r := m.SetupRepository(owner, repo)

	m.mu.Lock()
	defer m.mu.Unlock()
	r.Archived = true
	return r
}

func (m *MockClient) ListOrganizationRepositories(ctx context.Context, org string) ([]*Repository, error) {
	if m.ListOrganizationRepositoriesError != nil {
		return nil, m.ListOrganizationRepositoriesError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var repos []*Repository
	for _, r := range m.repositories {
		if r.Owner == org {
			copied := *r
			repos = append(repos, &copied)
		}
	}
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].Name < repos[j].Name
	})
	return repos, nil
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.repositories[fmt.Sprintf("%s/%s", owner, repo)]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s not found", owner, repo)
	}
	copied := *r
	return &copied, nil
}
