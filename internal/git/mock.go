package git

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
)

// Operation is one recorded call on the mock.
type Operation struct {
	Kind string // "clone" or "fetch"
	URL  string
	Dir  string
}

// MockGitClient implements GitClient for testing. Clones materialize a
// checkout (a .git directory plus the seeded files) on the mock filesystem.
type MockGitClient struct {
	mu         sync.Mutex
	fs         *filesystem.MockFileSystem
	operations []Operation
	branches   map[string]string   // dir -> branch
	contents   map[string][]seeded // url -> files created on clone

	// Hooks for testing error scenarios, keyed by URL (clone) or dir (fetch)
	CloneErrors map[string]error
	FetchErrors map[string]error

	// Broken marks dirs that have a .git directory git does not accept.
	Broken map[string]bool
}

type seeded struct {
	path    string
	content []byte
}

// NewMockGitClient creates a MockGitClient working on fs.
func NewMockGitClient(fs *filesystem.MockFileSystem) *MockGitClient {
	return &MockGitClient{
		fs:          fs,
		branches:    make(map[string]string),
		contents:    make(map[string][]seeded),
		CloneErrors: make(map[string]error),
		FetchErrors: make(map[string]error),
		Broken:      make(map[string]bool),
	}
}

// SeedRemote registers a file that a clone of url will contain, relative to the checkout root.
func (m *MockGitClient) SeedRemote(url, path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[url] = append(m.contents[url], seeded{path: path, content: content})
}

// Operations returns the recorded calls in order.
func (m *MockGitClient) Operations() []Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Operation(nil), m.operations...)
}

func (m *MockGitClient) WithContext(ctx context.Context) GitClient {
	return m
}

func (m *MockGitClient) Clone(url, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.operations = append(m.operations, Operation{Kind: "clone", URL: url, Dir: dir})

	if err := m.CloneErrors[url]; err != nil {
		return err
	}
	if m.fs.Exists(dir) {
		return fmt.Errorf("failed to clone %s: destination path %s already exists", url, dir)
	}

	m.fs.AddDir(filepath.Join(dir, ".git"))
	for _, f := range m.contents[url] {
		m.fs.AddFile(filepath.Join(dir, f.path), f.content)
	}
	m.branches[dir] = "master"
	return nil
}

func (m *MockGitClient) Fetch(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.operations = append(m.operations, Operation{Kind: "fetch", Dir: dir})

	if err := m.FetchErrors[dir]; err != nil {
		return err
	}
	if !m.fs.IsDir(filepath.Join(dir, ".git")) {
		return fmt.Errorf("failed to fetch %s: not a git repository", dir)
	}
	return nil
}

func (m *MockGitClient) IsGitRepo(dir string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Broken[dir] && m.fs.IsDir(filepath.Join(dir, ".git")), nil
}

func (m *MockGitClient) GetCurrentBranch(dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if branch, ok := m.branches[dir]; ok {
		return branch, nil
	}
	if !m.fs.IsDir(filepath.Join(dir, ".git")) {
		return "", fmt.Errorf("failed to get current branch: %s is not a git repository", dir)
	}
	return "master", nil
}
