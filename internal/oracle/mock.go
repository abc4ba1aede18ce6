package oracle

import (
	"context"
	"sync"

	"github.com/jakoblorz/go-mvnaudit/internal/models"
)

// MockOracle answers from an in-memory table keyed by artifact key.
type MockOracle struct {
	mu       sync.Mutex
	versions map[string]string
	errors   map[string]error
	lookups  []string
}

// NewMockOracle creates an empty MockOracle; every lookup is "not found".
func NewMockOracle() *MockOracle {
	return &MockOracle{
		versions: make(map[string]string),
		errors:   make(map[string]error),
	}
}

// SetLatest publishes version as the latest for key.
func (m *MockOracle) SetLatest(key, version string) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[key] = version
	return m
}

// SetError makes lookups for key fail with err.
func (m *MockOracle) SetError(key string, err error) *MockOracle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key] = err
	return m
}

// Lookups returns the artifact keys queried so far.
func (m *MockOracle) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookups...)
}

func (m *MockOracle) Latest(ctx context.Context, c models.Coordinate) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := c.ArtifactKey()
	m.lookups = append(m.lookups, key)

	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err, ok := m.errors[key]; ok {
		return "", false, err
	}
	version, ok := m.versions[key]
	return version, ok, nil
}
