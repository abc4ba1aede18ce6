package models

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DependencyDecl is a dependency as declared in a descriptor, before its
// version is resolved.
type DependencyDecl struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`

	// Version is the literal text of the version element; empty when HasVersion is false.
	Version    string `json:"version,omitempty"`
	HasVersion bool   `json:"hasVersion"`

	// Managed is set for entries from the dependencyManagement block.
	Managed bool `json:"managed,omitempty"`
}

// ArtifactKey returns "group:artifact" of the declared dependency.
func (d DependencyDecl) ArtifactKey() string {
	return d.GroupID + ":" + d.ArtifactID
}

// Project represents one discovered Maven module in the workspace.
type Project struct {
	// Directory is the folder containing the project's pom.xml.
	Directory string

	// DescriptorPath is the absolute path to pom.xml.
	DescriptorPath string

	Coordinate Coordinate

	// Parent is the coordinate of the parent element, nil if absent.
	Parent *Coordinate

	// Properties holds the descriptor's own properties block.
	Properties map[string]string

	// Declarations are the raw dependency declarations (dependencies followed
	// by dependencyManagement entries).
	Declarations []DependencyDecl

	// Modules are the module names declared by the descriptor.
	Modules []string

	// Resolved holds every organization dependency whose version resolved,
	// including ones that are not part of the workspace. Children resolve
	// managed versions against it.
	Resolved []Coordinate

	// Dependencies are the filtered, resolved workspace dependencies.
	Dependencies []Coordinate

	// Dependents lists the artifact keys of projects depending on this one,
	// once per declared occurrence. Look them up through the owning ProjectSet.
	Dependents []string

	// LatestVersion is the latest published version; empty when unknown.
	LatestVersion string

	// UpToDate is true when LatestVersion equals Coordinate.Version.
	UpToDate bool
}

// NewProject creates a Project for the descriptor at descriptorPath.
func NewProject(descriptorPath string, coordinate Coordinate) *Project {
	return &Project{
		Directory:      filepath.Dir(descriptorPath),
		DescriptorPath: descriptorPath,
		Coordinate:     coordinate,
		Properties:     map[string]string{},
	}
}

// Key returns the project's artifact key.
func (p *Project) Key() string {
	return p.Coordinate.ArtifactKey()
}

// ManagedVersion returns the version this project resolved for group:artifact.
func (p *Project) ManagedVersion(groupID, artifactID string) (string, bool) {
	for _, c := range p.Resolved {
		if c.GroupID == groupID && c.ArtifactID == artifactID {
			return c.Version, true
		}
	}
	return "", false
}

// SetLatestVersion records the oracle's answer and recomputes UpToDate.
func (p *Project) SetLatestVersion(latest string) {
	p.LatestVersion = latest
	p.UpToDate = latest != "" && latest == p.Coordinate.Version
}

// ProjectSet is the canonical registry of projects keyed by artifact key.
// It remembers insertion order so iteration is deterministic within a run.
type ProjectSet struct {
	byKey map[string]*Project
	order []string
}

// NewProjectSet creates an empty ProjectSet.
func NewProjectSet() *ProjectSet {
	return &ProjectSet{byKey: make(map[string]*Project)}
}

// Add registers a project. A second project with the same artifact key is
// rejected with ErrDuplicateCoordinate and the registry is left unchanged.
func (s *ProjectSet) Add(p *Project) error {
	key := p.Key()
	if existing, ok := s.byKey[key]; ok {
		return fmt.Errorf("%w: %s declared by %s and %s", ErrDuplicateCoordinate, key, existing.DescriptorPath, p.DescriptorPath)
	}
	s.byKey[key] = p
	s.order = append(s.order, key)
	return nil
}

// Get returns the project registered under key.
func (s *ProjectSet) Get(key string) (*Project, bool) {
	p, ok := s.byKey[key]
	return p, ok
}

// Has reports whether key is registered.
func (s *ProjectSet) Has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// Len returns the number of projects.
func (s *ProjectSet) Len() int {
	return len(s.order)
}

// Projects returns the projects in registration order.
func (s *ProjectSet) Projects() []*Project {
	projects := make([]*Project, 0, len(s.order))
	for _, key := range s.order {
		projects = append(projects, s.byKey[key])
	}
	return projects
}

// Keys returns the artifact keys sorted alphabetically.
func (s *ProjectSet) Keys() []string {
	keys := append([]string(nil), s.order...)
	sort.Strings(keys)
	return keys
}

// Dependents resolves the reverse edges of key into projects.
func (s *ProjectSet) Dependents(key string) []*Project {
	p, ok := s.byKey[key]
	if !ok {
		return nil
	}

	result := make([]*Project, 0, len(p.Dependents))
	for _, dependentKey := range p.Dependents {
		if dependent, ok := s.byKey[dependentKey]; ok {
			result = append(result, dependent)
		}
	}
	return result
}
