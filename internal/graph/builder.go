package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/jakoblorz/go-mvnaudit/internal/versioning"
	"github.com/jakoblorz/go-mvnaudit/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// VersionOracle reports the latest published version of an artifact.
// found is false when the repository has no metadata for it.
type VersionOracle interface {
	Latest(ctx context.Context, c models.Coordinate) (latest string, found bool, err error)
}

// ExternalDependency is an organization dependency that is not checked out
// in the workspace, so no edge can be built for it.
type ExternalDependency struct {
	From       string
	Dependency models.Coordinate
}

// Graph is the organization-scoped dependency graph of a workspace.
type Graph struct {
	Root     string
	Projects *models.ProjectSet
	External []ExternalDependency
	Issues   []models.Issue
}

// Dependents returns the projects depending on key, once per declared occurrence.
func (g *Graph) Dependents(key string) []*models.Project {
	return g.Projects.Dependents(key)
}

// DependencyIndex maps every project key to its dependents.
func (g *Graph) DependencyIndex() map[string][]*models.Project {
	index := make(map[string][]*models.Project, g.Projects.Len())
	for _, p := range g.Projects.Projects() {
		if dependents := g.Projects.Dependents(p.Key()); len(dependents) > 0 {
			index[p.Key()] = dependents
		}
	}
	return index
}

// Builder turns a discovered workspace into a Graph.
type Builder struct {
	whitelist   Whitelist
	oracle      VersionOracle
	concurrency int
	logger      *slog.Logger
}

// Option configures the builder.
type Option func(*Builder)

// WithOracle enables latest-version lookups with at most concurrency requests in flight.
func WithOracle(oracle VersionOracle, concurrency int) Option {
	return func(b *Builder) {
		b.oracle = oracle
		if concurrency > 0 {
			b.concurrency = concurrency
		}
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder for the given organization whitelist.
func NewBuilder(whitelist Whitelist, options ...Option) *Builder {
	b := &Builder{
		whitelist:   whitelist,
		concurrency: 1,
		logger:      slog.Default(),
	}

	for _, option := range options {
		option(b)
	}

	return b
}

// Build filters and resolves every project's dependencies, builds the
// reverse edges and, with an oracle configured, annotates latest versions.
//
// Dependency and oracle problems are collected in Graph.Issues. The only
// error returned is ErrDanglingDependency (or a cancelled context).
func (b *Builder) Build(ctx context.Context, d *workspace.Discovery) (*Graph, error) {
	g := &Graph{
		Root:     d.Root,
		Projects: d.Projects,
		Issues:   append([]models.Issue(nil), d.Issues...),
	}

	b.resolve(g)

	if err := b.link(g); err != nil {
		return nil, err
	}

	if b.oracle != nil {
		if err := b.annotate(ctx, g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (b *Builder) resolve(g *Graph) {
	set := g.Projects
	done := make(map[string]bool, set.Len())

	for _, p := range resolutionOrder(set) {
		props := versioning.ProjectProperties(p)
		managed := b.managedSource(set, p, done)

		p.Resolved = nil
		p.Dependencies = nil
		for _, decl := range p.Declarations {
			if !b.whitelist.Matches(decl.GroupID) {
				continue
			}

			c, err := versioning.Resolve(decl, props, managed)
			if err != nil {
				b.logger.Debug("dropping dependency", "project", p.Key(), "dependency", decl.ArtifactKey(), "error", err)
				g.Issues = append(g.Issues, models.Issue{Scope: models.ScopeDependency, Path: p.DescriptorPath, Key: p.Key(), Err: err})
				continue
			}

			p.Resolved = append(p.Resolved, c)
			if !set.Has(c.ArtifactKey()) {
				g.External = append(g.External, ExternalDependency{From: p.Key(), Dependency: c})
				continue
			}
			p.Dependencies = append(p.Dependencies, c)
		}

		done[p.Key()] = true
	}
}

// managedSource picks where versionless declarations of p are looked up:
// the parent project when p declares a parent (nil while the parent is not
// known), the workspace projects themselves otherwise.
func (b *Builder) managedSource(set *models.ProjectSet, p *models.Project, done map[string]bool) versioning.ManagedVersions {
	if p.Parent == nil {
		return reactor{set: set}
	}
	parent, ok := set.Get(p.Parent.ArtifactKey())
	if !ok || !done[parent.Key()] {
		return nil
	}
	return parent
}

// reactor resolves a versionless dependency to the workspace project's own version.
type reactor struct {
	set *models.ProjectSet
}

func (r reactor) ManagedVersion(groupID, artifactID string) (string, bool) {
	p, ok := r.set.Get(groupID + ":" + artifactID)
	if !ok || strings.Contains(p.Coordinate.Version, "${") {
		return "", false
	}
	return p.Coordinate.Version, true
}

// resolutionOrder returns the projects in registration order, moved so that
// a parent present in the workspace comes before its children.
func resolutionOrder(set *models.ProjectSet) []*models.Project {
	order := make([]*models.Project, 0, set.Len())
	state := make(map[string]int, set.Len()) // 1 visiting, 2 done

	var visit func(p *models.Project)
	visit = func(p *models.Project) {
		if state[p.Key()] != 0 {
			return
		}
		state[p.Key()] = 1
		if p.Parent != nil {
			if parent, ok := set.Get(p.Parent.ArtifactKey()); ok {
				visit(parent)
			}
		}
		state[p.Key()] = 2
		order = append(order, p)
	}

	for _, p := range set.Projects() {
		visit(p)
	}
	return order
}

func (b *Builder) link(g *Graph) error {
	for _, p := range g.Projects.Projects() {
		p.Dependents = nil
	}

	for _, p := range g.Projects.Projects() {
		for _, dep := range p.Dependencies {
			target, ok := g.Projects.Get(dep.ArtifactKey())
			if !ok {
				return fmt.Errorf("%w: %s -> %s", models.ErrDanglingDependency, p.Key(), dep.ArtifactKey())
			}
			target.Dependents = append(target.Dependents, p.Key())
		}
	}
	return nil
}

func (b *Builder) annotate(ctx context.Context, g *Graph) error {
	var (
		mu     sync.Mutex
		issues []models.Issue
	)

	eg := new(errgroup.Group)
	eg.SetLimit(b.concurrency)

	for _, p := range g.Projects.Projects() {
		eg.Go(func() error {
			latest, found, err := b.oracle.Latest(ctx, p.Coordinate)
			if err != nil {
				b.logger.Warn("latest version lookup failed", "project", p.Key(), "error", err)
				mu.Lock()
				issues = append(issues, models.Issue{Scope: models.ScopeOracle, Path: p.DescriptorPath, Key: p.Key(), Err: err})
				mu.Unlock()
				return nil
			}
			if found {
				p.SetLatestVersion(latest)
			}
			return nil
		})
	}

	_ = eg.Wait()

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].Key < issues[j].Key
	})
	g.Issues = append(g.Issues, issues...)

	return ctx.Err()
}
