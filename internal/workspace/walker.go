package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/jakoblorz/go-mvnaudit/internal/pom"
	"github.com/jakoblorz/go-mvnaudit/internal/versioning"
)

const (
	// IgnoreFile lists checkouts (gitignore syntax) excluded from discovery.
	IgnoreFile = ".mvnauditignore"

	gitMarker = ".git"
)

// Walker discovers every descriptor of a workspace of git checkouts.
type Walker struct {
	fs     filesystem.FileSystem
	parser *pom.Parser
	logger *slog.Logger
}

// Option configures walker behavior.
type Option func(*Walker)

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New creates a new Walker.
func New(fs filesystem.FileSystem, options ...Option) *Walker {
	w := &Walker{
		fs:     fs,
		parser: pom.NewParser(fs),
		logger: slog.Default(),
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// Discovery is the outcome of walking a workspace.
type Discovery struct {
	Root string

	// Seeds are the root descriptors of the checkouts, in directory order.
	Seeds []string

	// Order lists every descriptor path in the order it was processed.
	// A module is always processed after the descriptor that declared it.
	Order []string

	Projects *models.ProjectSet
	Issues   []models.Issue
}

// Walk enumerates the checkouts under root and parses every descriptor
// reachable through modules, breadth-first.
//
// Only a missing or unreadable root is fatal; per-descriptor problems are
// collected in Discovery.Issues.
func (w *Walker) Walk(root string) (*Discovery, error) {
	seeds, root, err := w.seeds(root)
	if err != nil {
		return nil, err
	}

	d := &Discovery{
		Root:     root,
		Seeds:    seeds,
		Projects: models.NewProjectSet(),
	}

	visited := make(map[string]bool, len(seeds))
	queue := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		visited[seed] = true
		queue = append(queue, seed)
	}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		d.Order = append(d.Order, path)

		desc, err := w.parser.Parse(path)
		if err != nil {
			w.logger.Warn("skipping descriptor", "path", path, "error", err)
			d.Issues = append(d.Issues, models.Issue{Scope: models.ScopeProject, Path: path, Err: err})
			continue
		}

		w.logger.Debug("parsed descriptor", "path", path, "coordinate", desc.Coordinate.VersionKey(), "modules", len(desc.Modules))

		for _, skipped := range desc.Skipped {
			d.Issues = append(d.Issues, models.Issue{Scope: models.ScopeDependency, Path: path, Key: desc.Coordinate.ArtifactKey(), Err: skipped})
		}

		project := desc.Project()
		if err := versioning.ResolveProjectVersion(project, inheritedProperties(d.Projects, project)); err != nil {
			w.logger.Warn("skipping descriptor", "path", path, "error", err)
			d.Issues = append(d.Issues, models.Issue{Scope: models.ScopeProject, Path: path, Key: project.Key(), Err: err})
			continue
		}

		// A skipped duplicate does not contribute its modules either.
		if err := d.Projects.Add(project); err != nil {
			w.logger.Warn("duplicate coordinate", "path", path, "error", err)
			d.Issues = append(d.Issues, models.Issue{Scope: models.ScopeProject, Path: path, Key: project.Key(), Err: err})
			continue
		}

		for _, modulePath := range desc.ModulePaths() {
			if visited[modulePath] {
				continue
			}
			visited[modulePath] = true
			queue = append(queue, modulePath)
		}
	}

	return d, nil
}

// inheritedProperties returns the properties blocks of p's ancestors that
// are already registered, nearest ancestor winning.
func inheritedProperties(set *models.ProjectSet, p *models.Project) map[string]string {
	var chain []*models.Project
	seen := map[string]bool{p.Key(): true}
	for cur := p; cur.Parent != nil; {
		parent, ok := set.Get(cur.Parent.ArtifactKey())
		if !ok || seen[parent.Key()] {
			break
		}
		seen[parent.Key()] = true
		chain = append(chain, parent)
		cur = parent
	}

	props := map[string]string{}
	for i := len(chain) - 1; i >= 0; i-- {
		for name, value := range chain[i].Properties {
			props[name] = value
		}
	}
	return props
}

// Seeds returns the root descriptor of every checkout under root.
func (w *Walker) Seeds(root string) ([]string, error) {
	seeds, _, err := w.seeds(root)
	return seeds, err
}

func (w *Walker) seeds(root string) ([]string, string, error) {
	abs, err := w.fs.Abs(root)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve workspace %s: %w", root, err)
	}

	entries, err := w.fs.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", models.ErrWorkspaceNotFound, abs)
		}
		return nil, "", fmt.Errorf("failed to read workspace %s: %w", abs, err)
	}

	ignore, err := LoadIgnore(w.fs, abs)
	if err != nil {
		return nil, "", err
	}

	var seeds []string
	for _, entry := range entries {
		dir := filepath.Join(abs, entry.Name())
		if !w.fs.IsDir(dir) {
			continue
		}

		if ignore.Ignores(entry.Name()) {
			w.logger.Debug("ignoring checkout", "dir", dir)
			continue
		}

		descriptor := filepath.Join(dir, pom.DescriptorFile)
		if !w.fs.IsDir(filepath.Join(dir, gitMarker)) || !w.fs.Exists(descriptor) {
			continue
		}
		seeds = append(seeds, descriptor)
	}

	return seeds, abs, nil
}

// IgnoreList matches checkout directory names against the workspace's
// ignore file. A nil list ignores nothing.
type IgnoreList struct {
	patterns gitignore.GitIgnore
}

// LoadIgnore reads IgnoreFile from root. It returns a nil list when the
// file does not exist.
func LoadIgnore(fsys filesystem.FileSystem, root string) (*IgnoreList, error) {
	ignorePath := filepath.Join(root, IgnoreFile)
	if !fsys.Exists(ignorePath) {
		return nil, nil
	}

	data, err := fsys.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}

	return &IgnoreList{patterns: gitignore.New(bytes.NewReader(data), root, nil)}, nil
}

// Ignores reports whether the checkout directory name is excluded.
func (l *IgnoreList) Ignores(name string) bool {
	if l == nil {
		return false
	}
	match := l.patterns.Relative(name, true)
	return match != nil && match.Ignore()
}
