// Package report renders an audit graph for people (text), tools (JSON) and
// Graphviz (DOT).
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/jakoblorz/go-mvnaudit/internal/versioning"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Report is the presentation model of one audit run.
type Report struct {
	RunID        string          `json:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Workspace    string          `json:"workspace"`
	Organization []string        `json:"organization"`
	Summary      Summary         `json:"summary"`
	Projects     []ProjectEntry  `json:"projects"`
	External     []ExternalEntry `json:"external,omitempty"`
	Issues       []IssueEntry    `json:"issues,omitempty"`

	edges []edge
}

type Summary struct {
	Projects   int `json:"projects"`
	Edges      int `json:"edges"`
	UpToDate   int `json:"up_to_date"`
	Behind     int `json:"behind"`
	Unreleased int `json:"unreleased"`
	Issues     int `json:"issues"`
}

type ProjectEntry struct {
	Key           string   `json:"key"`
	Coordinate    string   `json:"coordinate"`
	Path          string   `json:"path"`
	Version       string   `json:"version"`
	LatestVersion string   `json:"latest_version,omitempty"`
	UpToDate      bool     `json:"up_to_date"`
	Status        string   `json:"status"`
	Dependencies  []string `json:"dependencies"`
	Dependents    []string `json:"dependents"`
}

type ExternalEntry struct {
	From       string `json:"from"`
	Dependency string `json:"dependency"`
}

type IssueEntry struct {
	Scope   string `json:"scope"`
	Kind    string `json:"kind"`
	Key     string `json:"key,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

type edge struct {
	from, to, version string
}

// Option configures report construction.
type Option func(*options)

type options struct {
	runID string
	now   func() time.Time
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// WithClock sets the clock used for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds the report of g. Projects are sorted by artifact key.
func New(g *graph.Graph, organization []string, opts ...Option) (*Report, error) {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	if o.runID == "" {
		id, err := gonanoid.Generate(runIDAlphabet, 10)
		if err != nil {
			return nil, fmt.Errorf("failed to generate run id: %w", err)
		}
		o.runID = id
	}

	r := &Report{
		RunID:        o.runID,
		GeneratedAt:  o.now().UTC(),
		Workspace:    g.Root,
		Organization: append([]string(nil), organization...),
	}

	for _, key := range g.Projects.Keys() {
		p, _ := g.Projects.Get(key)

		status := versioning.Compare(p.Coordinate.Version, p.LatestVersion)
		entry := ProjectEntry{
			Key:           key,
			Coordinate:    p.Coordinate.VersionKey(),
			Path:          p.DescriptorPath,
			Version:       p.Coordinate.Version,
			LatestVersion: p.LatestVersion,
			UpToDate:      p.UpToDate,
			Status:        status.String(),
			Dependencies:  make([]string, 0, len(p.Dependencies)),
			Dependents:    append([]string{}, p.Dependents...),
		}
		sort.Strings(entry.Dependents)

		for _, dep := range p.Dependencies {
			entry.Dependencies = append(entry.Dependencies, dep.VersionKey())
			r.edges = append(r.edges, edge{from: key, to: dep.ArtifactKey(), version: dep.Version})
		}

		r.Projects = append(r.Projects, entry)

		switch status {
		case versioning.StatusCurrent:
			r.Summary.UpToDate++
		case versioning.StatusBehind:
			r.Summary.Behind++
		case versioning.StatusUnreleased:
			r.Summary.Unreleased++
		}
	}

	for _, ext := range g.External {
		r.External = append(r.External, ExternalEntry{From: ext.From, Dependency: ext.Dependency.VersionKey()})
	}
	sort.SliceStable(r.External, func(i, j int) bool {
		if r.External[i].From != r.External[j].From {
			return r.External[i].From < r.External[j].From
		}
		return r.External[i].Dependency < r.External[j].Dependency
	})

	for _, issue := range g.Issues {
		r.Issues = append(r.Issues, newIssueEntry(issue))
	}

	r.Summary.Projects = len(r.Projects)
	r.Summary.Edges = len(r.edges)
	r.Summary.Issues = len(r.Issues)

	return r, nil
}

func newIssueEntry(issue models.Issue) IssueEntry {
	message := ""
	if issue.Err != nil {
		message = issue.Err.Error()
	}
	return IssueEntry{
		Scope:   string(issue.Scope),
		Kind:    issue.Kind(),
		Key:     issue.Key,
		Path:    issue.Path,
		Message: message,
	}
}
