// Package reposync materializes a workspace from an organization's GitHub
// repositories: missing checkouts are cloned, existing ones fetched.
package reposync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/git"
	"github.com/jakoblorz/go-mvnaudit/internal/github"
	"github.com/jakoblorz/go-mvnaudit/internal/workspace"
)

// Action is what a sync does with one repository.
type Action string

const (
	ActionClone Action = "clone"
	ActionFetch Action = "fetch"
	ActionSkip  Action = "skip"
)

// Options control which repositories are synced and how.
type Options struct {
	Org             string
	Protocol        string // "ssh" (default) or "https"
	IncludeArchived bool

	// Repositories limits the sync to these repository names. Each one is
	// looked up directly instead of listing the organization.
	Repositories []string
}

// Step is the planned action for one repository.
type Step struct {
	Repository *github.Repository
	Dir        string
	Action     Action
	Reason     string // why a step is skipped
}

// Plan is the ordered list of steps for a workspace.
type Plan struct {
	Root  string
	Steps []Step
}

// Names returns the repository names of the steps that would do something.
func (p *Plan) Names() []string {
	var names []string
	for _, s := range p.Steps {
		if s.Action != ActionSkip {
			names = append(names, s.Repository.Name)
		}
	}
	return names
}

// Select turns every actionable step not named in names into a skip.
func (p *Plan) Select(names []string) {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	for i := range p.Steps {
		if p.Steps[i].Action != ActionSkip && !keep[p.Steps[i].Repository.Name] {
			p.Steps[i].Action = ActionSkip
			p.Steps[i].Reason = "not selected"
		}
	}
}

// Result is the outcome of one step.
type Result struct {
	Step
	Branch string // checked out branch after a successful clone or fetch
	Err    error
}

// Report collects the results of applying a plan.
type Report struct {
	Results []Result
}

// Failed returns the results whose step failed.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Count returns how many steps ended with action a and no error.
func (r *Report) Count(a Action) int {
	n := 0
	for _, res := range r.Results {
		if res.Action == a && res.Err == nil {
			n++
		}
	}
	return n
}

// Syncer plans and applies workspace syncs.
type Syncer struct {
	fs     filesystem.FileSystem
	gh     github.GitHubClient
	git    git.GitClient
	logger *slog.Logger
}

// Option configures the syncer.
type Option func(*Syncer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// New creates a Syncer.
func New(fs filesystem.FileSystem, gh github.GitHubClient, gitClient git.GitClient, options ...Option) *Syncer {
	s := &Syncer{
		fs:     fs,
		gh:     gh,
		git:    gitClient,
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Plan lists the organization's repositories and decides for each whether
// it is cloned, fetched or skipped. Checkouts excluded by the workspace
// ignore file are skipped.
func (s *Syncer) Plan(ctx context.Context, root string, opts Options) (*Plan, error) {
	if opts.Org == "" {
		return nil, fmt.Errorf("no GitHub organization given")
	}

	abs, err := s.fs.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %s: %w", root, err)
	}

	repos, err := s.repositories(ctx, opts)
	if err != nil {
		return nil, err
	}

	ignore, err := workspace.LoadIgnore(s.fs, abs)
	if err != nil {
		return nil, err
	}

	g := s.git.WithContext(ctx)
	plan := &Plan{Root: abs}
	for _, repo := range repos {
		step := Step{Repository: repo, Dir: filepath.Join(abs, repo.Name)}

		switch {
		case repo.Archived && !opts.IncludeArchived:
			step.Action, step.Reason = ActionSkip, "archived"
		case ignore.Ignores(repo.Name):
			step.Action, step.Reason = ActionSkip, "ignored"
		case !s.fs.Exists(step.Dir):
			step.Action = ActionClone
		case s.fs.IsDir(filepath.Join(step.Dir, ".git")):
			if ok, err := g.IsGitRepo(step.Dir); err != nil || !ok {
				step.Action, step.Reason = ActionSkip, "broken git checkout"
				break
			}
			step.Action = ActionFetch
		default:
			step.Action, step.Reason = ActionSkip, "directory exists but is not a git checkout"
		}

		plan.Steps = append(plan.Steps, step)
	}

	return plan, nil
}

func (s *Syncer) repositories(ctx context.Context, opts Options) ([]*github.Repository, error) {
	if len(opts.Repositories) == 0 {
		return s.gh.ListOrganizationRepositories(ctx, opts.Org)
	}

	repos := make([]*github.Repository, 0, len(opts.Repositories))
	for _, name := range opts.Repositories {
		repo, err := s.gh.GetRepository(ctx, opts.Org, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s/%s: %w", opts.Org, name, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// Apply runs the plan's steps in order. A failing step is recorded and the
// remaining steps still run. With dryRun nothing is executed.
func (s *Syncer) Apply(ctx context.Context, plan *Plan, opts Options, dryRun bool) (*Report, error) {
	report := &Report{}

	if !dryRun {
		if err := s.fs.MkdirAll(plan.Root, 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace %s: %w", plan.Root, err)
		}
	}

	g := s.git.WithContext(ctx)
	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := Result{Step: step}
		if !dryRun {
			switch step.Action {
			case ActionClone:
				url := step.Repository.RemoteURL(opts.Protocol)
				s.logger.Info("cloning repository", "repository", step.Repository.Name, "url", url)
				res.Err = g.Clone(url, step.Dir)
			case ActionFetch:
				s.logger.Debug("fetching repository", "repository", step.Repository.Name)
				res.Err = g.Fetch(step.Dir)
			}
		}
		if res.Err != nil {
			s.logger.Warn("sync failed", "repository", step.Repository.Name, "action", step.Action, "error", res.Err)
		} else if !dryRun && step.Action != ActionSkip {
			branch, err := g.GetCurrentBranch(step.Dir)
			if err != nil {
				s.logger.Debug("no current branch", "repository", step.Repository.Name, "error", err)
			}
			res.Branch = branch
		}

		report.Results = append(report.Results, res)
	}

	return report, nil
}
