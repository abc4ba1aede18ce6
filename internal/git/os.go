package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OSGitClient implements GitClient using real git commands
type OSGitClient struct {
	ctx context.Context
}

// NewOSGitClient creates a new OSGitClient
func NewOSGitClient() *OSGitClient {
	return &OSGitClient{
		ctx: context.Background(),
	}
}

// WithContext returns a new client with the given context
func (g *OSGitClient) WithContext(ctx context.Context) GitClient {
	return &OSGitClient{
		ctx: ctx,
	}
}

// Clone clones url into dir
func (g *OSGitClient) Clone(url, dir string) error {
	if _, err := g.run("", "clone", "--quiet", url, dir); err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

// Fetch fetches all remotes of the checkout at dir
func (g *OSGitClient) Fetch(dir string) error {
	if _, err := g.run(dir, "fetch", "--quiet", "--all", "--prune"); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", dir, err)
	}
	return nil
}

// IsGitRepo checks whether dir is inside a git work tree
func (g *OSGitClient) IsGitRepo(dir string) (bool, error) {
	out, err := g.run(dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	return out == "true", nil
}

// GetCurrentBranch returns the checked out branch of dir
func (g *OSGitClient) GetCurrentBranch(dir string) (string, error) {
	out, err := g.run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return out, nil
}

func (g *OSGitClient) run(dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(g.ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
