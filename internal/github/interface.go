package github

import (
	"context"
)

// GitHubClient provides an abstraction over GitHub API operations
type GitHubClient interface {
	// ListOrganizationRepositories returns every repository of org, all pages.
	ListOrganizationRepositories(ctx context.Context, org string) ([]*Repository, error)

	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	CloneURL      string
	SSHURL        string
	DefaultBranch string
	Archived      bool
	Fork          bool
}

// RemoteURL returns the URL to clone the repository over protocol ("ssh" or "https").
func (r *Repository) RemoteURL(protocol string) string {
	if protocol == "https" {
		return r.CloneURL
	}
	return r.SSHURL
}
