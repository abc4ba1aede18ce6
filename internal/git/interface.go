package git

import (
	"context"
)

// GitClient provides an abstraction over the git operations needed to keep
// a workspace of checkouts current.
type GitClient interface {
	// Clone clones url into dir, which must not exist yet.
	Clone(url, dir string) error
	// Fetch updates the remote-tracking refs of the checkout at dir.
	Fetch(dir string) error

	IsGitRepo(dir string) (bool, error)
	GetCurrentBranch(dir string) (string, error)

	// Context support for network operations
	WithContext(ctx context.Context) GitClient
}
