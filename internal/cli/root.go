package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jakoblorz/go-mvnaudit/internal/config"
	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/git"
	"github.com/jakoblorz/go-mvnaudit/internal/github"
	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/oracle"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// OracleFactory builds the version oracle used by a run.
type OracleFactory func(cfg config.OracleConfig, logger *slog.Logger) graph.VersionOracle

// DefaultOracleFactory queries the configured Maven repository over HTTP.
func DefaultOracleFactory(cfg config.OracleConfig, logger *slog.Logger) graph.VersionOracle {
	return oracle.NewClient(cfg.BaseURL,
		oracle.WithTimeout(cfg.Timeout),
		oracle.WithLogger(logger),
	)
}

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, gitClient git.GitClient, ghClient github.GitHubClient, oracles OracleFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mvnaudit",
		Short: "Audit an organization's Maven projects across a workspace of checkouts",
		Long: `A CLI tool for auditing the internal Maven dependency graph of an organization.

mvnaudit walks a workspace of git checkouts, parses every pom.xml (nested
modules included), links the projects that depend on each other and checks
every project against its latest published release.`,
		Version:      Version,
		SilenceUsage: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewAuditCommand(fs, oracles))
	rootCmd.AddCommand(NewDependentsCommand(fs, oracles))
	rootCmd.AddCommand(NewSyncCommand(fs, gitClient, ghClient))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	fs := filesystem.NewOSFileSystem()
	gitClient := git.NewOSGitClient()

	var ghClient github.GitHubClient
	if client, err := github.NewClientFromEnv(); err == nil {
		ghClient = client
	} else {
		ghClient = github.NewClientWithoutAuth()
	}

	rootCmd := NewRootCommand(fs, gitClient, ghClient, DefaultOracleFactory)
	rootCmd.SetErr(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
