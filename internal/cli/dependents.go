package cli

import (
	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/jakoblorz/go-mvnaudit/internal/report"
	"github.com/spf13/cobra"
)

// DependentsCommand handles the dependents command
type DependentsCommand struct {
	fs      filesystem.FileSystem
	oracles OracleFactory
}

// NewDependentsCommand creates a new dependents command
func NewDependentsCommand(fs filesystem.FileSystem, oracles OracleFactory) *cobra.Command {
	cmd := &DependentsCommand{
		fs:      fs,
		oracles: oracles,
	}

	cobraCmd := &cobra.Command{
		Use:   "dependents <group:artifact> [workspace]",
		Short: "List the workspace projects that depend on a project",
		Example: `  mvnaudit dependents com.arpnetworking.commons:commons
  mvnaudit dependents com.arpnetworking.metrics:metrics-client ~/src --latest`,
		Args: cobra.RangeArgs(1, 2),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("latest", false, "Look up the project's latest published version")
	addOracleFlags(cobraCmd)

	return cobraCmd
}

// Run executes the dependents command
func (c *DependentsCommand) Run(cmd *cobra.Command, args []string) error {
	target, err := models.ParseArtifactKey(args[0])
	if err != nil {
		return err
	}

	latest, _ := cmd.Flags().GetBool("latest")

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Oracle.Enabled = cfg.Oracle.Enabled && latest

	stopTracing, err := startTracing(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer stopTracing()

	g, err := buildGraph(cmd.Context(), c.fs, c.oracles, cfg, logger, workspaceRoot(cfg, args, 1), nil)
	if err != nil {
		return err
	}

	return report.WriteDependents(cmd.OutOrStdout(), g, target.ArtifactKey())
}
