package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jakoblorz/go-mvnaudit/internal/config"
	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/metrics"
	"github.com/jakoblorz/go-mvnaudit/internal/report"
	"github.com/jakoblorz/go-mvnaudit/internal/tracing"
	"github.com/jakoblorz/go-mvnaudit/internal/workspace"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// ErrIssuesFound is returned by audit --strict when the run collected issues.
var ErrIssuesFound = errors.New("audit found issues")

// AuditCommand handles the audit command
type AuditCommand struct {
	fs         filesystem.FileSystem
	oracles    OracleFactory
	reportOpts []report.Option
}

// NewAuditCommand creates a new audit command
func NewAuditCommand(fs filesystem.FileSystem, oracles OracleFactory, reportOpts ...report.Option) *cobra.Command {
	cmd := &AuditCommand{
		fs:         fs,
		oracles:    oracles,
		reportOpts: reportOpts,
	}

	cobraCmd := &cobra.Command{
		Use:   "audit [workspace]",
		Short: "Build the organization dependency graph and check for stale projects",
		Long: `Walks every git checkout under the workspace that has a pom.xml at its
root, follows <modules> breadth-first, and resolves each project's
organization dependencies (literal, property and parent-managed versions).

Every project is then looked up in the Maven repository and compared with
its latest published version.`,
		Example: `  # Audit the current directory
  mvnaudit audit

  # JSON for scripting, no network
  mvnaudit audit ~/src/arpnetworking --format json --no-oracle

  # Graphviz
  mvnaudit audit --format dot | dot -Tsvg > graph.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("format", "text", "Output format: text, json or dot")
	cobraCmd.Flags().Bool("strict", false, "Exit non-zero when any issue was found")
	cobraCmd.Flags().Bool("no-oracle", false, "Skip latest-version lookups")
	cobraCmd.Flags().Bool("no-color", false, "Disable colored output")
	cobraCmd.Flags().String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	addOracleFlags(cobraCmd)

	return cobraCmd
}

// Run executes the audit command
func (c *AuditCommand) Run(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")
	noOracle, _ := cmd.Flags().GetBool("no-oracle")
	noColor, _ := cmd.Flags().GetBool("no-color")

	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stopTracing, err := startTracing(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer stopTracing()

	if noOracle {
		cfg.Oracle.Enabled = false
	}

	start := time.Now()

	var recorder *metrics.Recorder
	if cfg.Metrics.File != "" {
		recorder = metrics.NewRecorder()
	}

	g, err := buildGraph(cmd.Context(), c.fs, c.oracles, cfg, logger, workspaceRoot(cfg, args, 0), recorder)
	if err != nil {
		return err
	}

	rep, err := report.New(g, cfg.Organization.Prefixes, c.reportOpts...)
	if err != nil {
		return err
	}

	styled := !noColor && cmd.OutOrStdout() == os.Stdout
	if err := rep.Write(cmd.OutOrStdout(), format, styled); err != nil {
		return err
	}

	if recorder != nil {
		recorder.ObserveGraph(g)
		recorder.ObserveRun(time.Since(start))
		if err := recorder.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.Warn("metrics not written", "error", err)
		}
	}

	if strict && len(g.Issues) > 0 {
		return fmt.Errorf("%w: %d issue(s)", ErrIssuesFound, len(g.Issues))
	}

	return nil
}

// buildGraph walks root and builds its graph, querying the oracle when enabled.
func buildGraph(ctx context.Context, fs filesystem.FileSystem, oracles OracleFactory, cfg *config.Config, logger *slog.Logger, root string, recorder *metrics.Recorder) (*graph.Graph, error) {
	_, walkSpan := tracing.Start(ctx, "workspace.walk", attribute.String("mvnaudit.root", root))
	discovery, err := workspace.New(fs, workspace.WithLogger(logger)).Walk(root)
	tracing.End(walkSpan, err)
	if err != nil {
		return nil, fmt.Errorf("failed to discover workspace: %w", err)
	}
	logger.Info("discovered workspace",
		"root", discovery.Root,
		"checkouts", len(discovery.Seeds),
		"descriptors", len(discovery.Order),
		"projects", discovery.Projects.Len(),
	)

	opts := []graph.Option{graph.WithLogger(logger)}
	if cfg.Oracle.Enabled && oracles != nil {
		o := tracing.InstrumentOracle(oracles(cfg.Oracle, logger))
		if recorder != nil {
			o = recorder.InstrumentOracle(o)
		}
		opts = append(opts, graph.WithOracle(o, cfg.Oracle.Concurrency))
	}

	ctx, buildSpan := tracing.Start(ctx, "graph.build", attribute.Bool("mvnaudit.oracle", cfg.Oracle.Enabled))
	g, err := graph.NewBuilder(graph.NewWhitelist(cfg.Organization.Prefixes...), opts...).Build(ctx, discovery)
	if err != nil {
		tracing.End(buildSpan, err)
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	tracing.RecordGraph(buildSpan, g)
	tracing.End(buildSpan, nil)

	return g, nil
}
