package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/git"
	"github.com/jakoblorz/go-mvnaudit/internal/github"
	"github.com/jakoblorz/go-mvnaudit/internal/reposync"
	"github.com/jakoblorz/go-mvnaudit/internal/tracing"
	"github.com/jakoblorz/go-mvnaudit/internal/tui"
	"github.com/jakoblorz/go-mvnaudit/internal/tui/components"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// SyncCommand handles the sync command
type SyncCommand struct {
	fs  filesystem.FileSystem
	git git.GitClient
	gh  github.GitHubClient

	pick    func(names, preselected []string) ([]string, error)
	confirm func(message string, details ...string) (bool, error)
}

// NewSyncCommand creates a new sync command
func NewSyncCommand(fs filesystem.FileSystem, gitClient git.GitClient, ghClient github.GitHubClient) *cobra.Command {
	return newSyncCommand(&SyncCommand{
		fs:      fs,
		git:     gitClient,
		gh:      ghClient,
		pick:    tui.PickRepositories,
		confirm: components.RunConfirm,
	})
}

func newSyncCommand(cmd *SyncCommand) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "sync [workspace]",
		Short: "Clone or fetch every repository of the GitHub organization",
		Long: `Lists the organization's repositories on GitHub. Repositories without a
checkout in the workspace are cloned, existing checkouts are fetched.

Archived repositories and checkouts listed in .mvnauditignore are skipped.
Set GH_TOKEN or GITHUB_TOKEN to include private repositories.`,
		Example: `  mvnaudit sync ~/src/arpnetworking
  mvnaudit sync --org inscopemetrics --protocol https --dry-run
  mvnaudit sync --interactive
  mvnaudit sync --repo commons --repo metrics-client-java`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("org", "", "GitHub organization (default from config: arpnetworking)")
	cobraCmd.Flags().String("protocol", "", "Clone protocol: ssh or https")
	cobraCmd.Flags().StringSlice("repo", nil, "Only sync these repositories (repeatable)")
	cobraCmd.Flags().Bool("include-archived", false, "Also sync archived repositories")
	cobraCmd.Flags().Bool("dry-run", false, "Print the plan without cloning or fetching")
	cobraCmd.Flags().BoolP("interactive", "i", false, "Pick repositories and confirm before syncing")

	return cobraCmd
}

// Run executes the sync command
func (c *SyncCommand) Run(cmd *cobra.Command, args []string) error {
	repos, _ := cmd.Flags().GetStringSlice("repo")
	includeArchived, _ := cmd.Flags().GetBool("include-archived")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := reposync.Options{
		Org:             cfg.GitHub.Org,
		Protocol:        cfg.GitHub.Protocol,
		IncludeArchived: includeArchived,
		Repositories:    repos,
	}

	stopTracing, err := startTracing(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer stopTracing()

	syncer := reposync.New(c.fs, c.gh, c.git, reposync.WithLogger(logger))
	ctx, planSpan := tracing.Start(cmd.Context(), "sync.plan", attribute.String("github.org", opts.Org))
	plan, err := syncer.Plan(ctx, workspaceRoot(cfg, args, 0), opts)
	tracing.End(planSpan, err)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if interactive && !dryRun {
		proceed, err := c.interact(plan)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Fprintln(out, "Sync cancelled.")
			return nil
		}
	}

	ctx, applySpan := tracing.Start(cmd.Context(), "sync.apply", attribute.Bool("mvnaudit.dry_run", dryRun))
	result, err := syncer.Apply(ctx, plan, opts, dryRun)
	tracing.End(applySpan, err)
	if err != nil {
		return err
	}

	printSyncReport(out, result, dryRun)

	if failed := result.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, f.Repository.Name)
		}
		return fmt.Errorf("failed to sync %d repositories: %s", len(failed), strings.Join(names, ", "))
	}

	return nil
}

func (c *SyncCommand) interact(plan *reposync.Plan) (bool, error) {
	names := plan.Names()
	if len(names) == 0 {
		return true, nil
	}

	selected, err := c.pick(names, names)
	if err != nil {
		return false, err
	}
	if selected == nil {
		return false, nil
	}
	plan.Select(selected)

	var details []string
	for _, step := range plan.Steps {
		if step.Action != reposync.ActionSkip {
			details = append(details, fmt.Sprintf("%s %s", step.Action, step.Repository.Name))
		}
	}
	if len(details) == 0 {
		return false, nil
	}

	return c.confirm(fmt.Sprintf("Sync %d repositories into %s?", len(details), plan.Root), details...)
}

func printSyncReport(w io.Writer, r *reposync.Report, dryRun bool) {
	var synced []string
	for _, res := range r.Results {
		name := res.Repository.Name
		switch {
		case res.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", tui.ErrorStyle.Render("✗"), name, res.Err)
		case res.Action == reposync.ActionSkip:
			fmt.Fprintf(w, "- %s skipped (%s)\n", name, res.Reason)
		case dryRun:
			fmt.Fprintf(w, "→ would %s %s\n", res.Action, name)
		default:
			if res.Action == reposync.ActionClone {
				fmt.Fprintf(w, "%s cloned %s%s\n", tui.SuccessStyle.Render("✓"), name, onBranch(res.Branch))
			}
			synced = append(synced, name)
		}
	}

	if !dryRun {
		fmt.Fprintf(w, "\nSynced %d repositories (%d cloned, %d fetched)", len(synced), r.Count(reposync.ActionClone), r.Count(reposync.ActionFetch))
		if len(synced) > 0 {
			fmt.Fprintf(w, ": %s", strings.Join(synced, " "))
		}
		fmt.Fprintln(w)
	}
}

func onBranch(branch string) string {
	if branch == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", branch)
}
