package internal_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/jakoblorz/go-mvnaudit/internal/cli"
	"github.com/jakoblorz/go-mvnaudit/internal/config"
	"github.com/jakoblorz/go-mvnaudit/internal/filesystem"
	"github.com/jakoblorz/go-mvnaudit/internal/git"
	"github.com/jakoblorz/go-mvnaudit/internal/github"
	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/oracle"
	"github.com/jakoblorz/go-mvnaudit/internal/report"
	"github.com/jakoblorz/go-mvnaudit/internal/workspace"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, root *cobra.Command, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestSyncAuditDependentsWorkflow(t *testing.T) {
	t.Chdir(t.TempDir())

	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/src")

	// Organization on GitHub
	ghMock := github.NewMockClient()
	commons := ghMock.SetupRepository("arpnetworking", "commons")
	client := ghMock.SetupRepository("arpnetworking", "metrics-client-java")
	ghMock.SetupArchivedRepository("arpnetworking", "build-resources")

	gitMock := git.NewMockGitClient(fs)
	gitMock.SeedRemote(commons.CloneURL, "pom.xml", []byte(workspace.POM{
		GroupID: "com.arpnetworking.commons", ArtifactID: "commons", Version: "1.20.0",
	}.XML()))
	gitMock.SeedRemote(client.CloneURL, "pom.xml", []byte(workspace.POM{
		GroupID: "com.arpnetworking.metrics", ArtifactID: "metrics-client", Version: "0.11.3",
		Properties: map[string]string{"commons.version": "1.19.0"},
		Deps: []workspace.Dep{
			{GroupID: "com.arpnetworking.commons", ArtifactID: "commons", Version: "${commons.version}"},
		},
	}.XML()))

	versions := oracle.NewMockOracle().
		SetLatest("com.arpnetworking.commons:commons", "1.20.0").
		SetLatest("com.arpnetworking.metrics:metrics-client", "0.11.3")
	oracles := func(config.OracleConfig, *slog.Logger) graph.VersionOracle { return versions }

	newRoot := func() *cobra.Command {
		return cli.NewRootCommand(fs, gitMock, ghMock, oracles)
	}

	// Step 1: sync clones both active repositories over https
	out := execute(t, newRoot(), "sync", "/src", "--protocol", "https")
	require.Contains(t, out, "build-resources skipped (archived)")
	require.Contains(t, out, "Synced 2 repositories (2 cloned, 0 fetched): commons metrics-client-java")
	require.True(t, fs.Exists("/src/commons/pom.xml"))

	// Step 2: audit the synced workspace
	out = execute(t, newRoot(), "audit", "/src", "--format", "json")

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Equal(t, 2, rep.Summary.Projects)
	require.Equal(t, 1, rep.Summary.Edges)
	require.Equal(t, 2, rep.Summary.UpToDate)
	require.Empty(t, rep.Issues)
	require.Equal(t, []string{"com.arpnetworking.commons:commons:1.19.0"}, rep.Projects[1].Dependencies)

	// Step 3: who depends on commons
	out = execute(t, newRoot(), "dependents", "com.arpnetworking.commons:commons", "/src")
	require.Equal(t, `com.arpnetworking.commons:commons:1.20.0 (latest -)
  com.arpnetworking.metrics:metrics-client:0.11.3 -> 1.19.0 (workspace has 1.20.0)
`, out)

	// Step 4: a second sync only fetches
	out = execute(t, newRoot(), "sync", "/src")
	require.Contains(t, out, "Synced 2 repositories (0 cloned, 2 fetched)")
}
