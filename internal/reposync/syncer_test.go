package reposync

import (
	"context"
	"errors"
	"testing"

	"github.com/jakoblorz/go-mvnaudit/internal/git"
	"github.com/jakoblorz/go-mvnaudit/internal/github"
	"github.com/jakoblorz/go-mvnaudit/internal/workspace"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	wb  *workspace.WorkspaceBuilder
	gh  *github.MockClient
	git *git.MockGitClient
}

func newFixture() *fixture {
	wb := workspace.NewWorkspaceBuilder("/ws").
		AddRepository("commons", workspace.POM{GroupID: "com.arpnetworking.commons", ArtifactID: "commons", Version: "1.0"}).
		AddDir("notes").
		AddIgnore("sandbox")

	gh := github.NewMockClient()
	gh.SetupRepository("arpnetworking", "commons")
	gh.SetupRepository("arpnetworking", "metrics-client-java")
	gh.SetupRepository("arpnetworking", "notes")
	gh.SetupRepository("arpnetworking", "sandbox")
	gh.SetupArchivedRepository("arpnetworking", "tsdaggregator")

	return &fixture{wb: wb, gh: gh, git: git.NewMockGitClient(wb.Build())}
}

func (f *fixture) syncer() *Syncer {
	return New(f.wb.Build(), f.gh, f.git)
}

func actions(p *Plan) map[string]Action {
	m := make(map[string]Action, len(p.Steps))
	for _, s := range p.Steps {
		m[s.Repository.Name] = s.Action
	}
	return m
}

func TestPlan(t *testing.T) {
	f := newFixture()
	plan, err := f.syncer().Plan(context.Background(), ".", Options{Org: "arpnetworking"})
	require.NoError(t, err)

	require.Equal(t, "/ws", plan.Root)
	require.Equal(t, map[string]Action{
		"commons":             ActionFetch,
		"metrics-client-java": ActionClone,
		"notes":               ActionSkip,
		"sandbox":             ActionSkip,
		"tsdaggregator":       ActionSkip,
	}, actions(plan))
	require.Equal(t, []string{"commons", "metrics-client-java"}, plan.Names())
}

func TestPlan_IncludeArchived(t *testing.T) {
	f := newFixture()
	plan, err := f.syncer().Plan(context.Background(), "/ws", Options{Org: "arpnetworking", IncludeArchived: true})
	require.NoError(t, err)
	require.Equal(t, ActionClone, actions(plan)["tsdaggregator"])
}

func TestPlan_Errors(t *testing.T) {
	f := newFixture()
	_, err := f.syncer().Plan(context.Background(), "/ws", Options{})
	require.Error(t, err)

	f.gh.ListOrganizationRepositoriesError = errors.New("bad credentials")
	_, err = f.syncer().Plan(context.Background(), "/ws", Options{Org: "arpnetworking"})
	require.EqualError(t, err, "bad credentials")
}

func TestApply(t *testing.T) {
	f := newFixture()
	f.git.SeedRemote("git@github.com:arpnetworking/metrics-client-java.git", "pom.xml",
		[]byte(workspace.POM{GroupID: "com.arpnetworking.metrics", ArtifactID: "metrics-client", Version: "0.11.0"}.XML()))

	s := f.syncer()
	opts := Options{Org: "arpnetworking"}
	plan, err := s.Plan(context.Background(), "/ws", opts)
	require.NoError(t, err)

	report, err := s.Apply(context.Background(), plan, opts, false)
	require.NoError(t, err)
	require.Empty(t, report.Failed())
	require.Equal(t, 1, report.Count(ActionClone))
	require.Equal(t, 1, report.Count(ActionFetch))

	require.Equal(t, "master", report.Results[0].Branch)
	require.Equal(t, "master", report.Results[1].Branch)
	require.Empty(t, report.Results[2].Branch)

	require.Equal(t, []git.Operation{
		{Kind: "fetch", Dir: "/ws/commons"},
		{Kind: "clone", URL: "git@github.com:arpnetworking/metrics-client-java.git", Dir: "/ws/metrics-client-java"},
	}, f.git.Operations())

	// The fresh clone is now part of the workspace.
	seeds, err := workspace.New(f.wb.Build()).Seeds("/ws")
	require.NoError(t, err)
	require.Equal(t, []string{"/ws/commons/pom.xml", "/ws/metrics-client-java/pom.xml"}, seeds)
}

func TestApply_HTTPSProtocol(t *testing.T) {
	f := newFixture()
	s := f.syncer()
	opts := Options{Org: "arpnetworking", Protocol: "https"}
	plan, err := s.Plan(context.Background(), "/ws", opts)
	require.NoError(t, err)

	_, err = s.Apply(context.Background(), plan, opts, false)
	require.NoError(t, err)
	require.Equal(t, "https://github.com/arpnetworking/metrics-client-java.git", f.git.Operations()[1].URL)
}

func TestApply_DryRun(t *testing.T) {
	f := newFixture()
	s := f.syncer()
	opts := Options{Org: "arpnetworking"}
	plan, err := s.Plan(context.Background(), "/ws", opts)
	require.NoError(t, err)

	report, err := s.Apply(context.Background(), plan, opts, true)
	require.NoError(t, err)
	require.Len(t, report.Results, 5)
	require.Empty(t, f.git.Operations())
}

func TestApply_CollectsFailures(t *testing.T) {
	f := newFixture()
	f.git.FetchErrors["/ws/commons"] = errors.New("could not read from remote repository")

	s := f.syncer()
	opts := Options{Org: "arpnetworking"}
	plan, err := s.Plan(context.Background(), "/ws", opts)
	require.NoError(t, err)

	report, err := s.Apply(context.Background(), plan, opts, false)
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, "commons", failed[0].Repository.Name)
	require.Equal(t, 1, report.Count(ActionClone))
}

func TestPlan_Select(t *testing.T) {
	f := newFixture()
	s := f.syncer()
	opts := Options{Org: "arpnetworking"}
	plan, err := s.Plan(context.Background(), "/ws", opts)
	require.NoError(t, err)

	plan.Select([]string{"commons"})
	require.Equal(t, []string{"commons"}, plan.Names())

	_, err = s.Apply(context.Background(), plan, opts, false)
	require.NoError(t, err)
	require.Len(t, f.git.Operations(), 1)
}

func TestApply_CancelledContext(t *testing.T) {
	f := newFixture()
	s := f.syncer()
	opts := Options{Org: "arpnetworking"}
	plan, err := s.Plan(context.Background(), "/ws", opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Apply(ctx, plan, opts, false)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, f.git.Operations())
}

func TestPlan_BrokenCheckoutSkipped(t *testing.T) {
	f := newFixture()
	f.git.Broken["/ws/commons"] = true

	plan, err := f.syncer().Plan(context.Background(), "/ws", Options{Org: "arpnetworking"})
	require.NoError(t, err)
	require.Equal(t, ActionSkip, plan.Steps[0].Action)
	require.Equal(t, "broken git checkout", plan.Steps[0].Reason)
}

func TestPlan_NamedRepositories(t *testing.T) {
	f := newFixture()
	f.gh.ListOrganizationRepositoriesError = errors.New("listing must not be used")

	plan, err := f.syncer().Plan(context.Background(), "/ws", Options{
		Org:          "arpnetworking",
		Repositories: []string{"metrics-client-java", "commons"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"metrics-client-java", "commons"}, plan.Names())

	_, err = f.syncer().Plan(context.Background(), "/ws", Options{
		Org:          "arpnetworking",
		Repositories: []string{"does-not-exist"},
	})
	require.ErrorContains(t, err, "arpnetworking/does-not-exist")
}
