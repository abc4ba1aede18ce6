package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoordinateKeys(t *testing.T) {
	c := NewCoordinate("com.arpnetworking.metrics", "metrics-client", "0.11.2")

	require.Equal(t, "com.arpnetworking.metrics:metrics-client", c.ArtifactKey())
	require.Equal(t, "com.arpnetworking.metrics:metrics-client:0.11.2", c.VersionKey())
	require.Equal(t, c.VersionKey(), c.String())
	require.Equal(t, "org:a", NewCoordinate("org", "a", "").String())
}

func TestCoordinateMetadataURL(t *testing.T) {
	c := NewCoordinate("com.arpnetworking.metrics", "metrics-client", "0.11.2")

	require.Equal(t,
		"https://repo.maven.apache.org/maven2/com/arpnetworking/metrics/metrics-client/maven-metadata.xml",
		c.MetadataURL("https://repo.maven.apache.org/maven2/"))

	// Dots in the artifact stay as they are.
	dotted := NewCoordinate("org", "a.b", "1")
	require.Equal(t, "http://repo/org/a.b/maven-metadata.xml", dotted.MetadataURL("http://repo"))
}

func TestParseArtifactKey(t *testing.T) {
	c, err := ParseArtifactKey("org:b")
	require.NoError(t, err)
	require.Equal(t, Coordinate{GroupID: "org", ArtifactID: "b"}, c)

	c, err = ParseArtifactKey(" org:b:2.0 ")
	require.NoError(t, err)
	require.Equal(t, "2.0", c.Version)

	for _, bad := range []string{"", "org", ":b", "org:", "a:b:c:d"} {
		_, err := ParseArtifactKey(bad)
		require.Error(t, err, bad)
	}
}

func TestNewProject_DirectoryFromDescriptorPath(t *testing.T) {
	p := NewProject("/ws/repo/sub/module/pom.xml", NewCoordinate("org", "m", "1"))

	require.Equal(t, "/ws/repo/sub/module", p.Directory)
	require.Equal(t, "org:m", p.Key())
	require.False(t, p.UpToDate)
	require.Empty(t, p.LatestVersion)
}

func TestProject_SetLatestVersion(t *testing.T) {
	p := NewProject("/ws/a/pom.xml", NewCoordinate("org", "a", "1.0"))

	p.SetLatestVersion("1.0")
	require.True(t, p.UpToDate)

	p.SetLatestVersion("1.1")
	require.False(t, p.UpToDate)

	p.SetLatestVersion("")
	require.False(t, p.UpToDate)
}

func TestProject_ManagedVersion(t *testing.T) {
	p := NewProject("/ws/a/pom.xml", NewCoordinate("org", "a", "1.0"))
	p.Resolved = []Coordinate{NewCoordinate("org", "b", "2.0")}

	v, ok := p.ManagedVersion("org", "b")
	require.True(t, ok)
	require.Equal(t, "2.0", v)

	_, ok = p.ManagedVersion("org", "c")
	require.False(t, ok)
}

func TestProjectSet_RejectsDuplicates(t *testing.T) {
	set := NewProjectSet()
	first := NewProject("/ws/a/pom.xml", NewCoordinate("org", "a", "1.0"))
	second := NewProject("/ws/copy/pom.xml", NewCoordinate("org", "a", "1.1"))

	require.NoError(t, set.Add(first))
	err := set.Add(second)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateCoordinate))

	got, ok := set.Get("org:a")
	require.True(t, ok)
	require.Same(t, first, got)
	require.Equal(t, 1, set.Len())
}

func TestProjectSet_OrderAndDependents(t *testing.T) {
	set := NewProjectSet()
	b := NewProject("/ws/b/pom.xml", NewCoordinate("org", "b", "2.0"))
	a := NewProject("/ws/a/pom.xml", NewCoordinate("org", "a", "1.0"))
	require.NoError(t, set.Add(b))
	require.NoError(t, set.Add(a))

	b.Dependents = []string{"org:a", "org:missing"}

	require.Equal(t, []*Project{b, a}, set.Projects())
	require.Equal(t, []string{"org:a", "org:b"}, set.Keys())
	require.Equal(t, []*Project{a}, set.Dependents("org:b"))
	require.Nil(t, set.Dependents("org:none"))
	require.True(t, set.Has("org:a"))
}

func TestIssueKindAndMessage(t *testing.T) {
	issue := Issue{Scope: ScopeDependency, Path: "/ws/a/pom.xml", Key: "org:b", Err: ErrUndefinedProperty}
	require.Equal(t, "undefined_property", issue.Kind())
	require.Equal(t, "dependency org:b (/ws/a/pom.xml): undefined property", issue.Error())
	require.True(t, errors.Is(issue, ErrUndefinedProperty))

	other := Issue{Scope: ScopeOracle, Err: errors.New("boom")}
	require.Equal(t, "other", other.Kind())
	require.Equal(t, "oracle: boom", other.Error())
}
