package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/jakoblorz/go-mvnaudit/internal/oracle"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	set := models.NewProjectSet()

	a := models.NewProject("/ws/a/pom.xml", models.NewCoordinate("org", "a", "1.0"))
	a.Dependencies = []models.Coordinate{models.NewCoordinate("org", "b", "2.0")}
	a.SetLatestVersion("1.1")
	b := models.NewProject("/ws/b/pom.xml", models.NewCoordinate("org", "b", "2.0"))
	b.SetLatestVersion("2.0")
	require.NoError(t, set.Add(a))
	require.NoError(t, set.Add(b))

	return &graph.Graph{
		Root:     "/ws",
		Projects: set,
		External: []graph.ExternalDependency{{From: "org:a", Dependency: models.NewCoordinate("org", "c", "1")}},
		Issues: []models.Issue{
			{Scope: models.ScopeDependency, Key: "org:a", Err: models.ErrUndefinedProperty},
			{Scope: models.ScopeDependency, Key: "org:b", Err: models.ErrUndefinedProperty},
			{Scope: models.ScopeOracle, Key: "org:b", Err: models.ErrOracleStatus},
		},
	}
}

func TestRecorder_ObserveGraph(t *testing.T) {
	r := NewRecorder()
	r.ObserveGraph(testGraph(t))

	require.Equal(t, 2.0, testutil.ToFloat64(r.projects))
	require.Equal(t, 1.0, testutil.ToFloat64(r.edges))
	require.Equal(t, 1.0, testutil.ToFloat64(r.external))
	require.Equal(t, 1.0, testutil.ToFloat64(r.stale))
	require.Equal(t, 2.0, testutil.ToFloat64(r.issues.WithLabelValues("dependency", "undefined_property")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.issues.WithLabelValues("oracle", "oracle_status")))
}

func TestRecorder_InstrumentOracle(t *testing.T) {
	r := NewRecorder()
	mock := oracle.NewMockOracle().
		SetLatest("org:a", "1.0").
		SetError("org:b", errors.New("connection reset"))
	o := r.InstrumentOracle(mock)

	ctx := context.Background()
	_, _, _ = o.Latest(ctx, models.NewCoordinate("org", "a", "1.0"))
	_, _, _ = o.Latest(ctx, models.NewCoordinate("org", "a", "1.0"))
	_, _, err := o.Latest(ctx, models.NewCoordinate("org", "b", "1.0"))
	require.Error(t, err)
	_, found, _ := o.Latest(ctx, models.NewCoordinate("org", "c", "1.0"))
	require.False(t, found)

	require.Equal(t, 2.0, testutil.ToFloat64(r.oracleLookups.WithLabelValues(ResultFound)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.oracleLookups.WithLabelValues(ResultError)))
	require.Equal(t, 1.0, testutil.ToFloat64(r.oracleLookups.WithLabelValues(ResultNotFound)))
	require.Equal(t, 1, testutil.CollectAndCount(r.oracleDuration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveGraph(testGraph(t))
	r.ObserveRun(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "mvnaudit.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.Contains(t, out, "mvnaudit_projects 2")
	require.Contains(t, out, `mvnaudit_issues_total{kind="undefined_property",scope="dependency"} 2`)
	require.Contains(t, out, "mvnaudit_run_duration_seconds 1.5")
	require.False(t, strings.Contains(out, "go_goroutines"))
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "mvnaudit.prom"))
	require.Error(t, err)
}
