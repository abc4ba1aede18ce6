package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/jakoblorz/go-mvnaudit/internal/oracle"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs an in-memory tracer provider for the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrs(kvs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

func TestInit_NoEndpoint(t *testing.T) {
	p, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	require.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	require.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	require.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}

func TestStartEnd(t *testing.T) {
	sr := recordSpans(t)

	_, span := Start(context.Background(), "workspace.walk", attribute.String("mvnaudit.root", "/ws"))
	End(span, nil)
	_, span = Start(context.Background(), "graph.build")
	End(span, models.ErrDanglingDependency)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "workspace.walk", spans[0].Name())
	require.Equal(t, "/ws", attrs(spans[0].Attributes())["mvnaudit.root"])
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
	require.Equal(t, "dangling dependency", spans[1].Status().Description)
}

func TestRecordGraph(t *testing.T) {
	sr := recordSpans(t)

	a := models.NewProject("/ws/a/pom.xml", models.NewCoordinate("org", "a", "1"))
	b := models.NewProject("/ws/b/pom.xml", models.NewCoordinate("org", "b", "2"))
	a.Dependencies = []models.Coordinate{b.Coordinate}
	set := models.NewProjectSet()
	require.NoError(t, set.Add(a))
	require.NoError(t, set.Add(b))

	_, span := Start(context.Background(), "graph.build")
	RecordGraph(span, &graph.Graph{Projects: set})
	span.End()

	got := attrs(sr.Ended()[0].Attributes())
	require.Equal(t, "2", got["mvnaudit.projects"])
	require.Equal(t, "1", got["mvnaudit.edges"])
	require.Equal(t, "0", got["mvnaudit.issues"])
}

func TestInstrumentOracle(t *testing.T) {
	sr := recordSpans(t)

	mock := oracle.NewMockOracle().
		SetLatest("org:a", "1.1").
		SetError("org:c", errors.New("connection refused"))
	o := InstrumentOracle(mock)
	ctx := context.Background()

	latest, found, err := o.Latest(ctx, models.NewCoordinate("org", "a", "1.0"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1.1", latest)

	_, found, err = o.Latest(ctx, models.NewCoordinate("org", "b", "2.0"))
	require.NoError(t, err)
	require.False(t, found)

	_, _, err = o.Latest(ctx, models.NewCoordinate("org", "c", "3.0"))
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 3)
	for _, s := range spans {
		require.Equal(t, "oracle.latest", s.Name())
	}

	require.Equal(t, map[string]string{
		"maven.artifact": "org:a",
		"maven.version":  "1.0",
		"maven.found":    "true",
		"maven.latest":   "1.1",
	}, attrs(spans[0].Attributes()))
	require.Equal(t, "false", attrs(spans[1].Attributes())["maven.found"])
	require.Equal(t, codes.Error, spans[2].Status().Code)
	require.Equal(t, []string{"org:a", "org:b", "org:c"}, mock.Lookups())
}
