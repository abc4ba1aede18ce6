// Package metrics records audit run metrics in a Prometheus registry that is
// written out in the text exposition format at the end of a run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Oracle lookup results.
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Recorder owns the metrics of one audit run.
type Recorder struct {
	registry *prometheus.Registry

	projects       prometheus.Gauge
	edges          prometheus.Gauge
	external       prometheus.Gauge
	stale          prometheus.Gauge
	issues         *prometheus.CounterVec
	oracleLookups  *prometheus.CounterVec
	oracleDuration prometheus.Histogram
	runDuration    prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mvnaudit_projects",
			Help: "Number of projects discovered in the workspace.",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mvnaudit_dependency_edges",
			Help: "Number of organization dependency edges between workspace projects.",
		}),
		external: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mvnaudit_external_dependencies",
			Help: "Number of organization dependencies not checked out in the workspace.",
		}),
		stale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mvnaudit_stale_projects",
			Help: "Number of projects whose version differs from the latest published one.",
		}),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvnaudit_issues_total",
				Help: "Number of issues collected, by scope and kind.",
			},
			[]string{"scope", "kind"},
		),
		oracleLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvnaudit_oracle_lookups_total",
				Help: "Number of latest-version lookups, by result.",
			},
			[]string{"result"},
		),
		oracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mvnaudit_oracle_lookup_duration_seconds",
			Help:    "Time taken by one latest-version lookup.",
			Buckets: prometheus.DefBuckets,
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mvnaudit_run_duration_seconds",
			Help: "Wall time of the audit run.",
		}),
	}

	r.registry.MustRegister(
		r.projects,
		r.edges,
		r.external,
		r.stale,
		r.issues,
		r.oracleLookups,
		r.oracleDuration,
		r.runDuration,
	)

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveGraph records the shape of a built graph and its issues.
func (r *Recorder) ObserveGraph(g *graph.Graph) {
	edges, stale := 0, 0
	for _, p := range g.Projects.Projects() {
		edges += len(p.Dependencies)
		if p.LatestVersion != "" && !p.UpToDate {
			stale++
		}
	}

	r.projects.Set(float64(g.Projects.Len()))
	r.edges.Set(float64(edges))
	r.external.Set(float64(len(g.External)))
	r.stale.Set(float64(stale))

	for _, issue := range g.Issues {
		r.issues.WithLabelValues(string(issue.Scope), issue.Kind()).Inc()
	}
}

// ObserveRun records the total run time.
func (r *Recorder) ObserveRun(d time.Duration) {
	r.runDuration.Set(d.Seconds())
}

// InstrumentOracle wraps oracle so every lookup is counted and timed.
func (r *Recorder) InstrumentOracle(oracle graph.VersionOracle) graph.VersionOracle {
	return &instrumentedOracle{next: oracle, recorder: r}
}

// WriteTextfile writes the registry to path in the text exposition format,
// suitable for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

type instrumentedOracle struct {
	next     graph.VersionOracle
	recorder *Recorder
}

func (o *instrumentedOracle) Latest(ctx context.Context, c models.Coordinate) (string, bool, error) {
	timer := prometheus.NewTimer(o.recorder.oracleDuration)
	latest, found, err := o.next.Latest(ctx, c)
	timer.ObserveDuration()

	switch {
	case err != nil:
		o.recorder.oracleLookups.WithLabelValues(ResultError).Inc()
	case found:
		o.recorder.oracleLookups.WithLabelValues(ResultFound).Inc()
	default:
		o.recorder.oracleLookups.WithLabelValues(ResultNotFound).Inc()
	}
	return latest, found, err
}
